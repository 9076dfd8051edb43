// Package summarize turns the posts artifact into a generated prose summary.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrEmptySummary is returned when the model answers with no text.
var ErrEmptySummary = errors.New("empty summary")

// Generator produces text from a prompt with a fixed model and temperature.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, temperature float32) (string, error)
}

// Summarizer reads an artifact and asks a Generator to summarize it.
type Summarizer struct {
	gen         Generator
	model       string
	temperature float32
	instruction string
}

// New creates a summarizer. instruction is prepended to the file content on its own line.
func New(gen Generator, model string, temperature float32, instruction string) *Summarizer {
	return &Summarizer{
		gen:         gen,
		model:       model,
		temperature: temperature,
		instruction: instruction,
	}
}

// Summarize reads path and returns the generated text verbatim. It makes one
// attempt; any failure is returned and the caller decides what to skip.
func (s *Summarizer) Summarize(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	text, err := s.gen.Generate(ctx, s.model, s.Prompt(string(data)), s.temperature)
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	if text == "" {
		return "", ErrEmptySummary
	}
	return text, nil
}

// Prompt builds the full request text for content.
func (s *Summarizer) Prompt(content string) string {
	return s.instruction + "\n" + content
}
