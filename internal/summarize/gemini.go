package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Gemini is a Generator backed by the Gemini Developer API.
type Gemini struct {
	client *genai.Client
}

type geminiOptions struct {
	baseURL    string
	httpClient *http.Client
}

// GeminiOption configures NewGemini.
type GeminiOption func(*geminiOptions)

// WithGeminiBaseURL overrides the API endpoint (useful for testing).
func WithGeminiBaseURL(u string) GeminiOption {
	return func(o *geminiOptions) { o.baseURL = u }
}

// WithGeminiHTTPClient sets the HTTP client used by the SDK.
func WithGeminiHTTPClient(c *http.Client) GeminiOption {
	return func(o *geminiOptions) { o.httpClient = c }
}

// NewGemini creates a Gemini client authenticated with apiKey.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	var o geminiOptions
	for _, opt := range opts {
		opt(&o)
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
	}
	if o.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: o.baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Gemini{client: client}, nil
}

// Generate sends prompt as a single user turn and returns the concatenated text parts.
func (g *Gemini) Generate(ctx context.Context, model, prompt string, temperature float32) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini: no candidates in response")
	}
	return resp.Text(), nil
}

// ListModels returns the names of models visible to the API key.
func (g *Gemini) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	for m, err := range g.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("gemini: list models: %w", err)
		}
		names = append(names, m.Name)
	}
	return names, nil
}
