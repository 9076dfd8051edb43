// Package pipeline sequences one run: fetch, write, summarize, notify.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/subdigest/internal/forum"
	"github.com/ppiankov/subdigest/internal/notify"
)

// Outcome is how a run ended.
type Outcome string

const (
	OutcomeNoPosts    Outcome = "no_posts"
	OutcomeNoSummary  Outcome = "no_summary"
	OutcomeSent       Outcome = "sent"
	OutcomeSendFailed Outcome = "send_failed"
)

// Writer persists a batch and returns the path written.
type Writer interface {
	Write(posts []forum.Post, path string) (string, error)
}

// Summarizer produces summary text from the file at path.
type Summarizer interface {
	Summarize(ctx context.Context, path string) (string, error)
}

// Notifier delivers one message.
type Notifier interface {
	Send(ctx context.Context, msg notify.Message) error
}

// Config holds the per-run constants.
type Config struct {
	OutputPath string
	Subject    string
	Window     time.Duration // only used in log lines
}

// Result describes a completed run.
type Result struct {
	Outcome Outcome
	Posts   int
	Path    string
	Summary string
	SendErr error // set when Outcome is OutcomeSendFailed
}

// Pipeline wires the four stages together.
type Pipeline struct {
	cfg        Config
	fetcher    forum.Fetcher
	writer     Writer
	summarizer Summarizer
	notifier   Notifier
	log        logrus.FieldLogger
}

// New creates a pipeline from explicit dependencies.
func New(cfg Config, f forum.Fetcher, w Writer, s Summarizer, n Notifier, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		fetcher:    f,
		writer:     w,
		summarizer: s,
		notifier:   n,
		log:        log,
	}
}

// Run executes one pass. Fetch and write failures are returned; an empty
// batch or a failed summary ends the run early; a failed send is logged and
// reported through Result only.
func (p *Pipeline) Run(ctx context.Context, forumName, recipient string) (Result, error) {
	p.log.Infof("Fetching posts from r/%s...", forumName)
	posts, err := p.fetcher.Fetch(ctx, forumName)
	if err != nil {
		return Result{}, fmt.Errorf("fetch posts: %w", err)
	}
	p.log.Infof("Found %d posts from the last %s.", len(posts), describeWindow(p.cfg.Window))

	if len(posts) == 0 {
		p.log.Infof("No posts found in the last %s. Skipping email.", describeWindow(p.cfg.Window))
		return Result{Outcome: OutcomeNoPosts}, nil
	}

	p.log.Info("Saving posts to file...")
	path, err := p.writer.Write(posts, p.cfg.OutputPath)
	if err != nil {
		return Result{Posts: len(posts)}, fmt.Errorf("save posts: %w", err)
	}
	p.log.Infof("Posts saved to %s.", path)

	res := Result{Posts: len(posts), Path: path}

	p.log.Info("Generating summary...")
	summary, err := p.summarizer.Summarize(ctx, path)
	if err != nil || summary == "" {
		if err != nil {
			p.log.Errorf("Error generating summary: %v", err)
		}
		p.log.Info("No summary available. Skipping email.")
		res.Outcome = OutcomeNoSummary
		return res, nil
	}
	res.Summary = summary

	err = p.notifier.Send(ctx, notify.Message{
		Subject:        p.cfg.Subject,
		Body:           summary,
		To:             recipient,
		AttachmentPath: path,
	})
	if err != nil {
		p.log.Errorf("Failed to send email: %v", err)
		res.Outcome = OutcomeSendFailed
		res.SendErr = err
		return res, nil
	}

	p.log.Info("Email sent successfully.")
	res.Outcome = OutcomeSent
	return res, nil
}

func describeWindow(d time.Duration) string {
	switch {
	case d <= 0:
		return "window"
	case d%time.Hour == 0:
		hours := int(d / time.Hour)
		if hours == 1 {
			return "hour"
		}
		return fmt.Sprintf("%d hours", hours)
	default:
		return d.String()
	}
}
