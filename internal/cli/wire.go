package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/subdigest/internal/artifact"
	"github.com/ppiankov/subdigest/internal/config"
	"github.com/ppiankov/subdigest/internal/forum"
	"github.com/ppiankov/subdigest/internal/notify"
	"github.com/ppiankov/subdigest/internal/pipeline"
	"github.com/ppiankov/subdigest/internal/privacy"
	"github.com/ppiankov/subdigest/internal/summarize"
)

func buildPipeline(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*pipeline.Pipeline, error) {
	fetcher, err := buildFetcher(cfg.Forum)
	if err != nil {
		return nil, err
	}

	var redactor *privacy.Redactor
	if cfg.Output.Redact.Enabled {
		redactor, err = privacy.NewRedactor(cfg.Output.Redact.Patterns)
		if err != nil {
			return nil, fmt.Errorf("create redactor: %w", err)
		}
	}

	gen, err := summarize.NewGemini(ctx, cfg.Summarize.APIKey)
	if err != nil {
		return nil, err
	}
	sum := summarize.New(gen, cfg.Summarize.Model, *cfg.Summarize.Temperature, cfg.Summarize.Prompt)

	mailer, err := notify.NewSMTP(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.Address, cfg.Email.AppPassword)
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Config{
		OutputPath: cfg.Output.Path,
		Subject:    cfg.Email.Subject,
		Window:     cfg.Forum.Window.Duration,
	}, fetcher, artifact.NewWriter(redactor), sum, mailer, log), nil
}

func buildFetcher(fc config.ForumConfig) (forum.Fetcher, error) {
	opts := []forum.Option{
		forum.WithUserAgent(fc.UserAgent),
		forum.WithLimit(fc.FetchLimit),
		forum.WithWindow(fc.Window.Duration),
	}

	switch fc.Mode {
	case config.ModePublic:
		return forum.NewPublic(opts...), nil
	case config.ModeRSS:
		return forum.NewFeed(opts...), nil
	case config.ModeOAuth:
		f, err := forum.NewOAuth(fc.ClientID, fc.ClientSecret, opts...)
		if err != nil {
			return nil, fmt.Errorf("create reddit client: %w", err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown forum mode %q", fc.Mode)
	}
}
