package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/subdigest/internal/config"
	"github.com/ppiankov/subdigest/internal/summarize"
)

type modelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

var newModelLister = func(ctx context.Context, apiKey string) (modelLister, error) {
	return summarize.NewGemini(ctx, apiKey)
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List generative models available to the API key",
	RunE:  modelsAction,
}

func modelsAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadSummarize(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	lister, err := newModelLister(ctx, cfg.Summarize.APIKey)
	if err != nil {
		return err
	}
	names, err := lister.ListModels(ctx)
	if err != nil {
		return err
	}

	for _, name := range names {
		marker := " "
		if name == cfg.Summarize.Model || name == "models/"+cfg.Summarize.Model {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, name)
	}
	return nil
}
