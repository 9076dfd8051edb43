// Package cli provides the command-line interface for subdigest.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ppiankov/subdigest/internal/config"
	"github.com/ppiankov/subdigest/internal/logging"
	"github.com/ppiankov/subdigest/internal/pipeline"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var (
	configDir string
	verbose   bool
)

// runner is the part of *pipeline.Pipeline the root command needs.
type runner interface {
	Run(ctx context.Context, forum, recipient string) (pipeline.Result, error)
}

// newPipeline builds the run pipeline; replaced in tests.
var newPipeline = func(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (runner, error) {
	p, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return p, nil
}

var rootCmd = &cobra.Command{
	Use:   "subdigest <subreddit> <recipient-email>",
	Short: "Email a summary of a subreddit's recent posts",
	Long: "subdigest fetches the newest posts of a subreddit, saves them to a text file, " +
		"asks Gemini for a playful summary, and emails it with the file attached.",
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAction,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("subdigest %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding config.yaml and .env")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "also write log lines to stderr")
	rootCmd.AddCommand(versionCmd, doctorCmd, initCmd, modelsCmd)
}

// Execute runs the root command with the process arguments. Only startup
// failures (configuration, log file) are returned; problems during a run are
// logged.
func Execute() error {
	return executeArgs(os.Args[1:])
}

func executeArgs(args []string) error {
	rootCmd.SetArgs(routeArgs(args))
	return rootCmd.Execute()
}

// routeArgs keeps "<subreddit> <recipient>" on the root command when the
// subreddit shares a name with a subcommand (r/models, r/help). Subcommands
// take no positional arguments, so two or more always mean a run: flags are
// moved to the front and the positionals placed after "--".
func routeArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case strings.HasPrefix(a, "-") && len(a) > 1:
			flags = append(flags, a)
			if flagTakesValue(a) && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		default:
			positional = append(positional, a)
		}
	}

	if len(positional) < 2 {
		return args
	}
	routed := make([]string, 0, len(args)+1)
	routed = append(routed, flags...)
	routed = append(routed, "--")
	return append(routed, positional...)
}

// flagTakesValue reports whether a "--name" or "-n" argument consumes the next one.
func flagTakesValue(arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	fs := rootCmd.PersistentFlags()
	name := strings.TrimLeft(arg, "-")
	if strings.HasPrefix(arg, "--") {
		f := fs.Lookup(name)
		return f != nil && f.NoOptDefVal == ""
	}
	if len(name) != 1 {
		return false
	}
	f := fs.ShorthandLookup(name)
	return f != nil && f.NoOptDefVal == ""
}

func runAction(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var mirror io.Writer
	if verbose {
		mirror = cmd.ErrOrStderr()
	}
	log, closer, err := logging.Open(logging.Options{
		Path:   cfg.Log.Path,
		Level:  cfg.Log.Level,
		Mirror: mirror,
	})
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = closer.Close() }()

	if len(args) < 2 {
		log.Error("Usage: subdigest <subreddit> <recipient_email>")
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Bot crashed: %v", r)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log.Info("Starting Reddit bot...")
	p, err := newPipeline(ctx, cfg, log)
	if err != nil {
		log.Errorf("Setup failed: %v", err)
		return nil
	}

	// Arguments past the recipient are ignored.
	res, err := p.Run(ctx, args[0], args[1])
	if err != nil {
		log.Errorf("An error occurred: %v", err)
		return nil
	}
	log.WithFields(logrus.Fields{
		"outcome": res.Outcome,
		"posts":   res.Posts,
	}).Info("Bot finished successfully.")
	return nil
}
