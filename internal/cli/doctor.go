package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/subdigest/internal/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, credentials and file paths",
	RunE:  doctorAction,
}

func doctorAction(_ *cobra.Command, _ []string) error {
	ok := true

	// Config dir
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		printCheck(false, "config directory %s", configDir)
		ok = false
	} else {
		printCheck(true, "config directory %s", configDir)
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		printCheck(false, "config: %v", err)
		return fmt.Errorf("some checks failed")
	}
	printCheck(true, "config (mode %s, model %s, fetch limit %d, window %s)",
		cfg.Forum.Mode, cfg.Summarize.Model, cfg.Forum.FetchLimit, cfg.Forum.Window.Duration)

	// Load already rejected missing values; list what was found.
	for _, name := range credentialEnvs(cfg) {
		printCheck(true, "%s is set", name)
	}

	for _, p := range []struct{ label, path string }{
		{"output file", cfg.Output.Path},
		{"log file", cfg.Log.Path},
	} {
		if err := checkWritable(p.path); err != nil {
			printCheck(false, "%s %s: %v", p.label, p.path, err)
			ok = false
		} else {
			printCheck(true, "%s %s", p.label, p.path)
		}
	}

	if cfg.Output.Redact.Enabled {
		printInfo("redaction enabled with %d patterns", len(cfg.Output.Redact.Patterns))
	}

	if !ok {
		return fmt.Errorf("some checks failed")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

func credentialEnvs(cfg *config.Config) []string {
	var names []string
	if cfg.Forum.Mode == config.ModeOAuth {
		names = append(names, cfg.Forum.ClientIDEnv, cfg.Forum.ClientSecretEnv)
	}
	return append(names, cfg.Summarize.APIKeyEnv, cfg.Email.AddressEnv, cfg.Email.AppPasswordEnv)
}

// checkWritable opens path for appending without truncating it. Files and
// directories created by the check are removed again.
func checkWritable(path string) error {
	_, statErr := os.Stat(path)
	existed := statErr == nil
	if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
		return statErr
	}

	created, err := mkdirTracked(filepath.Dir(path))
	defer removeDirs(created)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if !existed {
		return os.Remove(path)
	}
	return nil
}

// mkdirTracked creates dir and any missing parents, returning the
// directories it created, deepest first.
func mkdirTracked(dir string) ([]string, error) {
	var missing []string
	for d := dir; ; d = filepath.Dir(d) {
		if _, err := os.Stat(d); err == nil {
			break
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		missing = append(missing, d)
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}

	var created []string
	for i := len(missing) - 1; i >= 0; i-- {
		if err := os.Mkdir(missing[i], 0o755); err != nil {
			return created, err
		}
		created = append([]string{missing[i]}, created...)
	}
	return created, nil
}

func removeDirs(dirs []string) {
	for _, d := range dirs {
		_ = os.Remove(d)
	}
}

func printCheck(pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Printf("[%s] %s\n", mark, fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Printf("[INFO] %s\n", fmt.Sprintf(format, args...))
}
