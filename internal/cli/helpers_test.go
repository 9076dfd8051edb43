package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// useConfigDir points the package-level flag at dir for the test.
func useConfigDir(t *testing.T, dir string) {
	t.Helper()
	old := configDir
	t.Cleanup(func() { configDir = old })
	configDir = dir
}

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("REDDIT_CLIENT_ID", "client-id")
	t.Setenv("REDDIT_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_API_KEY", "api-key")
	t.Setenv("EMAIL_ADDRESS", "bot@example.com")
	t.Setenv("EMAIL_APP_PASSWORD", "app-password")
}

// writeRunConfig writes a config.yaml whose output and log files live in dir.
func writeRunConfig(t *testing.T, dir string) (outputPath, logPath string) {
	t.Helper()
	outputPath = filepath.Join(dir, "out", "reddit_posts.txt")
	logPath = filepath.Join(dir, "logs", "reddit_bot.log")
	cfg := fmt.Sprintf("output:\n  path: %q\nlog:\n  path: %q\n", outputPath, logPath)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return outputPath, logPath
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("open stdout pipe: %v", err)
	}

	os.Stdout = writer
	runErr := fn()
	_ = writer.Close()
	os.Stdout = oldStdout

	out, readErr := io.ReadAll(reader)
	_ = reader.Close()
	if readErr != nil {
		t.Fatalf("read stdout pipe: %v", readErr)
	}
	return string(out), runErr
}

func requireContains(t *testing.T, got, want string) {
	t.Helper()

	if !strings.Contains(got, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, got)
	}
}
