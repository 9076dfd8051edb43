package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTestFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	return path
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(DefaultClientIDEnv, "client-id")
	t.Setenv(DefaultClientSecretEnv, "client-secret")
	t.Setenv(DefaultAPIKeyEnv, "api-key")
	t.Setenv(DefaultAddressEnv, "bot@example.com")
	t.Setenv(DefaultAppPasswordEnv, "app-password")
}

// unsetEnv removes key for the duration of the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s: %v", key, err)
	}
}

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Forum.Mode != DefaultMode {
		t.Errorf("mode = %q, want %q", cfg.Forum.Mode, DefaultMode)
	}
	if cfg.Forum.FetchLimit != DefaultFetchLimit {
		t.Errorf("fetch_limit = %d, want %d", cfg.Forum.FetchLimit, DefaultFetchLimit)
	}
	if cfg.Forum.Window.Duration != DefaultWindow {
		t.Errorf("window = %v, want %v", cfg.Forum.Window.Duration, DefaultWindow)
	}
	if cfg.Forum.UserAgent != DefaultUserAgent {
		t.Errorf("user_agent = %q", cfg.Forum.UserAgent)
	}
	if cfg.Summarize.Model != DefaultModel {
		t.Errorf("model = %q, want %q", cfg.Summarize.Model, DefaultModel)
	}
	if *cfg.Summarize.Temperature != float32(DefaultTemperature) {
		t.Errorf("temperature = %v, want %v", *cfg.Summarize.Temperature, DefaultTemperature)
	}
	if cfg.Summarize.Prompt != DefaultPrompt {
		t.Errorf("prompt = %q", cfg.Summarize.Prompt)
	}
	if cfg.Email.SMTPHost != DefaultSMTPHost || cfg.Email.SMTPPort != DefaultSMTPPort {
		t.Errorf("smtp = %s:%d", cfg.Email.SMTPHost, cfg.Email.SMTPPort)
	}
	if cfg.Email.Subject != DefaultSubject {
		t.Errorf("subject = %q", cfg.Email.Subject)
	}
	if cfg.Output.Path != DefaultOutputPath {
		t.Errorf("output path = %q, want %q", cfg.Output.Path, DefaultOutputPath)
	}
	if cfg.Log.Path != DefaultLogPath || cfg.Log.Level != DefaultLogLevel {
		t.Errorf("log = %+v", cfg.Log)
	}

	// Secrets
	if cfg.Forum.ClientID != "client-id" || cfg.Forum.ClientSecret != "client-secret" {
		t.Errorf("reddit credentials = %q/%q", cfg.Forum.ClientID, cfg.Forum.ClientSecret)
	}
	if cfg.Summarize.APIKey != "api-key" {
		t.Errorf("api key = %q", cfg.Summarize.APIKey)
	}
	if cfg.Email.Address != "bot@example.com" || cfg.Email.AppPassword != "app-password" {
		t.Errorf("email credentials = %q/%q", cfg.Email.Address, cfg.Email.AppPassword)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TEST_RD_ID", "rid")
	t.Setenv("TEST_RD_SECRET", "rsecret")
	t.Setenv("TEST_GEMINI", "gkey")
	t.Setenv("TEST_MAIL_FROM", "me@example.com")
	t.Setenv("TEST_MAIL_PASS", "pass")

	writeTestFile(t, dir, DefaultConfigFile, `
forum:
  mode: oauth
  client_id_env: TEST_RD_ID
  client_secret_env: TEST_RD_SECRET
  user_agent: "digest-test/2.0"
  fetch_limit: 25
  window: 48h
summarize:
  model: gemini-2.5-flash
  temperature: 0
  api_key_env: TEST_GEMINI
  prompt: "Be brief."
email:
  smtp_host: smtp.example.com
  smtp_port: 2465
  address_env: TEST_MAIL_FROM
  app_password_env: TEST_MAIL_PASS
  subject: "Digest"
output:
  path: out/posts.txt
  redact:
    enabled: true
    patterns:
      - "(?i)token=\\S+"
log:
  path: logs/run.log
  level: error
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Forum.ClientID != "rid" || cfg.Forum.ClientSecret != "rsecret" {
		t.Errorf("reddit credentials = %q/%q", cfg.Forum.ClientID, cfg.Forum.ClientSecret)
	}
	if cfg.Forum.UserAgent != "digest-test/2.0" {
		t.Errorf("user_agent = %q", cfg.Forum.UserAgent)
	}
	if cfg.Forum.FetchLimit != 25 {
		t.Errorf("fetch_limit = %d, want 25", cfg.Forum.FetchLimit)
	}
	if cfg.Forum.Window.Duration != 48*time.Hour {
		t.Errorf("window = %v, want 48h", cfg.Forum.Window.Duration)
	}
	if cfg.Summarize.Model != "gemini-2.5-flash" {
		t.Errorf("model = %q", cfg.Summarize.Model)
	}
	// Explicit zero must survive defaulting.
	if *cfg.Summarize.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", *cfg.Summarize.Temperature)
	}
	if cfg.Summarize.APIKey != "gkey" || cfg.Summarize.Prompt != "Be brief." {
		t.Errorf("summarize = %+v", cfg.Summarize)
	}
	if cfg.Email.SMTPHost != "smtp.example.com" || cfg.Email.SMTPPort != 2465 {
		t.Errorf("smtp = %s:%d", cfg.Email.SMTPHost, cfg.Email.SMTPPort)
	}
	if cfg.Email.Address != "me@example.com" || cfg.Email.AppPassword != "pass" {
		t.Errorf("email credentials = %q/%q", cfg.Email.Address, cfg.Email.AppPassword)
	}
	if cfg.Email.Subject != "Digest" {
		t.Errorf("subject = %q", cfg.Email.Subject)
	}
	if cfg.Output.Path != "out/posts.txt" {
		t.Errorf("output path = %q", cfg.Output.Path)
	}
	if !cfg.Output.Redact.Enabled || len(cfg.Output.Redact.Patterns) != 1 {
		t.Errorf("redact = %+v", cfg.Output.Redact)
	}
	if cfg.Log.Path != "logs/run.log" || cfg.Log.Level != "error" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	setRequiredEnv(t)
	unsetEnv(t, DefaultAPIKeyEnv)

	writeTestFile(t, dir, DefaultEnvFile, "GOOGLE_API_KEY=from-dotenv\nEMAIL_ADDRESS=ignored@example.com\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Summarize.APIKey != "from-dotenv" {
		t.Errorf("api key = %q, want from-dotenv", cfg.Summarize.APIKey)
	}
	// Existing environment wins over .env.
	if cfg.Email.Address != "bot@example.com" {
		t.Errorf("email address = %q, want bot@example.com", cfg.Email.Address)
	}
}

func TestLoad_MissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"reddit client id", DefaultClientIDEnv},
		{"reddit client secret", DefaultClientSecretEnv},
		{"gemini key", DefaultAPIKeyEnv},
		{"email address", DefaultAddressEnv},
		{"app password", DefaultAppPasswordEnv},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			unsetEnv(t, tt.unset)

			_, err := Load(t.TempDir())
			if err == nil {
				t.Fatalf("expected error when %s is missing", tt.unset)
			}
			if !strings.Contains(err.Error(), tt.unset) {
				t.Errorf("error = %q, want naming %s", err, tt.unset)
			}
		})
	}
}

func TestLoad_PublicModeSkipsRedditCredentials(t *testing.T) {
	for _, mode := range []string{ModePublic, ModeRSS} {
		t.Run(mode, func(t *testing.T) {
			dir := t.TempDir()
			setRequiredEnv(t)
			unsetEnv(t, DefaultClientIDEnv)
			unsetEnv(t, DefaultClientSecretEnv)
			writeTestFile(t, dir, DefaultConfigFile, "forum:\n  mode: "+mode+"\n")

			cfg, err := Load(dir)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if cfg.Forum.Mode != mode {
				t.Errorf("mode = %q, want %q", cfg.Forum.Mode, mode)
			}
		})
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown mode", "forum:\n  mode: carrier-pigeon\n", "unknown mode"},
		{"fetch limit too high", "forum:\n  fetch_limit: 500\n", "forum.fetch_limit"},
		{"negative fetch limit", "forum:\n  fetch_limit: -1\n", "forum.fetch_limit"},
		{"negative window", "forum:\n  window: -1h\n", "forum.window"},
		{"temperature too high", "summarize:\n  temperature: 3\n", "summarize.temperature"},
		{"bad smtp port", "email:\n  smtp_port: 70000\n", "email.smtp_port"},
		{"bad redact pattern", "output:\n  redact:\n    enabled: true\n    patterns: [\"(\"]\n", "output.redact"},
		{"bad log level", "log:\n  level: chatty\n", "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			setRequiredEnv(t)
			writeTestFile(t, dir, DefaultConfigFile, tt.yaml)

			_, err := Load(dir)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoad_DisabledRedactIgnoresPatterns(t *testing.T) {
	dir := t.TempDir()
	setRequiredEnv(t)
	writeTestFile(t, dir, DefaultConfigFile, "output:\n  redact:\n    enabled: false\n    patterns: [\"(\"]\n")

	if _, err := Load(dir); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	setRequiredEnv(t)
	writeTestFile(t, dir, DefaultConfigFile, "forum:\n  window: yesterday\n")

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for bad duration")
	}
	if want := "parse config"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want containing %q", err, want)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	setRequiredEnv(t)
	writeTestFile(t, dir, DefaultConfigFile, `{{{invalid`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for malformed yaml")
	}
	if want := "parse config"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want containing %q", err, want)
	}
}

func TestLoad_EmptyDir(t *testing.T) {
	_, err := Load("")
	if err == nil {
		t.Fatal("expected error for empty dir")
	}
	if want := "config dir is required"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want containing %q", err, want)
	}
}

func TestLoadSummarize_OnlyNeedsAPIKey(t *testing.T) {
	for _, key := range []string{DefaultClientIDEnv, DefaultClientSecretEnv, DefaultAddressEnv, DefaultAppPasswordEnv} {
		unsetEnv(t, key)
	}
	t.Setenv(DefaultAPIKeyEnv, "api-key")
	dir := t.TempDir()

	if _, err := Load(dir); err == nil {
		t.Fatal("Load should require forum and email credentials")
	}

	cfg, err := LoadSummarize(dir)
	if err != nil {
		t.Fatalf("LoadSummarize: %v", err)
	}
	if cfg.Summarize.APIKey != "api-key" {
		t.Errorf("api key = %q", cfg.Summarize.APIKey)
	}
	if cfg.Summarize.Model != DefaultModel {
		t.Errorf("model = %q", cfg.Summarize.Model)
	}
}

func TestLoadSummarize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		apiKey  string
		wantErr string
	}{
		{"missing api key", "", "", "GOOGLE_API_KEY is not set"},
		{"bad temperature", "summarize:\n  temperature: 3\n", "api-key", "summarize.temperature"},
		{"bad log level", "log:\n  level: loud\n", "api-key", "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetEnv(t, DefaultAPIKeyEnv)
			if tt.apiKey != "" {
				t.Setenv(DefaultAPIKeyEnv, tt.apiKey)
			}
			dir := t.TempDir()
			if tt.yaml != "" {
				writeTestFile(t, dir, DefaultConfigFile, tt.yaml)
			}

			_, err := LoadSummarize(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
