package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "config.yaml"
	DefaultEnvFile    = ".env"

	ModeOAuth  = "oauth"
	ModePublic = "public"
	ModeRSS    = "rss"

	DefaultMode            = ModeOAuth
	DefaultClientIDEnv     = "REDDIT_CLIENT_ID"
	DefaultClientSecretEnv = "REDDIT_CLIENT_SECRET"
	DefaultUserAgent       = "subdigest/1.0"
	DefaultFetchLimit      = 10
	MaxFetchLimit          = 100
	DefaultWindow          = 24 * time.Hour

	DefaultModel       = "gemini-3-flash-preview"
	DefaultTemperature = 0.2
	DefaultAPIKeyEnv   = "GOOGLE_API_KEY"
	DefaultPrompt      = "Summarize these recent Reddit posts into key points in a playful and funny style."

	DefaultSMTPHost       = "smtp.gmail.com"
	DefaultSMTPPort       = 465
	DefaultAddressEnv     = "EMAIL_ADDRESS"
	DefaultAppPasswordEnv = "EMAIL_APP_PASSWORD"
	DefaultSubject        = "Your Daily Reddit Posts Summary"

	DefaultOutputPath = "reddit_posts.txt"
	DefaultLogPath    = "reddit_bot.log"
	DefaultLogLevel   = "info"
)

// Duration wraps time.Duration for YAML unmarshaling from strings like "24h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Forum     ForumConfig     `yaml:"forum"`
	Summarize SummarizeConfig `yaml:"summarize"`
	Email     EmailConfig     `yaml:"email"`
	Output    OutputConfig    `yaml:"output"`
	Log       LogConfig       `yaml:"log"`
}

type ForumConfig struct {
	Mode            string   `yaml:"mode"`
	ClientIDEnv     string   `yaml:"client_id_env"`
	ClientSecretEnv string   `yaml:"client_secret_env"`
	UserAgent       string   `yaml:"user_agent"`
	FetchLimit      int      `yaml:"fetch_limit"`
	Window          Duration `yaml:"window"`

	// Resolved from env vars at load time.
	ClientID     string `yaml:"-"`
	ClientSecret string `yaml:"-"`
}

type SummarizeConfig struct {
	Model string `yaml:"model"`
	// Pointer so an explicit 0 is not mistaken for "unset".
	Temperature *float32 `yaml:"temperature"`
	APIKeyEnv   string   `yaml:"api_key_env"`
	Prompt      string   `yaml:"prompt"`

	// Resolved from env var at load time.
	APIKey string `yaml:"-"`
}

type EmailConfig struct {
	SMTPHost       string `yaml:"smtp_host"`
	SMTPPort       int    `yaml:"smtp_port"`
	AddressEnv     string `yaml:"address_env"`
	AppPasswordEnv string `yaml:"app_password_env"`
	Subject        string `yaml:"subject"`

	// Resolved from env vars at load time.
	Address     string `yaml:"-"`
	AppPassword string `yaml:"-"`
}

type OutputConfig struct {
	Path   string       `yaml:"path"`
	Redact RedactConfig `yaml:"redact"`
}

type RedactConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Patterns []string `yaml:"patterns"`
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// Load reads .env and config.yaml from dir, applies defaults, resolves env vars, and validates.
// A missing config.yaml is not an error: every setting has a default.
func Load(dir string) (*Config, error) {
	return load(dir, validate)
}

// LoadSummarize is Load for commands that only talk to the model API. Forum
// and email credentials are not required.
func LoadSummarize(dir string) (*Config, error) {
	return load(dir, func(cfg *Config) error {
		if err := validateSummarize(cfg); err != nil {
			return err
		}
		return validateLog(cfg)
	})
}

func load(dir string, check func(*Config) error) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	if err := loadDotEnv(filepath.Join(dir, DefaultEnvFile)); err != nil {
		return nil, err
	}

	var cfg Config
	data, err := os.ReadFile(filepath.Join(dir, DefaultConfigFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyDefaults(&cfg)
	resolveEnv(&cfg)

	if err := check(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv populates the process environment from path without
// overriding variables that are already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Forum.Mode == "" {
		cfg.Forum.Mode = DefaultMode
	}
	if cfg.Forum.ClientIDEnv == "" {
		cfg.Forum.ClientIDEnv = DefaultClientIDEnv
	}
	if cfg.Forum.ClientSecretEnv == "" {
		cfg.Forum.ClientSecretEnv = DefaultClientSecretEnv
	}
	if cfg.Forum.UserAgent == "" {
		cfg.Forum.UserAgent = DefaultUserAgent
	}
	if cfg.Forum.FetchLimit == 0 {
		cfg.Forum.FetchLimit = DefaultFetchLimit
	}
	if cfg.Forum.Window.Duration == 0 {
		cfg.Forum.Window.Duration = DefaultWindow
	}

	if cfg.Summarize.Model == "" {
		cfg.Summarize.Model = DefaultModel
	}
	if cfg.Summarize.Temperature == nil {
		t := float32(DefaultTemperature)
		cfg.Summarize.Temperature = &t
	}
	if cfg.Summarize.APIKeyEnv == "" {
		cfg.Summarize.APIKeyEnv = DefaultAPIKeyEnv
	}
	if cfg.Summarize.Prompt == "" {
		cfg.Summarize.Prompt = DefaultPrompt
	}

	if cfg.Email.SMTPHost == "" {
		cfg.Email.SMTPHost = DefaultSMTPHost
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = DefaultSMTPPort
	}
	if cfg.Email.AddressEnv == "" {
		cfg.Email.AddressEnv = DefaultAddressEnv
	}
	if cfg.Email.AppPasswordEnv == "" {
		cfg.Email.AppPasswordEnv = DefaultAppPasswordEnv
	}
	if cfg.Email.Subject == "" {
		cfg.Email.Subject = DefaultSubject
	}

	if cfg.Output.Path == "" {
		cfg.Output.Path = DefaultOutputPath
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = DefaultLogPath
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}

func resolveEnv(cfg *Config) {
	cfg.Forum.ClientID = strings.TrimSpace(os.Getenv(cfg.Forum.ClientIDEnv))
	cfg.Forum.ClientSecret = strings.TrimSpace(os.Getenv(cfg.Forum.ClientSecretEnv))
	cfg.Summarize.APIKey = strings.TrimSpace(os.Getenv(cfg.Summarize.APIKeyEnv))
	cfg.Email.Address = strings.TrimSpace(os.Getenv(cfg.Email.AddressEnv))
	cfg.Email.AppPassword = strings.TrimSpace(os.Getenv(cfg.Email.AppPasswordEnv))
}

func validate(cfg *Config) error {
	for _, check := range []func(*Config) error{
		validateForum,
		validateSummarize,
		validateEmail,
		validateOutput,
		validateLog,
	} {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateForum(cfg *Config) error {
	switch cfg.Forum.Mode {
	case ModeOAuth:
		if cfg.Forum.ClientID == "" {
			return fmt.Errorf("forum: %s is not set", cfg.Forum.ClientIDEnv)
		}
		if cfg.Forum.ClientSecret == "" {
			return fmt.Errorf("forum: %s is not set", cfg.Forum.ClientSecretEnv)
		}
	case ModePublic, ModeRSS:
	default:
		return fmt.Errorf("forum.mode: unknown mode %q (want oauth, public or rss)", cfg.Forum.Mode)
	}

	if cfg.Forum.FetchLimit < 1 || cfg.Forum.FetchLimit > MaxFetchLimit {
		return fmt.Errorf("forum.fetch_limit: %d out of range 1..%d", cfg.Forum.FetchLimit, MaxFetchLimit)
	}
	if cfg.Forum.Window.Duration < 0 {
		return fmt.Errorf("forum.window: %v must be positive", cfg.Forum.Window.Duration)
	}
	return nil
}

func validateSummarize(cfg *Config) error {
	if cfg.Summarize.APIKey == "" {
		return fmt.Errorf("summarize: %s is not set", cfg.Summarize.APIKeyEnv)
	}
	if t := *cfg.Summarize.Temperature; t < 0 || t > 2 {
		return fmt.Errorf("summarize.temperature: %.2f out of range 0..2", t)
	}
	return nil
}

func validateEmail(cfg *Config) error {
	if cfg.Email.Address == "" {
		return fmt.Errorf("email: %s is not set", cfg.Email.AddressEnv)
	}
	if cfg.Email.AppPassword == "" {
		return fmt.Errorf("email: %s is not set", cfg.Email.AppPasswordEnv)
	}
	if cfg.Email.SMTPPort < 1 || cfg.Email.SMTPPort > 65535 {
		return fmt.Errorf("email.smtp_port: %d out of range", cfg.Email.SMTPPort)
	}
	return nil
}

func validateOutput(cfg *Config) error {
	if !cfg.Output.Redact.Enabled {
		return nil
	}
	for _, p := range cfg.Output.Redact.Patterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("output.redact: pattern %q: %w", p, err)
		}
	}
	return nil
}

func validateLog(cfg *Config) error {
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
