package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/subdigest/internal/config"
)

const exampleEnvFile = ".env.example"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config directory with example files",
	RunE:  initAction,
}

func initAction(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	created := 0
	for _, f := range []struct {
		name string
		data string
	}{
		{config.DefaultConfigFile, exampleConfig},
		{exampleEnvFile, exampleEnv},
	} {
		wrote, err := writeIfNotExists(filepath.Join(configDir, f.name), []byte(f.data))
		if err != nil {
			return err
		}
		if wrote {
			created++
		}
	}

	if created == 0 {
		fmt.Printf("Config directory %s already initialized.\n", configDir)
	} else {
		fmt.Printf("Initialized %s with %d files. Copy %s to %s and fill in the secrets.\n",
			configDir, created, exampleEnvFile, config.DefaultEnvFile)
	}
	return nil
}

// writeIfNotExists writes data to path if the file does not exist.
// Returns true if the file was created.
func writeIfNotExists(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("  exists: %s\n", path)
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("  created: %s\n", path)
	return true, nil
}

const exampleConfig = `# subdigest configuration
# Secrets are read from the environment (or .env); the *_env keys name the variables.

forum:
  mode: oauth          # oauth, public or rss
  client_id_env: REDDIT_CLIENT_ID
  client_secret_env: REDDIT_CLIENT_SECRET
  user_agent: subdigest/1.0
  fetch_limit: 10
  window: 24h

summarize:
  model: gemini-3-flash-preview
  temperature: 0.2
  api_key_env: GOOGLE_API_KEY
  prompt: "Summarize these recent Reddit posts into key points in a playful and funny style."

email:
  smtp_host: smtp.gmail.com
  smtp_port: 465
  address_env: EMAIL_ADDRESS
  app_password_env: EMAIL_APP_PASSWORD
  subject: "Your Daily Reddit Posts Summary"

output:
  path: reddit_posts.txt
  redact:
    enabled: false
    patterns: []

log:
  path: reddit_bot.log
  level: info
`

const exampleEnv = `REDDIT_CLIENT_ID=
REDDIT_CLIENT_SECRET=
GOOGLE_API_KEY=
EMAIL_ADDRESS=
EMAIL_APP_PASSWORD=
`
