package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Settings is the persisted state of the last started run.
type Settings struct {
	APIKey        string `toml:"api_key"`
	LastDirectory string `toml:"last_directory"`
	// ProviderIndex is the legacy numeric provider selector (0 claude, 1 openai, 2 groq).
	ProviderIndex int    `toml:"provider_index"`
	Provider      string `toml:"provider"`
}

// Provider contains connection settings for one classification backend.
type Provider struct {
	Model          string `toml:"model"`
	BaseURL        string `toml:"base_url"`
	MaxTokens      int    `toml:"max_tokens"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Providers groups per-backend settings.
type Providers struct {
	Claude Provider `toml:"claude"`
	OpenAI Provider `toml:"openai"`
	Groq   Provider `toml:"groq"`
}

// Organizer contains run pacing and layout settings.
type Organizer struct {
	DestinationDirName  string `toml:"destination_dir_name"`
	RequestIntervalMS   int    `toml:"request_interval_ms"`
	PausePollIntervalMS int    `toml:"pause_poll_interval_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	RunLog string `toml:"run_log"`
}

// Journal contains configuration for the move journal used by history and undo.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Metrics contains configuration for the Prometheus textfile export.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Config encapsulates all configuration values for filesort.
//
// Configuration sections by subsystem:
//   - Settings: api key, last directory, and provider of the last run
//   - Providers: per-backend model, endpoint, and timeout
//   - Organizer: destination folder name, request interval, pause polling
//   - Logging: log format, level, and run log file
//   - Journal: sqlite move journal for history and undo
//   - Metrics: Prometheus textfile export
//   - Notifications: ntfy push notification settings
type Config struct {
	Settings      Settings      `toml:"settings"`
	Providers     Providers     `toml:"providers"`
	Organizer     Organizer     `toml:"organizer"`
	Logging       Logging       `toml:"logging"`
	Journal       Journal       `toml:"journal"`
	Metrics       Metrics       `toml:"metrics"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(defaultProjectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates directories needed by enabled features.
func (c *Config) EnsureDirectories() error {
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) != "" {
		dir := filepath.Dir(c.Journal.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Metrics.Textfile) != "" {
		dir := filepath.Dir(c.Metrics.Textfile)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics directory %q: %w", dir, err)
		}
	}
	return nil
}

// RequestInterval returns the delay enforced between classification requests.
func (c *Config) RequestInterval() time.Duration {
	if c.Organizer.RequestIntervalMS <= 0 {
		return 0
	}
	return time.Duration(c.Organizer.RequestIntervalMS) * time.Millisecond
}

// PausePollInterval returns how often a paused run re-checks its flags.
func (c *Config) PausePollInterval() time.Duration {
	if c.Organizer.PausePollIntervalMS <= 0 {
		return defaultPausePollIntervalMS * time.Millisecond
	}
	return time.Duration(c.Organizer.PausePollIntervalMS) * time.Millisecond
}

// ProviderSettings returns the backend settings for the named provider.
func (c *Config) ProviderSettings(name string) (Provider, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "claude":
		return c.Providers.Claude, true
	case "openai":
		return c.Providers.OpenAI, true
	case "groq":
		return c.Providers.Groq, true
	default:
		return Provider{}, false
	}
}

// APIKeyFor returns the key to use for the provider: the [settings] key first,
// then FILESORT_API_KEY, then the provider specific environment variable.
// Environment keys are never copied into Settings, so SaveSettings does not
// persist them.
func (c *Config) APIKeyFor(provider string) string {
	if key := strings.TrimSpace(c.Settings.APIKey); key != "" {
		return key
	}
	if value := strings.TrimSpace(os.Getenv("FILESORT_API_KEY")); value != "" {
		return value
	}
	if env, ok := providerEnvKeys[strings.ToLower(strings.TrimSpace(provider))]; ok {
		if value, ok := os.LookupEnv(env); ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

var providerEnvKeys = map[string]string{
	"claude": "ANTHROPIC_API_KEY",
	"openai": "OPENAI_API_KEY",
	"groq":   "GROQ_API_KEY",
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
