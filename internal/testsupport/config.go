package testsupport

import (
	"path/filepath"
	"testing"

	"filesort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config whose files live in a unique temp directory.
// Pacing is disabled so runs finish immediately.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Settings.Provider = "claude"
	cfg.Settings.APIKey = "test-key"
	cfg.Organizer.RequestIntervalMS = 0
	cfg.Organizer.PausePollIntervalMS = 5
	cfg.Logging.RunLog = filepath.Join(base, "file_organizer.log")
	cfg.Journal.Path = filepath.Join(base, "journal.db")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithoutJournal disables the move journal.
func WithoutJournal() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Journal.Enabled = false
	}
}

// BaseDir returns the temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Journal.Path)
}
