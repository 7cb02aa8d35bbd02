package classifier

import (
	"strings"

	"filesort/internal/config"
)

// Config captures the provider settings for one run. It is immutable once the
// run starts.
type Config struct {
	Kind           Kind
	APIKey         string
	Model          string
	BaseURL        string
	MaxTokens      int
	TimeoutSeconds int
}

// ConfigFor derives the provider configuration selected by the application
// config's [settings] section.
func ConfigFor(cfg *config.Config) (Config, error) {
	kind, err := ParseKind(cfg.Settings.Provider)
	if err != nil {
		return Config{}, err
	}
	provider, _ := cfg.ProviderSettings(string(kind))
	return Config{
		Kind:           kind,
		APIKey:         cfg.APIKeyFor(string(kind)),
		Model:          strings.TrimSpace(provider.Model),
		BaseURL:        strings.TrimSpace(provider.BaseURL),
		MaxTokens:      provider.MaxTokens,
		TimeoutSeconds: provider.TimeoutSeconds,
	}, nil
}
