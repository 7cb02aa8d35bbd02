package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// SaveSettings rewrites the [settings] section of the configuration file at path,
// leaving every other section as it was. The file is created when missing and is
// written with owner-only permissions because it carries the API key.
func SaveSettings(path string, settings Settings) error {
	path = strings.TrimSpace(path)
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		path = defaultPath
	}

	doc := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse existing config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("read existing config: %w", err)
	}

	provider := strings.ToLower(strings.TrimSpace(settings.Provider))
	index := settings.ProviderIndex
	if idx := ProviderIndex(provider); idx >= 0 {
		index = idx
	}
	doc["settings"] = map[string]any{
		"api_key":        strings.TrimSpace(settings.APIKey),
		"last_directory": strings.TrimSpace(settings.LastDirectory),
		"provider_index": int64(index),
		"provider":       provider,
	}

	encoded, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".filesort-config-*")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp config: %w", err)
	}
	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// ProviderIndex returns the legacy index of a provider name, or -1 when unknown.
func ProviderIndex(name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range providerNames {
		if candidate == name {
			return i
		}
	}
	return -1
}

// ProviderNames returns the supported provider names in legacy index order.
func ProviderNames() []string {
	out := make([]string, len(providerNames))
	copy(out, providerNames)
	return out
}
