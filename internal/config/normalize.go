package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeSettings()
	c.normalizeProviders()
	c.normalizeOrganizer()
	c.normalizeLogging()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
	return nil
}

func (c *Config) normalizeSettings() {
	c.Settings.Provider = strings.ToLower(strings.TrimSpace(c.Settings.Provider))
	if c.Settings.Provider == "" {
		if c.Settings.ProviderIndex >= 0 && c.Settings.ProviderIndex < len(providerNames) {
			c.Settings.Provider = providerNames[c.Settings.ProviderIndex]
		} else {
			c.Settings.Provider = defaultProvider
		}
	}
	if idx := ProviderIndex(c.Settings.Provider); idx >= 0 {
		c.Settings.ProviderIndex = idx
	}
	c.Settings.APIKey = strings.TrimSpace(c.Settings.APIKey)
	c.Settings.LastDirectory = strings.TrimSpace(c.Settings.LastDirectory)
}

func (c *Config) normalizeProviders() {
	defaults := Default().Providers
	normalizeProvider(&c.Providers.Claude, defaults.Claude)
	normalizeProvider(&c.Providers.OpenAI, defaults.OpenAI)
	normalizeProvider(&c.Providers.Groq, defaults.Groq)
}

func normalizeProvider(p *Provider, fallback Provider) {
	p.Model = strings.TrimSpace(p.Model)
	if p.Model == "" {
		p.Model = fallback.Model
	}
	p.BaseURL = strings.TrimSpace(p.BaseURL)
	if p.BaseURL == "" {
		p.BaseURL = fallback.BaseURL
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = fallback.MaxTokens
	}
	if p.TimeoutSeconds <= 0 {
		p.TimeoutSeconds = fallback.TimeoutSeconds
	}
}

func (c *Config) normalizeOrganizer() {
	c.Organizer.DestinationDirName = strings.TrimSpace(c.Organizer.DestinationDirName)
	if c.Organizer.DestinationDirName == "" {
		c.Organizer.DestinationDirName = defaultDestinationDirName
	}
	if c.Organizer.PausePollIntervalMS <= 0 {
		c.Organizer.PausePollIntervalMS = defaultPausePollIntervalMS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Logging.RunLog) != "" {
		if c.Logging.RunLog, err = expandPath(strings.TrimSpace(c.Logging.RunLog)); err != nil {
			return fmt.Errorf("logging.run_log: %w", err)
		}
	}
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = defaultJournalPath
	}
	if c.Journal.Path, err = expandPath(strings.TrimSpace(c.Journal.Path)); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	if strings.TrimSpace(c.Metrics.Textfile) != "" {
		if c.Metrics.Textfile, err = expandPath(strings.TrimSpace(c.Metrics.Textfile)); err != nil {
			return fmt.Errorf("metrics.textfile: %w", err)
		}
	}
	if c.Settings.LastDirectory != "" {
		if c.Settings.LastDirectory, err = expandPath(c.Settings.LastDirectory); err != nil {
			return fmt.Errorf("settings.last_directory: %w", err)
		}
	}
	return nil
}
