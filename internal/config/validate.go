package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSettings(); err != nil {
		return err
	}
	if err := c.validateOrganizer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSettings() error {
	if ProviderIndex(c.Settings.Provider) < 0 {
		return fmt.Errorf("settings.provider: unsupported value %q (expected one of %s)", c.Settings.Provider, strings.Join(providerNames, ", "))
	}
	return nil
}

func (c *Config) validateOrganizer() error {
	name := c.Organizer.DestinationDirName
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("organizer.destination_dir_name must be a plain folder name, got %q", name)
	}
	if c.Organizer.RequestIntervalMS < 0 {
		return errors.New("organizer.request_interval_ms must be zero or positive")
	}
	if c.Organizer.PausePollIntervalMS <= 0 {
		return errors.New("organizer.pause_poll_interval_ms must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return errors.New("notifications.ntfy_topic must be a full http(s) URL")
	}
	return nil
}
