// Package config loads, normalizes, and validates filesort configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// FILESORT_API_KEY or the provider specific ANTHROPIC_API_KEY, OPENAI_API_KEY
// and GROQ_API_KEY. The [settings] section doubles as the persisted state of
// the last run (api key, last directory, provider) and is rewritten by
// SaveSettings when a run starts.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
