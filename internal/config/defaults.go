package config

const (
	defaultConfigPath           = "~/.file_organizer.toml"
	defaultProjectConfigName    = "filesort.toml"
	defaultProvider             = "claude"
	defaultDestinationDirName   = "organized"
	defaultRequestIntervalMS    = 5000
	defaultPausePollIntervalMS  = 100
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultRunLog               = "file_organizer.log"
	defaultJournalPath          = "~/.local/share/filesort/journal.db"
	defaultNotifyRequestTimeout = 10
	defaultProviderTimeout      = 30

	defaultClaudeModel     = "claude-3-sonnet-20240229"
	defaultClaudeBaseURL   = "https://api.anthropic.com/v1/messages"
	defaultClaudeMaxTokens = 1024
	defaultOpenAIModel     = "gpt-4o"
	defaultGroqModel       = "llama-3.2-3b-preview"
	defaultGroqBaseURL     = "https://api.groq.com/openai/v1"
)

// providerNames lists supported providers in legacy index order.
var providerNames = []string{"claude", "openai", "groq"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Providers: Providers{
			Claude: Provider{
				Model:          defaultClaudeModel,
				BaseURL:        defaultClaudeBaseURL,
				MaxTokens:      defaultClaudeMaxTokens,
				TimeoutSeconds: defaultProviderTimeout,
			},
			OpenAI: Provider{
				Model:          defaultOpenAIModel,
				TimeoutSeconds: defaultProviderTimeout,
			},
			Groq: Provider{
				Model:          defaultGroqModel,
				BaseURL:        defaultGroqBaseURL,
				TimeoutSeconds: defaultProviderTimeout,
			},
		},
		Organizer: Organizer{
			DestinationDirName:  defaultDestinationDirName,
			RequestIntervalMS:   defaultRequestIntervalMS,
			PausePollIntervalMS: defaultPausePollIntervalMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			RunLog: defaultRunLog,
		},
		Journal: Journal{
			Enabled: true,
			Path:    defaultJournalPath,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
	}
}
