package config

import "time"

// Provider names accepted in config.
const (
	ProviderCopilot    = "copilot"
	ProviderOpenRouter = "openrouter"
)

// Config holds chatscore configuration values.
type Config struct {
	// Provider selects how prompts reach a model: "copilot" shells out to the
	// local CLI, "openrouter" calls the hosted API.
	Provider string `mapstructure:"provider" yaml:"provider"`

	// LLMCommand is the external CLI binary used by the copilot provider.
	LLMCommand string `mapstructure:"llm_command" yaml:"llm_command"`

	// ScoreTimeout bounds a single scoring call; on expiry the fallback score is used.
	ScoreTimeout time.Duration `mapstructure:"score_timeout" yaml:"score_timeout"`

	OpenRouterAPIKey string `mapstructure:"openrouter_api_key" yaml:"openrouter_api_key"`
	OpenRouterModel  string `mapstructure:"openrouter_model" yaml:"openrouter_model"`

	// HistoryPath, when set, enables the sqlite run-history log.
	HistoryPath string `mapstructure:"history_path" yaml:"history_path"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Provider:        ProviderCopilot,
		LLMCommand:      "copilot",
		ScoreTimeout:    60 * time.Second,
		OpenRouterModel: "meta-llama/llama-3.2-3b-instruct:free",
		LogLevel:        "info",
	}
}
