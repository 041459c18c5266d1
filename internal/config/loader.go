package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envConfigDefaultPath = "CHATSCORE_CONFIG_DEFAULT_PATH"
	defaultConfigName    = "chatscore.yaml"
)

// Load builds configuration from defaults, optional config file, and env vars,
// and returns the resolved config path. Precedence: defaults < file < env.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("provider", cfg.Provider)
	v.SetDefault("llm_command", cfg.LLMCommand)
	v.SetDefault("score_timeout", cfg.ScoreTimeout)
	v.SetDefault("openrouter_api_key", cfg.OpenRouterAPIKey)
	v.SetDefault("openrouter_model", cfg.OpenRouterModel)
	v.SetDefault("history_path", cfg.HistoryPath)
	v.SetDefault("log_level", cfg.LogLevel)

	v.SetEnvPrefix("CHATSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := resolveConfigPath(explicitPath)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			// Only write a starter config when the user asked for a specific path.
			if explicitPath != "" {
				if writeErr := writeDefaultConfig(configPath, cfg); writeErr != nil && logger != nil {
					logger.Warn().Err(writeErr).Str("path", configPath).Msg("failed to write default config")
				} else if logger != nil {
					logger.Info().Str("path", configPath).Msg("created default config")
				}
			}
		} else {
			return cfg, configPath, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, configPath, validate(cfg)
}

func validate(cfg Config) error {
	switch cfg.Provider {
	case ProviderCopilot, ProviderOpenRouter:
	default:
		return fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if cfg.ScoreTimeout <= 0 {
		return errors.New("score_timeout must be positive")
	}
	return nil
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		return filepath.Join(base, defaultConfigName)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
