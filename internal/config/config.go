package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (GUILDKEEPER_*). Nested keys use
// underscores doubled: GUILDKEEPER_DISCORD__TOKEN -> discord.token.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables.
	if err := k.Load(env.Provider("GUILDKEEPER_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "GUILDKEEPER_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord.token is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Dashboard.Enabled {
		if c.Dashboard.Port <= 0 || c.Dashboard.Port > 65535 {
			return fmt.Errorf("dashboard.port must be between 1 and 65535, got %d", c.Dashboard.Port)
		}
		if c.Dashboard.SessionTTLMins <= 0 {
			return fmt.Errorf("dashboard.session_ttl_mins must be positive")
		}
	}
	if c.FAQ.Enabled {
		if c.FAQ.Threshold < 0 || c.FAQ.Threshold > 1 {
			return fmt.Errorf("faq.threshold must be between 0 and 1, got %v", c.FAQ.Threshold)
		}
		if c.FAQ.EmbeddingModel == "" {
			return fmt.Errorf("faq.embedding_model is required when faq is enabled")
		}
	}
	return nil
}

// OpenAIKey returns the OpenAI API key used for FAQ embeddings.
func OpenAIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}
