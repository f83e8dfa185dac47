package config

// DefaultConfig returns a Config with sensible defaults. The Discord token
// has no default and must come from the config file or environment.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "data",
		Discord: DiscordConfig{
			CommandPrefix: "!",
		},
		Dashboard: DashboardConfig{
			Enabled:        true,
			Host:           "0.0.0.0",
			Port:           8080,
			SessionTTLMins: 720,
		},
		FAQ: FAQConfig{
			Enabled:        false,
			EmbeddingModel: "text-embedding-3-small",
			Threshold:      0.82,
		},
	}
}
