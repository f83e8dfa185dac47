package config

// Config is the top-level guildkeeper configuration, corresponding to guildkeeper.yml.
type Config struct {
	Discord   DiscordConfig   `yaml:"discord" koanf:"discord"`
	DataDir   string          `yaml:"data_dir" koanf:"data_dir"`
	Dashboard DashboardConfig `yaml:"dashboard" koanf:"dashboard"`
	FAQ       FAQConfig       `yaml:"faq" koanf:"faq"`
}

// DiscordConfig holds the gateway credentials and the OAuth2 application
// identity used by the dashboard login flow.
type DiscordConfig struct {
	Token         string `yaml:"token" koanf:"token"`
	ClientID      string `yaml:"client_id" koanf:"client_id"`
	ClientSecret  string `yaml:"client_secret" koanf:"client_secret"`
	RedirectURL   string `yaml:"redirect_url" koanf:"redirect_url"`
	CommandPrefix string `yaml:"command_prefix" koanf:"command_prefix"`
}

// DashboardConfig holds the web dashboard settings.
type DashboardConfig struct {
	Enabled        bool   `yaml:"enabled" koanf:"enabled"`
	Host           string `yaml:"host" koanf:"host"`
	Port           int    `yaml:"port" koanf:"port"`
	AllowAll       bool   `yaml:"allow_all" koanf:"allow_all"` // allow all CORS origins (dev mode)
	SessionTTLMins int    `yaml:"session_ttl_mins" koanf:"session_ttl_mins"`
}

// FAQConfig holds the semantic FAQ settings. The feature stays off unless an
// OpenAI API key is available.
type FAQConfig struct {
	Enabled        bool    `yaml:"enabled" koanf:"enabled"`
	EmbeddingModel string  `yaml:"embedding_model" koanf:"embedding_model"`
	Threshold      float32 `yaml:"threshold" koanf:"threshold"`
}
