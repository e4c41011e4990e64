package config

import "time"

// Config is the complete application configuration. It is loaded once at
// process start and passed explicitly to the components that need it.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Scryfall  ScryfallConfig  `mapstructure:"scryfall"`
	Inline    InlineConfig    `mapstructure:"inline"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Health    HealthConfig    `mapstructure:"health"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// AdminToken enables POST /admin/signal when set.
	AdminToken string `mapstructure:"admin_token"`
}

// TelegramConfig holds Bot API credentials and answer settings.
type TelegramConfig struct {
	Token         string `mapstructure:"token"`
	APIURL        string `mapstructure:"api_url"`
	WebhookSecret string `mapstructure:"webhook_secret"`

	// AnswerViaAPI posts every answer through answerInlineQuery in addition
	// to returning it in the webhook response. Requires Token.
	AnswerViaAPI bool `mapstructure:"answer_via_api"`

	// CacheTime is the answerInlineQuery cache_time in seconds.
	CacheTime int `mapstructure:"cache_time"`
}

// ScryfallConfig configures the upstream search client.
type ScryfallConfig struct {
	APIURL    string        `mapstructure:"api_url"`
	Order     string        `mapstructure:"order"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// InlineConfig shapes inline answers.
type InlineConfig struct {
	MaxResults int `mapstructure:"max_results"`
}

// TelemetryConfig points at the external trace collector. Empty APIKey
// disables export.
type TelemetryConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Dataset  string `mapstructure:"dataset"`
	Endpoint string `mapstructure:"endpoint"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level       string `mapstructure:"level"`
	Environment string `mapstructure:"environment"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
