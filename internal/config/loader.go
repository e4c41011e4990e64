// Package config loads the service configuration from defaults, an optional
// YAML file and the environment, through viper.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	apperrors "github.com/scryinline/scryinline/internal/errors"
)

// EnvPrefix prefixes every automatically bound environment variable.
const EnvPrefix = "SCRYINLINE"

const maxInlineResults = 50

// legacyEnv maps config keys to the unprefixed variable names deployments
// already use. The prefixed form is always accepted too.
var legacyEnv = map[string]string{
	"telegram.token":          "TELEGRAM_TOKEN",
	"telegram.api_url":        "TELEGRAM_API_URL",
	"telegram.webhook_secret": "TELEGRAM_WEBHOOK_SECRET",
	"scryfall.api_url":        "SCRYFALL_API_URL",
	"scryfall.timeout":        "SCRYFALL_TIMEOUT",
	"inline.max_results":      "RESULTS_AT_ONCE",
	"telemetry.api_key":       "HONEYCOMB_API_KEY",
	"telemetry.dataset":       "HONEYCOMB_DATASET",
	"telemetry.endpoint":      "TELEMETRY_ENDPOINT",
	"logging.level":           "LOGGING_LEVEL",
}

// SetDefaults registers default values for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.admin_token", "")

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.api_url", "https://api.telegram.org")
	v.SetDefault("telegram.webhook_secret", "")
	v.SetDefault("telegram.answer_via_api", true)
	v.SetDefault("telegram.cache_time", 3600)

	v.SetDefault("scryfall.api_url", "https://api.scryfall.com")
	v.SetDefault("scryfall.order", "edhrec")
	v.SetDefault("scryfall.timeout", "5s")
	v.SetDefault("scryfall.user_agent", "scryinline/dev")

	v.SetDefault("inline.max_results", maxInlineResults)

	v.SetDefault("telemetry.api_key", "")
	v.SetDefault("telemetry.dataset", "scryinline")
	v.SetDefault("telemetry.endpoint", "https://api.honeycomb.io")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.environment", "production")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("health.enabled", true)
}

// BindEnv wires SCRYINLINE_<SECTION>_<KEY> for every key plus the legacy
// unprefixed names.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// New returns a viper instance with defaults and environment bindings.
func New() (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	if err := BindEnv(v); err != nil {
		return nil, err
	}
	return v, nil
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, apperrors.WrapConfigInvalid(context.Background(), err, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate normalizes values and rejects the ones the service cannot run with.
// Rejections are CONFIG_INVALID envelopes.
func (c *Config) Validate() error {
	c.Telegram.Token = strings.TrimSpace(c.Telegram.Token)
	c.Telemetry.APIKey = strings.TrimSpace(c.Telemetry.APIKey)

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return invalid("server.port %d out of range", c.Server.Port)
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 0 || c.Metrics.Port > 65535) {
		return invalid("metrics.port %d out of range", c.Metrics.Port)
	}
	if c.Scryfall.Timeout <= 0 {
		return invalid("scryfall.timeout must be positive, got %s", c.Scryfall.Timeout)
	}
	if c.Scryfall.Timeout > time.Minute {
		return invalid("scryfall.timeout %s exceeds the inline answer window", c.Scryfall.Timeout)
	}
	if c.Inline.MaxResults < 1 {
		return invalid("inline.max_results must be at least 1, got %d", c.Inline.MaxResults)
	}
	if c.Inline.MaxResults > maxInlineResults {
		c.Inline.MaxResults = maxInlineResults
	}
	if c.Telegram.CacheTime < 0 {
		return invalid("telegram.cache_time must not be negative, got %d", c.Telegram.CacheTime)
	}
	if c.Telegram.Token == "" {
		c.Telegram.AnswerViaAPI = false
	}

	return nil
}

func invalid(format string, args ...any) error {
	return apperrors.NewConfigInvalidError(fmt.Sprintf(format, args...))
}

// TracingEnabled reports whether traces go to the external collector.
func (c *Config) TracingEnabled() bool {
	return c.Telemetry.APIKey != ""
}
