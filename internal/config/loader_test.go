package config

import (
	"strings"
	"testing"
	"time"

	gferrors "github.com/fulmenhq/gofulmen/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/scryinline/scryinline/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "https://api.scryfall.com", cfg.Scryfall.APIURL)
	assert.Equal(t, "edhrec", cfg.Scryfall.Order)
	assert.Equal(t, 5*time.Second, cfg.Scryfall.Timeout)

	assert.Equal(t, 50, cfg.Inline.MaxResults)
	assert.Equal(t, 3600, cfg.Telegram.CacheTime)

	// No token: nothing to answer through.
	assert.Empty(t, cfg.Telegram.Token)
	assert.False(t, cfg.Telegram.AnswerViaAPI)
	assert.False(t, cfg.TracingEnabled())
}

func TestLoadLegacyEnvironment(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", " 123:abc ")
	t.Setenv("HONEYCOMB_API_KEY", "hc-key")
	t.Setenv("HONEYCOMB_DATASET", "inline-bot")
	t.Setenv("RESULTS_AT_ONCE", "24")
	t.Setenv("SCRYFALL_TIMEOUT", "3s")

	v, err := New()
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.True(t, cfg.Telegram.AnswerViaAPI)
	assert.Equal(t, "hc-key", cfg.Telemetry.APIKey)
	assert.Equal(t, "inline-bot", cfg.Telemetry.Dataset)
	assert.True(t, cfg.TracingEnabled())
	assert.Equal(t, 24, cfg.Inline.MaxResults)
	assert.Equal(t, 3*time.Second, cfg.Scryfall.Timeout)
}

func TestLoadPrefixedEnvironment(t *testing.T) {
	t.Setenv("SCRYINLINE_SERVER_PORT", "9000")
	t.Setenv("SCRYINLINE_TELEGRAM_TOKEN", "prefixed")
	t.Setenv("SCRYINLINE_TELEGRAM_ANSWER_VIA_API", "false")

	v, err := New()
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "prefixed", cfg.Telegram.Token)
	assert.False(t, cfg.Telegram.AnswerViaAPI)
}

func TestLoadClampsMaxResults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("inline.max_results", 500)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Inline.MaxResults)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"zero max results", "inline.max_results", 0},
		{"negative timeout", "scryfall.timeout", "-1s"},
		{"huge timeout", "scryfall.timeout", "5m"},
		{"bad port", "server.port", 70000},
		{"negative cache time", "telegram.cache_time", -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			require.Error(t, err)

			envelope, ok := err.(*gferrors.ErrorEnvelope)
			require.True(t, ok, "validation errors are envelopes")
			assert.Equal(t, apperrors.CodeConfigInvalid, envelope.Code)
			assert.Contains(t, envelope.Message, strings.SplitN(tt.key, ".", 2)[1])
		})
	}
}
