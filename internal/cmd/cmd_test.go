package cmd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	gferrors "github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/logging"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scryinline/scryinline/internal/config"
	"github.com/scryinline/scryinline/internal/inline"
	"github.com/scryinline/scryinline/internal/observability"
	"github.com/scryinline/scryinline/internal/server/handlers"
)

func TestRenderEnvInfoRedactsSecrets(t *testing.T) {
	v, err := config.New()
	require.NoError(t, err)
	v.Set("telegram.token", "123456:ABC-secret")
	v.Set("telegram.webhook_secret", "hook-secret")
	v.Set("telemetry.api_key", "hc-key")

	cfg, err := config.Load(v)
	require.NoError(t, err)

	rendered := renderEnvInfo(cfg, "")
	assert.NotContains(t, rendered, "ABC-secret")
	assert.NotContains(t, rendered, "hook-secret")
	assert.NotContains(t, rendered, "hc-key")
	assert.Contains(t, rendered, "api.scryfall.com")
	assert.Contains(t, rendered, "(none)")
}

func TestRunHealthProbes(t *testing.T) {
	probes := []healthProbe{
		{name: "scryfall", checker: handlers.HealthCheckerFunc(func(ctx context.Context) error { return nil })},
		{name: "telegram", checker: handlers.HealthCheckerFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})},
	}

	outcomes := runHealthProbes(context.Background(), probes, 20*time.Millisecond)
	require.Len(t, outcomes, 2)
	assert.NoError(t, outcomes[0].err)
	assert.True(t, errors.Is(outcomes[1].err, context.DeadlineExceeded))

	rendered := renderHealth(outcomes)
	assert.Contains(t, rendered, "FAIL")
	assert.Contains(t, rendered, "scryfall")
}

func TestSearchCommandRejectsUnknownFormat(t *testing.T) {
	searchFormat = "csv"
	t.Cleanup(func() { searchFormat = "table" })

	err := searchCmd.RunE(searchCmd, []string{"bolt"})
	require.Error(t, err)
	envelope, ok := err.(*gferrors.ErrorEnvelope)
	require.True(t, ok)
	assert.Equal(t, "INVALID_INPUT", envelope.Code)
	assert.Contains(t, envelope.Message, "unsupported output format")
}

func TestReloadLogLevelReachesInlineHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600))

	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults(viper.GetViper())
	viper.SetConfigFile(path)

	logger, err := observability.NewServerLogger(appName, "info", "production")
	require.NoError(t, err)
	original := observability.ServerLogger
	observability.ServerLogger = logger
	t.Cleanup(func() { observability.ServerLogger = original })

	cfg, err := config.Load(viper.GetViper())
	require.NoError(t, err)
	handler, _ := inline.NewHandler(cfg, logger)
	require.Equal(t, logging.INFO, handler.Logger.GetLevel())

	require.NoError(t, reloadLogLevel(context.Background()))

	assert.Equal(t, logging.DEBUG, handler.Logger.GetLevel())
	assert.Same(t, logger, observability.ServerLogger)
}

func TestTelemetryCheckerFailsReadiness(t *testing.T) {
	originalSystem, originalExporter := observability.TelemetrySystem, observability.PrometheusExporter
	observability.TelemetrySystem, observability.PrometheusExporter = nil, nil
	t.Cleanup(func() {
		observability.TelemetrySystem, observability.PrometheusExporter = originalSystem, originalExporter
	})

	require.Error(t, telemetryHealthChecker{}.CheckHealth(context.Background()))

	health := handlers.NewHealthManager("test")
	health.RegisterCriticalChecker("telemetry", telemetryHealthChecker{})

	rec := httptest.NewRecorder()
	health.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
