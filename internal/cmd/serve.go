package cmd

import (
	"context"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/scryinline/scryinline/internal/config"
	errwrap "github.com/scryinline/scryinline/internal/errors"
	"github.com/scryinline/scryinline/internal/inline"
	"github.com/scryinline/scryinline/internal/metrics"
	"github.com/scryinline/scryinline/internal/observability"
	"github.com/scryinline/scryinline/internal/server"
	"github.com/scryinline/scryinline/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook HTTP server",
	Long: `Start the HTTP server that receives Telegram inline query updates on
POST ` + server.WebhookPath + `.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Reload log level from the config file

The server flushes traces and logs on shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		observability.InitServerLogger(appName, cfg.Logging.Level, cfg.Logging.Environment)
		logger := observability.ServerLogger

		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics(appName, cfg.Metrics.Port); err != nil {
				logger.Error("Failed to initialize metrics", zap.Error(err))
				return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
			}
			metrics.SetServerStartTime(time.Now().Unix())
		}

		tracing, err := observability.InitTracing(cmd.Context(), observability.TracingConfig{
			ServiceName: appName,
			Endpoint:    cfg.Telemetry.Endpoint,
			APIKey:      cfg.Telemetry.APIKey,
			Dataset:     cfg.Telemetry.Dataset,
			Environment: cfg.Logging.Environment,
		})
		if err != nil {
			logger.Error("Failed to initialize tracing", zap.Error(err))
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "tracing initialization failed")
		}

		logger.Info("Initializing server",
			zap.String("service", appName),
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("metrics", cfg.Metrics.Enabled),
			zap.Int("metrics_port", cfg.Metrics.Port),
			zap.Bool("tracing", cfg.TracingEnabled()),
			zap.Bool("answer_via_api", cfg.Telegram.AnswerViaAPI),
			zap.Bool("webhook_secret", cfg.Telegram.WebhookSecret != ""))

		inlineHandler, bot := inline.NewHandler(cfg, logger)
		handlers.SetServiceInfo(handlers.ServiceInfo{
			ScryfallAPI:  cfg.Scryfall.APIURL,
			AnswerViaAPI: inlineHandler.Answerer != nil,
			MaxResults:   inlineHandler.MaxResults,
		})

		health := handlers.NewHealthManager(versionInfo.Version)
		if cfg.Health.Enabled {
			if checker, ok := inlineHandler.Searcher.(handlers.HealthChecker); ok {
				health.RegisterChecker("scryfall", checker)
			}
			if bot != nil {
				health.RegisterChecker("telegram", bot)
			}
			// Metrics were requested; an instance without its exporter is broken.
			if cfg.Metrics.Enabled {
				health.RegisterCriticalChecker("telemetry", telemetryHealthChecker{})
			}
		}

		srv := server.New(cfg.Server, &handlers.WebhookHandler{
			Updates: inlineHandler,
			Secret:  cfg.Telegram.WebhookSecret,
		}, health)

		// Shutdown handlers run LIFO: server first, then traces, then logs.
		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Flushing logger...")
			if err := logger.Sync(); err != nil {
				// Sync errors are often benign (stdout/stderr already closed)
				logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
			}
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			if err := tracing.Shutdown(ctx); err != nil {
				logger.Warn("Trace exporter shutdown failed", zap.Error(err))
			}
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}

			logger.Info("HTTP server stopped gracefully")
			return nil
		})

		signals.OnReload(func(ctx context.Context) error {
			return reloadLogLevel(ctx)
		})

		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
		}

		errChan := make(chan error, 2)
		go func() {
			errChan <- srv.Start()
		}()

		go func() {
			if err := signals.Listen(cmd.Context()); err != nil {
				logger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		health.MarkStarted()

		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "server error")
		}

		return nil
	},
}

// reloadLogLevel re-reads the config file and applies a changed log level.
// Other settings need a restart.
func reloadLogLevel(ctx context.Context) error {
	logger := observability.ServerLogger
	logger.Info("Received SIGHUP: attempting config reload")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Info("No config file found - using defaults and environment variables")
			return nil
		}
		logger.Error("Failed to reload config file",
			zap.String("file", viper.ConfigFileUsed()),
			zap.Error(err))
		return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		logger.Error("Reloaded config is invalid, keeping current settings", zap.Error(err))
		return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
	}

	// The logger is shared with the inline handler and middleware; change its
	// level in place instead of swapping the pointer.
	observability.SetServerLogLevel(cfg.Logging.Level)

	logger.Info("Configuration reloaded",
		zap.String("file", viper.ConfigFileUsed()),
		zap.String("log_level", cfg.Logging.Level))
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
