package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/fulmenhq/gofulmen/foundry"
	"go.uber.org/zap"

	"github.com/scryinline/scryinline/internal/config"
	"github.com/scryinline/scryinline/internal/inline"
	"github.com/scryinline/scryinline/internal/lambdafn"
	"github.com/scryinline/scryinline/internal/observability"
)

const serviceName = "scryinline"

var version = "dev"

func main() {
	v, err := config.New()
	if err != nil {
		observability.ExitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to bind environment", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		observability.ExitWithCodeStderr(foundry.ExitConfigInvalid, "Invalid configuration", err)
	}

	logger, err := observability.NewServerLogger(serviceName, cfg.Logging.Level, cfg.Logging.Environment)
	if err != nil {
		observability.ExitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to initialize logger", err)
	}
	observability.ServerLogger = logger

	tracing, err := observability.InitTracing(context.Background(), observability.TracingConfig{
		ServiceName: serviceName,
		Endpoint:    cfg.Telemetry.Endpoint,
		APIKey:      cfg.Telemetry.APIKey,
		Dataset:     cfg.Telemetry.Dataset,
		Environment: cfg.Logging.Environment,
	})
	if err != nil {
		logger.Error("Failed to initialize tracing", zap.Error(err))
		observability.ExitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to initialize tracing", err)
	}

	inlineHandler, _ := inline.NewHandler(cfg, logger)

	logger.Info("Lambda handler ready",
		zap.String("version", version),
		zap.Bool("tracing", cfg.TracingEnabled()),
		zap.Bool("answer_via_api", cfg.Telegram.AnswerViaAPI),
		zap.Int("max_results", cfg.Inline.MaxResults))

	handler := &lambdafn.Handler{
		Updates: inlineHandler,
		Secret:  cfg.Telegram.WebhookSecret,
		Flusher: tracing,
		Logger:  logger,
	}

	lambda.Start(handler.Handle)
}
