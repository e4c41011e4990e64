package server

import (
	"github.com/fulmenhq/gofulmen/signals"
	"go.uber.org/zap"

	"github.com/scryinline/scryinline/internal/observability"
	"github.com/scryinline/scryinline/internal/server/handlers"
	servermw "github.com/scryinline/scryinline/internal/server/middleware"
)

// WebhookPath is where Telegram delivers inline query updates.
const WebhookPath = servermw.WebhookPath

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	s.router.Method("POST", WebhookPath, s.webhook)

	s.router.Get("/health", s.health.HealthHandler)
	s.router.Get("/health/live", s.health.LivenessHandler)
	s.router.Get("/health/ready", s.health.ReadinessHandler)
	s.router.Get("/health/startup", s.health.StartupHandler)

	s.router.Get("/version", handlers.VersionHandler)

	// Proxied from the exporter port so one listener serves everything.
	s.router.Get("/metrics", MetricsHandler)

	s.registerAdminEndpoint()
}

// registerAdminEndpoint registers the signal endpoint when an admin token is configured.
func (s *Server) registerAdminEndpoint() {
	logger := observability.ServerLogger

	if s.cfg.AdminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no server.admin_token set)")
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: s.cfg.AdminToken,
		RateLimit: 10, // per minute
		RateBurst: 5,
		Manager:   nil, // use default global manager
	})

	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("auth", "bearer token"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
