package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubChecker struct {
	err   error
	calls int
}

func (s *stubChecker) CheckHealth(ctx context.Context) error {
	s.calls++
	return s.err
}

func TestHealthHandlerReturnsHealthyStatus(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("scryfall", &stubChecker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	manager.HealthHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != StatusHealthy {
		t.Fatalf("expected healthy status, got %s", resp.Status)
	}

	if resp.Version != "1.2.3" {
		t.Fatalf("expected version 1.2.3, got %s", resp.Version)
	}

	if resp.Checks["scryfall"] != StatusHealthy {
		t.Fatalf("expected scryfall check to be healthy, got %s", resp.Checks["scryfall"])
	}
}

func TestHealthHandlerDegradesOnUpstreamFailure(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("telegram", &stubChecker{err: errors.New("unreachable")})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	manager.HealthHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != StatusDegraded {
		t.Fatalf("expected degraded status, got %s", resp.Status)
	}
}

func TestHealthHandlerReturnsServiceUnavailableWhenUnhealthy(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterCriticalChecker("config", &stubChecker{err: errors.New("down")})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	manager.HealthHandler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}

	var resp struct {
		Error struct {
			Code    string                 `json:"code"`
			Message string                 `json:"message"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Error.Code != "SERVICE_UNAVAILABLE" {
		t.Fatalf("expected SERVICE_UNAVAILABLE error code, got %s", resp.Error.Code)
	}

	checks, ok := resp.Error.Details["checks"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected checks in error details")
	}

	if status, ok := checks["config"].(string); !ok || status != StatusUnhealthy {
		t.Fatalf("expected config check to be unhealthy, got %v", checks["config"])
	}
}

func TestLivenessIgnoresCheckers(t *testing.T) {
	checker := &stubChecker{err: errors.New("down")}
	manager := NewHealthManager("dev")
	manager.RegisterCriticalChecker("scryfall", checker)

	rec := httptest.NewRecorder()
	manager.LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if checker.calls != 0 {
		t.Fatalf("liveness should not run checks, got %d calls", checker.calls)
	}
}

func TestReadinessFailsOnCriticalChecker(t *testing.T) {
	manager := NewHealthManager("dev")
	manager.RegisterCriticalChecker("config", &stubChecker{err: errors.New("invalid")})

	rec := httptest.NewRecorder()
	manager.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestStartupWaitsForMarkStarted(t *testing.T) {
	manager := NewHealthManager("dev")

	rec := httptest.NewRecorder()
	manager.StartupHandler(rec, httptest.NewRequest(http.MethodGet, "/health/startup", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 before start, got %d", rec.Code)
	}

	manager.MarkStarted()

	rec = httptest.NewRecorder()
	manager.StartupHandler(rec, httptest.NewRequest(http.MethodGet, "/health/startup", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 after start, got %d", rec.Code)
	}
}

func TestRunHealthChecksMarksTimeouts(t *testing.T) {
	manager := NewHealthManager("dev")
	manager.RegisterChecker("scryfall", &stubChecker{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checks := manager.runHealthChecks(ctx)
	if checks["scryfall"] != StatusTimeout {
		t.Fatalf("expected timeout, got %s", checks["scryfall"])
	}
}

func TestDetermineOverallStatusTreatsTimeoutAsDegraded(t *testing.T) {
	manager := NewHealthManager("dev")

	status := manager.determineOverallStatus(map[string]string{
		"scryfall": StatusTimeout,
	})

	if status != StatusDegraded {
		t.Fatalf("expected degraded status, got %s", status)
	}
}
