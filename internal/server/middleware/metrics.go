package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/scryinline/scryinline/internal/observability"
)

// WebhookPath is the route Telegram posts updates to.
const WebhookPath = "/scryfall_search_inline"

// HTTP metric names.
const (
	HTTPRequestsTotal     = "http_requests_total"
	HTTPRequestDuration   = "http_request_duration_ms"
	HTTPRequestSizeBytes  = "http_request_size_bytes"
	HTTPResponseSizeBytes = "http_response_size_bytes"
	HTTPErrorsTotal       = "http_errors_total"
)

// responseWriter records the status code and body size written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// getEndpointPattern keeps metric labels low-cardinality: the chi route
// pattern when routed, otherwise a fixed bucket per known path.
func getEndpointPattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	switch path := r.URL.Path; path {
	case "/health", "/health/live", "/health/ready", "/health/startup":
		return "/health/*"
	case WebhookPath, "/version", "/metrics", "/":
		return path
	default:
		return "/unknown"
	}
}

// requestRecord is what RequestMetrics knows once the handler returns.
type requestRecord struct {
	method       string
	endpoint     string
	status       int
	duration     time.Duration
	requestSize  int64
	responseSize int64
	// outcome is the Telegram update outcome; only set for webhook requests.
	outcome string
}

// RequestMetrics emits HTTP metrics for every request and logs its
// completion together with the request-scoped fields. Webhook requests are
// additionally labelled with the update outcome (answered, empty, ignored...).
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		rec := requestRecord{
			method:       r.Method,
			endpoint:     getEndpointPattern(r),
			status:       wrapped.statusCode,
			duration:     time.Since(start),
			requestSize:  r.ContentLength,
			responseSize: wrapped.bytesWritten,
		}
		if rec.requestSize < 0 {
			rec.requestSize = 0
		}

		fields := observability.RequestFieldsFrom(r.Context())
		if rec.endpoint == WebhookPath {
			rec.outcome = fields.Get(observability.FieldUpdateOutcome)
		}

		emitRequestMetrics(rec)
		logRequest(r, rec, fields)
	})
}

func emitRequestMetrics(rec requestRecord) {
	sys := observability.TelemetrySystem
	if sys == nil {
		return
	}

	status := strconv.Itoa(rec.status)
	labels := map[string]string{
		"method":   rec.method,
		"endpoint": rec.endpoint,
		"status":   status,
	}
	if rec.outcome != "" {
		labels["outcome"] = rec.outcome
	}
	sizeLabels := map[string]string{
		"method":   rec.method,
		"endpoint": rec.endpoint,
	}

	_ = sys.Counter(HTTPRequestsTotal, 1, labels)
	_ = sys.Histogram(HTTPRequestDuration, rec.duration, labels)
	_ = sys.Gauge(HTTPRequestSizeBytes, float64(rec.requestSize), sizeLabels)
	_ = sys.Gauge(HTTPResponseSizeBytes, float64(rec.responseSize), sizeLabels)

	if rec.status >= http.StatusBadRequest {
		errorType := "client_error"
		if rec.status >= http.StatusInternalServerError {
			errorType = "server_error"
		}
		_ = sys.Counter(HTTPErrorsTotal, 1, map[string]string{
			"method":     rec.method,
			"endpoint":   rec.endpoint,
			"status":     status,
			"error_type": errorType,
		})
	}
}

func logRequest(r *http.Request, rec requestRecord, fields *observability.RequestFields) {
	logger := observability.ServerLogger
	if logger == nil {
		return
	}

	logFields := []zap.Field{
		zap.String("method", rec.method),
		zap.String("path", r.URL.Path),
		zap.String("endpoint", rec.endpoint),
		zap.Int("status", rec.status),
		zap.Duration("duration", rec.duration),
		zap.Int64("request_size", rec.requestSize),
		zap.Int64("response_size", rec.responseSize),
	}
	if fields != nil {
		logFields = append(logFields, fields.ZapFields()...)
	} else if id := GetRequestID(r.Context()); id != "" {
		logFields = append(logFields, zap.String(observability.FieldRequestID, id))
	}

	logger.Info("HTTP request completed", logFields...)
}
