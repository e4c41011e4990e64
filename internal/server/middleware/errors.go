package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/fulmenhq/gofulmen/errors"
	"go.uber.org/zap"

	"github.com/scryinline/scryinline/internal/metrics"
	"github.com/scryinline/scryinline/internal/observability"
)

// Recovery turns a handler panic into a 500 INTERNAL_ERROR envelope. The
// stack goes to the log only, never to the client.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				writeErrorResponse(w, recoverPanic(r, v), http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func recoverPanic(r *http.Request, v any) *errors.ErrorEnvelope {
	envelope := errors.NewErrorEnvelope("INTERNAL_ERROR", "internal server error").
		WithCorrelationID(GetRequestID(r.Context()))
	envelope, _ = envelope.WithSeverity(errors.SeverityCritical)

	metrics.RecordPanic("http")

	if logger := observability.ServerLogger; logger != nil {
		fields := []zap.Field{
			zap.String("path", r.URL.Path),
			zap.String("panic", fmt.Sprint(v)),
			zap.String("stack_trace", string(debug.Stack())),
		}
		if rf := observability.RequestFieldsFrom(r.Context()); rf != nil {
			fields = append(fields, rf.ZapFields()...)
		} else {
			fields = append(fields, zap.String(observability.FieldRequestID, envelope.CorrelationID))
		}
		logger.Error("Recovered from handler panic", fields...)
	}

	return envelope
}

// errorBody mirrors the envelope shape written by the errors package, which
// this package cannot import.
type errorBody struct {
	Error struct {
		Code      string         `json:"code"`
		Message   string         `json:"message"`
		RequestID string         `json:"request_id,omitempty"`
		Details   map[string]any `json:"details,omitempty"`
	} `json:"error"`
}

func writeErrorResponse(w http.ResponseWriter, envelope *errors.ErrorEnvelope, statusCode int) {
	var body errorBody
	body.Error.Code = envelope.Code
	body.Error.Message = envelope.Message
	body.Error.RequestID = envelope.CorrelationID
	body.Error.Details = envelope.Context

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
