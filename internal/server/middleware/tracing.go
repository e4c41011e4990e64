package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/scryinline/scryinline/internal/observability"
)

const tracerName = "github.com/scryinline/scryinline/internal/server"

// updateSpanAttributes maps request fields onto span attribute names.
var updateSpanAttributes = map[string]string{
	observability.FieldUpdateID:      "telegram.update_id",
	observability.FieldInlineQueryID: "telegram.inline_query_id",
	observability.FieldUpdateOutcome: "telegram.update_outcome",
}

// Tracing starts a server span per request using the global tracer
// provider. Incoming W3C trace context is honoured.
func Tracing(next http.Handler) http.Handler {
	return TracingWith(otel.GetTracerProvider(), otel.GetTextMapPropagator())(next)
}

// TracingWith is Tracing with an explicit provider and propagator.
func TracingWith(provider trace.TracerProvider, propagator propagation.TextMapPropagator) func(http.Handler) http.Handler {
	tracer := provider.Tracer(tracerName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(ctx, r.Method+" "+getEndpointPattern(r),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("url.path", r.URL.Path),
				))
			defer span.End()

			if requestID := GetRequestID(ctx); requestID != "" {
				span.SetAttributes(attribute.String("http.request_id", requestID))
			}

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.response.status_code", wrapped.statusCode))
			if fields := observability.RequestFieldsFrom(ctx); fields != nil {
				for key, attr := range updateSpanAttributes {
					if value := fields.Get(key); value != "" {
						span.SetAttributes(attribute.String(attr, value))
					}
				}
			}
			if wrapped.statusCode >= 500 {
				span.SetStatus(codes.Error, http.StatusText(wrapped.statusCode))
			}
		})
	}
}
