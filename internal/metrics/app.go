package metrics

import (
	"time"

	"github.com/scryinline/scryinline/internal/observability"
)

// Application-level metrics following Prometheus conventions
const (
	InlineQueriesTotal   = "inline_queries_total"
	InlineResultsCount   = "inline_results_count"
	SearchRequestsTotal  = "scryfall_search_requests_total"
	SearchDuration       = "scryfall_search_duration_ms"
	AnswerDeliveryTotal  = "telegram_answer_delivery_total"
	OperationErrorsTotal = "app_operations_errors_total"
	ServerStartTime      = "app_server_start_time_seconds"
)

// Inline query outcomes.
const (
	OutcomeEmpty     = "empty"
	OutcomeAnswered  = "answered"
	OutcomeNoMatches = "no_matches"
	OutcomeFailed    = "failed"
	OutcomeMalformed = "malformed"
	OutcomeIgnored   = "ignored"
	OutcomePanic     = "panic"
)

// RecordInlineQuery counts a handled update by outcome.
func RecordInlineQuery(outcome string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(
		InlineQueriesTotal,
		1,
		map[string]string{"outcome": outcome},
	)
}

// RecordResults records how many results an answer carried.
func RecordResults(count int) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Gauge(InlineResultsCount, float64(count), nil)
}

// RecordSearch records one upstream search call.
func RecordSearch(outcome string, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	labels := map[string]string{"outcome": outcome}
	_ = observability.TelemetrySystem.Counter(SearchRequestsTotal, 1, labels)
	_ = observability.TelemetrySystem.Histogram(SearchDuration, duration, labels)
}

// RecordAnswerDelivery records an answerInlineQuery call.
func RecordAnswerDelivery(success bool) {
	if observability.TelemetrySystem == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	_ = observability.TelemetrySystem.Counter(
		AnswerDeliveryTotal,
		1,
		map[string]string{"status": status},
	)
}

// RecordOperationError records an application operation error
func RecordOperationError(operation string, errorType string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(
		OperationErrorsTotal,
		1,
		map[string]string{
			"operation":  operation,
			"error_type": errorType,
		},
	)
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Gauge(ServerStartTime, float64(timestamp), nil)
}
