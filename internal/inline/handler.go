// Package inline answers Telegram inline queries with Scryfall search results.
package inline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/scryinline/scryinline/internal/metrics"
	"github.com/scryinline/scryinline/internal/observability"
	"github.com/scryinline/scryinline/internal/scryfall"
	"github.com/scryinline/scryinline/internal/telegram"
)

const (
	// DefaultCacheTime lets Telegram reuse an answer for the same query for an hour.
	DefaultCacheTime = 3600
	// emptyQueryCacheTime keeps Telegram from caching the empty answer.
	emptyQueryCacheTime = 1

	tracerName = "github.com/scryinline/scryinline/internal/inline"
)

// Searcher runs an upstream card search.
type Searcher interface {
	Search(ctx context.Context, query string) (*scryfall.List, error)
}

// Answerer delivers an answer back to Telegram.
type Answerer interface {
	AnswerInlineQuery(ctx context.Context, req telegram.AnswerInlineQueryRequest) error
}

// Handler is stateless; one value is shared by all requests.
type Handler struct {
	Searcher Searcher
	// Answerer is optional. When set, every inline query is also answered
	// through answerInlineQuery.
	Answerer   Answerer
	Logger     *logging.Logger
	Tracer     trace.Tracer
	MaxResults int
	CacheTime  int
}

// Answer searches for the query text and returns the mapped results. It
// never fails: upstream problems produce an empty list.
func (h *Handler) Answer(ctx context.Context, query telegram.InlineQuery) (results []telegram.InlineQueryResult) {
	defer h.recoverEmpty(ctx, "answer", &results)

	results = []telegram.InlineQueryResult{}
	if ctx == nil {
		ctx = context.Background()
	}

	if strings.TrimSpace(query.Query) == "" {
		h.outcome(ctx, metrics.OutcomeEmpty)
		h.debug("Empty inline query, skipping search", zap.String("query_id", query.ID))
		return results
	}

	ctx, span := h.tracer().Start(ctx, "inline.answer", trace.WithAttributes(
		attribute.String("inline.query_id", query.ID),
		attribute.String("inline.query", query.Query),
		attribute.Int64("inline.user_id", query.From.ID),
	))
	defer span.End()

	h.info("Received inline query",
		zap.String("query_id", query.ID),
		zap.String("query", query.Query),
		zap.Int64("user_id", query.From.ID),
		zap.String("username", query.From.Username),
		zap.String("offset", query.Offset))

	started := time.Now()
	list, err := h.search(ctx, query.Query)
	elapsed := time.Since(started)

	switch {
	case err != nil && scryfall.IsNotFound(err):
		metrics.RecordSearch(metrics.OutcomeNoMatches, elapsed)
		h.outcome(ctx, metrics.OutcomeNoMatches)
		span.SetAttributes(attribute.Int("inline.results", 0))
		h.debug("No cards matched", zap.String("query_id", query.ID))
		return results
	case err != nil:
		metrics.RecordSearch(metrics.OutcomeFailed, elapsed)
		h.outcome(ctx, metrics.OutcomeFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "scryfall search failed")
		h.warn("Scryfall search failed, answering with no results",
			zap.String("query_id", query.ID),
			zap.String("query", query.Query),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return results
	case list == nil:
		metrics.RecordSearch(metrics.OutcomeNoMatches, elapsed)
		h.outcome(ctx, metrics.OutcomeNoMatches)
		return results
	}

	results = ResultsFromCards(list.Data, h.maxResults())

	metrics.RecordSearch(metrics.OutcomeAnswered, elapsed)
	h.outcome(ctx, metrics.OutcomeAnswered)
	metrics.RecordResults(len(results))
	span.SetAttributes(
		attribute.Int("inline.results", len(results)),
		attribute.Int("scryfall.total_cards", list.TotalCards),
	)
	h.info("Answering inline query",
		zap.String("query_id", query.ID),
		zap.Int("results", len(results)),
		zap.Int("total_cards", list.TotalCards),
		zap.Duration("duration", elapsed))

	return results
}

// HandleUpdate decodes a webhook body and answers it. Bodies that are not
// inline queries, including malformed JSON, produce an empty list.
func (h *Handler) HandleUpdate(ctx context.Context, body []byte) (results []telegram.InlineQueryResult) {
	defer h.recoverEmpty(ctx, "update", &results)

	var update telegram.Update
	if err := json.Unmarshal(body, &update); err != nil {
		h.outcome(ctx, metrics.OutcomeMalformed)
		h.warn("Malformed update body, treating as empty query", zap.Error(err))
		return []telegram.InlineQueryResult{}
	}

	observability.SetRequestField(ctx, observability.FieldUpdateID, strconv.FormatInt(update.UpdateID, 10))

	if update.InlineQuery == nil {
		h.outcome(ctx, metrics.OutcomeIgnored)
		h.debug("Ignoring update without inline query",
			zap.Int64("update_id", update.UpdateID),
			zap.Bool("has_message", len(update.Message) > 0))
		return []telegram.InlineQueryResult{}
	}

	observability.SetRequestField(ctx, observability.FieldInlineQueryID, update.InlineQuery.ID)
	results = h.Answer(ctx, *update.InlineQuery)
	h.deliver(ctx, *update.InlineQuery, results)
	return results
}

// recoverEmpty turns a panic anywhere in the answer path into an empty
// result list.
func (h *Handler) recoverEmpty(ctx context.Context, stage string, results *[]telegram.InlineQueryResult) {
	r := recover()
	if r == nil {
		return
	}
	metrics.RecordPanic("inline")
	observability.SetRequestField(ctx, observability.FieldUpdateOutcome, metrics.OutcomePanic)
	metrics.RecordOperationError("inline_"+stage, "panic")
	if h.Logger != nil {
		h.Logger.Error("Recovered panic while answering inline query",
			zap.String("stage", stage),
			zap.Any("panic", r),
			zap.Stack("stack"))
	}
	*results = []telegram.InlineQueryResult{}
}

func (h *Handler) deliver(ctx context.Context, query telegram.InlineQuery, results []telegram.InlineQueryResult) {
	if h.Answerer == nil || query.ID == "" {
		return
	}

	cacheTime := h.cacheTime()
	if strings.TrimSpace(query.Query) == "" {
		cacheTime = emptyQueryCacheTime
	}

	err := h.Answerer.AnswerInlineQuery(ctx, telegram.AnswerInlineQueryRequest{
		InlineQueryID: query.ID,
		Results:       results,
		CacheTime:     cacheTime,
	})
	metrics.RecordAnswerDelivery(err == nil)
	if err != nil {
		metrics.RecordOperationError("answer_inline_query", "delivery_failed")
		h.warn("Failed to deliver inline answer",
			zap.String("query_id", query.ID),
			zap.Error(err))
	}
}

// search isolates the handler from panics in the search path.
func (h *Handler) search(ctx context.Context, query string) (list *scryfall.List, err error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordPanic("inline")
			err = fmt.Errorf("search panicked: %v", r)
		}
	}()

	if h.Searcher == nil {
		return nil, errors.New("searcher is not configured")
	}
	return h.Searcher.Search(ctx, query)
}

// outcome counts the query and tags the surrounding request with it.
func (h *Handler) outcome(ctx context.Context, outcome string) {
	metrics.RecordInlineQuery(outcome)
	observability.SetRequestField(ctx, observability.FieldUpdateOutcome, outcome)
}

func (h *Handler) tracer() trace.Tracer {
	if h.Tracer != nil {
		return h.Tracer
	}
	return otel.Tracer(tracerName)
}

func (h *Handler) maxResults() int {
	if h.MaxResults <= 0 || h.MaxResults > telegram.MaxInlineResults {
		return telegram.MaxInlineResults
	}
	return h.MaxResults
}

func (h *Handler) cacheTime() int {
	if h.CacheTime < 0 {
		return 0
	}
	if h.CacheTime == 0 {
		return DefaultCacheTime
	}
	return h.CacheTime
}

func (h *Handler) debug(msg string, fields ...zap.Field) {
	if h.Logger != nil {
		h.Logger.Debug(msg, fields...)
	}
}

func (h *Handler) info(msg string, fields ...zap.Field) {
	if h.Logger != nil {
		h.Logger.Info(msg, fields...)
	}
}

func (h *Handler) warn(msg string, fields ...zap.Field) {
	if h.Logger != nil {
		h.Logger.Warn(msg, fields...)
	}
}
