package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/scryinline/scryinline/internal/errors"
	"github.com/scryinline/scryinline/internal/observability"
	"github.com/scryinline/scryinline/internal/telegram"
)

// MaxUpdateBytes bounds the webhook body. Telegram updates are a few KB.
const MaxUpdateBytes = 1 << 20

// UpdateHandler answers a raw Telegram update body.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, body []byte) []telegram.InlineQueryResult
}

// WebhookHandler serves the inline query webhook. The response body is
// always a JSON array of inline results.
type WebhookHandler struct {
	Updates UpdateHandler
	// Secret, when set, must match the X-Telegram-Bot-Api-Secret-Token header.
	Secret string
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !telegram.ValidSecretToken(h.Secret, r.Header.Get(telegram.SecretTokenHeader)) {
		apperrors.RespondWithError(w, r, apperrors.NewUnauthorizedError("invalid webhook secret token"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxUpdateBytes))
	if err != nil && observability.ServerLogger != nil {
		observability.ServerLogger.Warn("Failed to read webhook body", zap.Error(err))
	}

	results := []telegram.InlineQueryResult{}
	if h.Updates != nil {
		results = h.Updates.HandleUpdate(r.Context(), body)
	}
	if results == nil {
		results = []telegram.InlineQueryResult{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(results)
}
