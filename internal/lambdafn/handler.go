// Package lambdafn adapts the inline query handler to AWS Lambda behind
// API Gateway or a Lambda function URL.
package lambdafn

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/scryinline/scryinline/internal/observability"
	"github.com/scryinline/scryinline/internal/server/handlers"
	"github.com/scryinline/scryinline/internal/telegram"
)

// Flusher pushes buffered telemetry before the execution environment freezes.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Handler answers one webhook invocation per call.
type Handler struct {
	Updates handlers.UpdateHandler
	Secret  string
	Flusher Flusher
	Logger  *logging.Logger
}

// Handle decodes the event body, answers it and always replies 200 with a
// JSON array, except for a secret token mismatch which gets 401.
//
// Function URL (payload v2) events share the body, headers and
// isBase64Encoded fields, so the same handler serves both.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	ctx, fields := observability.WithRequestFields(ctx)
	fields.Set(observability.FieldRequestID, req.RequestContext.RequestID)

	defer h.flush(ctx)
	defer func() { h.completed(resp, fields) }()

	if !telegram.ValidSecretToken(h.Secret, header(req.Headers, telegram.SecretTokenHeader)) {
		h.warn("Rejected webhook with invalid secret token", fields.ZapFields()...)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusUnauthorized,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error":{"code":"UNAUTHORIZED","message":"invalid webhook secret token"}}`,
		}, nil
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			h.warn("Failed to decode base64 body", zap.Error(err))
			decoded = nil
		}
		body = decoded
	}

	results := []telegram.InlineQueryResult{}
	if h.Updates != nil {
		if answered := h.Updates.HandleUpdate(ctx, body); answered != nil {
			results = answered
		}
	}

	encoded, encErr := json.Marshal(results)
	if encErr != nil {
		h.warn("Failed to encode inline results", zap.Error(encErr))
		encoded = []byte("[]")
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(encoded),
	}, nil
}

func (h *Handler) completed(resp events.APIGatewayProxyResponse, fields *observability.RequestFields) {
	if h.Logger == nil {
		return
	}
	logFields := append([]zap.Field{
		zap.Int("status", resp.StatusCode),
		zap.Int("response_size", len(resp.Body)),
	}, fields.ZapFields()...)
	h.Logger.Info("Lambda invocation completed", logFields...)
}

func (h *Handler) flush(ctx context.Context) {
	if h.Flusher == nil {
		return
	}
	if err := h.Flusher.Flush(ctx); err != nil {
		h.warn("Failed to flush traces", zap.Error(err))
	}
}

func (h *Handler) warn(msg string, fields ...zap.Field) {
	if h.Logger != nil {
		h.Logger.Warn(msg, fields...)
	}
}

// header looks up name case-insensitively; gateways differ on casing.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
