package telegram

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultAPIURL is the Bot API root; the token is appended as "/bot<token>".
	DefaultAPIURL = "https://api.telegram.org"
	// SecretTokenHeader carries the secret configured through setWebhook.
	SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

	defaultTimeout = 5 * time.Second
)

// ErrNoToken is returned when a Bot API call is attempted without a token.
var ErrNoToken = errors.New("telegram bot token is not configured")

// APIError is a Bot API response with ok=false.
type APIError struct {
	Method      string
	StatusCode  int
	ErrorCode   int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.ErrorCode, e.Description)
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Client calls the Telegram Bot API.
type Client struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

// AnswerInlineQuery delivers results for an inline query.
func (c *Client) AnswerInlineQuery(ctx context.Context, req AnswerInlineQueryRequest) error {
	if req.Results == nil {
		req.Results = []InlineQueryResult{}
	}
	return c.call(ctx, "answerInlineQuery", req, nil)
}

// GetMe returns the bot's own user; it doubles as a token check.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var me User
	if err := c.call(ctx, "getMe", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// CheckHealth satisfies the health manager's checker interface.
func (c *Client) CheckHealth(ctx context.Context) error {
	_, err := c.GetMe(ctx)
	return err
}

func (c *Client) call(ctx context.Context, method string, payload any, out any) error {
	if c == nil || strings.TrimSpace(c.Token) == "" {
		return ErrNoToken
	}
	if ctx == nil {
		ctx = context.Background()
	}

	body := []byte("{}")
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode telegram %s: %w", method, err)
		}
		body = encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telegram %s request: %w", method, c.redact(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, c.redact(err))
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("decode telegram %s response (status %d): %w", method, resp.StatusCode, err)
	}

	if !decoded.OK {
		return &APIError{
			Method:      method,
			StatusCode:  resp.StatusCode,
			ErrorCode:   decoded.ErrorCode,
			Description: decoded.Description,
		}
	}

	if out != nil && len(decoded.Result) > 0 {
		if err := json.Unmarshal(decoded.Result, out); err != nil {
			return fmt.Errorf("decode telegram %s result: %w", method, err)
		}
	}

	return nil
}

func (c *Client) methodURL(method string) string {
	base := DefaultAPIURL
	if strings.TrimSpace(c.BaseURL) != "" {
		base = strings.TrimRight(c.BaseURL, "/")
	}
	return base + "/bot" + c.Token + "/" + method
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: defaultTimeout}
}

// redact keeps the bot token out of errors that embed the request URL.
func (c *Client) redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && c.Token != "" {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, c.Token, "<redacted>")
	}
	return err
}

// ValidSecretToken compares a webhook secret header in constant time.
// An empty expected secret disables the check.
func ValidSecretToken(expected, got string) bool {
	if expected == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
