package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public Scryfall API root.
	DefaultBaseURL = "https://api.scryfall.com"
	// DefaultOrder sorts matches by EDHREC popularity, which surfaces the cards
	// people are most likely looking for first.
	DefaultOrder = "edhrec"
	// DefaultTimeout keeps a search inside the inline-query answer window.
	DefaultTimeout = 5 * time.Second

	defaultUserAgent = "scryinline/dev"
	searchPath       = "/cards/search"
	maxErrorBody     = 64 << 10
)

// APIError is returned for any non-2xx Scryfall response.
type APIError struct {
	StatusCode int
	Code       string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("scryfall: %d %s: %s", e.StatusCode, e.Code, e.Details)
	}
	return fmt.Sprintf("scryfall: unexpected status %d", e.StatusCode)
}

// IsNotFound reports whether err is Scryfall's "no cards matched" response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusNotFound
}

// Client searches the Scryfall card database. The zero value is usable.
type Client struct {
	BaseURL    string
	Order      string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Search runs a full-text Scryfall query and returns the first result page.
// The query is passed through untouched; Scryfall owns the search grammar.
func (c *Client) Search(ctx context.Context, query string) (*List, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	endpoint, err := c.searchURL(query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build scryfall request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent())

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("scryfall search: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp)
	}

	var list List
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode scryfall response: %w", err)
	}
	if list.Object != "" && list.Object != "list" {
		return nil, fmt.Errorf("decode scryfall response: unexpected object %q", list.Object)
	}

	return &list, nil
}

// healthQuery matches exactly one card, so the probe stays cheap.
const healthQuery = `!"Lightning Bolt"`

// CheckHealth reports whether Scryfall is answering searches. A
// "no cards matched" response still counts as reachable.
func (c *Client) CheckHealth(ctx context.Context) error {
	_, err := c.Search(ctx, healthQuery)
	if err != nil && !IsNotFound(err) {
		return err
	}
	return nil
}

func (c *Client) searchURL(query string) (string, error) {
	base := DefaultBaseURL
	if c != nil && strings.TrimSpace(c.BaseURL) != "" {
		base = strings.TrimRight(c.BaseURL, "/")
	}

	parsed, err := url.Parse(base + searchPath)
	if err != nil {
		return "", fmt.Errorf("invalid scryfall base url %q: %w", base, err)
	}

	values := url.Values{}
	values.Set("q", query)
	if order := c.order(); order != "" {
		values.Set("order", order)
	}
	parsed.RawQuery = values.Encode()

	return parsed.String(), nil
}

func (c *Client) order() string {
	if c == nil || c.Order == "" {
		return DefaultOrder
	}
	return c.Order
}

func (c *Client) userAgent() string {
	if c == nil || c.UserAgent == "" {
		return defaultUserAgent
	}
	return c.UserAgent
}

func (c *Client) timeout() time.Duration {
	if c == nil || c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c *Client) httpClient() *http.Client {
	if c != nil && c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: c.timeout()}
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload errorObject
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&payload); err == nil && payload.Object == "error" {
		apiErr.Code = payload.Code
		apiErr.Details = payload.Details
	}

	return apiErr
}
