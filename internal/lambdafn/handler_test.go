package lambdafn

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scryinline/scryinline/internal/inline"
	"github.com/scryinline/scryinline/internal/observability"
	"github.com/scryinline/scryinline/internal/scryfall"
	"github.com/scryinline/scryinline/internal/telegram"
)

type stubSearcher struct {
	calls int
	list  *scryfall.List
	err   error
}

func (s *stubSearcher) Search(ctx context.Context, query string) (*scryfall.List, error) {
	s.calls++
	return s.list, s.err
}

type countingFlusher struct {
	calls int
	err   error
}

func (f *countingFlusher) Flush(ctx context.Context) error {
	f.calls++
	return f.err
}

func boltList() *scryfall.List {
	return &scryfall.List{Object: "list", TotalCards: 1, Data: []scryfall.Card{{
		ID:          "bolt",
		Name:        "Lightning Bolt",
		ScryfallURI: "https://scryfall.com/card/clu/141/lightning-bolt",
		ImageURIs:   &scryfall.ImageURIs{Small: "https://img/s.jpg", Large: "https://img/l.jpg"},
	}}}
}

func decodeResults(t *testing.T, resp events.APIGatewayProxyResponse) []map[string]any {
	t.Helper()
	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &results))
	return results
}

func TestHandleAnswersInlineQuery(t *testing.T) {
	flusher := &countingFlusher{}
	handler := &Handler{
		Updates: &inline.Handler{Searcher: &stubSearcher{list: boltList()}},
		Flusher: flusher,
	}

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		Body: `{"update_id":1,"inline_query":{"id":"q","query":"lightning bolt","offset":""}}`,
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	results := decodeResults(t, resp)
	require.Len(t, results, 1)
	assert.Equal(t, "Lightning Bolt", results[0]["title"])
	assert.Equal(t, 1, flusher.calls)
}

func TestHandleDecodesBase64Body(t *testing.T) {
	body := base64.StdEncoding.EncodeToString([]byte(`{"inline_query":{"id":"q","query":"bolt"}}`))
	handler := &Handler{Updates: &inline.Handler{Searcher: &stubSearcher{list: boltList()}}}

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{Body: body, IsBase64Encoded: true})

	require.NoError(t, err)
	assert.Len(t, decodeResults(t, resp), 1)
}

func TestHandleAlwaysReturns200(t *testing.T) {
	tests := map[string]events.APIGatewayProxyRequest{
		"malformed json":  {Body: `{"inline_query"`},
		"bad base64":      {Body: "%%%", IsBase64Encoded: true},
		"message update":  {Body: `{"update_id":2,"message":{"text":"hi"}}`},
		"empty query":     {Body: `{"inline_query":{"id":"q","query":""}}`},
		"upstream failed": {Body: `{"inline_query":{"id":"q","query":"bolt"}}`},
	}

	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			searcher := &stubSearcher{err: errors.New("scryfall: unexpected status 503")}
			handler := &Handler{Updates: &inline.Handler{Searcher: searcher}, Flusher: &countingFlusher{err: errors.New("collector down")}}

			resp, err := handler.Handle(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, "[]", resp.Body)
		})
	}
}

func TestHandleChecksSecretCaseInsensitively(t *testing.T) {
	searcher := &stubSearcher{list: boltList()}
	handler := &Handler{Updates: &inline.Handler{Searcher: searcher}, Secret: "s3cret"}
	body := `{"inline_query":{"id":"q","query":"bolt"}}`

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{Body: body})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, searcher.calls)

	resp, err = handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		Body:    body,
		Headers: map[string]string{"x-telegram-bot-api-secret-token": "s3cret"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeResults(t, resp), 1)
}

func TestHeaderLookup(t *testing.T) {
	headers := map[string]string{"X-Telegram-Bot-Api-Secret-Token": "a"}
	assert.Equal(t, "a", header(headers, telegram.SecretTokenHeader))
	assert.Equal(t, "", header(nil, telegram.SecretTokenHeader))
}

type panickingAnswerer struct{}

func (panickingAnswerer) AnswerInlineQuery(ctx context.Context, req telegram.AnswerInlineQueryRequest) error {
	panic("boom")
}

func TestHandleRecoversFromDeliveryPanic(t *testing.T) {
	flusher := &countingFlusher{}
	handler := &Handler{
		Updates: &inline.Handler{Searcher: &stubSearcher{list: boltList()}, Answerer: panickingAnswerer{}},
		Flusher: flusher,
	}

	var resp events.APIGatewayProxyResponse
	var err error
	require.NotPanics(t, func() {
		resp, err = handler.Handle(context.Background(), events.APIGatewayProxyRequest{
			Body: `{"inline_query":{"id":"q","query":"bolt"}}`,
		})
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "[]", resp.Body)
	assert.Equal(t, 1, flusher.calls)
}

// fieldCapture records the request fields an invocation hands to the update
// handler.
type fieldCapture struct {
	next   *inline.Handler
	fields *observability.RequestFields
}

func (f *fieldCapture) HandleUpdate(ctx context.Context, body []byte) []telegram.InlineQueryResult {
	f.fields = observability.RequestFieldsFrom(ctx)
	return f.next.HandleUpdate(ctx, body)
}

func TestHandleTagsInvocationFields(t *testing.T) {
	capture := &fieldCapture{next: &inline.Handler{Searcher: &stubSearcher{list: boltList()}}}
	handler := &Handler{Updates: capture}

	req := events.APIGatewayProxyRequest{Body: `{"update_id":5,"inline_query":{"id":"q-5","query":"bolt"}}`}
	req.RequestContext.RequestID = "lambda-req-1"

	resp, err := handler.Handle(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, capture.fields)
	assert.Equal(t, "lambda-req-1", capture.fields.Get(observability.FieldRequestID))
	assert.Equal(t, "5", capture.fields.Get(observability.FieldUpdateID))
	assert.Equal(t, "q-5", capture.fields.Get(observability.FieldInlineQueryID))
	assert.Equal(t, "answered", capture.fields.Get(observability.FieldUpdateOutcome))
}
