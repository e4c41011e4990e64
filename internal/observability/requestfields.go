package observability

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Request field keys filled in while a webhook update is being answered.
const (
	FieldRequestID     = "request_id"
	FieldUpdateID      = "update_id"
	FieldInlineQueryID = "inline_query_id"
	FieldUpdateOutcome = "update_outcome"
)

type requestFieldsKey struct{}

// RequestFields collects values a handler learns about the request it is
// serving, such as the Telegram update ID, so the component that logs request
// completion can report them. Safe for concurrent use.
type RequestFields struct {
	mu     sync.Mutex
	values map[string]string
}

// WithRequestFields returns ctx carrying a RequestFields, reusing one that is
// already present.
func WithRequestFields(ctx context.Context) (context.Context, *RequestFields) {
	if rf := RequestFieldsFrom(ctx); rf != nil {
		return ctx, rf
	}
	rf := &RequestFields{values: make(map[string]string)}
	return context.WithValue(ctx, requestFieldsKey{}, rf), rf
}

// RequestFieldsFrom returns the RequestFields carried by ctx, or nil.
func RequestFieldsFrom(ctx context.Context) *RequestFields {
	if ctx == nil {
		return nil
	}
	rf, _ := ctx.Value(requestFieldsKey{}).(*RequestFields)
	return rf
}

// SetRequestField records key on the request carried by ctx. It is a no-op
// outside a request.
func SetRequestField(ctx context.Context, key, value string) {
	if rf := RequestFieldsFrom(ctx); rf != nil {
		rf.Set(key, value)
	}
}

func (rf *RequestFields) Set(key, value string) {
	if rf == nil || value == "" {
		return
	}
	rf.mu.Lock()
	rf.values[key] = value
	rf.mu.Unlock()
}

func (rf *RequestFields) Get(key string) string {
	if rf == nil {
		return ""
	}
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.values[key]
}

// ZapFields returns the collected values as log fields, ordered by key.
func (rf *RequestFields) ZapFields() []zap.Field {
	if rf == nil {
		return nil
	}
	rf.mu.Lock()
	defer rf.mu.Unlock()

	keys := make([]string, 0, len(rf.values))
	for key := range rf.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, zap.String(key, rf.values[key]))
	}
	return fields
}
