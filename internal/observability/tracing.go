package observability

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otlptracehttp "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	// DefaultTelemetryEndpoint is Honeycomb's OTLP/HTTP ingest.
	DefaultTelemetryEndpoint = "https://api.honeycomb.io"

	honeycombTeamHeader    = "x-honeycomb-team"
	honeycombDatasetHeader = "x-honeycomb-dataset"
	tracesPath             = "/v1/traces"
	defaultFlushTimeout    = 2 * time.Second
)

// TracingConfig describes the external trace collector. Tracing is off
// unless an API key is present.
type TracingConfig struct {
	ServiceName string
	Endpoint    string
	APIKey      string
	Dataset     string
	Environment string
}

// Enabled reports whether traces should be exported.
func (c TracingConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Tracing owns the tracer provider installed by InitTracing.
type Tracing struct {
	provider *sdktrace.TracerProvider
}

// Flush pushes buffered spans. Lambda calls this after every invocation
// because the sandbox may be frozen before the batcher fires.
func (t *Tracing) Flush(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	ctx, cancel := boundedContext(ctx)
	defer cancel()
	return t.provider.ForceFlush(ctx)
}

// Shutdown flushes and stops the exporter.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	ctx, cancel := boundedContext(ctx)
	defer cancel()
	return t.provider.Shutdown(ctx)
}

// InitTracing installs a global tracer provider exporting over OTLP/HTTP.
// With tracing disabled the global no-op provider is left in place.
func InitTracing(ctx context.Context, cfg TracingConfig) (*Tracing, error) {
	if !cfg.Enabled() {
		return &Tracing{}, nil
	}

	exporter, err := NewTraceExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(tracingAttributes(cfg)...),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: failed to build resource information: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Tracing{provider: provider}, nil
}

// NewTraceExporter builds the OTLP/HTTP exporter with collector auth headers.
func NewTraceExporter(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	endpoint, err := TracesEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("observability: invalid telemetry endpoint: %w", err)
	}

	headers := map[string]string{honeycombTeamHeader: cfg.APIKey}
	if dataset := strings.TrimSpace(cfg.Dataset); dataset != "" {
		headers[honeycombDatasetHeader] = dataset
	}

	options := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(endpoint),
		otlptracehttp.WithHeaders(headers),
	}
	if strings.HasPrefix(endpoint, "http://") {
		options = append(options, otlptracehttp.WithInsecure())
	}

	return otlptracehttp.New(ctx, options...)
}

// TracesEndpoint normalizes a collector root into its /v1/traces URL.
func TracesEndpoint(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultTelemetryEndpoint
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("endpoint %q must use http or https", raw)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("endpoint %q must include a host", raw)
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, tracesPath) {
		path += tracesPath
	}
	parsed.Path = path

	return parsed.String(), nil
}

func tracingAttributes(cfg TracingConfig) []attribute.KeyValue {
	service := cfg.ServiceName
	if service == "" {
		service = "scryinline"
	}
	attrs := []attribute.KeyValue{attribute.String("service.name", service)}
	if cfg.Environment != "" {
		attrs = append(attrs, attribute.String("deployment.environment", cfg.Environment))
	}
	return attrs
}

func boundedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultFlushTimeout)
}
