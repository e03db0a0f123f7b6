package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	AttrHTTPMethod     = "http.method"
	AttrHTTPRoute      = "http.route"
	AttrHTTPStatusCode = "http.status_code"

	AttrUpstreamPath = "upstream.path"

	AttrCheckType   = "check.type"
	AttrCheckURL    = "check.url"
	AttrCheckStatus = "check.status"

	AttrMessagingSystem      = "messaging.system"
	AttrMessagingDestination = "messaging.destination"
)

// Tracer wraps an otel tracer with the span helpers used across the service.
type Tracer struct {
	tracer trace.Tracer
}

func NewTracer(tracer trace.Tracer) *Tracer {
	return &Tracer{tracer: tracer}
}

// GetTracer returns a named tracer from the global provider
func GetTracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// StartServerSpan starts a span for an incoming request.
func (t *Tracer) StartServerSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.startSpan(ctx, operation, trace.SpanKindServer, attrs...)
}

// StartClientSpan starts a span for an outgoing call.
func (t *Tracer) StartClientSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.startSpan(ctx, operation, trace.SpanKindClient, attrs...)
}

func (t *Tracer) startSpan(ctx context.Context, operation string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, operation,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(kind),
	)
}

// RecordError records err on the span and marks it failed. nil is ignored.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// AddUpstreamAttributes describes one upstream API call.
func (t *Tracer) AddUpstreamAttributes(span trace.Span, method, path string, statusCode int) {
	span.SetAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrUpstreamPath, path),
		attribute.Int(AttrHTTPStatusCode, statusCode),
	)
}

// AddCheckAttributes describes a normalized check result.
func (t *Tracer) AddCheckAttributes(span trace.Span, checkType, url, status string) {
	span.SetAttributes(
		attribute.String(AttrCheckType, checkType),
		attribute.String(AttrCheckURL, url),
		attribute.String(AttrCheckStatus, status),
	)
}

// InjectHTTPHeaders writes the trace context of ctx into outgoing request
// headers using the global propagator.
func InjectHTTPHeaders(ctx context.Context, h http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(h))
}
