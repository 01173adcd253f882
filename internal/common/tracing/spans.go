package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	httpTracerName = "archiver-http"
	runTracerName  = "archiver-run"
)

// TraceHTTPRequest starts a client span for an outbound HTTP call.
// Caller must call span.End() when the response is received.
func TraceHTTPRequest(ctx context.Context, system, method, path string) (context.Context, trace.Span) {
	ctx, span := Tracer(httpTracerName).Start(ctx, system+" "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("peer.service", system),
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)
	return ctx, span
}

// TraceHTTPResponse records response attributes on the span.
func TraceHTTPResponse(span trace.Span, statusCode int, err error) {
	if statusCode > 0 {
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// TraceRun starts the root span of an archive run.
// Caller must call EndRun when the run finishes.
func TraceRun(ctx context.Context, runID string, retentionMonths int) (context.Context, trace.Span) {
	ctx, span := Tracer(runTracerName).Start(ctx, "archiver.run",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.String("run_id", runID),
		attribute.Int("retention_months", retentionMonths),
	)
	return ctx, span
}

// EndRun records the run outcome and ends the span.
func EndRun(span trace.Span, checked, archived int, err error) {
	span.SetAttributes(
		attribute.Int("projects.checked", checked),
		attribute.Int("projects.archived", archived),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
