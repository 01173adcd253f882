// Package tracing wires OpenTelemetry for archive runs.
//
// Export is switched on by OTEL_EXPORTER_OTLP_ENDPOINT. When it is unset every
// tracer is a no-op and spans cost nothing.
package tracing

import (
	"context"
	"net/url"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	serviceName = "archiver"
	endpointEnv = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

type state struct {
	once     sync.Once
	provider trace.TracerProvider
	sdk      *sdktrace.TracerProvider
}

var global state

func (s *state) init() {
	s.once.Do(func() {
		s.provider = noop.NewTracerProvider()
		endpoint := os.Getenv(endpointEnv)
		if endpoint == "" {
			return
		}
		sdk, err := newSDKProvider(context.Background(), endpoint)
		if err != nil {
			return
		}
		s.sdk = sdk
		s.provider = sdk
		otel.SetTracerProvider(sdk)
	})
}

// newSDKProvider builds a batching OTLP/HTTP provider. Spans are held until
// the batch fills or Shutdown flushes them at exit.
func newSDKProvider(ctx context.Context, endpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx, exporterOptions(endpoint)...)
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		res = resource.Default()
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

// exporterOptions turns an endpoint URL or bare host:port into exporter options.
// Anything but https is sent in plain text.
func exporterOptions(endpoint string) []otlptracehttp.Option {
	host, secure := splitEndpoint(endpoint)
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(host)}
	if !secure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

// splitEndpoint returns the host:port part of endpoint and whether it uses https.
func splitEndpoint(endpoint string) (host string, secure bool) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return endpoint, false
	}
	return u.Host, u.Scheme == "https"
}

// Tracer returns a named tracer from the process provider.
func Tracer(name string) trace.Tracer {
	global.init()
	return global.provider.Tracer(name)
}

// Enabled reports whether spans are being exported.
func Enabled() bool {
	global.init()
	return global.sdk != nil
}

// Shutdown flushes buffered spans. It is a no-op when export is disabled.
func Shutdown(ctx context.Context) error {
	if global.sdk == nil {
		return nil
	}
	return global.sdk.Shutdown(ctx)
}
