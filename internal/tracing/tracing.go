// Package tracing package
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	serviceName     = "scim-target-api"
	gRPCDialTimeout = 30 * time.Second
)

// NewProviderInput holds fields to create a new provider.
type NewProviderInput struct {
	Host    string
	Version string
	Port    int
	Enabled bool
}

// NewProvider initializes the global/default trace provider.
func NewProvider(ctx context.Context, input *NewProviderInput) (func(context.Context) error, error) {
	if !input.Enabled {
		// If disabled, default to the no-op provider with a no-op shutdown function.
		return func(context.Context) error { return nil }, nil
	}

	exp, err := newExporter(ctx, input.Host, input.Port)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(newResource(input.Version)),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exp)),
	)
	otel.SetTracerProvider(tp)

	// Documentation says default global propagator is no-op.
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

func newResource(serviceVersion string) *resource.Resource {
	r, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	return r
}

func newExporter(ctx context.Context, host string, port int) (sdktrace.SpanExporter, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, gRPCDialTimeout)
	defer cancel()

	conn, err := grpc.DialContext(ctxWithTimeout,
		fmt.Sprintf("%s:%d", host, port),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open gRPC connection: %w", err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	return exporter, nil
}

// RecordError is a convenience function for recording an error and setting span status.
func RecordError(span trace.Span, err error, format string, args ...any) {
	// If there is no pre-defined error object, make one from the description.
	if err == nil {
		err = fmt.Errorf(format, args...)
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, fmt.Sprintf(format, args...))
}
