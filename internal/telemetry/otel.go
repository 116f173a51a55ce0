package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/HeorhiiKortunov/CoreTask/internal/config"
	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
)

// Init initializes the OpenTelemetry tracer provider from configuration.
// Without an OTLP endpoint telemetry stays disabled and the returned shutdown
// function does nothing.
func Init(ctx context.Context, cfg config.ObservabilityConfig) (shutdown func(context.Context) error, err error) {
	if cfg.Endpoint == "" {
		logging.Op().Info("telemetry disabled", "reason", "otel.endpoint not set")
		return func(context.Context) error { return nil }, nil
	}

	logging.Op().Info("initializing OpenTelemetry", "endpoint", cfg.Endpoint, "service", cfg.ServiceName)

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTEL resource: %w", err)
	}

	tracerProvider, err := newTracerProvider(ctx, res, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}

	otel.SetTracerProvider(tracerProvider)

	// W3C Trace Context propagation
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	return func(ctx context.Context) error {
		logging.Op().Info("shutting down OpenTelemetry")
		if err := tracerProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown tracer provider: %w", err)
		}
		return nil
	}, nil
}

// newResource merges the SDK default resource with schemaless service
// attributes.
func newResource(cfg config.ObservabilityConfig) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
}

// newTracerProvider creates a TracerProvider with an OTLP HTTP exporter.
func newTracerProvider(ctx context.Context, res *resource.Resource, cfg config.ObservabilityConfig) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}
