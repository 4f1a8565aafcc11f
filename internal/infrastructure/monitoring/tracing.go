package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/handsapp/backend/internal/infrastructure/config"
)

// TracingProvider wires OpenTelemetry tracing with an OTLP HTTP exporter.
type TracingProvider struct {
	provider *sdktrace.TracerProvider
	logger   *zap.Logger
}

// NewTracingProvider initializes tracing. When tracing is disabled in
// configuration it returns a provider backed by a no-op tracer.
func NewTracingProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*TracingProvider, error) {
	if !cfg.Monitoring.EnableTracing {
		return &TracingProvider{logger: logger}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.App.Name),
			semconv.ServiceVersion(cfg.App.Version),
			semconv.DeploymentEnvironment(cfg.App.Environment),
		),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otel resource: %w", err)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Monitoring.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.Monitoring.SamplingRate)),
		sdktrace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Tracing initialized",
		zap.String("endpoint", cfg.Monitoring.OTLPEndpoint),
		zap.Float64("sampling_rate", cfg.Monitoring.SamplingRate),
	)

	return &TracingProvider{provider: provider, logger: logger}, nil
}

// Tracer returns a named tracer.
func (t *TracingProvider) Tracer(name string) trace.Tracer {
	if t.provider == nil {
		return otel.Tracer(name)
	}
	return t.provider.Tracer(name)
}

// Shutdown flushes spans and stops the provider.
func (t *TracingProvider) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
