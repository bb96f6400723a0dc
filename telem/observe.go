// Package telem sets up OpenTelemetry metrics (exported through Prometheus)
// and tracing (exported over OTLP/HTTP when an endpoint is configured).
package telem

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/foodiehub/ordering-api/config"
)

type Shutdown func(ctx context.Context) error

func newResource(ctx context.Context, cfg config.TelemetryConfig, env string) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.DeploymentEnvironmentKey.String(env),
		),
	)
}

// InitMetrics installs a meter provider whose readings are exposed on the
// default Prometheus registry, next to the client_golang collectors.
func InitMetrics(ctx context.Context, cfg config.TelemetryConfig, env string) (Shutdown, error) {
	res, err := newResource(ctx, cfg, env)
	if err != nil {
		return nil, fmt.Errorf("metrics resource: %w", err)
	}
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// InitTracing installs a tracer provider. Without an OTLP endpoint spans are
// still created, so trace ids propagate, but nothing is exported.
func InitTracing(ctx context.Context, cfg config.TelemetryConfig, env string) (Shutdown, error) {
	res, err := newResource(ctx, cfg, env)
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.OTLPEndpoint != "" {
		exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		))
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Init sets up both providers and returns one shutdown for them.
func Init(ctx context.Context, cfg config.TelemetryConfig, env string) (Shutdown, error) {
	stopMetrics, err := InitMetrics(ctx, cfg, env)
	if err != nil {
		return nil, err
	}
	stopTracing, err := InitTracing(ctx, cfg, env)
	if err != nil {
		return nil, errors.Join(err, stopMetrics(ctx))
	}
	return func(ctx context.Context) error {
		return errors.Join(stopTracing(ctx), stopMetrics(ctx))
	}, nil
}
