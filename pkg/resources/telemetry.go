package resources

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type StopFn func(ctx context.Context) error

// CreateTelemetry installs global tracer, meter and logger providers that
// export over OTLP/gRPC. When telemetry is disabled the global no-op
// providers stay in place. The returned StopFn flushes and shuts down every
// provider that was installed.
func CreateTelemetry(ctx context.Context, cfg *Config) (StopFn, error) {
	logger := log.Ctx(ctx).With().Str("stage", "startup").Str("component", "telemetry").Logger()

	if !cfg.OtelEnabled {
		logger.Info().Msg("telemetry disabled")
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", cfg.Name),
		attribute.String("service.version", cfg.Version),
		attribute.String("deployment.environment", cfg.Env),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create the otel resource: %w", err)
	}

	var stops []StopFn

	stop := func(ctx context.Context) error {
		var errs []error
		for i := len(stops) - 1; i >= 0; i-- {
			errs = append(errs, stops[i](ctx))
		}

		return errors.Join(errs...)
	}

	tp, err := newTracerProvider(ctx, cfg.OtelEndpoint, res)
	if err != nil {
		return nil, err
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetTracerProvider(tp)
	stops = append(stops, tp.Shutdown)

	mp, err := newMeterProvider(ctx, cfg.OtelEndpoint, res)
	if err != nil {
		return nil, errors.Join(err, stop(ctx))
	}

	otel.SetMeterProvider(mp)
	stops = append(stops, mp.Shutdown)

	err = otelruntime.Start(otelruntime.WithMeterProvider(mp))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to start runtime metrics: %w", err), stop(ctx))
	}

	lp, err := newLoggerProvider(ctx, cfg.OtelEndpoint, res)
	if err != nil {
		return nil, errors.Join(err, stop(ctx))
	}

	global.SetLoggerProvider(lp)
	stops = append(stops, lp.Shutdown)

	logger.Info().Str("endpoint", cfg.OtelEndpoint).Msg("telemetry enabled")

	return stop, nil
}

func newTracerProvider(ctx context.Context, endpoint string, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create the OTLP trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	), nil
}

func newMeterProvider(ctx context.Context, endpoint string, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exp, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create the OTLP metric exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	), nil
}

func newLoggerProvider(ctx context.Context, endpoint string, res *resource.Resource) (*sdklog.LoggerProvider, error) {
	exp, err := otlploggrpc.New(ctx,
		otlploggrpc.WithEndpoint(endpoint),
		otlploggrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create the OTLP log exporter: %w", err)
	}

	return sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)),
		sdklog.WithResource(res),
	), nil
}
