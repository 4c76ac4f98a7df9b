package core

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type SchedulerMetrics struct {
	opsTotal   metric.Int64Counter
	opsErrors  metric.Int64Counter
	opsLatency metric.Float64Histogram
	events     metric.Int64UpDownCounter
}

func NewSchedulerMetrics(provider metric.MeterProvider) *SchedulerMetrics {
	meter := provider.Meter("event-scheduler/core")

	opsTotal, _ := meter.Int64Counter("scheduler.operations.total")
	opsErrors, _ := meter.Int64Counter("scheduler.operations.errors.total")
	opsLatency, _ := meter.Float64Histogram("scheduler.operations.duration.ms")
	events, _ := meter.Int64UpDownCounter("scheduler.events")

	return &SchedulerMetrics{opsTotal: opsTotal, opsErrors: opsErrors, opsLatency: opsLatency, events: events}
}

func (m *SchedulerMetrics) Observe(ctx context.Context, op string, start time.Time, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("scheduler.operation", op), // ej: "add_event", "find_free_time_slots"
	}

	m.opsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	ms := float64(time.Since(start).Milliseconds())
	m.opsLatency.Record(ctx, ms, metric.WithAttributes(attrs...))

	if err != nil {
		m.opsErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// Stored tracks the number of events currently held by the store.
func (m *SchedulerMetrics) Stored(ctx context.Context, delta int64) {
	m.events.Add(ctx, delta)
}
