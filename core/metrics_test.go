package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// sumOf returns the int64 sum recorded for name, restricted to data points
// tagged with op when op is not empty.
func sumOf(t *testing.T, reader *sdkmetric.ManualReader, name string, op string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)

			for _, dp := range sum.DataPoints {
				if op != "" {
					if v, found := dp.Attributes.Value(attribute.Key("scheduler.operation")); !found || v.AsString() != op {
						continue
					}
				}

				total += dp.Value
			}
		}
	}

	return total
}

func TestScheduler_Metrics(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	s := newTestScheduler(t, WithMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))))

	mustCreate(t, s, "first", "2025-01-10 09:00", 60)
	mustCreate(t, s, "second", "2025-01-10 11:00", 60)

	_, err := s.CreateEvent(ctx, "", "2025-01-10 13:00", 60)
	require.ErrorIs(t, err, ErrInvalidEvent)

	_, err = s.CreateEvent(ctx, "clash", "2025-01-10 09:30", 15)
	require.ErrorIs(t, err, ErrEventOverlap)

	require.NoError(t, s.AddEvent(ctx, &Event{ID: 50, Name: "external", TimeDate: "2025-01-10 15:00", Duration: 30}))
	require.NoError(t, s.DeleteEvent(ctx, 1))

	assert.Equal(t, int64(4), sumOf(t, reader, "scheduler.operations.total", "create_event"))
	assert.Equal(t, int64(2), sumOf(t, reader, "scheduler.operations.errors.total", "create_event"))
	assert.Equal(t, int64(1), sumOf(t, reader, "scheduler.operations.total", "add_event"))
	assert.Equal(t, int64(1), sumOf(t, reader, "scheduler.operations.total", "delete_event"))
	assert.Equal(t, int64(2), sumOf(t, reader, "scheduler.events", ""))

	assert.Equal(t, 2, s.Close())
	assert.Equal(t, int64(0), sumOf(t, reader, "scheduler.events", ""))
}

func TestScheduler_Spans(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	recorder := tracetest.NewSpanRecorder()
	s := newTestScheduler(t, WithTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))))

	mustCreate(t, s, "first", "2025-01-10 09:00", 60)

	_, err := s.CreateEvent(ctx, "zero", "2025-01-10 11:00", 0)
	require.ErrorIs(t, err, ErrInvalidEvent)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	for _, span := range spans {
		assert.Equal(t, "scheduler.create_event", span.Name())
	}

	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
