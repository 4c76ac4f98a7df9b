package resources

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type HTTPMetrics struct {
	reqs      metric.Int64Counter
	inFlight  metric.Int64UpDownCounter
	conflicts metric.Int64Counter
	latency   metric.Float64Histogram
}

func NewHTTPMetrics(name string, provider metric.MeterProvider) *HTTPMetrics {
	meter := provider.Meter(name)

	reqs, _ := meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("HTTP requests"),
	)
	inFlight, _ := meter.Int64UpDownCounter(
		"http.server.requests.in_flight",
		metric.WithDescription("HTTP requests being served"),
	)
	conflicts, _ := meter.Int64Counter(
		"http.server.schedule_conflicts",
		metric.WithDescription("Requests rejected because the event overlaps the schedule"),
	)
	latency, _ := meter.Float64Histogram(
		"http.server.duration.ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)

	return &HTTPMetrics{reqs: reqs, inFlight: inFlight, conflicts: conflicts, latency: latency}
}

func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		m.inFlight.Add(ctx, 1)
		defer m.inFlight.Add(ctx, -1)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		status := c.Writer.Status()

		attrs := metric.WithAttributes(
			attribute.String("http.route", route),
			attribute.String("http.method", c.Request.Method),
			attribute.Int("http.status_code", status),
			attribute.String("http.status_class", strconv.Itoa(status/100)+"xx"),
		)

		m.reqs.Add(ctx, 1, attrs)
		m.latency.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)

		if status == http.StatusConflict {
			m.conflicts.Add(ctx, 1, attrs)
		}
	}
}
