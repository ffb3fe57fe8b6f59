package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/pkg/logger"
)

const meterName = "mentor-portal"

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal      metric.Int64Counter
	HTTPRequestDuration    metric.Float64Histogram
	BackendRequestsTotal   metric.Int64Counter
	BackendRequestDuration metric.Float64Histogram
	CacheLookupsTotal      metric.Int64Counter
	CacheSetsTotal         metric.Int64Counter
	PollTicksTotal         metric.Int64Counter
	GuardDecisionsTotal    metric.Int64Counter
	ActiveStreamsGauge     metric.Int64UpDownCounter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments from the global MeterProvider. It only runs once, so
// it must be called after the provider is installed (see tracer.InitOtelProviders).
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter(meterName)
		m := &AppMetrics{}
		var err error

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		fatalOn(err, "http_requests_total")

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		fatalOn(err, "http_request_duration_seconds")

		m.BackendRequestsTotal, err = meter.Int64Counter(
			"backend_requests_total",
			metric.WithDescription("Total number of calls made to the portal backend"),
			metric.WithUnit("{request}"),
		)
		fatalOn(err, "backend_requests_total")

		m.BackendRequestDuration, err = meter.Float64Histogram(
			"backend_request_duration_seconds",
			metric.WithDescription("Duration of portal backend calls in seconds"),
			metric.WithUnit("s"),
		)
		fatalOn(err, "backend_request_duration_seconds")

		m.CacheLookupsTotal, err = meter.Int64Counter(
			"cache_lookups_total",
			metric.WithDescription("TTL cache lookups by result (hit, miss, expired, corrupt)"),
			metric.WithUnit("{lookup}"),
		)
		fatalOn(err, "cache_lookups_total")

		m.CacheSetsTotal, err = meter.Int64Counter(
			"cache_sets_total",
			metric.WithDescription("TTL cache writes"),
			metric.WithUnit("{write}"),
		)
		fatalOn(err, "cache_sets_total")

		m.PollTicksTotal, err = meter.Int64Counter(
			"poll_ticks_total",
			metric.WithDescription("Poll ticks by poller and outcome"),
			metric.WithUnit("{tick}"),
		)
		fatalOn(err, "poll_ticks_total")

		m.GuardDecisionsTotal, err = meter.Int64Counter(
			"guard_decisions_total",
			metric.WithDescription("Route guard decisions by outcome"),
			metric.WithUnit("{decision}"),
		)
		fatalOn(err, "guard_decisions_total")

		m.ActiveStreamsGauge, err = meter.Int64UpDownCounter(
			"active_streams_current",
			metric.WithDescription("Open server-sent event streams"),
			metric.WithUnit("{stream}"),
		)
		fatalOn(err, "active_streams_current")

		appMetrics = m
	})
}

// Get returns the instruments, creating them from the current global provider on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

func fatalOn(err error, name string) {
	if err != nil {
		logger.Get().Fatal("Metrics: failed to create instrument", zap.String("instrument", name), zap.Error(err))
	}
}

// CacheLookup records one TTL cache lookup.
func CacheLookup(ctx context.Context, result string) {
	Get().CacheLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// PollTick records one poll tick.
func PollTick(ctx context.Context, poller, outcome string) {
	Get().PollTicksTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("poller", poller),
		attribute.String("outcome", outcome),
	))
}

// GuardDecision records one route guard evaluation.
func GuardDecision(ctx context.Context, outcome string) {
	Get().GuardDecisionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// BackendRequest records one call to the portal backend. status is 0 when no response arrived.
func BackendRequest(ctx context.Context, method, path string, status int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)
	m := Get()
	m.BackendRequestsTotal.Add(ctx, 1, attrs)
	m.BackendRequestDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// HTTPRequest records one request served by the portal.
func HTTPRequest(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m := Get()
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// StreamOpened tracks an open SSE stream; call the returned func when it closes.
func StreamOpened(ctx context.Context, stream string) func() {
	attrs := metric.WithAttributes(attribute.String("stream", stream))
	Get().ActiveStreamsGauge.Add(ctx, 1, attrs)
	return func() { Get().ActiveStreamsGauge.Add(context.Background(), -1, attrs) }
}
