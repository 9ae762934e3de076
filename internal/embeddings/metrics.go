package embeddings

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/topicd/internal/embeddings"

// Metrics holds embedding cache metrics.
type Metrics struct {
	meter    metric.Meter
	logger   *zap.Logger
	lookups  metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics creates a Metrics instance for the embedding cache.
func NewMetrics(logger *zap.Logger) *Metrics {
	m := &Metrics{
		meter:  otel.Meter(instrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.lookups, err = m.meter.Int64Counter(
		"topicd.embedding.cache_lookups_total",
		metric.WithDescription("Total embedding cache lookups, labeled by result (hit, miss)"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		m.logger.Warn("failed to create lookups counter", zap.Error(err))
	}

	m.errors, err = m.meter.Int64Counter(
		"topicd.embedding.errors_total",
		metric.WithDescription("Total embedding generation errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.logger.Warn("failed to create errors counter", zap.Error(err))
	}

	m.duration, err = m.meter.Float64Histogram(
		"topicd.embedding.fetch_duration_seconds",
		metric.WithDescription("Duration of cache-miss embedding fetches in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}
}

// RecordLookup records a cache lookup and, for misses, the fetch duration.
func (m *Metrics) RecordLookup(ctx context.Context, hit bool, duration time.Duration, err error) {
	result := "miss"
	if hit {
		result = "hit"
	}
	attrs := metric.WithAttributes(attribute.String("result", result))

	if m.lookups != nil {
		m.lookups.Add(ctx, 1, attrs)
	}
	if !hit && m.duration != nil {
		m.duration.Record(ctx, duration.Seconds(), attrs)
	}
	if err != nil && m.errors != nil {
		m.errors.Add(ctx, 1)
	}
}
