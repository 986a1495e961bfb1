package metrics

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DatabaseMetrics covers the bun pool and every repository query.
type DatabaseMetrics struct {
	pool          metric.Int64ObservableGauge
	waits         metric.Int64ObservableCounter
	queryDuration metric.Float64Histogram
	queryErrors   metric.Int64Counter
}

// Ledger and dashboard queries sit well under 50ms; the tail is for
// statement_timeout hits.
var queryBuckets = []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5}

var (
	poolOpen  = metric.WithAttributes(attribute.String("state", "open"))
	poolIdle  = metric.WithAttributes(attribute.String("state", "idle"))
	poolInUse = metric.WithAttributes(attribute.String("state", "in_use"))
)

func NewDatabaseMetrics(meter metric.Meter) (*DatabaseMetrics, error) {
	pool, err := meter.Int64ObservableGauge("db.client.connections.usage",
		metric.WithDescription("Pool connections by state (open, idle, in_use)"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}

	waits, err := meter.Int64ObservableCounter("db.client.connections.wait_count",
		metric.WithDescription("Times a query waited for a free connection"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("db.client.query.duration",
		metric.WithDescription("Repository query latency by operation and table"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(queryBuckets...))
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter("db.client.query.errors",
		metric.WithDescription("Failed repository queries by operation and table"),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, err
	}

	return &DatabaseMetrics{
		pool:          pool,
		waits:         waits,
		queryDuration: duration,
		queryErrors:   failures,
	}, nil
}

// RegisterDB observes the pool of db on every collection.
func (dm *DatabaseMetrics) RegisterDB(db *sql.DB, meter metric.Meter) error {
	if dm == nil || db == nil {
		return nil
	}

	_, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := db.Stats()
		o.ObserveInt64(dm.pool, int64(s.OpenConnections), poolOpen)
		o.ObserveInt64(dm.pool, int64(s.Idle), poolIdle)
		o.ObserveInt64(dm.pool, int64(s.InUse), poolInUse)
		o.ObserveInt64(dm.waits, s.WaitCount)
		return nil
	}, dm.pool, dm.waits)
	return err
}

// RecordQuery is called by repositories after each statement.
func (dm *DatabaseMetrics) RecordQuery(ctx context.Context, operation, table string, duration time.Duration, err error) {
	if dm == nil || dm.queryDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("table", table),
	)
	dm.queryDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil && dm.queryErrors != nil {
		dm.queryErrors.Add(ctx, 1, attrs)
	}
}
