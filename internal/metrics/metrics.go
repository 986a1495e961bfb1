package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database *DatabaseMetrics
	Events   *EventMetrics

	attemptsRecorded   metric.Int64Counter
	personalDashboards metric.Int64Counter
	cohortDashboards   metric.Int64Counter
	degradedReads      metric.Int64Counter
	recordFallbacks    metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	events, err := NewEventMetrics(meter)
	if err != nil {
		return nil, err
	}

	m := &Metrics{Database: database, Events: events}

	m.attemptsRecorded, err = meter.Int64Counter(
		"progress_service.attempts.recorded",
		metric.WithDescription("Total number of practice attempts recorded"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	m.personalDashboards, err = meter.Int64Counter(
		"progress_service.dashboards.personal",
		metric.WithDescription("Total number of personal dashboards served"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.cohortDashboards, err = meter.Int64Counter(
		"progress_service.dashboards.cohort",
		metric.WithDescription("Total number of cohort dashboards served"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.degradedReads, err = meter.Int64Counter(
		"progress_service.reads.degraded",
		metric.WithDescription("Dashboard reads answered with an empty view because storage was unavailable"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return nil, err
	}

	m.recordFallbacks, err = meter.Int64Counter(
		"progress_service.record.fallbacks",
		metric.WithDescription("Logins that kept the cached record because the ledger was unavailable"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordAttempt(ctx context.Context, exerciseType string) {
	if m != nil && m.attemptsRecorded != nil {
		m.attemptsRecorded.Add(ctx, 1, metric.WithAttributes(attribute.String("exercise_type", exerciseType)))
	}
}

func (m *Metrics) RecordPersonalDashboard(ctx context.Context) {
	if m != nil && m.personalDashboards != nil {
		m.personalDashboards.Add(ctx, 1)
	}
}

func (m *Metrics) RecordCohortDashboard(ctx context.Context, sort string) {
	if m != nil && m.cohortDashboards != nil {
		m.cohortDashboards.Add(ctx, 1, metric.WithAttributes(attribute.String("sort", sort)))
	}
}

func (m *Metrics) RecordDegradedRead(ctx context.Context, view string) {
	if m != nil && m.degradedReads != nil {
		m.degradedReads.Add(ctx, 1, metric.WithAttributes(attribute.String("view", view)))
	}
}

func (m *Metrics) RecordRecordFallback(ctx context.Context) {
	if m != nil && m.recordFallbacks != nil {
		m.recordFallbacks.Add(ctx, 1)
	}
}

// DB returns the query metrics, tolerating a nil receiver.
func (m *Metrics) DB() *DatabaseMetrics {
	if m == nil {
		return nil
	}
	return m.Database
}

// Publish returns the event metrics, tolerating a nil receiver.
func (m *Metrics) Publish() *EventMetrics {
	if m == nil {
		return nil
	}
	return m.Events
}

// NewMock creates a no-op Metrics instance for testing.
// The returned Metrics will safely ignore all Record* calls.
func NewMock() *Metrics {
	return &Metrics{Database: &DatabaseMetrics{}, Events: &EventMetrics{}}
}
