// Package record keeps the "record to display" for a session. The durable
// maximum over the attempt ledger is the source of truth; the session cache
// is seeded from it at login and only ever raised afterwards.
package record

import (
	"context"
	"errors"
	"log/slog"

	"progress-service/internal/db"
	"progress-service/internal/metrics"
)

// Ledger is the authoritative best score.
type Ledger interface {
	BestScore(ctx context.Context, userID int64, exerciseType string) (int, error)
}

// Cache is the session-scoped copy.
type Cache interface {
	Get(ctx context.Context, sessionID, exerciseType string) (int, bool, error)
	Set(ctx context.Context, sessionID, exerciseType string, value int) error
	Raise(ctx context.Context, sessionID, exerciseType string, value int) (int, error)
	Forget(ctx context.Context, sessionID string) error
}

type Reconciler struct {
	ledger  Ledger
	cache   Cache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewReconciler(ledger Ledger, cache Cache, logger *slog.Logger, m *metrics.Metrics) *Reconciler {
	return &Reconciler{
		ledger:  ledger,
		cache:   cache,
		logger:  logger,
		metrics: m,
	}
}

// OnLogin seeds the session with the ledger's best score. When the ledger is
// unavailable the session keeps whatever it already held (0 for a new one)
// and login proceeds.
func (r *Reconciler) OnLogin(ctx context.Context, sessionID string, userID int64, exerciseType string) (int, error) {
	best, err := r.ledger.BestScore(ctx, userID, exerciseType)
	if err != nil {
		if !errors.Is(err, db.ErrStorageUnavailable) {
			return 0, err
		}

		r.logger.WarnContext(ctx, "ledger unavailable at login, keeping cached record",
			"user_id", userID, "exercise_type", exerciseType, "error", err)
		r.metrics.RecordRecordFallback(ctx)

		prior, ok, cacheErr := r.cache.Get(ctx, sessionID, exerciseType)
		if cacheErr != nil {
			return 0, cacheErr
		}
		if !ok {
			return 0, r.cache.Set(ctx, sessionID, exerciseType, 0)
		}
		return prior, nil
	}

	if err := r.cache.Set(ctx, sessionID, exerciseType, best); err != nil {
		return best, err
	}
	return best, nil
}

// OnAttempt raises the cached record when points beat it and returns the
// record to display. An exercise type the session has not seen yet is seeded
// from the ledger first.
func (r *Reconciler) OnAttempt(ctx context.Context, sessionID string, userID int64, exerciseType string, points int) (int, error) {
	if err := r.seed(ctx, sessionID, userID, exerciseType); err != nil {
		return 0, err
	}
	return r.cache.Raise(ctx, sessionID, exerciseType, points)
}

// Current returns the cached record, seeding it from the ledger on a miss.
// It is 0 when neither has a value.
func (r *Reconciler) Current(ctx context.Context, sessionID string, userID int64, exerciseType string) (int, error) {
	if err := r.seed(ctx, sessionID, userID, exerciseType); err != nil {
		return 0, err
	}
	value, _, err := r.cache.Get(ctx, sessionID, exerciseType)
	return value, err
}

// seed fills a missing cache entry with the ledger's best score. A cached
// value is left alone. With the ledger unavailable the entry stays empty and
// counts as 0.
func (r *Reconciler) seed(ctx context.Context, sessionID string, userID int64, exerciseType string) error {
	_, ok, err := r.cache.Get(ctx, sessionID, exerciseType)
	if err != nil || ok {
		return err
	}

	best, err := r.ledger.BestScore(ctx, userID, exerciseType)
	if err != nil {
		if !errors.Is(err, db.ErrStorageUnavailable) {
			return err
		}
		r.logger.WarnContext(ctx, "ledger unavailable, record starts from zero",
			"user_id", userID, "exercise_type", exerciseType, "error", err)
		r.metrics.RecordRecordFallback(ctx)
		return nil
	}

	_, err = r.cache.Raise(ctx, sessionID, exerciseType, best)
	return err
}

// Forget drops the session's cached records.
func (r *Reconciler) Forget(ctx context.Context, sessionID string) error {
	return r.cache.Forget(ctx, sessionID)
}
