package attempt

import (
	"context"
	"database/sql"
	"time"

	"progress-service/internal/db"
	"progress-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, attempt *Attempt) (*Attempt, error)
	BestScore(ctx context.Context, userID int64, exerciseType string) (int, error)
	Recent(ctx context.Context, userID int64, exerciseType string, limit int) ([]Attempt, error)
	Totals(ctx context.Context, userID int64, exerciseType string) (Totals, error)
	// ReadSnapshot runs fn against a read-only repeatable-read transaction,
	// so every read inside fn sees the same snapshot.
	ReadSnapshot(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, attempt *Attempt) (*Attempt, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(attempt).Returning("*").Exec(ctx)

	r.metrics.DB().RecordQuery(ctx, "insert", "attempts", time.Since(start), err)

	if err != nil {
		return nil, db.Classify(err)
	}
	return attempt, nil
}

func (r *repository) BestScore(ctx context.Context, userID int64, exerciseType string) (int, error) {
	start := time.Now()
	var best int
	err := r.db.NewSelect().
		Model((*Attempt)(nil)).
		ColumnExpr("COALESCE(MAX(a.total_points), 0)").
		Where("a.user_id = ?", userID).
		Where("a.exercise_type = ?", exerciseType).
		Scan(ctx, &best)

	r.metrics.DB().RecordQuery(ctx, "select", "attempts", time.Since(start), err)

	if err != nil {
		return 0, db.Classify(err)
	}
	return best, nil
}

func (r *repository) Recent(ctx context.Context, userID int64, exerciseType string, limit int) ([]Attempt, error) {
	start := time.Now()
	attempts := make([]Attempt, 0, limit)
	err := r.db.NewSelect().
		Model(&attempts).
		Where("a.user_id = ?", userID).
		Where("a.exercise_type = ?", exerciseType).
		OrderExpr("a.completed_at DESC, a.id DESC").
		Limit(limit).
		Scan(ctx)

	r.metrics.DB().RecordQuery(ctx, "select", "attempts", time.Since(start), err)

	if err != nil {
		return nil, db.Classify(err)
	}
	return attempts, nil
}

func (r *repository) Totals(ctx context.Context, userID int64, exerciseType string) (Totals, error) {
	start := time.Now()
	var totals Totals
	err := r.db.NewSelect().
		Model((*Attempt)(nil)).
		ColumnExpr("COUNT(*) AS sessions").
		ColumnExpr("COALESCE(SUM(a.correct_count), 0) AS total_correct").
		ColumnExpr("COALESCE(SUM(a.wrong_count), 0) AS total_wrong").
		ColumnExpr("COALESCE(MAX(a.total_points), 0) AS best").
		Where("a.user_id = ?", userID).
		Where("a.exercise_type = ?", exerciseType).
		Scan(ctx, &totals)

	r.metrics.DB().RecordQuery(ctx, "select", "attempts", time.Since(start), err)

	if err != nil {
		return Totals{}, db.Classify(err)
	}
	return totals, nil
}

func (r *repository) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	var fnErr error
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err := r.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		fnErr = fn(ctx, &repository{db: tx, metrics: r.metrics})
		return fnErr
	})
	if err != nil && fnErr != nil {
		return fnErr
	}
	return db.Classify(err)
}
