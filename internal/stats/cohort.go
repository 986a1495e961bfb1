package stats

import (
	"context"
	"strings"
	"time"

	"progress-service/internal/db"
	"progress-service/internal/metrics"

	"github.com/uptrace/bun"
)

// CohortQuery filters a course dashboard. Zero values mean "no filter".
type CohortQuery struct {
	CourseID     int64
	Query        string
	From         *time.Time // inclusive
	To           *time.Time // exclusive
	Sort         SortMode
	ExerciseType string
}

// StudentRow is one enrolled student's rollup. PercentCorrect is nil when the
// student has no answers in range; AvgTime is nil when no attempt recorded a
// time.
type StudentRow struct {
	StudentID      int64    `bun:"student_id" json:"studentId"`
	Email          string   `bun:"email" json:"email"`
	FirstName      string   `bun:"first_name" json:"firstName"`
	LastName       string   `bun:"last_name" json:"lastName"`
	Attempts       int      `bun:"attempts" json:"attempts"`
	TotalCorrect   int      `bun:"total_correct" json:"totalCorrect"`
	TotalWrong     int      `bun:"total_wrong" json:"totalWrong"`
	PercentCorrect *float64 `bun:"percent_correct" json:"percentCorrect"`
	AvgTime        *float64 `bun:"avg_time" json:"avgTime"`
}

// CohortRepository aggregates attempts per enrolled student.
type CohortRepository interface {
	CohortRows(ctx context.Context, q CohortQuery) ([]StudentRow, error)
}

type cohortRepository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewCohortRepository(db bun.IDB, m *metrics.Metrics) CohortRepository {
	return &cohortRepository{db: db, metrics: m}
}

// CohortRows left-joins attempts so students without attempts in range still
// appear. Range and exercise filters sit in the join condition for that reason.
func (r *cohortRepository) CohortRows(ctx context.Context, q CohortQuery) ([]StudentRow, error) {
	start := time.Now()

	sel := r.db.NewSelect().
		TableExpr("enrollments AS e").
		Join("JOIN users AS u ON u.id = e.student_id").
		Join("LEFT JOIN attempts AS a").
		JoinOn("a.user_id = u.id")

	if q.From != nil {
		sel = sel.JoinOn("a.completed_at >= ?", *q.From)
	}
	if q.To != nil {
		sel = sel.JoinOn("a.completed_at < ?", *q.To)
	}
	if q.ExerciseType != "" {
		sel = sel.JoinOn("a.exercise_type = ?", q.ExerciseType)
	}

	sel = sel.
		ColumnExpr("u.id AS student_id").
		ColumnExpr("u.email, u.first_name, u.last_name").
		ColumnExpr("COUNT(a.id) AS attempts").
		ColumnExpr("COALESCE(SUM(a.correct_count), 0) AS total_correct").
		ColumnExpr("COALESCE(SUM(a.wrong_count), 0) AS total_wrong").
		ColumnExpr("ROUND(SUM(a.correct_count) * 100.0 / NULLIF(SUM(a.correct_count) + SUM(a.wrong_count), 0), 2)::float8 AS percent_correct").
		ColumnExpr("AVG(NULLIF(a.average_time, 0))::float8 AS avg_time").
		Where("e.course_id = ?", q.CourseID)

	if term := strings.TrimSpace(q.Query); term != "" {
		pattern := "%" + escapeLike(term) + "%"
		sel = sel.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.
				Where("(u.first_name || ' ' || u.last_name) ILIKE ?", pattern).
				WhereOr("u.email ILIKE ?", pattern)
		})
	}

	rows := make([]StudentRow, 0)
	err := sel.
		GroupExpr("u.id, u.email, u.first_name, u.last_name").
		Scan(ctx, &rows)

	r.metrics.DB().RecordQuery(ctx, "select", "attempts", time.Since(start), err)

	if err != nil {
		return nil, db.Classify(err)
	}
	return rows, nil
}

// escapeLike makes LIKE metacharacters in user input literal.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// CohortStats returns the course rollup in the requested order.
func (s *service) CohortStats(ctx context.Context, q CohortQuery) ([]StudentRow, error) {
	if q.CourseID <= 0 {
		return nil, ErrInvalidInput
	}
	q.Sort = ParseSortMode(string(q.Sort))

	rows, err := s.cohort.CohortRows(ctx, q)
	if err != nil {
		return nil, err
	}

	SortRows(rows, q.Sort)
	return rows, nil
}
