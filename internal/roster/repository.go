package roster

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"progress-service/internal/db"
	"progress-service/internal/metrics"
	"progress-service/internal/user"

	"github.com/uptrace/bun"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrInvalidInput   = errors.New("invalid input")
)

type Repository interface {
	CreateCourse(ctx context.Context, course *Course) (*Course, error)
	GetCourse(ctx context.Context, id int64) (*Course, error)
	Enroll(ctx context.Context, studentID, courseID int64) error
	Unenroll(ctx context.Context, studentID, courseID int64) error
	ListStudents(ctx context.Context, courseID int64) ([]StudentSummary, error)
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

func (r *repository) CreateCourse(ctx context.Context, course *Course) (*Course, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(course).Returning("*").Exec(ctx)

	r.metrics.DB().RecordQuery(ctx, "insert", "courses", time.Since(start), err)

	if err != nil {
		return nil, db.Classify(err)
	}
	return course, nil
}

func (r *repository) GetCourse(ctx context.Context, id int64) (*Course, error) {
	start := time.Now()
	course := new(Course)
	err := r.db.NewSelect().Model(course).Where("c.id = ?", id).Scan(ctx)

	r.metrics.DB().RecordQuery(ctx, "select", "courses", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, db.Classify(err)
	}
	return course, nil
}

// Enroll is idempotent; re-enrolling keeps the original assigned_at.
func (r *repository) Enroll(ctx context.Context, studentID, courseID int64) error {
	start := time.Now()
	_, err := r.db.NewInsert().
		Model(&Enrollment{StudentID: studentID, CourseID: courseID}).
		On("CONFLICT (student_id, course_id) DO NOTHING").
		Exec(ctx)

	r.metrics.DB().RecordQuery(ctx, "insert", "enrollments", time.Since(start), err)

	return db.Classify(err)
}

// Unenroll is idempotent and never touches attempts.
func (r *repository) Unenroll(ctx context.Context, studentID, courseID int64) error {
	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*Enrollment)(nil)).
		Where("student_id = ?", studentID).
		Where("course_id = ?", courseID).
		Exec(ctx)

	r.metrics.DB().RecordQuery(ctx, "delete", "enrollments", time.Since(start), err)

	return db.Classify(err)
}

// ListStudents orders by last name, first name, email; empty names sort last.
func (r *repository) ListStudents(ctx context.Context, courseID int64) ([]StudentSummary, error) {
	start := time.Now()
	students := make([]StudentSummary, 0)
	err := r.db.NewSelect().
		Model((*user.User)(nil)).
		Column("u.id", "u.email", "u.first_name", "u.last_name").
		ColumnExpr("e.assigned_at").
		Join("JOIN enrollments AS e ON e.student_id = u.id").
		Where("e.course_id = ?", courseID).
		OrderExpr("NULLIF(u.last_name, '') ASC NULLS LAST").
		OrderExpr("NULLIF(u.first_name, '') ASC NULLS LAST").
		OrderExpr("u.email ASC").
		Scan(ctx, &students)

	r.metrics.DB().RecordQuery(ctx, "select", "enrollments", time.Since(start), err)

	if err != nil {
		return nil, db.Classify(err)
	}
	return students, nil
}
