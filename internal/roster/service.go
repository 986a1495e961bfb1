package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"progress-service/internal/user"

	"github.com/go-playground/validator/v10"
)

var ErrNotTeacher = errors.New("course owner must be a teacher")

type Service interface {
	CreateCourse(ctx context.Context, name string, teacherID int64) (*Course, error)
	GetCourse(ctx context.Context, id int64) (*Course, error)
	Enroll(ctx context.Context, studentID, courseID int64) error
	Unenroll(ctx context.Context, studentID, courseID int64) error
	ListStudents(ctx context.Context, courseID int64) ([]StudentSummary, error)
}

type service struct {
	repo     Repository
	users    user.Repository
	validate *validator.Validate
}

func NewService(repo Repository, users user.Repository) Service {
	return &service{
		repo:     repo,
		users:    users,
		validate: validator.New(),
	}
}

func (s *service) CreateCourse(ctx context.Context, name string, teacherID int64) (*Course, error) {
	course := &Course{Name: strings.TrimSpace(name), TeacherID: teacherID}
	if err := s.validate.Struct(course); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	teacher, err := s.users.GetByID(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if !teacher.IsTeacher() {
		return nil, ErrNotTeacher
	}

	return s.repo.CreateCourse(ctx, course)
}

func (s *service) GetCourse(ctx context.Context, id int64) (*Course, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetCourse(ctx, id)
}

func (s *service) Enroll(ctx context.Context, studentID, courseID int64) error {
	if studentID <= 0 || courseID <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Enroll(ctx, studentID, courseID)
}

func (s *service) Unenroll(ctx context.Context, studentID, courseID int64) error {
	if studentID <= 0 || courseID <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Unenroll(ctx, studentID, courseID)
}

func (s *service) ListStudents(ctx context.Context, courseID int64) ([]StudentSummary, error) {
	if courseID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.ListStudents(ctx, courseID)
}
