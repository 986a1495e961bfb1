// Package stats computes read-only dashboards over the attempt ledger and
// the course roster.
package stats

import (
	"context"
	"errors"
	"time"

	"progress-service/internal/attempt"
)

var ErrInvalidInput = errors.New("invalid input")

type Service interface {
	PersonalStats(ctx context.Context, userID int64, exerciseType string, seriesLimit int) (*PersonalStats, error)
	CohortStats(ctx context.Context, q CohortQuery) ([]StudentRow, error)
	DefaultExerciseType() string
}

type service struct {
	attempts        attempt.Repository
	cohort          CohortRepository
	defaultExercise string
	seriesLimit     int
	location        *time.Location
}

type Options struct {
	DefaultExerciseType string
	SeriesLimit         int
	Location            *time.Location
}

func NewService(attempts attempt.Repository, cohort CohortRepository, opts Options) Service {
	if opts.DefaultExerciseType == "" {
		opts.DefaultExerciseType = attempt.DefaultExerciseType
	}
	if opts.SeriesLimit < 1 {
		opts.SeriesLimit = 10
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &service{
		attempts:        attempts,
		cohort:          cohort,
		defaultExercise: opts.DefaultExerciseType,
		seriesLimit:     opts.SeriesLimit,
		location:        opts.Location,
	}
}

func (s *service) DefaultExerciseType() string {
	return s.defaultExercise
}
