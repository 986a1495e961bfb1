package attempt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"progress-service/internal/metrics"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// Publisher receives committed attempts. Delivery is best effort.
type Publisher interface {
	PublishAttemptRecorded(ctx context.Context, event RecordedEvent) error
}

// RecordKeeper tracks the per-session personal best.
type RecordKeeper interface {
	OnAttempt(ctx context.Context, sessionID string, userID int64, exerciseType string, points int) (int, error)
}

type Submission struct {
	UserID    int64
	SessionID string
	Payload   Payload
}

// Result is what the trainer shows after a round.
type Result struct {
	Attempt *Attempt `json:"attempt"`
	Percent float64  `json:"percent"`
	Record  int      `json:"record"`
}

type Service interface {
	RecordAttempt(ctx context.Context, userID int64, payload Payload) (*Attempt, error)
	Submit(ctx context.Context, sub Submission) (*Result, error)
	BestScore(ctx context.Context, userID int64, exerciseType string) (int, error)
	RecentAttempts(ctx context.Context, userID int64, exerciseType string, limit int) ([]Attempt, error)
}

type service struct {
	repo            Repository
	records         RecordKeeper
	publisher       Publisher
	defaultExercise string
	validate        *validator.Validate
	logger          *slog.Logger
	metrics         *metrics.Metrics
}

// NewService wires the ledger. records and publisher may be nil.
func NewService(repo Repository, records RecordKeeper, publisher Publisher, defaultExercise string, logger *slog.Logger, m *metrics.Metrics) Service {
	if defaultExercise == "" {
		defaultExercise = DefaultExerciseType
	}
	return &service{
		repo:            repo,
		records:         records,
		publisher:       publisher,
		defaultExercise: defaultExercise,
		validate:        validator.New(),
		logger:          logger,
		metrics:         m,
	}
}

func (s *service) RecordAttempt(ctx context.Context, userID int64, payload Payload) (*Attempt, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}

	payload = payload.Normalize(s.defaultExercise)
	if err := s.validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	attempt, err := s.repo.Create(ctx, &Attempt{
		UserID:       userID,
		ExerciseType: payload.ExerciseType,
		CorrectCount: payload.Correct,
		WrongCount:   payload.Wrong,
		TotalPoints:  payload.Points,
		AverageTime:  payload.AvgTime,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAttempt(ctx, attempt.ExerciseType)
	return attempt, nil
}

// Submit records the attempt, then updates the session record and publishes
// the event. Only the ledger write can fail the submission.
func (s *service) Submit(ctx context.Context, sub Submission) (*Result, error) {
	attempt, err := s.RecordAttempt(ctx, sub.UserID, sub.Payload)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Attempt: attempt,
		Percent: attempt.Percent(2),
		Record:  attempt.TotalPoints,
	}

	if s.records != nil && sub.SessionID != "" {
		record, err := s.records.OnAttempt(ctx, sub.SessionID, sub.UserID, attempt.ExerciseType, attempt.TotalPoints)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to update session record", "user_id", sub.UserID, "error", err)
		} else {
			result.Record = record
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishAttemptRecorded(ctx, NewRecordedEvent(attempt)); err != nil {
			s.logger.WarnContext(ctx, "failed to publish attempt event", "attempt_id", attempt.ID, "error", err)
		}
	}

	return result, nil
}

func (s *service) BestScore(ctx context.Context, userID int64, exerciseType string) (int, error) {
	if exerciseType == "" {
		exerciseType = s.defaultExercise
	}
	return s.repo.BestScore(ctx, userID, exerciseType)
}

func (s *service) RecentAttempts(ctx context.Context, userID int64, exerciseType string, limit int) ([]Attempt, error) {
	if limit < 1 {
		return nil, ErrInvalidInput
	}
	if exerciseType == "" {
		exerciseType = s.defaultExercise
	}
	return s.repo.Recent(ctx, userID, exerciseType, limit)
}
