package attempt

import (
	"math"
	"time"

	"github.com/uptrace/bun"
)

// DefaultExerciseType is the baseline kind of practice round.
const DefaultExerciseType = "multiplication_basic"

type Attempt struct {
	bun.BaseModel `bun:"table:attempts,alias:a"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID       int64     `bun:"user_id,notnull" json:"userId"`
	ExerciseType string    `bun:"exercise_type,notnull" json:"exerciseType"`
	CorrectCount int       `bun:"correct_count,notnull" json:"correct"`
	WrongCount   int       `bun:"wrong_count,notnull" json:"wrong"`
	TotalPoints  int       `bun:"total_points,notnull" json:"points"`
	AverageTime  float64   `bun:"average_time,notnull" json:"avgTime"`
	CompletedAt  time.Time `bun:"completed_at,nullzero,notnull,default:clock_timestamp()" json:"completedAt"`
}

// Percent returns the share of correct answers rounded to places decimals,
// or 0 when the round had no answers.
func (a *Attempt) Percent(places int) float64 {
	return Percent(a.CorrectCount, a.WrongCount, places)
}

func Percent(correct, wrong, places int) float64 {
	total := correct + wrong
	if total == 0 {
		return 0
	}
	return Round(float64(correct)*100/float64(total), places)
}

func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// Totals is the rollup of one user's attempts of one exercise type.
type Totals struct {
	Sessions     int `bun:"sessions" json:"totalSessions"`
	TotalCorrect int `bun:"total_correct" json:"totalCorrect"`
	TotalWrong   int `bun:"total_wrong" json:"totalWrong"`
	Best         int `bun:"best" json:"overallBest"`
}

// RecordedEvent is published after an attempt is committed.
type RecordedEvent struct {
	AttemptID    int64     `json:"attemptId"`
	UserID       int64     `json:"userId"`
	ExerciseType string    `json:"exerciseType"`
	Correct      int       `json:"correct"`
	Wrong        int       `json:"wrong"`
	Points       int       `json:"points"`
	AvgTime      float64   `json:"avgTime"`
	CompletedAt  time.Time `json:"completedAt"`
}

func NewRecordedEvent(a *Attempt) RecordedEvent {
	return RecordedEvent{
		AttemptID:    a.ID,
		UserID:       a.UserID,
		ExerciseType: a.ExerciseType,
		Correct:      a.CorrectCount,
		Wrong:        a.WrongCount,
		Points:       a.TotalPoints,
		AvgTime:      a.AverageTime,
		CompletedAt:  a.CompletedAt,
	}
}
