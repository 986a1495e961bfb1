package stats

import (
	"context"
	"time"

	"progress-service/internal/attempt"
)

// DayLabelLayout renders chart labels as day.month.
const DayLabelLayout = "02.01"

type SeriesPoint struct {
	DayLabel    string    `json:"dayLabel"`
	Points      int       `json:"points"`
	Correct     int       `json:"correct"`
	Wrong       int       `json:"wrong"`
	Percent     float64   `json:"percent"`
	AverageTime float64   `json:"averageTime"`
	CompletedAt time.Time `json:"completedAt"`
}

type PersonalStats struct {
	ExerciseType  string        `json:"exerciseType"`
	TotalSessions int           `json:"totalSessions"`
	TotalCorrect  int           `json:"totalCorrect"`
	TotalWrong    int           `json:"totalWrong"`
	OverallBest   int           `json:"overallBest"`
	Series        []SeriesPoint `json:"series"`
}

func emptyPersonal(exerciseType string) *PersonalStats {
	return &PersonalStats{ExerciseType: exerciseType, Series: []SeriesPoint{}}
}

// PersonalStats reads totals and the last seriesLimit attempts from one
// snapshot. The series runs oldest first.
func (s *service) PersonalStats(ctx context.Context, userID int64, exerciseType string, seriesLimit int) (*PersonalStats, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	if exerciseType == "" {
		exerciseType = s.defaultExercise
	}
	if seriesLimit < 1 {
		seriesLimit = s.seriesLimit
	}

	result := emptyPersonal(exerciseType)

	err := s.attempts.ReadSnapshot(ctx, func(ctx context.Context, repo attempt.Repository) error {
		totals, err := repo.Totals(ctx, userID, exerciseType)
		if err != nil {
			return err
		}
		recent, err := repo.Recent(ctx, userID, exerciseType, seriesLimit)
		if err != nil {
			return err
		}

		result.TotalSessions = totals.Sessions
		result.TotalCorrect = totals.TotalCorrect
		result.TotalWrong = totals.TotalWrong
		result.OverallBest = totals.Best
		result.Series = BuildSeries(recent, s.location)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// BuildSeries projects newest-first attempts onto an oldest-first chart series.
func BuildSeries(newestFirst []attempt.Attempt, loc *time.Location) []SeriesPoint {
	if loc == nil {
		loc = time.UTC
	}

	series := make([]SeriesPoint, len(newestFirst))
	for i, a := range newestFirst {
		series[len(newestFirst)-1-i] = SeriesPoint{
			DayLabel:    a.CompletedAt.In(loc).Format(DayLabelLayout),
			Points:      a.TotalPoints,
			Correct:     a.CorrectCount,
			Wrong:       a.WrongCount,
			Percent:     a.Percent(1),
			AverageTime: a.AverageTime,
			CompletedAt: a.CompletedAt,
		}
	}
	return series
}
