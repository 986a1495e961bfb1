package stats_test

import (
	"testing"

	"progress-service/internal/stats"

	"github.com/stretchr/testify/assert"
)

func pct(v float64) *float64 { return &v }

func ids(rows []stats.StudentRow) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.StudentID
	}
	return out
}

func sortFixture() []stats.StudentRow {
	return []stats.StudentRow{
		{StudentID: 1, LastName: "Adams", Email: "a@x", Attempts: 3, PercentCorrect: pct(80), AvgTime: pct(4.5)},
		{StudentID: 2, LastName: "Brown", Email: "b@x", Attempts: 0},
		{StudentID: 3, LastName: "Clark", Email: "c@x", Attempts: 5, PercentCorrect: pct(95), AvgTime: pct(2.0)},
		{StudentID: 4, LastName: "Davis", Email: "d@x", Attempts: 3, PercentCorrect: pct(60)},
	}
}

func TestSortRows(t *testing.T) {
	tests := []struct {
		mode stats.SortMode
		want []int64
	}{
		{stats.SortPercentDesc, []int64{3, 1, 4, 2}},
		{stats.SortPercentAsc, []int64{4, 1, 3, 2}},
		{stats.SortAvgTimeAsc, []int64{3, 1, 2, 4}},
		{stats.SortAvgTimeDesc, []int64{1, 3, 2, 4}},
		{stats.SortAttemptsAsc, []int64{2, 1, 4, 3}},
		{stats.SortAttemptsDesc, []int64{3, 1, 4, 2}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			rows := sortFixture()
			stats.SortRows(rows, tt.mode)
			assert.Equal(t, tt.want, ids(rows))
		})
	}
}

func TestSortRows_TieBreakOnName(t *testing.T) {
	rows := []stats.StudentRow{
		{StudentID: 1, Email: "z@x", PercentCorrect: pct(50)},
		{StudentID: 2, LastName: "Young", FirstName: "Bea", Email: "y@x", PercentCorrect: pct(50)},
		{StudentID: 3, LastName: "Young", FirstName: "Al", Email: "w@x", PercentCorrect: pct(50)},
		{StudentID: 4, LastName: "Abbott", Email: "v@x", PercentCorrect: pct(50)},
		{StudentID: 5, Email: "a@x", PercentCorrect: pct(50)},
	}

	stats.SortRows(rows, stats.SortPercentDesc)

	assert.Equal(t, []int64{4, 3, 2, 5, 1}, ids(rows))
}

func TestParseSortMode(t *testing.T) {
	assert.Equal(t, stats.SortAttemptsDesc, stats.ParseSortMode("attempts_desc"))
	assert.Equal(t, stats.SortAvgTimeAsc, stats.ParseSortMode(" AVG_TIME_ASC "))
	assert.Equal(t, stats.SortPercentDesc, stats.ParseSortMode(""))
	assert.Equal(t, stats.SortPercentDesc, stats.ParseSortMode("name"))
}
