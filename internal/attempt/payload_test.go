package attempt

import (
	"math"
	"net/url"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want Payload
	}{
		{
			name: "Empty",
			raw:  map[string]any{},
			want: Payload{ExerciseType: DefaultExerciseType},
		},
		{
			name: "JSONNumbers",
			raw:  map[string]any{"correct": 8.0, "wrong": 2.0, "points": 80.0, "avg_time": 1.5},
			want: Payload{Correct: 8, Wrong: 2, Points: 80, AvgTime: 1.5, ExerciseType: DefaultExerciseType},
		},
		{
			name: "PointsDefaultToCorrect",
			raw:  map[string]any{"correct": 7, "wrong": 3},
			want: Payload{Correct: 7, Wrong: 3, Points: 7, ExerciseType: DefaultExerciseType},
		},
		{
			name: "NullPointsDefaultToCorrect",
			raw:  map[string]any{"correct": 7, "points": nil},
			want: Payload{Correct: 7, Points: 7, ExerciseType: DefaultExerciseType},
		},
		{
			name: "PointsIndependentOfCorrect",
			raw:  map[string]any{"correct": 5, "points": 120},
			want: Payload{Correct: 5, Points: 120, ExerciseType: DefaultExerciseType},
		},
		{
			name: "FormStrings",
			raw:  map[string]any{"correct": " 9 ", "wrong": "1", "points": "95", "avg_time": "2.25", "exercise_type": "division"},
			want: Payload{Correct: 9, Wrong: 1, Points: 95, AvgTime: 2.25, ExerciseType: "division"},
		},
		{
			name: "NegativesBecomeZero",
			raw:  map[string]any{"correct": -4, "wrong": "-1", "points": -10, "avg_time": -3.0},
			want: Payload{ExerciseType: DefaultExerciseType},
		},
		{
			name: "NonNumericBecomesZero",
			raw:  map[string]any{"correct": "many", "wrong": []int{1}, "avg_time": "fast"},
			want: Payload{ExerciseType: DefaultExerciseType},
		},
		{
			name: "NonFiniteBecomesZero",
			raw:  map[string]any{"avg_time": math.Inf(1), "correct": "NaN"},
			want: Payload{ExerciseType: DefaultExerciseType},
		},
		{
			name: "FractionalCountsTruncate",
			raw:  map[string]any{"correct": "8.9"},
			want: Payload{Correct: 8, Points: 8, ExerciseType: DefaultExerciseType},
		},
		{
			name: "HugeCountsClamp",
			raw:  map[string]any{"points": 1e12},
			want: Payload{Points: math.MaxInt32, ExerciseType: DefaultExerciseType},
		},
		{
			name: "BlankExerciseType",
			raw:  map[string]any{"exercise_type": "   "},
			want: Payload{ExerciseType: DefaultExerciseType},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePayload(tt.raw, ""))
		})
	}
}

func TestParsePayload_CustomDefaultExercise(t *testing.T) {
	got := ParsePayload(map[string]any{}, "addition_basic")
	assert.Equal(t, "addition_basic", got.ExerciseType)
}

func TestParsePayload_LongExerciseTypeIsCut(t *testing.T) {
	long := strings.Repeat("ж", MaxExerciseTypeLen+10)

	got := ParsePayload(map[string]any{"exercise_type": long, "correct": 4}, "")

	assert.Equal(t, strings.Repeat("ж", MaxExerciseTypeLen), got.ExerciseType)
	assert.Equal(t, 4, got.Correct)
	assert.NoError(t, validator.New().Struct(got))
}

func TestFormValues(t *testing.T) {
	raw := FormValues(url.Values{"correct": {"3", "4"}, "points": {""}})

	assert.Equal(t, "3", raw["correct"])

	got := ParsePayload(raw, "")
	assert.Equal(t, 3, got.Correct)
	assert.Equal(t, 3, got.Points, "empty points field defaults to correct")
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 80.0, Percent(8, 2, 1))
	assert.Equal(t, 66.7, Percent(2, 1, 1))
	assert.Equal(t, 66.67, Percent(2, 1, 2))
	assert.Equal(t, 0.0, Percent(0, 0, 1))
	assert.Equal(t, 0.0, Percent(0, 5, 2))

	a := &Attempt{CorrectCount: 9, WrongCount: 1}
	assert.Equal(t, 90.0, a.Percent(1))
}
