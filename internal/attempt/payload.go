package attempt

import (
	"math"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cast"
)

// MaxExerciseTypeLen bounds the exercise tag in runes. Longer tags are cut.
const MaxExerciseTypeLen = 64

// Payload is an inbound attempt after lenient normalization.
type Payload struct {
	Correct      int     `json:"correct" validate:"gte=0"`
	Wrong        int     `json:"wrong" validate:"gte=0"`
	Points       int     `json:"points" validate:"gte=0"`
	AvgTime      float64 `json:"avg_time" validate:"gte=0"`
	ExerciseType string  `json:"exercise_type" validate:"required,max=64"`
}

// ParsePayload normalizes loosely typed request fields. Missing, negative or
// non-numeric values become 0, missing points default to correct and a blank
// exercise type becomes defaultExercise.
func ParsePayload(raw map[string]any, defaultExercise string) Payload {
	p := Payload{
		Correct: toCount(raw["correct"]),
		Wrong:   toCount(raw["wrong"]),
		AvgTime: toSeconds(raw["avg_time"]),
	}

	if v, ok := raw["points"]; ok && v != nil && v != "" {
		p.Points = toCount(v)
	} else {
		p.Points = p.Correct
	}

	p.ExerciseType = cast.ToString(raw["exercise_type"])

	return p.Normalize(defaultExercise)
}

// Normalize clamps negative or non-finite numbers to 0, fills in the
// exercise type and cuts an overlong one to MaxExerciseTypeLen.
func (p Payload) Normalize(defaultExercise string) Payload {
	if defaultExercise == "" {
		defaultExercise = DefaultExerciseType
	}
	p.Correct = max(p.Correct, 0)
	p.Wrong = max(p.Wrong, 0)
	p.Points = max(p.Points, 0)
	p.AvgTime = toSeconds(p.AvgTime)
	p.ExerciseType = strings.TrimSpace(p.ExerciseType)
	if p.ExerciseType == "" {
		p.ExerciseType = defaultExercise
	}
	if utf8.RuneCountInString(p.ExerciseType) > MaxExerciseTypeLen {
		p.ExerciseType = strings.TrimSpace(string([]rune(p.ExerciseType)[:MaxExerciseTypeLen]))
	}
	return p
}

// FormValues flattens form fields to their first value.
func FormValues(values url.Values) map[string]any {
	raw := make(map[string]any, len(values))
	for k := range values {
		raw[k] = values.Get(k)
	}
	return raw
}

func toCount(v any) int {
	f := toSeconds(v)
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func toSeconds(v any) float64 {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
