package service

import (
	"math"

	"github.com/lshigami/wellrelay/internal/dto"
	"github.com/spf13/cast"
)

// MaxResponseValue caps a single answer. The instruments answer 0-3 or 0/1;
// anything larger is a client error and must not dominate the total.
const MaxResponseValue = 100

// ScoreValue coerces a submitted answer value to an integer in
// [0, MaxResponseValue]. Missing or malformed values count as 0.
// Numeric strings are read in base 10 and fractions truncate.
func ScoreValue(v any) int {
	if v == nil {
		return 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= MaxResponseValue {
		return MaxResponseValue
	}
	return int(f)
}

// TotalScore sums the coerced values. The sum saturates at math.MaxInt32.
func TotalScore(responses []dto.AssessmentResponseItem) int {
	total := 0
	for _, r := range responses {
		v := ScoreValue(r.Value)
		if total > math.MaxInt32-v {
			return math.MaxInt32
		}
		total += v
	}
	return total
}
