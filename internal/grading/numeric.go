package grading

import (
	"math"
	"strconv"
	"strings"

	"github.com/mind-engage/mindengage-course/internal/course"
)

// numberStrategy compares against the first correct key within the
// question's absolute tolerance (0 when unset).
type numberStrategy struct{}

func (numberStrategy) Check(q course.Question, submitted string, correct []string) verdict {
	target, ok := parseFloat(correct[0])
	if !ok {
		return verdict{canonical: correct[0]}
	}
	v := verdict{canonical: formatFloat(target)}

	got, ok := parseFloat(submitted)
	if !ok {
		v.feedback = FeedbackInvalidNumber
		return v
	}
	tol := 0.0
	if q.Tolerance != nil {
		tol = *q.Tolerance
	}
	v.correct = math.Abs(got-target) <= tol
	return v
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// formatFloat always keeps a fractional part for finite values: 42 -> "42.0".
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsInf(v, 0) || math.IsNaN(v) || strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}
