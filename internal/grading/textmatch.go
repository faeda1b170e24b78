package grading

import "strings"

// normalize trims surrounding whitespace and case-folds. Inner spacing and
// punctuation are significant: text answers are exact apart from case.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
