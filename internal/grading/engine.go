package grading

import (
	"strings"

	"github.com/mind-engage/mindengage-course/internal/course"
)

// Feedback strings attached to a single evaluated answer.
const (
	FeedbackCorrect       = "Correct! Good job."
	FeedbackIncorrect     = "Incorrect answer."
	FeedbackInvalidNumber = "Invalid number format"
)

// Evaluation is the outcome of checking one submitted answer.
type Evaluation struct {
	QuestionID    int64  `json:"question_id"`
	AnswerText    string `json:"answer_text"`
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer,omitempty"` // canonical answer for feedback
	Feedback      string `json:"feedback"`
}

// verdict is what a Strategy reports; feedback is optional and overrides the default.
type verdict struct {
	correct   bool
	canonical string
	feedback  string
}

// Strategy checks a submitted answer against the correct keys of one question type.
type Strategy interface {
	Check(q course.Question, submitted string, correct []string) verdict
}

// Evaluator routes by question type to the matching Strategy.
type Evaluator struct {
	strategies map[string]Strategy
}

// NewEvaluator installs the built-in strategies.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		strategies: map[string]Strategy{
			course.QuestionSingle: singleStrategy{},
			course.QuestionMulti:  multiStrategy{},
			course.QuestionText:   textStrategy{},
			course.QuestionNumber: numberStrategy{},
		},
	}
}

var defaultEvaluator = NewEvaluator()

// Evaluate checks submitted against q using the built-in strategies.
func Evaluate(q course.Question, submitted string) Evaluation {
	return defaultEvaluator.Evaluate(q, submitted)
}

// Evaluate never touches storage. Unknown types and questions without a
// correct key are graded incorrect.
func (e *Evaluator) Evaluate(q course.Question, submitted string) Evaluation {
	var v verdict
	if s, ok := e.strategies[q.Type]; ok {
		if correct := q.CorrectKeys(); len(correct) > 0 {
			v = s.Check(q, submitted, correct)
		}
	}
	if v.feedback == "" {
		if v.correct {
			v.feedback = FeedbackCorrect
		} else {
			v.feedback = FeedbackIncorrect
		}
	}
	return Evaluation{
		QuestionID:    q.ID,
		AnswerText:    submitted,
		IsCorrect:     v.correct,
		CorrectAnswer: v.canonical,
		Feedback:      v.feedback,
	}
}

// --- Strategies ---

type singleStrategy struct{}

func (singleStrategy) Check(_ course.Question, submitted string, correct []string) verdict {
	v := verdict{canonical: correct[0]}
	for _, k := range correct {
		if submitted == k {
			v.correct = true
			break
		}
	}
	return v
}

// multiSeparator joins the selected options of a multi answer.
const multiSeparator = ", "

type multiStrategy struct{}

func (multiStrategy) Check(_ course.Question, submitted string, correct []string) verdict {
	want := toSet(correct)
	var got map[string]struct{}
	if submitted != "" {
		got = toSet(strings.Split(submitted, multiSeparator))
	}
	return verdict{
		correct:   setEqual(want, got),
		canonical: strings.Join(dedupe(correct), multiSeparator),
	}
}

type textStrategy struct{}

func (textStrategy) Check(_ course.Question, submitted string, correct []string) verdict {
	v := verdict{canonical: correct[0]}
	norm := normalize(submitted)
	for _, k := range correct {
		if normalize(k) == norm {
			v.correct = true
			break
		}
	}
	return v
}

// helpers

func toSet(arr []string) map[string]struct{} {
	m := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		m[s] = struct{}{}
	}
	return m
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func dedupe(arr []string) []string {
	seen := make(map[string]struct{}, len(arr))
	out := make([]string, 0, len(arr))
	for _, s := range arr {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
