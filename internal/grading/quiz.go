package grading

import (
	"fmt"
	"math"
	"time"

	"github.com/mind-engage/mindengage-course/internal/course"
)

// DefaultPassThreshold is the minimum percentage needed to pass a module quiz.
const DefaultPassThreshold = 70

// Reasons reported for submission entries that were not graded.
const (
	SkipUnknownQuestion = "unknown question"
	SkipDuplicate       = "duplicate answer"
	SkipMalformed       = "malformed entry"
	SkipMissingQuestion = "missing question_id"
)

type Config struct {
	PassThreshold int
}

func DefaultConfig() Config { return Config{PassThreshold: DefaultPassThreshold} }

// Submission is the canonical shape of one submitted answer.
type Submission struct {
	QuestionID int64  `json:"question_id"`
	AnswerText string `json:"answer_text"`
}

// Skipped describes a submission entry that did not count toward the score.
type Skipped struct {
	QuestionID int64  `json:"question_id,omitempty"`
	Reason     string `json:"reason"`
}

type QuizResult struct {
	ModuleID       int64        `json:"module_id"`
	Score          int          `json:"score"`
	Passed         bool         `json:"passed"`
	CompletionDate *time.Time   `json:"completion_date,omitempty"`
	Answers        []Evaluation `json:"answers"`
	Feedback       string       `json:"feedback"`
	Skipped        []Skipped    `json:"skipped,omitempty"`
}

// QuizGrader scores a whole module quiz.
type QuizGrader struct {
	cfg  Config
	eval *Evaluator
}

// NewQuizGrader falls back to DefaultPassThreshold when cfg leaves the
// threshold unset (zero or negative).
func NewQuizGrader(cfg Config) *QuizGrader {
	if cfg.PassThreshold <= 0 {
		cfg.PassThreshold = DefaultPassThreshold
	}
	return &QuizGrader{cfg: cfg, eval: NewEvaluator()}
}

func (g *QuizGrader) Threshold() int { return g.cfg.PassThreshold }

func (g *QuizGrader) Passed(score int) bool { return score >= g.cfg.PassThreshold }

// Grade evaluates subs against the module's questions. Entries naming an
// unknown question, or a question already answered earlier in subs, are
// skipped and reported in the result. The score is relative to every
// question of the module, answered or not.
func (g *QuizGrader) Grade(moduleID int64, questions []course.Question, subs []Submission, now time.Time) (QuizResult, error) {
	byID := make(map[int64]course.Question, len(questions))
	for _, q := range questions {
		if q.ModuleID != moduleID {
			return QuizResult{}, fmt.Errorf("question %d belongs to module %d, not %d", q.ID, q.ModuleID, moduleID)
		}
		byID[q.ID] = q
	}

	res := QuizResult{ModuleID: moduleID, Answers: make([]Evaluation, 0, len(subs))}
	answered := make(map[int64]struct{}, len(subs))
	correct := 0
	for _, s := range subs {
		q, ok := byID[s.QuestionID]
		if !ok {
			res.Skipped = append(res.Skipped, Skipped{QuestionID: s.QuestionID, Reason: SkipUnknownQuestion})
			continue
		}
		if _, dup := answered[q.ID]; dup {
			res.Skipped = append(res.Skipped, Skipped{QuestionID: s.QuestionID, Reason: SkipDuplicate})
			continue
		}
		answered[q.ID] = struct{}{}

		ev := g.eval.Evaluate(q, s.AnswerText)
		if ev.IsCorrect {
			correct++
		}
		res.Answers = append(res.Answers, ev)
	}

	res.Score = Score(correct, len(questions))
	res.Passed = g.Passed(res.Score)
	if res.Passed {
		t := now
		res.CompletionDate = &t
	}
	res.Feedback = g.Feedback(res.Score)
	return res, nil
}

// Score is the rounded percentage of correct answers, 0 for an empty quiz.
// Halves round to even.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(correct) / float64(total) * 100))
}

// Feedback returns the overall message for a quiz score.
func (g *QuizGrader) Feedback(score int) string {
	switch {
	case !g.Passed(score):
		return fmt.Sprintf("You need to score at least %d%% to pass. Review the material and try again.", g.cfg.PassThreshold)
	case score >= 90:
		return "Excellent work! You've mastered this module."
	case score >= 80:
		return "Great job! You have a solid understanding of the material."
	default:
		return "Good work! You've passed the quiz."
	}
}
