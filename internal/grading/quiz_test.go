package grading

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mind-engage/mindengage-course/internal/course"
)

func moduleQuiz() []course.Question {
	tol := 0.1
	key := func(qid int64, text string, ok bool) course.AnswerKey {
		return course.AnswerKey{QuestionID: qid, Text: text, IsCorrect: ok}
	}
	return []course.Question{
		{ID: 10, ModuleID: 2, Type: "single", Answers: []course.AnswerKey{key(10, "WHOIS", true), key(10, "DNS", false)}},
		{ID: 11, ModuleID: 2, Type: "single", Answers: []course.AnswerKey{key(11, "Shodan", true), key(11, "Excel", false)}},
		{ID: 12, ModuleID: 2, Type: "multi", Answers: []course.AnswerKey{key(12, "EXIF", true), key(12, "GPS", true), key(12, "Font", false)}},
		{ID: 13, ModuleID: 2, Type: "number", Tolerance: &tol, Answers: []course.AnswerKey{key(13, "2.5", true)}},
	}
}

func TestGradeThreeOfFour(t *testing.T) {
	g := NewQuizGrader(DefaultConfig())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	subs := []Submission{
		{QuestionID: 10, AnswerText: "WHOIS"},
		{QuestionID: 11, AnswerText: "Excel"},
		{QuestionID: 12, AnswerText: "GPS, EXIF"},
		{QuestionID: 13, AnswerText: "2.45"},
	}
	res, err := g.Grade(2, moduleQuiz(), subs, now)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if res.Score != 75 || !res.Passed {
		t.Fatalf("score=%d passed=%v, want 75/true", res.Score, res.Passed)
	}
	if res.Feedback != "Good work! You've passed the quiz." {
		t.Fatalf("feedback=%q", res.Feedback)
	}
	if res.CompletionDate == nil || !res.CompletionDate.Equal(now) {
		t.Fatalf("completion date=%v, want %v", res.CompletionDate, now)
	}
	if len(res.Answers) != 4 || res.Answers[1].IsCorrect || res.Answers[1].CorrectAnswer != "Shodan" {
		t.Fatalf("unexpected evaluations: %+v", res.Answers)
	}
	if len(res.Skipped) != 0 {
		t.Fatalf("nothing should be skipped: %+v", res.Skipped)
	}
}

func TestGradeSkipsUnknownAndDuplicates(t *testing.T) {
	g := NewQuizGrader(DefaultConfig())
	subs := []Submission{
		{QuestionID: 10, AnswerText: "WHOIS"},
		{QuestionID: 99, AnswerText: "?"},
		{QuestionID: 10, AnswerText: "WHOIS"},
	}
	res, err := g.Grade(2, moduleQuiz(), subs, time.Now())
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if res.Score != 25 || res.Passed || res.CompletionDate != nil {
		t.Fatalf("score=%d passed=%v date=%v", res.Score, res.Passed, res.CompletionDate)
	}
	if len(res.Answers) != 1 {
		t.Fatalf("answers=%d, want 1", len(res.Answers))
	}
	if len(res.Skipped) != 2 || res.Skipped[0].Reason != SkipUnknownQuestion || res.Skipped[1].Reason != SkipDuplicate {
		t.Fatalf("skipped=%+v", res.Skipped)
	}
	want := "You need to score at least 70% to pass. Review the material and try again."
	if res.Feedback != want {
		t.Fatalf("feedback=%q", res.Feedback)
	}
}

func TestGradeNoQuestions(t *testing.T) {
	res, err := NewQuizGrader(DefaultConfig()).Grade(5, nil, []Submission{{QuestionID: 1, AnswerText: "x"}}, time.Now())
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if res.Score != 0 || res.Passed {
		t.Fatalf("score=%d passed=%v", res.Score, res.Passed)
	}
}

func TestGradeRejectsForeignQuestion(t *testing.T) {
	qs := moduleQuiz()
	qs[0].ModuleID = 3
	if _, err := NewQuizGrader(DefaultConfig()).Grade(2, qs, nil, time.Now()); err == nil {
		t.Fatal("expected error for a question from another module")
	}
}

func TestFeedbackBands(t *testing.T) {
	g := NewQuizGrader(DefaultConfig())
	cases := []struct {
		score int
		want  string
	}{
		{100, "Excellent work! You've mastered this module."},
		{90, "Excellent work! You've mastered this module."},
		{89, "Great job! You have a solid understanding of the material."},
		{80, "Great job! You have a solid understanding of the material."},
		{79, "Good work! You've passed the quiz."},
		{70, "Good work! You've passed the quiz."},
		{69, "You need to score at least 70% to pass. Review the material and try again."},
		{0, "You need to score at least 70% to pass. Review the material and try again."},
	}
	for _, c := range cases {
		if got := g.Feedback(c.score); got != c.want {
			t.Fatalf("Feedback(%d)=%q, want %q", c.score, got, c.want)
		}
	}
}

func TestInjectedThreshold(t *testing.T) {
	g := NewQuizGrader(Config{PassThreshold: 50})
	if !g.Passed(50) || g.Passed(49) {
		t.Fatal("threshold 50 not honored")
	}
	if got := g.Feedback(40); got != "You need to score at least 50% to pass. Review the material and try again." {
		t.Fatalf("feedback=%q", got)
	}
}

func TestZeroConfigUsesDefaultThreshold(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "zero value", cfg: Config{}},
		{name: "negative", cfg: Config{PassThreshold: -5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := NewQuizGrader(tc.cfg)
			if g.Threshold() != DefaultPassThreshold || g.Passed(0) || !g.Passed(70) {
				t.Fatalf("threshold=%d", g.Threshold())
			}
			res, err := g.Grade(2, moduleQuiz(), nil, time.Now())
			if err != nil {
				t.Fatalf("grade: %v", err)
			}
			if res.Passed || res.CompletionDate != nil {
				t.Fatalf("empty submission passed: %+v", res)
			}
		})
	}
}

func TestScoreRounding(t *testing.T) {
	cases := []struct{ correct, total, want int }{
		{3, 4, 75},
		{2, 3, 67},
		{1, 3, 33},
		{5, 8, 62}, // 62.5 rounds to even
		{7, 8, 88}, // 87.5 rounds to even
		{0, 0, 0},
	}
	for _, c := range cases {
		if got := Score(c.correct, c.total); got != c.want {
			t.Fatalf("Score(%d,%d)=%d, want %d", c.correct, c.total, got, c.want)
		}
	}
}

func TestNormalizeSubmissions(t *testing.T) {
	raw := []json.RawMessage{
		json.RawMessage(`{"question_id": 10, "answer_text": "WHOIS"}`),
		json.RawMessage(`{"question_id": "11", "answer_text": 2.5}`),
		json.RawMessage(`{"question_id": 12, "answer_text": ["EXIF", "GPS"]}`),
		json.RawMessage(`{"question_id": 13}`),
		json.RawMessage(`{"answer_text": "orphan"}`),
		json.RawMessage(`{"question_id": 14, "answer_text": {"nested": true}}`),
		json.RawMessage(`"not an object"`),
	}
	subs, skipped := NormalizeSubmissions(raw)
	want := []Submission{
		{QuestionID: 10, AnswerText: "WHOIS"},
		{QuestionID: 11, AnswerText: "2.5"},
		{QuestionID: 12, AnswerText: "EXIF, GPS"},
		{QuestionID: 13, AnswerText: ""},
	}
	if len(subs) != len(want) {
		t.Fatalf("subs=%+v", subs)
	}
	for i := range want {
		if subs[i] != want[i] {
			t.Fatalf("subs[%d]=%+v, want %+v", i, subs[i], want[i])
		}
	}
	if len(skipped) != 3 {
		t.Fatalf("skipped=%+v", skipped)
	}
	if skipped[0].Reason != SkipMissingQuestion || skipped[1].QuestionID != 14 || skipped[2].Reason != SkipMalformed {
		t.Fatalf("skipped=%+v", skipped)
	}
}
