package course

import (
	"encoding/json"
	"time"
)

// Question types understood by the grading engine.
const (
	QuestionSingle = "single"
	QuestionMulti  = "multi"
	QuestionText   = "text"
	QuestionNumber = "number"
)

type Module struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Order       int    `json:"order"`
	Description string `json:"description,omitempty"`
}

// Block is one piece of module content (text, video, image, quiz_intro, code).
type Block struct {
	ID       int64           `json:"id"`
	ModuleID int64           `json:"module_id"`
	Order    int             `json:"order"`
	Type     string          `json:"type"`
	Content  json.RawMessage `json:"content"`
}

type AnswerKey struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Text       string `json:"answer_text"`
	IsCorrect  bool   `json:"is_correct"`
}

type Question struct {
	ID         int64    `json:"id"`
	ModuleID   int64    `json:"module_id"`
	Type       string   `json:"type"` // single, multi, text, number
	Text       string   `json:"question_text"`
	Tolerance  *float64 `json:"tolerance,omitempty"` // number only
	ExactMatch *bool    `json:"exact_match,omitempty"`

	Answers []AnswerKey `json:"answers,omitempty"`
}

// CorrectKeys returns the answer-key texts marked correct, in stored order.
func (q Question) CorrectKeys() []string {
	out := make([]string, 0, len(q.Answers))
	for _, a := range q.Answers {
		if a.IsCorrect {
			out = append(out, a.Text)
		}
	}
	return out
}

// Option is a selectable answer row as shown to students.
type Option struct {
	ID   int64  `json:"id"`
	Text string `json:"answer_text"`
}

// PublicQuestion is a question made safe to serve to students.
type PublicQuestion struct {
	ID         int64    `json:"id"`
	ModuleID   int64    `json:"module_id"`
	Type       string   `json:"type"`
	Text       string   `json:"question_text"`
	Tolerance  *float64 `json:"tolerance,omitempty"`
	ExactMatch *bool    `json:"exact_match,omitempty"`
	Options    []Option `json:"answers,omitempty"`
}

// PublicCopy drops every correctness flag. Choice questions keep their
// option rows; text and number keys are all correct answers and are
// withheld entirely.
func (q Question) PublicCopy() PublicQuestion {
	pq := PublicQuestion{
		ID:         q.ID,
		ModuleID:   q.ModuleID,
		Type:       q.Type,
		Text:       q.Text,
		Tolerance:  q.Tolerance,
		ExactMatch: q.ExactMatch,
	}
	if q.Type == QuestionSingle || q.Type == QuestionMulti {
		pq.Options = make([]Option, 0, len(q.Answers))
		for _, a := range q.Answers {
			pq.Options = append(pq.Options, Option{ID: a.ID, Text: a.Text})
		}
	}
	return pq
}

// UserAnswer is the append-only audit record of one submitted answer.
type UserAnswer struct {
	UserID      string    `json:"user_id"`
	QuestionID  int64     `json:"question_id"`
	Text        string    `json:"answer_text"`
	IsCorrect   bool      `json:"is_correct"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Progress is the single authoritative row per (user, module).
type Progress struct {
	UserID      string     `json:"user_id"`
	ModuleID    int64      `json:"module_id"`
	Score       int        `json:"score"`
	Passed      bool       `json:"passed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"` // set only when Passed
}

type Certificate struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	URL      string    `json:"certificate_url"`
	IssuedAt time.Time `json:"issued_at"`
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// ProgressByModule indexes progress rows by module id.
func ProgressByModule(rows []Progress) map[int64]Progress {
	m := make(map[int64]Progress, len(rows))
	for _, p := range rows {
		m[p.ModuleID] = p
	}
	return m
}
