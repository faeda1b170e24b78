package grading

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// rawSubmission is the loose wire shape accepted from clients.
type rawSubmission struct {
	QuestionID json.RawMessage `json:"question_id"`
	AnswerText json.RawMessage `json:"answer_text"`
}

// NormalizeSubmissions converts raw JSON answer entries into Submissions.
// question_id may be a number or a numeric string. answer_text may be a
// string, a number (kept as written) or a list of strings (joined for
// multi-choice). Entries that fit none of these are reported as skipped
// instead of failing the batch.
func NormalizeSubmissions(raw []json.RawMessage) ([]Submission, []Skipped) {
	subs := make([]Submission, 0, len(raw))
	var skipped []Skipped
	for _, entry := range raw {
		var rs rawSubmission
		if err := json.Unmarshal(entry, &rs); err != nil {
			skipped = append(skipped, Skipped{Reason: SkipMalformed})
			continue
		}
		qid, ok := parseQuestionID(rs.QuestionID)
		if !ok {
			skipped = append(skipped, Skipped{Reason: SkipMissingQuestion})
			continue
		}
		text, ok := parseAnswerText(rs.AnswerText)
		if !ok {
			skipped = append(skipped, Skipped{QuestionID: qid, Reason: SkipMalformed})
			continue
		}
		subs = append(subs, Submission{QuestionID: qid, AnswerText: text})
	}
	return subs, skipped
}

func parseQuestionID(raw json.RawMessage) (int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = []byte(strings.TrimSpace(s))
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseAnswerText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, multiSeparator), true
	}
	return "", false
}
