package course

import "testing"

func TestPublicCopy(t *testing.T) {
	keys := []AnswerKey{
		{ID: 1, QuestionID: 7, Text: "WHOIS", IsCorrect: true},
		{ID: 2, QuestionID: 7, Text: "ping"},
	}
	tests := []struct {
		typ  string
		want int
	}{
		{typ: QuestionSingle, want: 2},
		{typ: QuestionMulti, want: 2},
		{typ: QuestionText, want: 0},
		{typ: QuestionNumber, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.typ, func(t *testing.T) {
			q := Question{ID: 7, ModuleID: 1, Type: tc.typ, Text: "Q", Answers: keys}
			pq := q.PublicCopy()
			if len(pq.Options) != tc.want {
				t.Fatalf("options=%+v, want %d", pq.Options, tc.want)
			}
			if tc.want > 0 && (pq.Options[0] != Option{ID: 1, Text: "WHOIS"} || pq.Options[1] != Option{ID: 2, Text: "ping"}) {
				t.Fatalf("options=%+v", pq.Options)
			}
			if pq.ID != 7 || pq.Type != tc.typ || len(q.Answers) != 2 {
				t.Fatalf("copy=%+v source=%+v", pq, q)
			}
		})
	}
}
