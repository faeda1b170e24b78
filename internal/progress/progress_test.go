package progress

import (
	"testing"
	"time"

	"github.com/mind-engage/mindengage-course/internal/course"
)

func modules() []course.Module {
	// deliberately out of order; Order decides the gating sequence
	return []course.Module{
		{ID: 30, Title: "Reporting", Order: 3},
		{ID: 10, Title: "Intro", Order: 1},
		{ID: 20, Title: "Recon", Order: 2},
	}
}

func at(day int) *time.Time {
	t := time.Date(2026, 5, day, 9, 30, 0, 0, time.UTC)
	return &t
}

func names(st []ModuleStatus) []string {
	out := make([]string, len(st))
	for i, s := range st {
		out[i] = s.Status.Name()
	}
	return out
}

func TestResolveStatuses(t *testing.T) {
	tests := []struct {
		name string
		rows []course.Progress
		want []string
	}{
		{name: "fresh user", rows: nil, want: []string{"available", "locked", "locked"}},
		{name: "first failed", rows: []course.Progress{{ModuleID: 10, Score: 50}}, want: []string{"available", "locked", "locked"}},
		{name: "first passed", rows: []course.Progress{{ModuleID: 10, Score: 80, Passed: true, CompletedAt: at(1)}}, want: []string{"completed", "available", "locked"}},
		{
			name: "second passed without first",
			rows: []course.Progress{{ModuleID: 20, Score: 90, Passed: true, CompletedAt: at(2)}},
			want: []string{"available", "completed", "available"},
		},
		{
			name: "all passed",
			rows: []course.Progress{
				{ModuleID: 10, Score: 80, Passed: true, CompletedAt: at(1)},
				{ModuleID: 20, Score: 70, Passed: true, CompletedAt: at(2)},
				{ModuleID: 30, Score: 100, Passed: true, CompletedAt: at(3)},
			},
			want: []string{"completed", "completed", "completed"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := ResolveStatuses(modules(), course.ProgressByModule(tc.rows))
			if st[0].Module.ID != 10 || st[1].Module.ID != 20 || st[2].Module.ID != 30 {
				t.Fatalf("modules not in course order: %+v", st)
			}
			got := names(st)
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("statuses=%v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestResolveStatusesCompletedCarriesScore(t *testing.T) {
	rows := []course.Progress{{ModuleID: 10, Score: 85, Passed: true, CompletedAt: at(4)}}
	st := ResolveStatuses(modules(), course.ProgressByModule(rows))
	c, ok := st[0].Status.(course.Completed)
	if !ok {
		t.Fatalf("status=%T, want Completed", st[0].Status)
	}
	if c.Score != 85 || c.CompletedAt == nil || !c.CompletedAt.Equal(*at(4)) {
		t.Fatalf("completed=%+v", c)
	}
	if _, ok := st[1].Status.(course.Available); !ok {
		t.Fatalf("second module=%T, want Available", st[1].Status)
	}
}

func TestFirstModuleNeverLocked(t *testing.T) {
	for _, rows := range [][]course.Progress{
		nil,
		{{ModuleID: 10, Score: 0}},
		{{ModuleID: 20, Score: 100, Passed: true}},
		{{ModuleID: 10, Score: 100, Passed: true}},
	} {
		st := ResolveStatuses(modules(), course.ProgressByModule(rows))
		if _, locked := st[0].Status.(course.Locked); locked {
			t.Fatalf("first module locked for rows %+v", rows)
		}
	}
}

func TestResolveStatusesEmpty(t *testing.T) {
	if st := ResolveStatuses(nil, nil); len(st) != 0 {
		t.Fatalf("statuses=%+v", st)
	}
}

func TestSummarizeFreshUser(t *testing.T) {
	s := Summarize("u1", nil, 5)
	want := Summary{
		UserID:       "u1",
		TotalModules: 5,
		LastActivity: "Never",
		HighestScore: HighestScore{Module: 0, Score: 0},
	}
	if s != want {
		t.Fatalf("summary=%+v, want %+v", s, want)
	}
}

func TestSummarize(t *testing.T) {
	rows := []course.Progress{
		{ModuleID: 10, Score: 80, Passed: true, CompletedAt: at(3)},
		{ModuleID: 20, Score: 95, Passed: true, CompletedAt: at(7)},
		{ModuleID: 30, Score: 40},
	}
	s := Summarize("u1", rows, 3)
	if s.CompletedModules != 2 || !s.HasStarted || s.IsCompleted {
		t.Fatalf("summary=%+v", s)
	}
	if s.HighestScore != (HighestScore{Module: 20, Score: 95}) {
		t.Fatalf("highest=%+v", s.HighestScore)
	}
	if s.LastActivity != "2026-05-07T09:30:00Z" {
		t.Fatalf("last activity=%q", s.LastActivity)
	}

	rows[2] = course.Progress{ModuleID: 30, Score: 70, Passed: true, CompletedAt: at(5)}
	if s := Summarize("u1", rows, 3); !s.IsCompleted || s.LastActivity != "2026-05-07T09:30:00Z" {
		t.Fatalf("summary=%+v", s)
	}
}

func TestSummarizeZeroModulesNeverCompleted(t *testing.T) {
	if s := Summarize("u1", nil, 0); s.IsCompleted {
		t.Fatal("zero modules must not count as completed")
	}
}

func TestHighestIgnoresZeroAndKeepsFirstTie(t *testing.T) {
	rows := []course.Progress{{ModuleID: 1, Score: 0}, {ModuleID: 2, Score: 60}, {ModuleID: 3, Score: 60}}
	if h := Highest(rows); h != (HighestScore{Module: 2, Score: 60}) {
		t.Fatalf("highest=%+v", h)
	}
	if h := Highest([]course.Progress{{ModuleID: 4, Score: 0}}); h != (HighestScore{}) {
		t.Fatalf("highest=%+v", h)
	}
}
