// Package progress derives module gating and course summaries from a
// user's progress rows. Nothing here is persisted; every call recomputes
// from the rows it is given.
package progress

import (
	"sort"

	"github.com/mind-engage/mindengage-course/internal/course"
)

type ModuleStatus struct {
	Module course.Module
	Status course.Status
}

// ResolveStatuses computes the gating state of every module in course order.
// A module is completed when its own row passed, available when it is first
// or its predecessor passed, and locked otherwise.
func ResolveStatuses(modules []course.Module, progress map[int64]course.Progress) []ModuleStatus {
	ordered := make([]course.Module, len(modules))
	copy(ordered, modules)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	out := make([]ModuleStatus, 0, len(ordered))
	for i, m := range ordered {
		var prev *course.Module
		if i > 0 {
			prev = &ordered[i-1]
		}
		out = append(out, ModuleStatus{Module: m, Status: statusOf(m, prev, progress)})
	}
	return out
}

func statusOf(m course.Module, prev *course.Module, progress map[int64]course.Progress) course.Status {
	if p, ok := progress[m.ID]; ok && p.Passed {
		return course.Completed{Score: p.Score, CompletedAt: p.CompletedAt}
	}
	if prev == nil {
		return course.Available{}
	}
	if p, ok := progress[prev.ID]; ok && p.Passed {
		return course.Available{}
	}
	return course.Locked{}
}
