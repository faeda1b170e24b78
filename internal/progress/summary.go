package progress

import (
	"time"

	"github.com/mind-engage/mindengage-course/internal/course"
)

// NeverActive is reported as LastActivity when no row has a completion time.
const NeverActive = "Never"

type HighestScore struct {
	Module int64 `json:"module"`
	Score  int   `json:"score"`
}

// Summary is the course-level view of one user's progress.
type Summary struct {
	UserID           string       `json:"user_id"`
	CompletedModules int          `json:"completed_modules"`
	TotalModules     int          `json:"total_modules"`
	LastActivity     string       `json:"last_activity"`
	HighestScore     HighestScore `json:"highest_score"`
	IsCompleted      bool         `json:"is_completed"`
	HasStarted       bool         `json:"has_started"`
}

func Summarize(userID string, rows []course.Progress, totalModules int) Summary {
	completed := 0
	for _, p := range rows {
		if p.Passed {
			completed++
		}
	}
	return Summary{
		UserID:           userID,
		CompletedModules: completed,
		TotalModules:     totalModules,
		LastActivity:     LastActivity(rows),
		HighestScore:     Highest(rows),
		IsCompleted:      totalModules > 0 && completed >= totalModules,
		HasStarted:       completed > 0,
	}
}

// Highest picks the best-scoring row, ignoring zero scores. Ties keep the
// first row.
func Highest(rows []course.Progress) HighestScore {
	var best HighestScore
	for _, p := range rows {
		if p.Score > best.Score {
			best = HighestScore{Module: p.ModuleID, Score: p.Score}
		}
	}
	return best
}

// LastActivity is the latest completion time, RFC 3339 in UTC, or NeverActive.
func LastActivity(rows []course.Progress) string {
	var latest *time.Time
	for _, p := range rows {
		if p.CompletedAt == nil {
			continue
		}
		if latest == nil || p.CompletedAt.After(*latest) {
			latest = p.CompletedAt
		}
	}
	if latest == nil {
		return NeverActive
	}
	return latest.UTC().Format(time.RFC3339)
}
