package course

import "time"

// Status is the gating state of a module for one user. The set of
// implementations is closed: Locked, Available and Completed.
type Status interface {
	Name() string
	isStatus()
}

type Locked struct{}

type Available struct{}

// Completed carries the score and completion time of the passing attempt.
type Completed struct {
	Score       int
	CompletedAt *time.Time
}

func (Locked) Name() string    { return "locked" }
func (Available) Name() string { return "available" }
func (Completed) Name() string { return "completed" }

func (Locked) isStatus()    {}
func (Available) isStatus() {}
func (Completed) isStatus() {}
