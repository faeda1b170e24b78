package store

import (
	"context"

	"github.com/mind-engage/mindengage-course/internal/course"
)

// Store is the data-access collaborator of the course engine. Lookups of a
// single row return an error wrapping course.ErrNotFound when it is absent;
// list reads return an empty slice instead.
type Store interface {
	ListModules(ctx context.Context) ([]course.Module, error) // ordered by course position
	GetModule(ctx context.Context, id int64) (course.Module, error)
	ListBlocks(ctx context.Context, moduleID int64) ([]course.Block, error)
	ListQuestions(ctx context.Context, moduleID int64) ([]course.Question, error) // answer keys included

	ListProgress(ctx context.Context, userID string) ([]course.Progress, error)
	// UpsertProgress keeps a single row per (user, module); last write wins.
	UpsertProgress(ctx context.Context, p course.Progress) error
	InsertUserAnswer(ctx context.Context, a course.UserAnswer) error

	GetCertificate(ctx context.Context, userID string) (course.Certificate, error)
	// CreateCertificate inserts c unless the user already holds one, and
	// returns whichever row is stored.
	CreateCertificate(ctx context.Context, c course.Certificate) (course.Certificate, error)

	GetUser(ctx context.Context, id string) (course.User, error)
	EnsureUser(ctx context.Context, u course.User) error
}

// ContentWriter loads course content; used by the seeder.
type ContentWriter interface {
	PutModule(ctx context.Context, m course.Module) error
	PutBlock(ctx context.Context, b course.Block) error
	// PutQuestion replaces the question and all of its answer keys.
	PutQuestion(ctx context.Context, q course.Question) error
}
