package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/mindengage-course/internal/certificate"
	"github.com/mind-engage/mindengage-course/internal/course"
	"github.com/mind-engage/mindengage-course/internal/grading"
	"github.com/mind-engage/mindengage-course/internal/logger"
	"github.com/mind-engage/mindengage-course/internal/progress"
	"github.com/mind-engage/mindengage-course/internal/store"
)

// DefaultUserName is printed on certificates of users without a profile name.
const DefaultUserName = "Student"

// ErrNoQuestions is returned when a quiz is submitted for a module without questions.
var ErrNoQuestions = fmt.Errorf("no questions found for this module: %w", course.ErrNotFound)

// Course runs the course engine over a Store. Each call reads a fresh
// snapshot; results never depend on earlier calls.
type Course struct {
	store  store.Store
	grader *grading.QuizGrader
	certs  *certificate.Issuer
	log    *logger.Logger
	now    func() time.Time
}

type Option func(*Course)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(c *Course) { c.now = now } }

func New(st store.Store, grader *grading.QuizGrader, certs *certificate.Issuer, log *logger.Logger, opts ...Option) *Course {
	c := &Course{
		store:  st,
		grader: grader,
		certs:  certs,
		log:    log,
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ModuleView is a module as shown to one user: its gating state plus the
// student-safe content.
type ModuleView struct {
	course.Module
	Status         string                  `json:"status"`
	Score          *int                    `json:"score"`
	QuizPassed     *bool                   `json:"quiz_passed"`
	CompletionDate *time.Time              `json:"completion_date"`
	Blocks         []course.Block          `json:"blocks"`
	Questions      []course.PublicQuestion `json:"questions"`
}

// GradeQuizSubmission grades subs for moduleID and records the outcome.
// Failing to store the audit rows or the progress row is logged as a
// warning; the computed result is returned either way.
func (c *Course) GradeQuizSubmission(ctx context.Context, userID string, moduleID int64, subs []grading.Submission) (grading.QuizResult, error) {
	if userID == "" {
		return grading.QuizResult{}, errors.New("grade quiz: empty user id")
	}
	if _, err := c.store.GetModule(ctx, moduleID); err != nil {
		return grading.QuizResult{}, err
	}
	questions, err := c.store.ListQuestions(ctx, moduleID)
	if err != nil {
		return grading.QuizResult{}, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return grading.QuizResult{}, ErrNoQuestions
	}

	now := c.now().UTC()
	res, err := c.grader.Grade(moduleID, questions, subs, now)
	if err != nil {
		return grading.QuizResult{}, err
	}
	log := c.log.With("user_id", userID, "module_id", moduleID)
	for _, s := range res.Skipped {
		log.Info("skipped quiz answer", "question_id", s.QuestionID, "reason", s.Reason)
	}

	for _, ev := range res.Answers {
		ua := course.UserAnswer{
			UserID:      userID,
			QuestionID:  ev.QuestionID,
			Text:        ev.AnswerText,
			IsCorrect:   ev.IsCorrect,
			SubmittedAt: now,
		}
		if err := c.store.InsertUserAnswer(ctx, ua); err != nil {
			log.Warn("could not save user answer", "question_id", ev.QuestionID, "error", err)
		}
	}

	p := course.Progress{UserID: userID, ModuleID: moduleID, Score: res.Score, Passed: res.Passed, CompletedAt: res.CompletionDate}
	if err := c.store.UpsertProgress(ctx, p); err != nil {
		log.Warn("could not update progress", "score", res.Score, "passed", res.Passed, "error", err)
	}
	return res, nil
}

// ResolveModuleStatuses lists every module with the user's gating state.
func (c *Course) ResolveModuleStatuses(ctx context.Context, userID string) ([]ModuleView, error) {
	modules, err := c.store.ListModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	if len(modules) == 0 {
		return []ModuleView{}, nil
	}
	rows, err := c.store.ListProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	byModule := course.ProgressByModule(rows)

	statuses := progress.ResolveStatuses(modules, byModule)
	out := make([]ModuleView, 0, len(statuses))
	for _, st := range statuses {
		v := ModuleView{Module: st.Module, Status: st.Status.Name()}
		if done, ok := st.Status.(course.Completed); ok {
			score := done.Score
			v.Score = &score
			v.CompletionDate = done.CompletedAt
		}
		if p, ok := byModule[st.Module.ID]; ok {
			passed := p.Passed
			v.QuizPassed = &passed
		}

		if v.Blocks, err = c.store.ListBlocks(ctx, st.Module.ID); err != nil {
			return nil, fmt.Errorf("list blocks of module %d: %w", st.Module.ID, err)
		}
		qs, err := c.store.ListQuestions(ctx, st.Module.ID)
		if err != nil {
			return nil, fmt.Errorf("list questions of module %d: %w", st.Module.ID, err)
		}
		v.Questions = make([]course.PublicQuestion, 0, len(qs))
		for _, q := range qs {
			v.Questions = append(v.Questions, q.PublicCopy())
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Course) SummarizeProgress(ctx context.Context, userID string) (progress.Summary, error) {
	rows, total, err := c.snapshot(ctx, userID)
	if err != nil {
		return progress.Summary{}, err
	}
	return progress.Summarize(userID, rows, total), nil
}

// GetOrIssueCertificate returns nil while the course is incomplete. Once it
// is complete the first call issues the certificate and later calls return
// the same one.
func (c *Course) GetOrIssueCertificate(ctx context.Context, userID string) (*course.Certificate, error) {
	rows, total, err := c.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !certificate.Eligible(rows, total) {
		return nil, nil
	}

	existing, err := c.store.GetCertificate(ctx, userID)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, course.ErrNotFound) {
		return nil, fmt.Errorf("get certificate: %w", err)
	}

	saved, err := c.store.CreateCertificate(ctx, c.certs.Issue(userID, c.now()))
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	c.log.Info("certificate issued", "user_id", userID, "certificate_id", saved.ID)
	return &saved, nil
}

// DownloadCertificate renders an already issued certificate.
func (c *Course) DownloadCertificate(ctx context.Context, userID string) (certificate.Document, error) {
	cert, err := c.store.GetCertificate(ctx, userID)
	if err != nil {
		return certificate.Document{}, err
	}
	name := DefaultUserName
	u, err := c.store.GetUser(ctx, userID)
	switch {
	case err == nil && u.FullName != "":
		name = u.FullName
	case err != nil && !errors.Is(err, course.ErrNotFound):
		return certificate.Document{}, fmt.Errorf("get user: %w", err)
	}
	return c.certs.Document(name, cert), nil
}

// EnsureUser records the identity on first sight. Best effort.
func (c *Course) EnsureUser(ctx context.Context, u course.User) {
	if err := c.store.EnsureUser(ctx, u); err != nil {
		c.log.Warn("could not ensure user row", "user_id", u.ID, "error", err)
	}
}

func (c *Course) snapshot(ctx context.Context, userID string) ([]course.Progress, int, error) {
	modules, err := c.store.ListModules(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list modules: %w", err)
	}
	rows, err := c.store.ListProgress(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("list progress: %w", err)
	}
	return rows, len(modules), nil
}
