package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/mindengage-course/internal/course"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

var (
	_ Store         = (*SQLStore)(nil)
	_ ContentWriter = (*SQLStore)(nil)
)

// ---- modules & content ----

func (s *SQLStore) ListModules(ctx context.Context) ([]course.Module, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,title,slug,sort_order,description FROM modules ORDER BY sort_order`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []course.Module{}
	for rows.Next() {
		var m course.Module
		if err := rows.Scan(&m.ID, &m.Title, &m.Slug, &m.Order, &m.Description); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetModule(ctx context.Context, id int64) (course.Module, error) {
	var m course.Module
	err := s.db.QueryRowContext(ctx,
		`SELECT id,title,slug,sort_order,description FROM modules WHERE id=$1`, id).
		Scan(&m.ID, &m.Title, &m.Slug, &m.Order, &m.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return course.Module{}, fmt.Errorf("module %d: %w", id, course.ErrNotFound)
	}
	return m, err
}

func (s *SQLStore) ListBlocks(ctx context.Context, moduleID int64) ([]course.Block, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,module_id,sort_order,typ,content FROM module_blocks WHERE module_id=$1 ORDER BY sort_order, id`, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []course.Block{}
	for rows.Next() {
		var b course.Block
		var content string
		if err := rows.Scan(&b.ID, &b.ModuleID, &b.Order, &b.Type, &content); err != nil {
			return nil, err
		}
		b.Content = json.RawMessage(content)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListQuestions(ctx context.Context, moduleID int64) ([]course.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,module_id,typ,question_text,tolerance,exact_match FROM questions WHERE module_id=$1 ORDER BY id`, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []course.Question{}
	index := map[int64]int{}
	for rows.Next() {
		var (
			q     course.Question
			tol   sql.NullFloat64
			exact sql.NullBool
		)
		if err := rows.Scan(&q.ID, &q.ModuleID, &q.Type, &q.Text, &tol, &exact); err != nil {
			return nil, err
		}
		if tol.Valid {
			v := tol.Float64
			q.Tolerance = &v
		}
		if exact.Valid {
			v := exact.Bool
			q.ExactMatch = &v
		}
		index[q.ID] = len(out)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	arows, err := s.db.QueryContext(ctx,
		`SELECT a.id,a.question_id,a.answer_text,a.is_correct
		   FROM answers a JOIN questions q ON q.id=a.question_id
		  WHERE q.module_id=$1 ORDER BY a.id`, moduleID)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var a course.AnswerKey
		if err := arows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.IsCorrect); err != nil {
			return nil, err
		}
		if i, ok := index[a.QuestionID]; ok {
			out[i].Answers = append(out[i].Answers, a)
		}
	}
	return out, arows.Err()
}

func (s *SQLStore) PutModule(ctx context.Context, m course.Module) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO modules (id,title,slug,sort_order,description)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, slug=EXCLUDED.slug, sort_order=EXCLUDED.sort_order, description=EXCLUDED.description`,
		m.ID, m.Title, m.Slug, m.Order, m.Description)
	return err
}

func (s *SQLStore) PutBlock(ctx context.Context, b course.Block) error {
	content := string(b.Content)
	if content == "" {
		content = "null"
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO module_blocks (id,module_id,sort_order,typ,content)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET module_id=EXCLUDED.module_id, sort_order=EXCLUDED.sort_order, typ=EXCLUDED.typ, content=EXCLUDED.content`,
		b.ID, b.ModuleID, b.Order, b.Type, content)
	return err
}

func (s *SQLStore) PutQuestion(ctx context.Context, q course.Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var tol sql.NullFloat64
	if q.Tolerance != nil {
		tol = sql.NullFloat64{Float64: *q.Tolerance, Valid: true}
	}
	var exact sql.NullBool
	if q.ExactMatch != nil {
		exact = sql.NullBool{Bool: *q.ExactMatch, Valid: true}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO questions (id,module_id,typ,question_text,tolerance,exact_match)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET module_id=EXCLUDED.module_id, typ=EXCLUDED.typ, question_text=EXCLUDED.question_text,
			tolerance=EXCLUDED.tolerance, exact_match=EXCLUDED.exact_match`,
		q.ID, q.ModuleID, q.Type, q.Text, tol, exact); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE question_id=$1`, q.ID); err != nil {
		return err
	}
	for _, a := range q.Answers {
		if _, err := tx.ExecContext(ctx, `INSERT INTO answers (question_id,answer_text,is_correct) VALUES ($1,$2,$3)`,
			q.ID, a.Text, a.IsCorrect); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ---- progress ----

func (s *SQLStore) ListProgress(ctx context.Context, userID string) ([]course.Progress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id,module_id,score,passed,completed_at FROM progress WHERE user_id=$1 ORDER BY module_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []course.Progress{}
	for rows.Next() {
		var p course.Progress
		var done sql.NullInt64
		if err := rows.Scan(&p.UserID, &p.ModuleID, &p.Score, &p.Passed, &done); err != nil {
			return nil, err
		}
		p.CompletedAt = fromUnix(done)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpsertProgress(ctx context.Context, p course.Progress) error {
	// completed_at only accompanies a pass
	done := sql.NullInt64{}
	if p.Passed {
		done = toUnix(p.CompletedAt)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO progress (user_id,module_id,score,passed,completed_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id,module_id) DO UPDATE SET score=EXCLUDED.score, passed=EXCLUDED.passed, completed_at=EXCLUDED.completed_at`,
		p.UserID, p.ModuleID, p.Score, p.Passed, done)
	return err
}

func (s *SQLStore) InsertUserAnswer(ctx context.Context, a course.UserAnswer) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO user_answers (user_id,question_id,answer_text,is_correct,submitted_at)
		VALUES ($1,$2,$3,$4,$5)`,
		a.UserID, a.QuestionID, a.Text, a.IsCorrect, a.SubmittedAt.Unix())
	return err
}

// ---- certificates ----

func (s *SQLStore) GetCertificate(ctx context.Context, userID string) (course.Certificate, error) {
	var c course.Certificate
	var issued int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id,user_id,certificate_url,issued_at FROM certificates WHERE user_id=$1`, userID).
		Scan(&c.ID, &c.UserID, &c.URL, &issued)
	if errors.Is(err, sql.ErrNoRows) {
		return course.Certificate{}, fmt.Errorf("certificate for %s: %w", userID, course.ErrNotFound)
	}
	if err != nil {
		return course.Certificate{}, err
	}
	c.IssuedAt = time.Unix(issued, 0).UTC()
	return c, nil
}

func (s *SQLStore) CreateCertificate(ctx context.Context, c course.Certificate) (course.Certificate, error) {
	if _, err := s.db.ExecContext(ctx, `INSERT INTO certificates (id,user_id,certificate_url,issued_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id) DO NOTHING`,
		c.ID, c.UserID, c.URL, c.IssuedAt.Unix()); err != nil {
		return course.Certificate{}, err
	}
	return s.GetCertificate(ctx, c.UserID)
}

// ---- users ----

func (s *SQLStore) GetUser(ctx context.Context, id string) (course.User, error) {
	var u course.User
	err := s.db.QueryRowContext(ctx, `SELECT id,email,full_name FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Email, &u.FullName)
	if errors.Is(err, sql.ErrNoRows) {
		return course.User{}, fmt.Errorf("user %s: %w", id, course.ErrNotFound)
	}
	return u, err
}

// EnsureUser creates the user row on first sight; later calls only fill in
// non-empty profile fields.
func (s *SQLStore) EnsureUser(ctx context.Context, u course.User) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id,email,full_name,created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET
			email=COALESCE(NULLIF(EXCLUDED.email,''), users.email),
			full_name=COALESCE(NULLIF(EXCLUDED.full_name,''), users.full_name)`,
		u.ID, u.Email, u.FullName, time.Now().Unix())
	return err
}

func toUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func fromUnix(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
