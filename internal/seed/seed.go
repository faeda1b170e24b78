// Package seed loads course content (modules, blocks, questions and their
// answer keys) from a YAML document into a store.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mindengage-course/internal/course"
	"github.com/mind-engage/mindengage-course/internal/store"
)

type File struct {
	Modules []Module `yaml:"modules" validate:"required,min=1,dive"`
}

type Module struct {
	ID          int64      `yaml:"id" validate:"required,gt=0"`
	Title       string     `yaml:"title" validate:"required"`
	Slug        string     `yaml:"slug" validate:"required"`
	Order       int        `yaml:"order" validate:"gte=0"`
	Description string     `yaml:"description"`
	Blocks      []Block    `yaml:"blocks" validate:"dive"`
	Questions   []Question `yaml:"questions" validate:"dive"`
}

type Block struct {
	ID      int64     `yaml:"id" validate:"required,gt=0"`
	Order   int       `yaml:"order"`
	Type    string    `yaml:"type" validate:"oneof=text video image quiz_intro code"`
	Content yaml.Node `yaml:"content" validate:"-"`
}

type Question struct {
	ID         int64    `yaml:"id" validate:"required,gt=0"`
	Type       string   `yaml:"type" validate:"oneof=single multi text number"`
	Text       string   `yaml:"text" validate:"required"`
	Tolerance  *float64 `yaml:"tolerance" validate:"omitempty,gte=0"`
	ExactMatch *bool    `yaml:"exact_match"`
	Answers    []Answer `yaml:"answers" validate:"required,min=1,dive"`
}

type Answer struct {
	Text    string `yaml:"text" validate:"required"`
	Correct bool   `yaml:"correct"`
}

var validate = validator.New()

// Parse decodes and validates a seed document. Module ids, slugs and orders
// must be unique.
func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("decode seed: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return File{}, fmt.Errorf("invalid seed: %w", err)
	}

	ids, slugs, orders := map[int64]bool{}, map[string]bool{}, map[int]bool{}
	for _, m := range f.Modules {
		switch {
		case ids[m.ID]:
			return File{}, fmt.Errorf("invalid seed: duplicate module id %d", m.ID)
		case slugs[m.Slug]:
			return File{}, fmt.Errorf("invalid seed: duplicate module slug %q", m.Slug)
		case orders[m.Order]:
			return File{}, fmt.Errorf("invalid seed: duplicate module order %d", m.Order)
		}
		ids[m.ID], slugs[m.Slug], orders[m.Order] = true, true, true
		for _, q := range m.Questions {
			if !hasCorrect(q.Answers) {
				return File{}, fmt.Errorf("invalid seed: question %d has no correct answer", q.ID)
			}
			if q.Type == course.QuestionNumber {
				if err := numericKeys(q.Answers); err != nil {
					return File{}, fmt.Errorf("invalid seed: question %d: %w", q.ID, err)
				}
			}
		}
	}
	return f, nil
}

func ParseFile(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer fh.Close()
	return Parse(fh)
}

// Apply writes every module with its blocks and questions. Re-applying the
// same document is idempotent.
func Apply(ctx context.Context, w store.ContentWriter, f File) error {
	for _, m := range f.Modules {
		if err := w.PutModule(ctx, course.Module{ID: m.ID, Title: m.Title, Slug: m.Slug, Order: m.Order, Description: m.Description}); err != nil {
			return fmt.Errorf("module %d: %w", m.ID, err)
		}
		for _, b := range m.Blocks {
			content, err := nodeJSON(&b.Content)
			if err != nil {
				return fmt.Errorf("block %d content: %w", b.ID, err)
			}
			if err := w.PutBlock(ctx, course.Block{ID: b.ID, ModuleID: m.ID, Order: b.Order, Type: b.Type, Content: content}); err != nil {
				return fmt.Errorf("block %d: %w", b.ID, err)
			}
		}
		for _, q := range m.Questions {
			cq := course.Question{ID: q.ID, ModuleID: m.ID, Type: q.Type, Text: q.Text, Tolerance: q.Tolerance, ExactMatch: q.ExactMatch}
			for _, a := range q.Answers {
				cq.Answers = append(cq.Answers, course.AnswerKey{QuestionID: q.ID, Text: a.Text, IsCorrect: a.Correct})
			}
			if err := w.PutQuestion(ctx, cq); err != nil {
				return fmt.Errorf("question %d: %w", q.ID, err)
			}
		}
	}
	return nil
}

func hasCorrect(as []Answer) bool {
	for _, a := range as {
		if a.Correct {
			return true
		}
	}
	return false
}

// numericKeys rejects any number-question key the grader could never match.
func numericKeys(as []Answer) error {
	for _, a := range as {
		if _, err := strconv.ParseFloat(strings.TrimSpace(a.Text), 64); err != nil {
			return fmt.Errorf("answer %q is not a number", a.Text)
		}
	}
	return nil
}

// nodeJSON re-encodes free-form YAML block content as JSON.
func nodeJSON(n *yaml.Node) (json.RawMessage, error) {
	if n.Kind == 0 {
		return json.RawMessage("null"), nil
	}
	var v interface{}
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return buf, nil
}
