package domain

import (
	"fmt"
	"time"
)

// Category is the answer family an option belongs to.
type Category string

const (
	CategoryA Category = "A"
	CategoryB Category = "B"
	CategoryC Category = "C"
)

// Categories lists every category in declaration order.
var Categories = []Category{CategoryA, CategoryB, CategoryC}

// Valid reports whether c is one of A, B or C.
func (c Category) Valid() bool {
	switch c {
	case CategoryA, CategoryB, CategoryC:
		return true
	}
	return false
}

// ParseCategory converts wire input into a Category.
func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
	}
	return c, nil
}

// Mode is the narrative outcome assigned by scoring.
type Mode string

const (
	ModeExigencia  Mode = "Modo Exigencia"
	ModeTransicion Mode = "Modo Transición"
	ModeConexion   Mode = "Modo Conexión"
)

// ModeFor maps a dominant category to its mode.
func ModeFor(c Category) Mode {
	switch c {
	case CategoryA:
		return ModeExigencia
	case CategoryB:
		return ModeTransicion
	default:
		return ModeConexion
	}
}

// Option is one selectable answer.
type Option struct {
	Label    string   `json:"label"`
	Category Category `json:"category"`
}

// Question models a single multiple-choice prompt.
type Question struct {
	ID      int      `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
}

// QuestionBank is the ordered list of questions shown in a visit.
type QuestionBank struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Len returns the number of questions.
func (b QuestionBank) Len() int {
	return len(b.Questions)
}

// At returns the question at the 1-based position.
func (b QuestionBank) At(position int) (Question, bool) {
	if position < 1 || position > len(b.Questions) {
		return Question{}, false
	}
	return b.Questions[position-1], true
}

// Lookup finds a question by id.
func (b QuestionBank) Lookup(id int) (Question, bool) {
	for _, q := range b.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Validate checks ids run 1..N in order and every option carries a known category.
func (b QuestionBank) Validate() error {
	if len(b.Questions) == 0 {
		return fmt.Errorf("%w: bank %q has no questions", ErrInvalidBank, b.ID)
	}
	for i, q := range b.Questions {
		if q.ID != i+1 {
			return fmt.Errorf("%w: question at position %d has id %d", ErrInvalidBank, i+1, q.ID)
		}
		if len(q.Options) == 0 {
			return fmt.Errorf("%w: question %d has no options", ErrInvalidBank, q.ID)
		}
		for _, opt := range q.Options {
			if !opt.Category.Valid() {
				return fmt.Errorf("%w: question %d option %q has category %q", ErrInvalidBank, q.ID, opt.Label, opt.Category)
			}
		}
	}
	return nil
}

// Ledger maps question ids to the selected category.
type Ledger map[int]Category

// Clone returns an independent snapshot.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Answers renders the ledger in the stored record form.
func (l Ledger) Answers() map[int]string {
	out := make(map[int]string, len(l))
	for k, v := range l {
		out[k] = string(v)
	}
	return out
}

// StageKind names a position in the visit.
type StageKind string

const (
	StageIntro        StageKind = "intro"
	StageQuestion     StageKind = "question"
	StageEmailCapture StageKind = "email"
	StageResults      StageKind = "results"
)

// Stage is the current position. Question is the 1-based position for StageQuestion.
type Stage struct {
	Kind     StageKind `json:"kind"`
	Question int       `json:"question,omitempty"`
}

func (s Stage) String() string {
	if s.Kind == StageQuestion {
		return fmt.Sprintf("question(%d)", s.Question)
	}
	return string(s.Kind)
}

// Identity is the visitor reference produced by the identity bootstrap.
// The zero value means no identity.
type Identity struct {
	UserID    string
	Token     string
	Anonymous bool
}

// Present reports whether an identity was established.
func (i Identity) Present() bool {
	return i.UserID != ""
}

// SubmissionRecord is the document written once per completed visit.
// Its JSON shape is consumed downstream and must not change.
type SubmissionRecord struct {
	Email       string         `json:"email"`
	Timestamp   time.Time      `json:"timestamp"`
	TestAnswers map[int]string `json:"testAnswers"`
	ResultMode  Mode           `json:"resultMode"`
	UserID      *string        `json:"userId"`
}
