package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"trivia-contest-service/internal/domain"
)

// Directory owns the question schedule: what is active now, what is next,
// and the operator's create/edit/force-end workflow.
type Directory struct {
	questions QuestionStore
	gate      *RevealGate
	now       func() time.Time
}

func NewDirectory(questions QuestionStore, gate *RevealGate) *Directory {
	return &Directory{questions: questions, gate: gate, now: time.Now}
}

// NewDirectoryWithClock is test-only for deterministic timestamps.
func NewDirectoryWithClock(questions QuestionStore, gate *RevealGate, now func() time.Time) *Directory {
	return &Directory{questions: questions, gate: gate, now: now}
}

// CreateQuestionParams carries the operator's input for a new question.
type CreateQuestionParams struct {
	Text          string
	Kind          domain.QuestionKind
	Options       []string
	CorrectAnswer string
	StartTime     time.Time
	EndTime       time.Time
}

// Create validates and persists a new question, then points the reveal gate at
// it with the winner hidden so a stale reveal from the previous round never
// leaks onto the new one. Nothing is persisted on a validation failure.
func (d *Directory) Create(ctx context.Context, p CreateQuestionParams) (domain.Question, error) {
	if p.Kind == "" {
		p.Kind = domain.FreeText
	}
	q := domain.Question{
		ID:            uuid.New().String(),
		Text:          strings.TrimSpace(p.Text),
		Kind:          p.Kind,
		CorrectAnswer: strings.TrimSpace(p.CorrectAnswer),
		StartTime:     p.StartTime,
		EndTime:       p.EndTime,
		CreatedAt:     d.now(),
	}

	if q.Text == "" {
		return domain.Question{}, fmt.Errorf("%w: question text is required", domain.ErrValidation)
	}
	if q.CorrectAnswer == "" {
		return domain.Question{}, fmt.Errorf("%w: correct answer is required", domain.ErrValidation)
	}
	if q.StartTime.IsZero() || q.EndTime.IsZero() {
		return domain.Question{}, fmt.Errorf("%w: start and end times are required", domain.ErrValidation)
	}
	if !q.EndTime.After(q.StartTime) {
		return domain.Question{}, fmt.Errorf("%w: end time must be after start time", domain.ErrValidation)
	}

	switch q.Kind {
	case domain.FreeText:
		if len(p.Options) > 0 {
			return domain.Question{}, fmt.Errorf("%w: free-text questions take no options", domain.ErrValidation)
		}
	case domain.MultipleChoice:
		opts, err := cleanOptions(p.Options)
		if err != nil {
			return domain.Question{}, err
		}
		if !containsString(opts, q.CorrectAnswer) {
			return domain.Question{}, fmt.Errorf("%w: correct answer must be one of the options", domain.ErrValidation)
		}
		q.Options = opts
	default:
		return domain.Question{}, fmt.Errorf("%w: unknown question kind %q", domain.ErrValidation, p.Kind)
	}

	if err := d.questions.Insert(ctx, q); err != nil {
		return domain.Question{}, err
	}
	if err := d.gate.SetCurrentQuestion(ctx, q.ID); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

// GetActive returns the question whose window contains now, if any.
func (d *Directory) GetActive(ctx context.Context) (domain.Question, bool, error) {
	return d.questions.ActiveAt(ctx, d.now())
}

// Get returns a single question by ID.
func (d *Directory) Get(ctx context.Context, id string) (domain.Question, error) {
	return d.questions.Get(ctx, id)
}

// ListSchedule returns all questions ordered by start time ascending, so
// clients can derive "currently active" and "next upcoming" themselves.
func (d *Directory) ListSchedule(ctx context.Context) ([]domain.Question, error) {
	return d.questions.List(ctx)
}

// ForceEnd closes a question's window right now. Idempotent: force-ending an
// already-ended question just moves its end time again.
func (d *Directory) ForceEnd(ctx context.Context, id string) (domain.Question, error) {
	q, err := d.questions.Get(ctx, id)
	if err != nil {
		return domain.Question{}, err
	}
	q.EndTime = d.now()
	if err := d.questions.UpdateWindow(ctx, q.ID, q.StartTime, q.EndTime); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

// UpdateWindow edits both times of a question that has not yet expired.
// A question whose stored end time has already passed is immutable; this is
// what prevents resurrecting a finished round.
func (d *Directory) UpdateWindow(ctx context.Context, id string, newStart, newEnd time.Time) (domain.Question, error) {
	if !newEnd.After(newStart) {
		return domain.Question{}, domain.ErrTimeOrder
	}
	q, err := d.questions.Get(ctx, id)
	if err != nil {
		return domain.Question{}, err
	}
	if !q.EndTime.After(d.now()) {
		return domain.Question{}, domain.ErrAlreadyEnded
	}
	q.StartTime = newStart
	q.EndTime = newEnd
	if err := d.questions.UpdateWindow(ctx, q.ID, newStart, newEnd); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

// cleanOptions trims entries, drops empties and duplicates, and requires at
// least two distinct options to remain.
func cleanOptions(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	opts := make([]string, 0, len(raw))
	for _, o := range raw {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}
		opts = append(opts, o)
	}
	if len(opts) < 2 {
		return nil, fmt.Errorf("%w: multiple choice needs at least two distinct options", domain.ErrValidation)
	}
	return opts, nil
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
