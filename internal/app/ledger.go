package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"trivia-contest-service/internal/domain"
)

// Ledger owns the append-only record of answers. Correctness is computed once
// at insertion time and never revisited.
type Ledger struct {
	submissions SubmissionStore
	now         func() time.Time
}

func NewLedger(submissions SubmissionStore) *Ledger {
	return &Ledger{submissions: submissions, now: time.Now}
}

// NewLedgerWithClock is test-only for deterministic timestamps.
func NewLedgerWithClock(submissions SubmissionStore, now func() time.Time) *Ledger {
	return &Ledger{submissions: submissions, now: now}
}

// HasAnswered reports whether the identity already has a row for the question.
func (l *Ledger) HasAnswered(ctx context.Context, questionID, displayName string) (bool, error) {
	identity := domain.NormalizeIdentity(displayName)
	if identity == "" {
		return false, nil
	}
	_, ok, err := l.submissions.GetOwn(ctx, questionID, identity)
	return ok, err
}

// GetOwn returns the participant's own submission for feedback rendering.
func (l *Ledger) GetOwn(ctx context.Context, questionID, displayName string) (domain.Submission, bool, error) {
	identity := domain.NormalizeIdentity(displayName)
	if identity == "" {
		return domain.Submission{}, false, nil
	}
	return l.submissions.GetOwn(ctx, questionID, identity)
}

// Submit records one answer. Order matters: window check, duplicate pre-check,
// grading, then insert. The pre-check and insert have a TOCTOU gap, so the
// store's unique constraint decides the loser of two racing submissions.
func (l *Ledger) Submit(ctx context.Context, displayName string, q domain.Question, answer string) (domain.Submission, error) {
	displayName = strings.TrimSpace(displayName)
	answer = strings.TrimSpace(answer)
	if displayName == "" || answer == "" || q.ID == "" {
		return domain.Submission{}, fmt.Errorf("%w: name, question and answer are required", domain.ErrValidation)
	}

	now := l.now()
	if now.After(q.EndTime) {
		return domain.Submission{}, domain.ErrWindowClosed
	}

	identity := domain.NormalizeIdentity(displayName)
	if _, taken, err := l.submissions.GetOwn(ctx, q.ID, identity); err != nil {
		return domain.Submission{}, err
	} else if taken {
		return domain.Submission{}, domain.ErrDuplicateSubmission
	}

	sub := domain.Submission{
		ID:             uuid.New().String(),
		QuestionID:     q.ID,
		DisplayName:    displayName,
		NormalizedName: identity,
		Answer:         answer,
		IsCorrect:      domain.NormalizeAnswer(answer) == domain.NormalizeAnswer(q.CorrectAnswer),
		SubmittedAt:    now,
	}
	if err := l.submissions.Insert(ctx, sub); err != nil {
		return domain.Submission{}, err
	}
	return sub, nil
}

// Winner derives the first-correct-wins winner from the question's full
// submission set. Never persisted here; the reveal gate caches only the name.
func (l *Ledger) Winner(ctx context.Context, questionID string) (domain.Submission, bool, error) {
	subs, err := l.submissions.ListByQuestion(ctx, questionID)
	if err != nil {
		return domain.Submission{}, false, err
	}
	winner, ok := domain.WinnerOf(subs)
	return winner, ok, nil
}

// ListByQuestion returns every submission for a question, for the admin view.
func (l *Ledger) ListByQuestion(ctx context.Context, questionID string) ([]domain.Submission, error) {
	return l.submissions.ListByQuestion(ctx, questionID)
}

// ListAll returns every submission in the ledger.
func (l *Ledger) ListAll(ctx context.Context) ([]domain.Submission, error) {
	return l.submissions.ListAll(ctx)
}

// MarkViewed flips the result-viewed flag so the owning client shows feedback
// at most once. Best-effort; client-initiated.
func (l *Ledger) MarkViewed(ctx context.Context, submissionID string) error {
	if submissionID == "" {
		return fmt.Errorf("%w: submission id is required", domain.ErrValidation)
	}
	return l.submissions.MarkViewed(ctx, submissionID)
}
