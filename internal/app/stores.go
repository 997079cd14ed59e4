package app

import (
	"context"
	"time"

	"trivia-contest-service/internal/domain"
)

// QuestionStore abstracts how questions are persisted (Postgres, in-memory).
type QuestionStore interface {
	Insert(ctx context.Context, q domain.Question) error
	// Get returns domain.ErrQuestionNotFound for unknown IDs.
	Get(ctx context.Context, id string) (domain.Question, error)
	// List returns all questions ordered by start time ascending.
	List(ctx context.Context) ([]domain.Question, error)
	// ActiveAt returns the question whose [start, end) window contains now.
	// Overlapping windows tie-break by most recent start time.
	ActiveAt(ctx context.Context, now time.Time) (domain.Question, bool, error)
	UpdateWindow(ctx context.Context, id string, start, end time.Time) error
}

// SubmissionStore persists answers. The (questionID, normalized name) pair is
// unique at the storage level; Insert returns domain.ErrDuplicateSubmission
// when the constraint rejects a row, which is the final arbiter for racing
// submissions that both passed the pre-check.
type SubmissionStore interface {
	Insert(ctx context.Context, s domain.Submission) error
	GetOwn(ctx context.Context, questionID, identity string) (domain.Submission, bool, error)
	ListByQuestion(ctx context.Context, questionID string) ([]domain.Submission, error)
	ListAll(ctx context.Context) ([]domain.Submission, error)
	MarkViewed(ctx context.Context, id string) error
}

// SessionStore persists device sessions keyed by session ID and indexed by
// normalized identity.
type SessionStore interface {
	// CountLive counts sessions for identity with LastSeen at or after cutoff,
	// excluding excludeSessionID (may be empty).
	CountLive(ctx context.Context, identity string, cutoff time.Time, excludeSessionID string) (int, error)
	// DeleteBefore removes sessions for identity with LastSeen before cutoff.
	DeleteBefore(ctx context.Context, identity string, cutoff time.Time) error
	Insert(ctx context.Context, sess domain.Session) error
	// Touch refreshes LastSeen; returns false without error if the session is gone.
	Touch(ctx context.Context, sessionID string, now time.Time) (bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// SettingsStore persists the singleton game settings row.
type SettingsStore interface {
	// Get lazily creates the row with showWinner=false if absent.
	Get(ctx context.Context) (domain.GameSettings, error)
	// SetCurrentQuestion also forces showWinner back to false.
	SetCurrentQuestion(ctx context.Context, questionID string) error
	SetShowWinner(ctx context.Context, show bool, winnerName string) error
}
