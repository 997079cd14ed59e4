package memory

import (
	"context"
	"sync"

	"trivia-contest-service/internal/domain"
)

// SubmissionStore is an in-memory implementation of app.SubmissionStore.
// The byKey map under the mutex plays the role of the database's unique
// index on (question_id, normalized_name): the second of two racing inserts
// fails with ErrDuplicateSubmission.
type SubmissionStore struct {
	mu    sync.RWMutex
	byID  map[string]domain.Submission
	byKey map[submissionKey]string // -> submission ID
}

type submissionKey struct {
	questionID string
	identity   string
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{
		byID:  make(map[string]domain.Submission),
		byKey: make(map[submissionKey]string),
	}
}

func (s *SubmissionStore) Insert(_ context.Context, sub domain.Submission) error {
	key := submissionKey{questionID: sub.QuestionID, identity: sub.NormalizedName}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byKey[key]; taken {
		return domain.ErrDuplicateSubmission
	}
	s.byKey[key] = sub.ID
	s.byID[sub.ID] = sub
	return nil
}

func (s *SubmissionStore) GetOwn(_ context.Context, questionID, identity string) (domain.Submission, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[submissionKey{questionID: questionID, identity: identity}]
	if !ok {
		return domain.Submission{}, false, nil
	}
	return s.byID[id], true, nil
}

func (s *SubmissionStore) ListByQuestion(_ context.Context, questionID string) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Submission
	for _, sub := range s.byID {
		if sub.QuestionID == questionID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *SubmissionStore) ListAll(_ context.Context) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Submission, 0, len(s.byID))
	for _, sub := range s.byID {
		out = append(out, sub)
	}
	return out, nil
}

func (s *SubmissionStore) MarkViewed(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.byID[id]
	if !ok {
		return domain.ErrSubmissionNotFound
	}
	sub.ResultViewed = true
	s.byID[id] = sub
	return nil
}
