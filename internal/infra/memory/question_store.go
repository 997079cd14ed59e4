package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"trivia-contest-service/internal/domain"
)

// QuestionStore is an in-memory implementation of app.QuestionStore.
type QuestionStore struct {
	mu        sync.RWMutex
	questions map[string]domain.Question
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{questions: make(map[string]domain.Question)}
}

func (s *QuestionStore) Insert(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[q.ID] = q
	return nil
}

func (s *QuestionStore) Get(_ context.Context, id string) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (s *QuestionStore) List(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (s *QuestionStore) ActiveAt(_ context.Context, now time.Time) (domain.Question, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var active domain.Question
	found := false
	for _, q := range s.questions {
		if domain.Classify(now, q.StartTime, q.EndTime) != domain.Active {
			continue
		}
		// Overlapping windows tie-break by most recent start.
		if !found || q.StartTime.After(active.StartTime) {
			active = q
			found = true
		}
	}
	return active, found, nil
}

func (s *QuestionStore) UpdateWindow(_ context.Context, id string, start, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	q.StartTime = start
	q.EndTime = end
	s.questions[id] = q
	return nil
}
