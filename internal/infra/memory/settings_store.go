package memory

import (
	"context"
	"sync"

	"trivia-contest-service/internal/domain"
)

// SettingsStore is an in-memory implementation of app.SettingsStore. The
// settings value is a singleton, so there is no keying, only the zero value
// until first written.
type SettingsStore struct {
	mu       sync.RWMutex
	settings domain.GameSettings
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{}
}

func (s *SettingsStore) Get(_ context.Context) (domain.GameSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *SettingsStore) SetCurrentQuestion(_ context.Context, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.CurrentQuestionID = questionID
	s.settings.ShowWinner = false
	s.settings.WinnerName = ""
	return nil
}

func (s *SettingsStore) SetShowWinner(_ context.Context, show bool, winnerName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.ShowWinner = show
	s.settings.WinnerName = winnerName
	if !show {
		s.settings.WinnerName = ""
	}
	return nil
}
