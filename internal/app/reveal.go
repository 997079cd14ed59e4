package app

import (
	"context"

	"trivia-contest-service/internal/domain"
)

// RevealGate owns the settings singleton that decouples "winner exists" from
// "winner is announced". It performs no window checks itself; the operator
// confirms the question has ended before toggling.
type RevealGate struct {
	settings SettingsStore
}

func NewRevealGate(settings SettingsStore) *RevealGate {
	return &RevealGate{settings: settings}
}

// Get returns the singleton, creating it lazily on first read.
func (g *RevealGate) Get(ctx context.Context) (domain.GameSettings, error) {
	return g.settings.Get(ctx)
}

// SetCurrentQuestion points the gate at a new question and hides the winner.
func (g *RevealGate) SetCurrentQuestion(ctx context.Context, questionID string) error {
	return g.settings.SetCurrentQuestion(ctx, questionID)
}

// Toggle flips the reveal flag. Turning on stores the winner name; turning
// off clears it. Returns the new value.
func (g *RevealGate) Toggle(ctx context.Context, current bool, winnerName string) (bool, error) {
	next := !current
	name := ""
	if next {
		name = winnerName
	}
	if err := g.settings.SetShowWinner(ctx, next, name); err != nil {
		return current, err
	}
	return next, nil
}
