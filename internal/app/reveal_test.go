package app_test

import (
	"context"
	"testing"

	"trivia-contest-service/internal/app"
	"trivia-contest-service/internal/infra/memory"
)

func TestToggleStoresAndClearsWinnerName(t *testing.T) {
	ctx := context.Background()
	gate := app.NewRevealGate(memory.NewSettingsStore())

	on, err := gate.Toggle(ctx, false, "sara")
	if err != nil || !on {
		t.Fatalf("toggle on: on=%v err=%v", on, err)
	}
	settings, err := gate.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !settings.ShowWinner || settings.WinnerName != "sara" {
		t.Fatalf("expected winner revealed, got %+v", settings)
	}

	off, err := gate.Toggle(ctx, true, "")
	if err != nil || off {
		t.Fatalf("toggle off: on=%v err=%v", off, err)
	}
	settings, _ = gate.Get(ctx)
	if settings.ShowWinner || settings.WinnerName != "" {
		t.Fatalf("expected winner hidden and name cleared, got %+v", settings)
	}
}
