package domain

import (
	"testing"
	"time"
)

func TestWinnerOfPicksEarliestCorrect(t *testing.T) {
	base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	subs := []Submission{
		{ID: "s3", NormalizedName: "omar", IsCorrect: true, SubmittedAt: base.Add(20 * time.Second)},
		{ID: "s1", NormalizedName: "sara", IsCorrect: false, SubmittedAt: base.Add(5 * time.Second)},
		{ID: "s2", NormalizedName: "lina", IsCorrect: true, SubmittedAt: base.Add(10 * time.Second)},
	}

	winner, ok := WinnerOf(subs)
	if !ok {
		t.Fatalf("expected a winner")
	}
	if winner.NormalizedName != "lina" {
		t.Fatalf("expected lina to win, got %s", winner.NormalizedName)
	}

	// Result must not depend on input ordering.
	reversed := []Submission{subs[2], subs[0], subs[1]}
	again, _ := WinnerOf(reversed)
	if again.ID != winner.ID {
		t.Fatalf("winner depends on input order: %s vs %s", again.ID, winner.ID)
	}
}

func TestWinnerOfNoCorrectAnswers(t *testing.T) {
	subs := []Submission{
		{ID: "s1", IsCorrect: false, SubmittedAt: time.Now()},
	}
	if _, ok := WinnerOf(subs); ok {
		t.Fatalf("expected no winner")
	}
	if _, ok := WinnerOf(nil); ok {
		t.Fatalf("expected no winner for empty set")
	}
}

func TestWinnerOfTieBreaksByID(t *testing.T) {
	at := time.Date(2026, 3, 1, 20, 0, 10, 0, time.UTC)
	subs := []Submission{
		{ID: "b", IsCorrect: true, SubmittedAt: at},
		{ID: "a", IsCorrect: true, SubmittedAt: at},
	}
	winner, _ := WinnerOf(subs)
	if winner.ID != "a" {
		t.Fatalf("expected deterministic tie-break on ID, got %s", winner.ID)
	}
}
