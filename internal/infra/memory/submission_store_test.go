package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-contest-service/internal/domain"
	"trivia-contest-service/internal/infra/memory"
)

func TestSubmissionStoreEnforcesUniqueKey(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSubmissionStore()
	now := time.Now()

	first := domain.Submission{
		ID:             "s-1",
		QuestionID:     "q-1",
		DisplayName:    "Sara",
		NormalizedName: "sara",
		Answer:         "cairo",
		IsCorrect:      true,
		SubmittedAt:    now,
	}
	if err := store.Insert(ctx, first); err != nil {
		t.Fatalf("insert: %v", err)
	}

	dup := first
	dup.ID = "s-2"
	dup.Answer = "giza"
	if err := store.Insert(ctx, dup); !errors.Is(err, domain.ErrDuplicateSubmission) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	// Same identity on a different question is a separate key.
	other := first
	other.ID = "s-3"
	other.QuestionID = "q-2"
	if err := store.Insert(ctx, other); err != nil {
		t.Fatalf("insert other question: %v", err)
	}

	got, ok, err := store.GetOwn(ctx, "q-1", "sara")
	if err != nil || !ok {
		t.Fatalf("get own: ok=%v err=%v", ok, err)
	}
	if got.ID != "s-1" || got.Answer != "cairo" {
		t.Fatalf("stored row mutated by rejected duplicate: %+v", got)
	}
}

func TestSubmissionStoreMarkViewed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSubmissionStore()

	sub := domain.Submission{
		ID:             "s-1",
		QuestionID:     "q-1",
		DisplayName:    "Omar",
		NormalizedName: "omar",
		Answer:         "4",
		SubmittedAt:    time.Now(),
	}
	if err := store.Insert(ctx, sub); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.MarkViewed(ctx, "s-1"); err != nil {
		t.Fatalf("mark viewed: %v", err)
	}
	got, _, err := store.GetOwn(ctx, "q-1", "omar")
	if err != nil {
		t.Fatalf("get own: %v", err)
	}
	if !got.ResultViewed {
		t.Fatal("ResultViewed not persisted")
	}
	if err := store.MarkViewed(ctx, "missing"); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
