package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-contest-service/internal/domain"
	"trivia-contest-service/internal/infra/memory"
)

func TestQuestionStoreActiveAtPrefersLatestStart(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	long := domain.Question{ID: "q-long", StartTime: base, EndTime: base.Add(time.Hour)}
	late := domain.Question{ID: "q-late", StartTime: base.Add(10 * time.Minute), EndTime: base.Add(20 * time.Minute)}
	ended := domain.Question{ID: "q-ended", StartTime: base.Add(-time.Hour), EndTime: base}
	for _, q := range []domain.Question{long, late, ended} {
		if err := store.Insert(ctx, q); err != nil {
			t.Fatalf("insert %s: %v", q.ID, err)
		}
	}

	got, found, err := store.ActiveAt(ctx, base.Add(15*time.Minute))
	if err != nil || !found {
		t.Fatalf("active: found=%v err=%v", found, err)
	}
	if got.ID != "q-late" {
		t.Fatalf("active = %q, want the later-starting window", got.ID)
	}

	if _, found, _ := store.ActiveAt(ctx, base.Add(2*time.Hour)); found {
		t.Fatal("no window should be active after everything ended")
	}
}

func TestQuestionStoreListSortsByStart(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	base := time.Now()

	for i, id := range []string{"q-c", "q-a", "q-b"} {
		offsets := []time.Duration{2 * time.Hour, 0, time.Hour}
		q := domain.Question{ID: id, StartTime: base.Add(offsets[i]), EndTime: base.Add(offsets[i] + 30*time.Minute)}
		if err := store.Insert(ctx, q); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"q-a", "q-b", "q-c"}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("list[%d] = %q, want %q", i, list[i].ID, id)
		}
	}
}

func TestQuestionStoreUpdateWindowUnknownID(t *testing.T) {
	store := memory.NewQuestionStore()
	err := store.UpdateWindow(context.Background(), "missing", time.Now(), time.Now().Add(time.Minute))
	if !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
