package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-contest-service/internal/domain"
)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionStore(client, 30*time.Second), mr
}

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	if err := store.Insert(ctx, domain.Session{Identity: "sara", SessionID: "s1", LastSeen: now}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !mr.Exists("contest:session:s1") {
		t.Fatalf("expected session key in redis")
	}

	count, err := store.CountLive(ctx, "sara", now.Add(-30*time.Second), "")
	if err != nil || count != 1 {
		t.Fatalf("expected 1 live session, got %d err=%v", count, err)
	}

	// The session's own ID is excluded for refresh scenarios.
	count, err = store.CountLive(ctx, "sara", now.Add(-30*time.Second), "s1")
	if err != nil || count != 0 {
		t.Fatalf("expected own session excluded, got %d err=%v", count, err)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("contest:session:s1") {
		t.Fatalf("expected session key removed")
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
}

func TestSessionStoreExpiryAndGC(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	if err := store.Insert(ctx, domain.Session{Identity: "sara", SessionID: "old", LastSeen: now}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	later := now.Add(time.Minute)
	count, err := store.CountLive(ctx, "sara", later.Add(-30*time.Second), "")
	if err != nil || count != 0 {
		t.Fatalf("expected stale session not live, got %d err=%v", count, err)
	}

	if err := store.DeleteBefore(ctx, "sara", later.Add(-30*time.Second)); err != nil {
		t.Fatalf("delete before: %v", err)
	}
	ok, err := store.Touch(ctx, "old", later)
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if ok {
		t.Fatalf("expected swept session to be gone")
	}
}

func TestSessionDeadAtExactWindow(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	if err := store.Insert(ctx, domain.Session{Identity: "sara", SessionID: "s1", LastSeen: now}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// lastSeen equal to the cutoff is dead, one nanosecond inside is live.
	count, err := store.CountLive(ctx, "sara", now, "")
	if err != nil || count != 0 {
		t.Fatalf("expected dead at exact window, got %d err=%v", count, err)
	}
	count, err = store.CountLive(ctx, "sara", now.Add(-time.Nanosecond), "")
	if err != nil || count != 1 {
		t.Fatalf("expected live just inside the window, got %d err=%v", count, err)
	}

	// GC sweeps the row that is dead at exactly the window.
	if err := store.DeleteBefore(ctx, "sara", now); err != nil {
		t.Fatalf("delete before: %v", err)
	}
	if ok, err := store.Touch(ctx, "s1", now); err != nil || ok {
		t.Fatalf("expected swept session gone, ok=%v err=%v", ok, err)
	}
}

func TestTouchRefreshesLastSeen(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	if err := store.Insert(ctx, domain.Session{Identity: "sara", SessionID: "s1", LastSeen: now}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	beat := now.Add(15 * time.Second)
	ok, err := store.Touch(ctx, "s1", beat)
	if err != nil || !ok {
		t.Fatalf("touch: ok=%v err=%v", ok, err)
	}

	// Live relative to the refreshed lastSeen, not the original insert.
	count, err := store.CountLive(ctx, "sara", beat.Add(-time.Second), "")
	if err != nil || count != 1 {
		t.Fatalf("expected refreshed session live, got %d err=%v", count, err)
	}
}
