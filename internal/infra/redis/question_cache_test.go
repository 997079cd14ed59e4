package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-contest-service/internal/domain"
)

type countingLoader struct {
	question domain.Question
	active   bool
	calls    int
}

func (l *countingLoader) GetActive(_ context.Context) (domain.Question, bool, error) {
	l.calls++
	return l.question, l.active, nil
}

func TestActiveQuestionCacheHit(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	loader := &countingLoader{
		question: domain.Question{ID: "q1", Text: "capital?", CorrectAnswer: "Cairo"},
		active:   true,
	}
	cache := NewActiveQuestionCache(client, loader, time.Minute)

	q, ok, err := cache.GetActive(ctx)
	if err != nil || !ok || q.ID != "q1" {
		t.Fatalf("first read: q=%+v ok=%v err=%v", q, ok, err)
	}
	if _, _, err := cache.GetActive(ctx); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader called %d times", loader.calls)
	}
}

func TestActiveQuestionCacheCachesAbsence(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	loader := &countingLoader{active: false}
	cache := NewActiveQuestionCache(client, loader, time.Minute)

	for i := 0; i < 3; i++ {
		if _, ok, err := cache.GetActive(ctx); ok || err != nil {
			t.Fatalf("read %d: ok=%v err=%v", i, ok, err)
		}
	}
	if loader.calls != 1 {
		t.Fatalf("expected absence cached, loader called %d times", loader.calls)
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	loader := &countingLoader{
		question: domain.Question{ID: "q1"},
		active:   true,
	}
	cache := NewActiveQuestionCache(client, loader, time.Minute)

	if _, _, err := cache.GetActive(ctx); err != nil {
		t.Fatalf("warm: %v", err)
	}
	cache.Invalidate(ctx)
	if _, _, err := cache.GetActive(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader called %d times", loader.calls)
	}
}
