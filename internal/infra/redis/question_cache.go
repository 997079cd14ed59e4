package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-contest-service/internal/domain"
)

// ActiveLoader answers "what is active right now" from the source of truth.
type ActiveLoader interface {
	GetActive(ctx context.Context) (domain.Question, bool, error)
}

// noActiveMarker caches the absence of an active question so an idle contest
// does not hammer the store between polls.
const noActiveMarker = "none"

// ActiveQuestionCache caches the active question in Redis. Every polling
// participant asks the same query on the same cadence, so the cache key is a
// single value with a short jittered TTL and a singleflight-deduplicated
// loader behind it.
type ActiveQuestionCache struct {
	client *redis.Client
	loader ActiveLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewActiveQuestionCache(client *redis.Client, loader ActiveLoader, ttl time.Duration) *ActiveQuestionCache {
	return &ActiveQuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

const activeKey = "contest:active"

func (c *ActiveQuestionCache) GetActive(ctx context.Context) (domain.Question, bool, error) {
	if q, ok, hit := c.fromCache(ctx); hit {
		return q, ok, nil
	}

	type cached struct {
		question domain.Question
		ok       bool
	}
	result, err, _ := c.sf.Do(activeKey, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if q, ok, hit := c.fromCache(ctx); hit {
			return cached{question: q, ok: ok}, nil
		}

		q, ok, err := c.loader.GetActive(ctx)
		if err != nil {
			return cached{}, err
		}

		payload := noActiveMarker
		if ok {
			raw, err := json.Marshal(q)
			if err != nil {
				return cached{}, err
			}
			payload = string(raw)
		}
		// best-effort fill; a miss just reloads
		_ = c.client.Set(ctx, activeKey, payload, c.ttlWithJitter()).Err()
		return cached{question: q, ok: ok}, nil
	})
	if err != nil {
		return domain.Question{}, false, err
	}
	r := result.(cached)
	return r.question, r.ok, nil
}

// Invalidate drops the cached value, used after operator edits so a force-end
// is visible on the next poll rather than after the TTL.
func (c *ActiveQuestionCache) Invalidate(ctx context.Context) {
	_ = c.client.Del(ctx, activeKey).Err()
}

func (c *ActiveQuestionCache) fromCache(ctx context.Context) (domain.Question, bool, bool) {
	raw, err := c.client.Get(ctx, activeKey).Result()
	if err != nil {
		return domain.Question{}, false, false
	}
	if raw == noActiveMarker {
		return domain.Question{}, false, true
	}
	var q domain.Question
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return domain.Question{}, false, false
	}
	return q, true, true
}

func (c *ActiveQuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
