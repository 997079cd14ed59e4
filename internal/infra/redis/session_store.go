package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-contest-service/internal/domain"
)

// SessionStore is a Redis implementation of app.SessionStore.
// Layout:
//   - contest:session:{sessionID} -> identity, so heartbeat and logout can
//     find a session without knowing the name.
//   - contest:identity:{identity} hash of sessionID -> lastSeen (RFC 3339),
//     so the liveness check scans one small hash per name.
//
// Keys carry a TTL of twice the liveness window as a safety net; liveness
// itself is always decided from the stored lastSeen, never from key expiry.
type SessionStore struct {
	client *redis.Client
	window time.Duration
}

func NewSessionStore(client *redis.Client, window time.Duration) *SessionStore {
	return &SessionStore{client: client, window: window}
}

func (s *SessionStore) CountLive(ctx context.Context, identity string, cutoff time.Time, excludeSessionID string) (int, error) {
	fields, err := s.client.HGetAll(ctx, s.identityKey(identity)).Result()
	if err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}
	count := 0
	for sessionID, raw := range fields {
		if sessionID == excludeSessionID {
			continue
		}
		lastSeen, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			continue
		}
		// Strictly after: a session last seen exactly one window ago is dead.
		if lastSeen.After(cutoff) {
			count++
		}
	}
	return count, nil
}

func (s *SessionStore) DeleteBefore(ctx context.Context, identity string, cutoff time.Time) error {
	key := s.identityKey(identity)
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("scan sessions: %w", err)
	}
	var expired []string
	for sessionID, raw := range fields {
		lastSeen, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil || !lastSeen.After(cutoff) {
			expired = append(expired, sessionID)
		}
	}
	if len(expired) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	pipe.HDel(ctx, key, expired...)
	for _, sessionID := range expired {
		pipe.Del(ctx, s.sessionKey(sessionID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Insert(ctx context.Context, sess domain.Session) error {
	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.sessionKey(sess.SessionID), sess.Identity, s.keyTTL())
	pipe.HSet(ctx, s.identityKey(sess.Identity), sess.SessionID, sess.LastSeen.Format(time.RFC3339Nano))
	pipe.Expire(ctx, s.identityKey(sess.Identity), s.keyTTL())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SessionStore) Touch(ctx context.Context, sessionID string, now time.Time) (bool, error) {
	identity, err := s.client.Get(ctx, s.sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup session: %w", err)
	}
	pipe := s.client.Pipeline()
	pipe.Expire(ctx, s.sessionKey(sessionID), s.keyTTL())
	pipe.HSet(ctx, s.identityKey(identity), sessionID, now.Format(time.RFC3339Nano))
	pipe.Expire(ctx, s.identityKey(identity), s.keyTTL())
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("touch session: %w", err)
	}
	return true, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	identity, err := s.client.Get(ctx, s.sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup session: %w", err)
	}
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.sessionKey(sessionID))
	pipe.HDel(ctx, s.identityKey(identity), sessionID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *SessionStore) keyTTL() time.Duration {
	return 2 * s.window
}

func (s *SessionStore) sessionKey(sessionID string) string {
	return "contest:session:" + sessionID
}

func (s *SessionStore) identityKey(identity string) string {
	return "contest:identity:" + identity
}
