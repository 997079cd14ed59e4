package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-contest-service/internal/domain"
)

// SessionStore persists device sessions in Postgres.
type SessionStore struct {
	pool *pgxpool.Pool
}

func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

func (s *SessionStore) CountLive(ctx context.Context, identity string, cutoff time.Time, excludeSessionID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM active_sessions
		WHERE user_name = $1 AND last_seen > $2 AND session_id <> $3`,
		identity, cutoff, excludeSessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count live sessions: %w", err)
	}
	return count, nil
}

func (s *SessionStore) DeleteBefore(ctx context.Context, identity string, cutoff time.Time) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM active_sessions WHERE user_name = $1 AND last_seen <= $2`, identity, cutoff)
	if err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	return nil
}

func (s *SessionStore) Insert(ctx context.Context, sess domain.Session) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO active_sessions (session_id, user_name, last_seen)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id) DO UPDATE SET user_name = $2, last_seen = $3`,
		sess.SessionID, sess.Identity, sess.LastSeen)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SessionStore) Touch(ctx context.Context, sessionID string, now time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE active_sessions SET last_seen = $2 WHERE session_id = $1`, sessionID, now)
	if err != nil {
		return false, fmt.Errorf("touch session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM active_sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
