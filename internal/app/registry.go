package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trivia-contest-service/internal/domain"
)

// DefaultLivenessWindow is how long a session stays live without a heartbeat.
const DefaultLivenessWindow = 30 * time.Second

// Registry owns identity liveness: one live device per display name, detected
// by heartbeat expiry rather than a persistent connection.
type Registry struct {
	sessions SessionStore
	window   time.Duration
	now      func() time.Time
}

func NewRegistry(sessions SessionStore, window time.Duration) *Registry {
	if window <= 0 {
		window = DefaultLivenessWindow
	}
	return &Registry{sessions: sessions, window: window, now: time.Now}
}

// NewRegistryWithClock is test-only for deterministic timestamps.
func NewRegistryWithClock(sessions SessionStore, window time.Duration, now func() time.Time) *Registry {
	r := NewRegistry(sessions, window)
	r.now = now
	return r
}

// LivenessWindow exposes the configured window for clients sizing heartbeats.
func (r *Registry) LivenessWindow() time.Duration {
	return r.window
}

// IsIdentityLive reports whether the identity has a fresh session elsewhere.
// excludeSessionID lets a refreshing client skip its own row.
func (r *Registry) IsIdentityLive(ctx context.Context, displayName, excludeSessionID string) (bool, error) {
	identity := domain.NormalizeIdentity(displayName)
	if identity == "" {
		return false, nil
	}
	count, err := r.sessions.CountLive(ctx, identity, r.now().Add(-r.window), excludeSessionID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Register garbage-collects expired rows for the identity and inserts a fresh
// session. It deliberately does not re-check liveness; the caller has done so,
// and two racing logins may both land here. That brief double-occupancy is an
// accepted imperfection, bounded by the next heartbeat cycle.
func (r *Registry) Register(ctx context.Context, displayName, sessionID string) error {
	identity := domain.NormalizeIdentity(displayName)
	if identity == "" || sessionID == "" {
		return fmt.Errorf("%w: name and session id are required", domain.ErrValidation)
	}
	now := r.now()
	if err := r.sessions.DeleteBefore(ctx, identity, now.Add(-r.window)); err != nil {
		return err
	}
	return r.sessions.Insert(ctx, domain.Session{
		Identity:  identity,
		SessionID: sessionID,
		LastSeen:  now,
	})
}

// Login is the composed check-then-register flow: it rejects with
// ErrSessionConflict when the identity is live on another device, otherwise
// registers a new session and returns its ID.
func (r *Registry) Login(ctx context.Context, displayName, existingSessionID string) (string, error) {
	if domain.NormalizeIdentity(displayName) == "" {
		return "", fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	live, err := r.IsIdentityLive(ctx, displayName, existingSessionID)
	if err != nil {
		return "", err
	}
	if live {
		return "", domain.ErrSessionConflict
	}
	sessionID := existingSessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	if err := r.Register(ctx, displayName, sessionID); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Heartbeat refreshes the session's LastSeen. A vanished session is not an
// error; the client simply re-registers on its next login.
func (r *Registry) Heartbeat(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	_, err := r.sessions.Touch(ctx, sessionID, r.now())
	return err
}

// End deletes the session. Idempotent.
func (r *Registry) End(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return r.sessions.Delete(ctx, sessionID)
}
