// Package session stores per-client training state for the conversion
// service.
//
// A client first uploads a training scene: a sequence of example frames, each
// holding a "before" and "after" example. The service derives the few-shot
// prompt prefixes from it once and keeps scene and prefixes in a [Session],
// so later conversion requests only carry a session ID. There is no global
// training state; every request resolves its own session.
//
// Backends:
//   - memory: in-process map for development and tests
//   - file: JSON files for the CLI and single-instance deployments
//   - redis: shared storage for multi-instance deployments
//   - mongo: durable storage for long-lived training corpora
//
// # Usage
//
//	sess, err := session.New(training, prefixes.Primary, prefixes.Edit, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
//
//	sess, err = store.Get(ctx, id)
//	switch {
//	case errors.Is(err, session.ErrExpired):
//	    // ask the client to upload the training scene again
//	case sess == nil:
//	    // unknown session
//	}
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/scenedsl/pkg/core/scene"
)

// ErrExpired is returned when a session exists but has exceeded its TTL.
var ErrExpired = errors.New("session expired")

// DefaultTTL is the default session lifetime.
const DefaultTTL = 24 * time.Hour

// Session holds a training scene and the prompt prefixes derived from it.
type Session struct {
	ID            string      `json:"id"`
	Training      scene.Scene `json:"training"`
	PrimaryPrefix string      `json:"primary_prefix"`
	EditPrefix    string      `json:"edit_prefix"`
	CreatedAt     time.Time   `json:"created_at"`
	ExpiresAt     time.Time   `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// TTL returns the remaining lifetime, or zero if the session never expires
// or has already expired.
func (s *Session) TTL() time.Duration {
	if s.ExpiresAt.IsZero() {
		return 0
	}
	if d := time.Until(s.ExpiresAt); d > 0 {
		return d
	}
	return 0
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist.
	// Returns nil, ErrExpired if the session exists but has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session, replacing any session with the same ID.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions. Backends with native expiry may
	// treat it as a no-op.
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// New creates a session with a random UUID. A ttl of zero never expires.
func New(training scene.Scene, primaryPrefix, editPrefix string, ttl time.Duration) (*Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	sess := &Session{
		ID:            id.String(),
		Training:      training.Clone(),
		PrimaryPrefix: primaryPrefix,
		EditPrefix:    editPrefix,
		CreatedAt:     now,
	}
	if ttl > 0 {
		sess.ExpiresAt = now.Add(ttl)
	}
	return sess, nil
}
