package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
)

var (
	// ErrSessionNotFound is returned when no session exists for a token.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when the session's expiry has passed.
	ErrSessionExpired = errors.New("session expired")
)

// DefaultSessionTTL is the fixed session lifetime from creation.
const DefaultSessionTTL = 30 * 24 * time.Hour

// SessionStore maps opaque bearer tokens to authenticated user snapshots
// with expiry. Implementations must be safe for concurrent use.
type SessionStore interface {
	// Create generates a token, stores the session with the configured TTL
	// and returns the token.
	Create(ctx context.Context, user domain.User) (string, error)
	// Validate looks up a token. Expired entries are evicted lazily and
	// reported as ErrSessionExpired; unknown tokens as ErrSessionNotFound.
	Validate(ctx context.Context, token string) (*domain.Session, error)
	// RefreshUser replaces the cached user snapshot in every live session of
	// the given user so future validations reflect the latest profile fields.
	RefreshUser(ctx context.Context, user domain.User) error
	// Revoke deletes a session. Revoking an unknown token is a no-op.
	Revoke(ctx context.Context, token string) error
}

// MemorySessionStore is the default in-process SessionStore. Expiry is
// checked on use; Sweep exists for memory hygiene only and is functionally
// equivalent to pure lazy eviction.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionStore creates a memory-backed session store.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemorySessionStore{
		sessions: make(map[string]*domain.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create generates a token and stores a session expiring ttl from now.
func (s *MemorySessionStore) Create(_ context.Context, user domain.User) (string, error) {
	token, err := NewSessionToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[token] = &domain.Session{
		Token:     token,
		User:      user.Snapshot(),
		ExpiresAt: s.now().Add(s.ttl),
	}
	return token, nil
}

// Validate looks up a token, evicting it if expired.
func (s *MemorySessionStore) Validate(_ context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, token)
		return nil, ErrSessionExpired
	}

	snapshot := *sess
	return &snapshot, nil
}

// RefreshUser updates the cached snapshot in every session of the user.
func (s *MemorySessionStore) RefreshUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := user.Snapshot()
	for _, sess := range s.sessions {
		if sess.User.ID == user.ID {
			sess.User = snapshot
		}
	}
	return nil
}

// Revoke deletes the session for a token.
func (s *MemorySessionStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Sweep evicts expired sessions and returns how many were removed.
func (s *MemorySessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for token, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired or not.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
