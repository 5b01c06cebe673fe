package broadcast

import (
	"sync"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
)

type presenceEntry struct {
	connID string
	user   domain.User
}

// PresenceTracker maps open connections to user snapshots and derives the
// online-user set. Exactly one entry exists per open connection; the same
// user connected from two tabs appears twice. Snapshots preserve insertion
// order. All state is process-lifetime only and rebuilt empty on restart.
type PresenceTracker struct {
	mu      sync.RWMutex
	entries []presenceEntry
}

// NewPresenceTracker creates an empty presence tracker.
func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{}
}

// Register adds an entry for a newly authenticated connection.
func (p *PresenceTracker) Register(connID string, user domain.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, presenceEntry{connID: connID, user: user.Snapshot()})
}

// Unregister removes the entry for a closed connection. Unknown connection
// ids are a no-op.
func (p *PresenceTracker) Unregister(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, e := range p.entries {
		if e.connID == connID {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			return
		}
	}
}

// Snapshot returns the current online users in insertion order, one entry
// per open connection.
func (p *PresenceTracker) Snapshot() []domain.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	users := make([]domain.User, 0, len(p.entries))
	for _, e := range p.entries {
		users = append(users, e.user)
	}
	return users
}

// Count returns the number of presence entries.
func (p *PresenceTracker) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
