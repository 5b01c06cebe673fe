package broadcast

import (
	"sync"
	"time"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
)

// DefaultTypingTimeout clears a typing entry that never received an explicit
// isTyping=false signal.
const DefaultTypingTimeout = 5 * time.Second

type typingEntry struct {
	user  domain.User
	timer *time.Timer
	gen   uint64
}

// TypingTracker holds ephemeral per-connection composing state. Entries are
// created or refreshed on isTyping=true, removed on isTyping=false, on
// disconnect, or when the inactivity timer fires. Never persisted.
//
// Each entry carries a generation stamp that advances on every refresh. The
// expire callback reports the stamp of the timer that fired, and ClearExpired
// only removes an entry whose stamp still matches, so a refresh that races a
// fired timer keeps the entry alive.
type TypingTracker struct {
	mu      sync.Mutex
	entries map[string]*typingEntry
	gen     uint64
	timeout time.Duration
	expire  func(connID string, gen uint64)
}

// NewTypingTracker creates a typing tracker. expire is invoked (from a timer
// goroutine) when an entry times out; the hub uses it to enqueue the
// coalesced isTyping=false broadcast.
func NewTypingTracker(timeout time.Duration, expire func(connID string, gen uint64)) *TypingTracker {
	if timeout <= 0 {
		timeout = DefaultTypingTimeout
	}
	return &TypingTracker{
		entries: make(map[string]*typingEntry),
		timeout: timeout,
		expire:  expire,
	}
}

// Set records a typing signal and reports whether the visible state changed.
// A repeated isTyping=true only refreshes the inactivity timer.
func (t *TypingTracker) Set(connID string, user domain.User, isTyping bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, exists := t.entries[connID]
	if isTyping {
		if exists {
			entry.timer.Stop()
			entry.gen = t.nextGen()
			entry.timer = t.newTimer(connID, entry.gen)
			return false
		}
		gen := t.nextGen()
		t.entries[connID] = &typingEntry{
			user:  user.Snapshot(),
			timer: t.newTimer(connID, gen),
			gen:   gen,
		}
		return true
	}

	if !exists {
		return false
	}
	entry.timer.Stop()
	delete(t.entries, connID)
	return true
}

// Clear drops the entry for a connection, returning the user snapshot and
// whether an entry existed. Used on disconnect.
func (t *TypingTracker) Clear(connID string) (domain.User, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, exists := t.entries[connID]
	if !exists {
		return domain.User{}, false
	}
	entry.timer.Stop()
	delete(t.entries, connID)
	return entry.user, true
}

// ClearExpired drops the entry for a connection only if gen matches the
// entry's current stamp. A stale timer whose entry was refreshed or replaced
// in the meantime is a no-op.
func (t *TypingTracker) ClearExpired(connID string, gen uint64) (domain.User, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, exists := t.entries[connID]
	if !exists || entry.gen != gen {
		return domain.User{}, false
	}
	entry.timer.Stop()
	delete(t.entries, connID)
	return entry.user, true
}

func (t *TypingTracker) nextGen() uint64 {
	t.gen++
	return t.gen
}

func (t *TypingTracker) newTimer(connID string, gen uint64) *time.Timer {
	return time.AfterFunc(t.timeout, func() { t.expire(connID, gen) })
}
