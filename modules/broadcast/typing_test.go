package broadcast

import (
	"sync"
	"testing"
	"time"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
)

func TestTypingTracker_SetAndClear(t *testing.T) {
	tracker := NewTypingTracker(time.Minute, func(string, uint64) {})
	alice := domain.User{ID: 1, Name: "alice"}

	// First true signal changes visible state
	if !tracker.Set("conn-1", alice, true) {
		t.Error("Set(true) first signal should report a state change")
	}

	// Repeated true only refreshes the timer
	if tracker.Set("conn-1", alice, true) {
		t.Error("Set(true) repeated signal should not report a state change")
	}

	// Explicit false clears
	if !tracker.Set("conn-1", alice, false) {
		t.Error("Set(false) should report a state change")
	}

	// False without an entry is a no-op
	if tracker.Set("conn-1", alice, false) {
		t.Error("Set(false) without entry should not report a state change")
	}
}

func TestTypingTracker_Clear(t *testing.T) {
	tracker := NewTypingTracker(time.Minute, func(string, uint64) {})
	alice := domain.User{ID: 1, Name: "alice"}

	tracker.Set("conn-1", alice, true)

	user, cleared := tracker.Clear("conn-1")
	if !cleared {
		t.Fatal("Clear() should report an existing entry")
	}
	if user.Name != "alice" {
		t.Errorf("Clear() user.Name = %q, want %q", user.Name, "alice")
	}

	if _, cleared := tracker.Clear("conn-1"); cleared {
		t.Error("Clear() twice should report no entry")
	}
}

func TestTypingTracker_Expiry(t *testing.T) {
	var mu sync.Mutex
	var expired []string

	tracker := NewTypingTracker(20*time.Millisecond, func(connID string, _ uint64) {
		mu.Lock()
		expired = append(expired, connID)
		mu.Unlock()
	})

	tracker.Set("conn-1", domain.User{ID: 1, Name: "alice"}, true)

	deadline := time.After(time.Second)
	for {
		mu.Lock()
		n := len(expired)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("expire callback never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if expired[0] != "conn-1" {
		t.Errorf("expire callback connID = %q, want %q", expired[0], "conn-1")
	}
}

func TestTypingTracker_ExplicitFalseCancelsTimer(t *testing.T) {
	var mu sync.Mutex
	fired := false

	tracker := NewTypingTracker(20*time.Millisecond, func(string, uint64) {
		mu.Lock()
		fired = true
		mu.Unlock()
	})

	alice := domain.User{ID: 1, Name: "alice"}
	tracker.Set("conn-1", alice, true)
	tracker.Set("conn-1", alice, false)

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fired {
		t.Error("expire callback fired after explicit false signal")
	}
}

func TestTypingTracker_RefreshInvalidatesPendingExpiry(t *testing.T) {
	var mu sync.Mutex
	var gens []uint64

	tracker := NewTypingTracker(time.Minute, func(_ string, gen uint64) {
		mu.Lock()
		gens = append(gens, gen)
		mu.Unlock()
	})

	alice := domain.User{ID: 1, Name: "alice"}
	tracker.Set("conn-1", alice, true)

	// Refresh advances the generation; a clear stamped with the old one,
	// like a timer that fired just before the refresh was processed, must
	// leave the entry alone.
	tracker.Set("conn-1", alice, true)

	if _, cleared := tracker.ClearExpired("conn-1", 1); cleared {
		t.Error("ClearExpired() with stale generation removed a refreshed entry")
	}

	user, cleared := tracker.ClearExpired("conn-1", 2)
	if !cleared {
		t.Fatal("ClearExpired() with current generation should remove the entry")
	}
	if user.Name != "alice" {
		t.Errorf("ClearExpired() user.Name = %q, want %q", user.Name, "alice")
	}
}

func TestTypingTracker_StaleExpiryAfterReconnectIsNoOp(t *testing.T) {
	tracker := NewTypingTracker(time.Minute, func(string, uint64) {})
	alice := domain.User{ID: 1, Name: "alice"}

	tracker.Set("conn-1", alice, true) // gen 1
	tracker.Set("conn-1", alice, false)
	tracker.Set("conn-1", alice, true) // fresh entry, gen 2

	// A timer from the first entry must not clear the second.
	if _, cleared := tracker.ClearExpired("conn-1", 1); cleared {
		t.Error("ClearExpired() from a replaced entry's timer removed the new entry")
	}
	if _, exists := tracker.Clear("conn-1"); !exists {
		t.Error("entry should still exist after stale ClearExpired")
	}
}
