package broadcast

import (
	"testing"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
)

func TestPresenceTracker_RegisterUnregister(t *testing.T) {
	tracker := NewPresenceTracker()

	if tracker.Count() != 0 {
		t.Errorf("Count() initial = %d, want 0", tracker.Count())
	}

	tracker.Register("conn-1", domain.User{ID: 1, Name: "alice"})
	tracker.Register("conn-2", domain.User{ID: 2, Name: "bob"})

	if tracker.Count() != 2 {
		t.Errorf("Count() = %d, want 2", tracker.Count())
	}

	tracker.Unregister("conn-1")
	if tracker.Count() != 1 {
		t.Errorf("Count() after unregister = %d, want 1", tracker.Count())
	}

	users := tracker.Snapshot()
	if len(users) != 1 || users[0].Name != "bob" {
		t.Errorf("Snapshot() = %+v, want only bob", users)
	}

	// Unknown connection id is a no-op
	tracker.Unregister("conn-unknown")
	if tracker.Count() != 1 {
		t.Errorf("Count() after unknown unregister = %d, want 1", tracker.Count())
	}
}

func TestPresenceTracker_InsertionOrder(t *testing.T) {
	tracker := NewPresenceTracker()

	tracker.Register("conn-1", domain.User{ID: 1, Name: "alice"})
	tracker.Register("conn-2", domain.User{ID: 2, Name: "bob"})
	tracker.Register("conn-3", domain.User{ID: 3, Name: "carol"})
	tracker.Unregister("conn-2")
	tracker.Register("conn-4", domain.User{ID: 4, Name: "dave"})

	want := []string{"alice", "carol", "dave"}
	users := tracker.Snapshot()
	if len(users) != len(want) {
		t.Fatalf("Snapshot() count = %d, want %d", len(users), len(want))
	}
	for i, name := range want {
		if users[i].Name != name {
			t.Errorf("Snapshot()[%d].Name = %q, want %q", i, users[i].Name, name)
		}
	}
}

func TestPresenceTracker_SameUserTwice(t *testing.T) {
	tracker := NewPresenceTracker()

	// Same user from two tabs appears twice, one entry per connection
	alice := domain.User{ID: 1, Name: "alice"}
	tracker.Register("conn-1", alice)
	tracker.Register("conn-2", alice)

	users := tracker.Snapshot()
	if len(users) != 2 {
		t.Fatalf("Snapshot() count = %d, want 2", len(users))
	}
	for i, u := range users {
		if u.ID != 1 {
			t.Errorf("Snapshot()[%d].ID = %d, want 1", i, u.ID)
		}
	}

	// Closing one tab leaves the other entry intact
	tracker.Unregister("conn-1")
	if tracker.Count() != 1 {
		t.Errorf("Count() = %d, want 1", tracker.Count())
	}
}

func TestPresenceTracker_SnapshotStripsCredentials(t *testing.T) {
	tracker := NewPresenceTracker()
	tracker.Register("conn-1", domain.User{ID: 1, Name: "alice", PasswordHash: "secret"})

	users := tracker.Snapshot()
	if users[0].PasswordHash != "" {
		t.Error("Snapshot() should not carry the password hash")
	}
}
