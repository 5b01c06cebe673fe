package chat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Snapshot(t *testing.T) {
	user := User{
		ID:           1,
		Name:         "alice",
		Color:        "#ff8800",
		PublicID:     "abc123",
		PasswordHash: "bcrypt-hash",
	}

	snapshot := user.Snapshot()

	assert.Equal(t, user.ID, snapshot.ID)
	assert.Equal(t, user.Name, snapshot.Name)
	assert.Equal(t, user.Color, snapshot.Color)
	assert.Equal(t, user.PublicID, snapshot.PublicID)
	assert.Empty(t, snapshot.PasswordHash)

	// Snapshot is a copy; the original keeps its hash
	assert.Equal(t, "bcrypt-hash", user.PasswordHash)
}

func TestUser_JSONNeverLeaksHash(t *testing.T) {
	user := User{ID: 1, Name: "alice", PasswordHash: "bcrypt-hash"}

	data, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "bcrypt-hash")
	assert.NotContains(t, string(data), "password")
}

func TestSession_Expired(t *testing.T) {
	expiry := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
	session := Session{Token: "tok", ExpiresAt: expiry}

	assert.False(t, session.Expired(expiry.Add(-time.Second)))
	assert.True(t, session.Expired(expiry), "expiry instant counts as expired")
	assert.True(t, session.Expired(expiry.Add(time.Second)))
}
