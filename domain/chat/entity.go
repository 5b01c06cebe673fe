package chat

import "time"

// User represents a registered account. Copies embedded in sessions and
// presence entries are snapshots; the users table is authoritative.
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"uniqueIndex;not null;size:50" json:"name"`
	Color        string    `gorm:"size:16" json:"color"`
	PublicID     string    `gorm:"uniqueIndex;not null;size:21" json:"public_id"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Snapshot returns a copy of the user with credential fields stripped,
// suitable for embedding in sessions and wire payloads.
func (u User) Snapshot() User {
	u.PasswordHash = ""
	return u
}

// Message is a single chat message. The ID is assigned by storage and is
// strictly increasing, which makes it a total-order tiebreaker alongside
// the timestamp. Timestamp is epoch milliseconds, assigned by the server.
type Message struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID  int64  `gorm:"index;not null" json:"author_id"`
	Text      string `gorm:"not null" json:"text"`
	Timestamp int64  `gorm:"not null" json:"timestamp"`
}

// TableName returns the table name for the Message entity.
func (Message) TableName() string {
	return "messages"
}

// Session is a time-bounded mapping from a bearer token to an authenticated
// user snapshot. Expiry is checked on every use; an expired session is
// equivalent to no session.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session's expiry has passed.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
