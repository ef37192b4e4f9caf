package domain

import "time"

// User is an account that owns links and activities
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// Caller is the identity resolved from the bearer credential of a request
type Caller struct {
	ID       int64
	Username string
	IsAdmin  bool
}

// CallerFrom builds the request identity for a stored user.
func CallerFrom(u *User) Caller {
	return Caller{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

// UserSummary is the identity recorded in activity details
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}
