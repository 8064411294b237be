package models

import "time"

// User represents a registered dashboard user. Users live in a flat
// file-backed credential store, not a database.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionContext is the per-session state passed into request handlers:
// the authentication flag plus any provider API tokens the user has stored.
// It is created at login and cleared at logout.
type SessionContext struct {
	Username      string            `json:"username"`
	Authenticated bool              `json:"authenticated"`
	Tokens        map[string]string `json:"tokens"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Token returns the stored token for a provider, or "" if none is set.
func (s *SessionContext) Token(provider string) string {
	if s == nil || s.Tokens == nil {
		return ""
	}
	return s.Tokens[provider]
}

// UserResponse is the user shape returned by the API (no password hash).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
