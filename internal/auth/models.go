// Package auth models account sessions and authentication state for the
// optional account-sync feature. The extraction pipeline does not depend on
// this package.
package auth

import "time"

// User identifies the signed-in account holder.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name,omitempty"`
	PhotoURL      string `json:"photo_url,omitempty"`
	EmailVerified bool   `json:"email_verified"`
}

// Token is a bearer-style credential with an expiry timestamp.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
	Scope        string    `json:"scope,omitempty"`
}

// Expired reports whether the token is past its expiry at the given time.
func (t Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// ExpiresWithin reports whether the token expires within d of now.
func (t Token) ExpiresWithin(d time.Duration, now time.Time) bool {
	return !now.Add(d).Before(t.ExpiresAt)
}

// Session pairs a user with their current token.
type Session struct {
	User      User      `json:"user"`
	Token     Token     `json:"token"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// State is the authentication lifecycle state.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateError
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the outcome of a sign-in, sign-out or refresh attempt. Either
// Success with a Session, or an Error description.
type Result struct {
	Success bool     `json:"success"`
	Session *Session `json:"session,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// TokenRecord is the persisted form of an account token.
type TokenRecord struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       string    `gorm:"column:user_id"`
	AccessToken  string    `gorm:"column:access_token"`
	RefreshToken string    `gorm:"column:refresh_token"`
	IDToken      string    `gorm:"column:id_token"`
	TokenType    string    `gorm:"column:token_type"`
	Scope        string    `gorm:"column:scope"`
	ExpiresAt    time.Time `gorm:"column:expires_at"`
}

// TableName keeps the table name stable regardless of gorm pluralization rules.
func (TokenRecord) TableName() string { return "auth_tokens" }
