// Package models defines the client-side data shared by the Nospi packages:
// backend sessions and users, onboarding answers and the example Note row.
package models

import "time"

// expirySkew treats a token as expired slightly before its real expiry so a
// request started now does not race the deadline.
const expirySkew = 10 * time.Second

// Session is a time-bounded proof of authentication for exactly one User.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user"`
}

// Expired reports whether the access token should no longer be used at now.
// A zero ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt.Add(-expirySkew))
}

// User is the account the backend associates with a session.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Profile   Profile   `json:"user_metadata"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile holds the fields collected during onboarding.
type Profile struct {
	Name         string    `json:"name,omitempty"`
	Gender       string    `json:"gender,omitempty"`
	InterestedIn string    `json:"interested_in,omitempty"`
	AgeRange     *AgeRange `json:"age_range,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	PhotoURL     string    `json:"photo_url,omitempty"`
}

// AuthEventKind names a session change emitted by the backend client.
type AuthEventKind string

const (
	AuthEventInitialSession AuthEventKind = "INITIAL_SESSION"
	AuthEventSignedIn       AuthEventKind = "SIGNED_IN"
	AuthEventSignedOut      AuthEventKind = "SIGNED_OUT"
	AuthEventTokenRefreshed AuthEventKind = "TOKEN_REFRESHED"
	AuthEventUserUpdated    AuthEventKind = "USER_UPDATED"
)

// AuthEvent is one session-change notification. Session is nil after sign-out.
type AuthEvent struct {
	Kind    AuthEventKind
	Session *Session
}

// UserOf returns the session's user, or nil for a nil session.
func UserOf(s *Session) *User {
	if s == nil {
		return nil
	}
	return s.User
}
