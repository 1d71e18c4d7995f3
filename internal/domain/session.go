package domain

import "time"

// Role is the privilege level attached to a session.
type Role string

// RoleAdmin is the only role this client knows about: every signed-in
// user may administer the catalog.
const RoleAdmin Role = "admin"

// Session is the authenticated identity of the current user.
type Session struct {
	UserID string
	Email  string
	Role   Role
}

// AuthUser is the identity reported by the auth provider.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthToken holds provider credentials persisted between runs so an
// existing session can be discovered at startup.
type AuthToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
}

// Expired reports whether the access token is past its expiry at now.
// A zero expiry never expires.
func (t AuthToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// User returns the identity stored alongside the token.
func (t AuthToken) User() AuthUser {
	return AuthUser{ID: t.UserID, Email: t.Email}
}
