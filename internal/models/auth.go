package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller attached to a request.
// Profile is nil for accounts without a student profile.
type Identity struct {
	User      User     `json:"user"`
	Profile   *Student `json:"profile,omitempty"`
	SessionID string   `json:"-"`
}

// HasRole reports whether the caller's profile carries one of roles.
func (i *Identity) HasRole(roles ...Role) bool {
	if i == nil || i.Profile == nil {
		return false
	}
	for _, r := range roles {
		if i.Profile.Role == r {
			return true
		}
	}
	return false
}

// LoginResult is returned after a successful login or registration.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Identity  Identity  `json:"identity"`
}

// JWTClaims is the payload of the session token. The registered ID is the session id.
type JWTClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
