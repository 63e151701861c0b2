package models

import "time"

// RefreshTokenStatus is the lifecycle state of a stored refresh token.
// Active is the only state a token can be used from; Rotated and Revoked are
// both terminal.
type RefreshTokenStatus string

const (
	RefreshTokenActive  RefreshTokenStatus = "active"
	RefreshTokenRotated RefreshTokenStatus = "rotated"
	RefreshTokenRevoked RefreshTokenStatus = "revoked"
)

// RefreshToken is the server-side bookkeeping entry for one opaque refresh
// token. The token string itself is random hex, deliberately not JWT-shaped,
// so revocation and rotation amount to a row update.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Status    RefreshTokenStatus
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token's lifetime has passed at the given time.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
