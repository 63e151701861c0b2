package models

import "time"

// User is an account holder and the owner of records. It doubles as the
// principal resolved by the session guard.
//
// Exactly one of PasswordDigest / FederatedID is normally set; both are set
// when a password account was later linked to an external identity. An
// account with neither is invalid and is rejected by the user service.
type User struct {
	ID    string
	Email string

	// PasswordDigest is the bcrypt digest, empty for federated-only accounts.
	// Password verification against an empty digest deterministically fails.
	PasswordDigest string

	// FederatedID is the subject identifier at the external identity
	// provider, empty for password-only accounts.
	FederatedID string

	CreatedAt time.Time
}

// HasPassword reports whether this account can be password-authenticated.
func (u *User) HasPassword() bool {
	return u.PasswordDigest != ""
}
