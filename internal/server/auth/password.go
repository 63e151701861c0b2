package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost is the bcrypt work factor used for new password
// digests. Cost 12 keeps interactive login under a second while making
// offline brute force expensive. Strictly for passwords: bcrypt as a
// content-integrity hash would be a performance bug.
const DefaultPasswordCost = 12

// HashPassword derives a salted bcrypt digest with an embedded work factor.
// The digest is safe to persist; the password never is.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), DefaultPasswordCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether password matches the stored digest. It never
// returns an error: a malformed or empty digest simply fails verification,
// which is what a federated-only account (no password digest at all) must
// do deterministically.
func CheckPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
