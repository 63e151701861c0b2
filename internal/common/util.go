// Package common also provides small helpers for random material and secure
// memory wiping shared by the token and crypto layers.
package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString generates a random hexadecimal string of the given size.
// The size parameter is the number of random bytes drawn from the CSPRNG, so
// the resulting string is twice as long. Used for opaque refresh tokens,
// which are deliberately not JWT-shaped so rotation and revocation stay
// trivial to audit.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Used to drop key material from memory once it has been handed to
// the crypto engine.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
