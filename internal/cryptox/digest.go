package cryptox

import (
	"bytes"
	"crypto/sha256"
)

// DigestSize is the length of the plaintext integrity digest.
const DigestSize = sha256.Size

// Digest computes the SHA-256 digest of plaintext. It is stored alongside
// the encrypted record and checked on read independently of the cipher's own
// authentication tag, so a write path that bypassed the cipher still cannot
// go unnoticed.
func Digest(plaintext []byte) []byte {
	sum := sha256.Sum256(plaintext)
	return sum[:]
}

// VerifyDigest recomputes the digest and compares it to the stored value.
// Plain byte equality is used on purpose: the digest covers record content,
// not a secret, so a timing-safe comparison buys nothing here.
func VerifyDigest(plaintext, digest []byte) bool {
	if len(digest) != DigestSize {
		return false
	}
	actual := sha256.Sum256(plaintext)
	return bytes.Equal(actual[:], digest)
}
