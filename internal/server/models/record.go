// Package models defines the server-side data model persisted by the record
// and token stores.
package models

import (
	"fmt"
	"time"

	"github.com/Noureldein28/security-todo/internal/common"
	"github.com/Noureldein28/security-todo/internal/cryptox"
)

// Record is one stored item in its encrypted form. All four cryptographic
// fields travel together: a record missing any of them was never produced by
// the pipeline and is rejected as malformed, not flagged as tampered.
type Record struct {
	ID      string
	OwnerID string

	// Ciphertext has the same length as the plaintext it protects.
	Ciphertext []byte
	// Nonce is the 12-byte GCM nonce, unique per encryption.
	Nonce []byte
	// AuthTag is the 16-byte GCM tag over the ciphertext.
	AuthTag []byte
	// Digest is the 32-byte SHA-256 of the original plaintext, computed
	// before encryption and verified independently of AuthTag.
	Digest []byte

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks structural well-formedness of the four cryptographic
// fields. Ciphertext may be empty (an empty note encrypts to zero bytes),
// but nonce, tag and digest must carry their exact lengths.
func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil record", common.ErrMalformedRecord)
	}
	if r.Ciphertext == nil {
		return fmt.Errorf("%w: missing ciphertext", common.ErrMalformedRecord)
	}
	if len(r.Nonce) != cryptox.NonceSize {
		return fmt.Errorf("%w: nonce length %d", common.ErrMalformedRecord, len(r.Nonce))
	}
	if len(r.AuthTag) != cryptox.TagSize {
		return fmt.Errorf("%w: auth tag length %d", common.ErrMalformedRecord, len(r.AuthTag))
	}
	if len(r.Digest) != cryptox.DigestSize {
		return fmt.Errorf("%w: digest length %d", common.ErrMalformedRecord, len(r.Digest))
	}
	return nil
}
