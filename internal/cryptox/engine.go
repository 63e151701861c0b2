// Package cryptox implements the authenticated encryption and integrity
// primitives used by the record pipeline: AES-256-GCM for confidentiality
// and tamper evidence of stored content, and a separate SHA-256 plaintext
// digest for defense-in-depth integrity checking.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/Noureldein28/security-todo/internal/common"
)

const (
	// KeySize is the required symmetric key length (AES-256).
	KeySize = 32
	// NonceSize is the GCM nonce length. A fresh nonce is drawn from the
	// CSPRNG on every Encrypt call; it is never derived from content or a
	// counter, so reuse under the same key cannot happen by construction.
	NonceSize = 12
	// TagSize is the GCM authentication tag length.
	TagSize = 16
)

// Engine performs authenticated encryption of one blob at a time under a
// single process-wide key. The key is injected once at construction; Engine
// holds no other state, so a single instance is safe for concurrent use.
type Engine struct {
	aead cipher.AEAD
}

// NewEngine validates the key and builds the AES-GCM cipher. A missing or
// wrong-length key is a configuration error and should abort startup.
//
// The caller may wipe the key slice after NewEngine returns; the cipher
// keeps its own expanded key schedule.
func NewEngine(key []byte) (*Engine, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: expected %d-byte key, got %d bytes",
			common.ErrKeyConfiguration, KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrKeyConfiguration, err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrKeyConfiguration, err)
	}

	return &Engine{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce and returns the
// ciphertext, the nonce, and the authentication tag as separate values.
// The ciphertext has the same length as the plaintext (GCM is a stream
// construction); the tag binds ciphertext integrity and authenticity.
func (e *Engine) Encrypt(plaintext []byte) (ciphertext, nonce, authTag []byte, err error) {
	nonce = make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, nil, fmt.Errorf("nonce generation: %w", err)
	}

	sealed := e.aead.Seal(nil, nonce, plaintext, nil)

	// Seal appends the tag to the ciphertext; split them so they can be
	// stored and validated as distinct record fields.
	ciphertext = sealed[:len(sealed)-TagSize]
	authTag = sealed[len(sealed)-TagSize:]

	return ciphertext, nonce, authTag, nil
}

// Decrypt verifies the tag and returns the plaintext. Verification happens
// before any plaintext is produced: GCM's Open never releases unauthenticated
// bytes. Every failure, whichever field was altered, collapses into the same
// common.ErrAuthenticationFailed so the error carries no hint about what was
// modified.
func (e *Engine) Decrypt(ciphertext, nonce, authTag []byte) ([]byte, error) {
	if len(nonce) != NonceSize || len(authTag) != TagSize {
		return nil, common.ErrAuthenticationFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+len(authTag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, authTag...)

	plaintext, err := e.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, common.ErrAuthenticationFailed
	}

	return plaintext, nil
}
