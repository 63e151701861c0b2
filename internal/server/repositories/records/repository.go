// Package records declares the persistence contract for encrypted records
// and its Postgres, S3 and in-memory implementations.
//
// Stores never see plaintext: every implementation persists the four
// cryptographic fields produced by the pipeline (ciphertext, nonce, auth tag
// as base64 text, plaintext digest as lowercase hex) plus timestamps, keyed
// by (owner id, record id).
package records

import (
	"context"

	"github.com/Noureldein28/security-todo/internal/server/models"
)

// Repository is the key-value contract the record pipeline writes through.
//
// Implementations must return common.ErrorNotFound for an absent record and
// common.ErrMalformedRecord for a record that exists but whose persisted
// fields cannot be decoded, so callers can tell absence from damage.
type Repository interface {
	// Create persists a new record.
	Create(ctx context.Context, rec *models.Record) error

	// Get returns the record with the given id owned by ownerID.
	Get(ctx context.Context, ownerID, recordID string) (*models.Record, error)

	// ListByOwner returns all records of one owner, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Record, error)

	// Update replaces the stored cryptographic fields wholesale. The record
	// is never patched field by field; a partial write would leave a nonce
	// paired with a foreign ciphertext.
	Update(ctx context.Context, rec *models.Record) error

	// Delete removes the record. Returns common.ErrorNotFound when there was
	// nothing to delete, so the boundary can answer 404 vs 200.
	Delete(ctx context.Context, ownerID, recordID string) error
}
