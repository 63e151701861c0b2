package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Noureldein28/security-todo/internal/common"
	"github.com/Noureldein28/security-todo/internal/cryptox"
	"github.com/Noureldein28/security-todo/internal/logging"
	"github.com/Noureldein28/security-todo/internal/server/models"
	"github.com/Noureldein28/security-todo/internal/server/repositories/records"
)

// ReadStatus classifies the outcome of reading one record.
type ReadStatus string

const (
	// StatusClean: cipher authentication and the plaintext digest both
	// passed; the content is trustworthy.
	StatusClean ReadStatus = "clean"
	// StatusTampered: decryption succeeded but the stored plaintext digest
	// did not match. The content is recoverable but untrustworthy, so it is
	// withheld.
	StatusTampered ReadStatus = "tampered"
	// StatusCorrupted: the cipher rejected the record; the content is
	// unrecoverable.
	StatusCorrupted ReadStatus = "corrupted"
)

// Placeholder content returned instead of plaintext for damaged records, so
// callers cannot accidentally treat unverified bytes as trusted.
const (
	CorruptedPlaceholder = "[content unrecoverable: record failed decryption]"
	TamperedPlaceholder  = "[content withheld: integrity check failed]"
)

// ReadResult is the pipeline's answer for one record.
type ReadResult struct {
	Record *models.Record
	// Content is the plaintext for a clean record and a placeholder
	// otherwise.
	Content string
	Status  ReadStatus
	// DecryptionFailed is true when the cipher itself rejected the record
	// (corrupted), false when decryption succeeded (clean and tampered).
	DecryptionFailed bool
}

// Tampered reports whether the record cannot be trusted, whatever the cause.
func (r *ReadResult) Tampered() bool {
	return r.Status != StatusClean
}

// RecordService is the write/read/update contract over encrypted records.
// It composes the crypto engine and the plaintext digest around the record
// store and enforces ownership itself, so it is safe to expose directly to
// multiple concurrent owners.
type RecordService struct {
	engine *cryptox.Engine
	repo   records.Repository
	logger logging.Logger
}

func NewRecordService(engine *cryptox.Engine, repo records.Repository, logger logging.Logger) *RecordService {
	return &RecordService{
		engine: engine,
		repo:   repo,
		logger: logger.With("module", "record_service"),
	}
}

// seal builds a fully populated record from plaintext: digest first, then
// encryption under a fresh nonce.
func (s *RecordService) seal(ownerID, recordID, content string, createdAt, updatedAt time.Time) (*models.Record, error) {
	plaintext := []byte(content)
	digest := cryptox.Digest(plaintext)

	ciphertext, nonce, authTag, err := s.engine.Encrypt(plaintext)
	if err != nil {
		return nil, fmt.Errorf("encrypting record: %w", err)
	}

	rec := &models.Record{
		ID:         recordID,
		OwnerID:    ownerID,
		Ciphertext: ciphertext,
		Nonce:      nonce,
		AuthTag:    authTag,
		Digest:     digest,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}

	// A partially populated record must never reach the store.
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	return rec, nil
}

// Create encrypts content and persists a new record for the owner. The
// original plaintext is echoed back in the result, saving a redundant
// decrypt round-trip.
func (s *RecordService) Create(ctx context.Context, ownerID, content string) (*ReadResult, error) {
	now := time.Now().UTC()

	rec, err := s.seal(ownerID, uuid.NewString(), content, now, now)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("storing record: %w", err)
	}

	return &ReadResult{Record: rec, Content: content, Status: StatusClean}, nil
}

// Read fetches and opens one record. Damaged records are reported through
// the result status, never as raw bytes; a structurally malformed stored
// record is a hard error, distinct from tamper classification.
func (s *RecordService) Read(ctx context.Context, ownerID, recordID string) (*ReadResult, error) {
	rec, err := s.repo.Get(ctx, ownerID, recordID)
	if err != nil {
		return nil, err
	}
	if rec.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	return s.open(ctx, rec), nil
}

// open runs the two-stage check: cipher authentication first, then the
// independent plaintext digest. Both must pass for a record to be clean.
func (s *RecordService) open(ctx context.Context, rec *models.Record) *ReadResult {
	plaintext, err := s.engine.Decrypt(rec.Ciphertext, rec.Nonce, rec.AuthTag)
	if err != nil {
		s.logger.Warn(ctx, "record failed decryption",
			"record_id", rec.ID, "owner_id", rec.OwnerID)
		return &ReadResult{
			Record:           rec,
			Content:          CorruptedPlaceholder,
			Status:           StatusCorrupted,
			DecryptionFailed: true,
		}
	}

	if !cryptox.VerifyDigest(plaintext, rec.Digest) {
		s.logger.Warn(ctx, "record failed integrity check",
			"record_id", rec.ID, "owner_id", rec.OwnerID)
		return &ReadResult{
			Record:  rec,
			Content: TamperedPlaceholder,
			Status:  StatusTampered,
		}
	}

	return &ReadResult{Record: rec, Content: string(plaintext), Status: StatusClean}
}

// List reads all records of one owner. Records are processed independently:
// one damaged record never aborts the rest of the batch, it is reported in
// place with its classification.
func (s *RecordService) List(ctx context.Context, ownerID string) ([]*ReadResult, error) {
	recs, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	results := make([]*ReadResult, 0, len(recs))
	for _, rec := range recs {
		if err := rec.Validate(); err != nil {
			// Structurally broken rows surface as unrecoverable in a batch
			// so the remaining records still come through.
			s.logger.Warn(ctx, "skipping decryption of malformed record",
				"record_id", rec.ID, "owner_id", rec.OwnerID)
			results = append(results, &ReadResult{
				Record:           rec,
				Content:          CorruptedPlaceholder,
				Status:           StatusCorrupted,
				DecryptionFailed: true,
			})
			continue
		}
		results = append(results, s.open(ctx, rec))
	}

	return results, nil
}

// Update re-runs the full create sequence over the new content, with a
// fresh nonce and a fresh digest, and replaces all four cryptographic
// fields atomically. The prior nonce is never reused.
func (s *RecordService) Update(ctx context.Context, ownerID, recordID, content string) (*ReadResult, error) {
	existing, err := s.repo.Get(ctx, ownerID, recordID)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}

	rec, err := s.seal(ownerID, recordID, content, existing.CreatedAt, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("replacing record: %w", err)
	}

	return &ReadResult{Record: rec, Content: content, Status: StatusClean}, nil
}

// Delete removes the record. Absence is reported as common.ErrorNotFound so
// the boundary can distinguish 404 from 200; deleting an already-deleted
// record is otherwise harmless.
func (s *RecordService) Delete(ctx context.Context, ownerID, recordID string) error {
	err := s.repo.Delete(ctx, ownerID, recordID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("deleting record: %w", err)
	}
	return err
}
