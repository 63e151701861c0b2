package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Noureldein28/security-todo/internal/common"
	"github.com/Noureldein28/security-todo/internal/dbx"
	"github.com/Noureldein28/security-todo/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *models.Record) error {
	f := encodeFields(rec.Ciphertext, rec.Nonce, rec.AuthTag, rec.Digest)

	query :=
		`INSERT INTO records (id, user_id, ciphertext, nonce, auth_tag, digest, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.OwnerID, f.Ciphertext, f.Nonce, f.AuthTag, f.Digest,
		rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID, recordID string) (*models.Record, error) {
	query :=
		`SELECT id, user_id, ciphertext, nonce, auth_tag, digest, created_at, updated_at
		 FROM records
		 WHERE user_id = $1 AND id = $2
		 `

	row := r.db.QueryRowContext(ctx, query, ownerID, recordID)

	rec, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}

	return rec, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Record, error) {
	query :=
		`SELECT id, user_id, ciphertext, nonce, auth_tag, digest, created_at, updated_at
		 FROM records
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, rec *models.Record) error {
	f := encodeFields(rec.Ciphertext, rec.Nonce, rec.AuthTag, rec.Digest)

	// All four fields replaced in one statement: a record can never end up
	// with a fresh nonce next to a stale ciphertext.
	query :=
		`UPDATE records
		 SET ciphertext = $1, nonce = $2, auth_tag = $3, digest = $4, updated_at = $5
		 WHERE user_id = $6 AND id = $7
		 `

	res, err := r.db.ExecContext(ctx, query,
		f.Ciphertext, f.Nonce, f.AuthTag, f.Digest, rec.UpdatedAt,
		rec.OwnerID, rec.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, recordID string) error {
	query := `DELETE FROM records WHERE user_id = $1 AND id = $2`

	res, err := r.db.ExecContext(ctx, query, ownerID, recordID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

// scanRecord reads one row and decodes the persisted text encodings.
func scanRecord(scan func(dest ...any) error) (*models.Record, error) {
	rec := &models.Record{}
	var f encodedFields

	err := scan(&rec.ID, &rec.OwnerID, &f.Ciphertext, &f.Nonce, &f.AuthTag, &f.Digest,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	rec.Ciphertext, rec.Nonce, rec.AuthTag, rec.Digest, err = decodeFields(f)
	if err != nil {
		return nil, err
	}

	return rec, nil
}
