package records

import (
	"context"
	"sort"
	"sync"

	"github.com/Noureldein28/security-todo/internal/common"
	"github.com/Noureldein28/security-todo/internal/server/models"
)

// InMemoryRepository keeps records in a map, for tests and local runs.
type InMemoryRepository struct {
	mu sync.RWMutex
	// ownerID -> recordID -> record
	items map[string]map[string]*models.Record
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make(map[string]map[string]*models.Record)}
}

func cloneRecord(rec *models.Record) *models.Record {
	c := *rec
	c.Ciphertext = append([]byte(nil), rec.Ciphertext...)
	c.Nonce = append([]byte(nil), rec.Nonce...)
	c.AuthTag = append([]byte(nil), rec.AuthTag...)
	c.Digest = append([]byte(nil), rec.Digest...)
	return &c
}

func (r *InMemoryRepository) Create(ctx context.Context, rec *models.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.items[rec.OwnerID]
	if !ok {
		owner = make(map[string]*models.Record)
		r.items[rec.OwnerID] = owner
	}
	if _, exists := owner[rec.ID]; exists {
		return common.ErrorAlreadyExists
	}

	owner[rec.ID] = cloneRecord(rec)
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, ownerID, recordID string) (*models.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[ownerID][recordID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneRecord(rec), nil
}

func (r *InMemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Record
	for _, rec := range r.items[ownerID] {
		result = append(result, cloneRecord(rec))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, rec *models.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[rec.OwnerID][rec.ID]; !ok {
		return common.ErrorNotFound
	}

	r.items[rec.OwnerID][rec.ID] = cloneRecord(rec)
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, ownerID, recordID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[ownerID][recordID]; !ok {
		return common.ErrorNotFound
	}

	delete(r.items[ownerID], recordID)
	return nil
}

// Corrupt overwrites one stored field of a record in place, bypassing the
// pipeline. Test helper for tamper scenarios.
func (r *InMemoryRepository) Corrupt(ownerID, recordID string, mutate func(rec *models.Record)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[ownerID][recordID]
	if !ok {
		return false
	}
	mutate(rec)
	return true
}
