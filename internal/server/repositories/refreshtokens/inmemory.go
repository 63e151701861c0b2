package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/Noureldein28/security-todo/internal/common"
	"github.com/Noureldein28/security-todo/internal/server/models"
)

// InMemoryRepository keeps token rows in a map, for tests and local runs.
// The mutex gives Consume the same one-winner semantics the Postgres
// implementation gets from its conditional UPDATE.
type InMemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken // keyed by token string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{tokens: make(map[string]*models.RefreshToken)}
}

func (r *InMemoryRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tokens[token.Token]; exists {
		return common.ErrorAlreadyExists
	}
	c := *token
	r.tokens[c.Token] = &c
	return nil
}

func (r *InMemoryRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

func (r *InMemoryRepository) Consume(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[token]
	if !ok || t.Status != models.RefreshTokenActive {
		return nil, common.ErrorNotFound
	}

	t.Status = models.RefreshTokenRotated
	c := *t
	return &c, nil
}

func (r *InMemoryRepository) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, t := range r.tokens {
		if t.UserID == userID && t.Status == models.RefreshTokenActive {
			t.Status = models.RefreshTokenRevoked
			n++
		}
	}
	return n, nil
}

func (r *InMemoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for key, t := range r.tokens {
		if t.ExpiresAt.Before(now) {
			delete(r.tokens, key)
			n++
		}
	}
	return n, nil
}
