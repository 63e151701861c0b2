package users

import (
	"context"
	"sync"

	"github.com/Noureldein28/security-todo/internal/common"
	"github.com/Noureldein28/security-todo/internal/server/models"
)

// InMemoryRepository keeps users in maps, for tests and local runs.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string // email -> id
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return nil, common.ErrorAlreadyExists
	}

	c := *user
	r.byID[c.ID] = &c
	r.byEmail[c.Email] = c.ID

	out := c
	return &out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *r.byID[id]
	return &c, nil
}

func (r *InMemoryRepository) GetByFederatedID(ctx context.Context, federatedID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if federatedID == "" {
		return nil, common.ErrorNotFound
	}
	for _, u := range r.byID {
		if u.FederatedID == federatedID {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) LinkFederatedID(ctx context.Context, userID, federatedID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.FederatedID = federatedID
	return nil
}
