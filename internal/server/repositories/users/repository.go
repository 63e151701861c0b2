// Package users declares the identity-store contract: accounts are looked
// up by id (principal resolution), by email (login), and by federated
// subject id (external identity linking). Email uniqueness is enforced here.
package users

import (
	"context"

	"github.com/Noureldein28/security-todo/internal/server/models"
)

type Repository interface {
	// Create persists a new user. Returns common.ErrorAlreadyExists when the
	// email is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID resolves a subject id to its account.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByEmail resolves a login identifier to its account.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByFederatedID resolves an external provider subject id.
	GetByFederatedID(ctx context.Context, federatedID string) (*models.User, error)

	// LinkFederatedID attaches an external identity to an existing account.
	LinkFederatedID(ctx context.Context, userID, federatedID string) error
}
