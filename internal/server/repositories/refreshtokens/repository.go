// Package refreshtokens declares the server-side store for refresh-token
// bookkeeping: the only shared mutable state in the core.
package refreshtokens

import (
	"context"
	"time"

	"github.com/Noureldein28/security-todo/internal/server/models"
)

// Repository manages refresh-token rows through their active -> rotated /
// revoked lifecycle.
type Repository interface {
	// Create stores a new token in the active state.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Find looks up a token by its opaque string regardless of state.
	// Returns common.ErrorNotFound when absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Consume atomically transitions the token from active to rotated and
	// returns the stored row. This is the single-writer point of rotation:
	// when two callers race on the same token, exactly one gets the row and
	// the other gets common.ErrorNotFound (the compare-and-swap found no
	// active row). Absence and lost races are indistinguishable here; the
	// service layer calls Find to classify.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// RevokeAllForUser marks every active token of the user revoked and
	// reports how many were affected.
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpired removes tokens whose expiry is before now, in any state.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
