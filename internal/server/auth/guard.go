package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/Noureldein28/security-todo/internal/common"
	"github.com/Noureldein28/security-todo/internal/server/models"
)

// PrincipalResolver resolves a subject id to an account. The users
// repository satisfies it.
type PrincipalResolver interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Guard is the request-time authentication contract consumed by external
// routing code: it turns a bearer credential into a principal, or into one
// of the typed failures common.ErrNoCredential, common.ErrTokenExpired,
// common.ErrInvalidToken, common.ErrPrincipalNotFound.
//
// The carrier mechanism (HTTP header, gRPC metadata) stays outside; Guard
// only sees the credential value.
type Guard struct {
	secretKey []byte
	resolver  PrincipalResolver
}

func NewGuard(secretKey []byte, resolver PrincipalResolver) *Guard {
	return &Guard{secretKey: secretKey, resolver: resolver}
}

// Authenticate validates the Authorization header value ("Bearer <token>")
// and resolves the token's subject to a principal. The principal is returned
// as an explicit value rather than stashed on an ambient request object, so
// callers decide how to carry it forward.
func (g *Guard) Authenticate(ctx context.Context, authorization string) (*models.User, error) {
	if authorization == "" {
		return nil, common.ErrNoCredential
	}

	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return nil, common.ErrInvalidToken
	}

	return g.AuthenticateToken(ctx, parts[1])
}

// AuthenticateToken is Authenticate for carriers that transport the raw
// token without a scheme prefix (e.g. gRPC metadata).
func (g *Guard) AuthenticateToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrNoCredential
	}

	userID, err := GetUserIDFromToken(token, g.secretKey)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	principal, err := g.resolver.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrPrincipalNotFound
		}
		return nil, err
	}

	return principal, nil
}
