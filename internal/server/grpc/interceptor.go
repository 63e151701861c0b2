// Package grpc adapts the session guard to gRPC routing. Only the
// interceptor lives here; service registration belongs to the embedding
// application.
package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Noureldein28/security-todo/internal/common"
	"github.com/Noureldein28/security-todo/internal/server/auth"
	"github.com/Noureldein28/security-todo/internal/server/models"
)

// AccessTokenMetadataKey is the incoming metadata key carrying the raw
// access token.
const AccessTokenMetadataKey = "access_token"

type ctxKey int

const principalKey ctxKey = 0

// PrincipalFromContext returns the principal attached by the interceptor.
func PrincipalFromContext(ctx context.Context) (*models.User, bool) {
	p, ok := ctx.Value(principalKey).(*models.User)
	return p, ok
}

// UnaryAuthInterceptor authenticates every unary call except the listed
// public methods (registration, login, refresh). The typed guard failures
// map onto gRPC status codes; token contents are never echoed back.
func UnaryAuthInterceptor(guard *auth.Guard, publicMethods ...string) grpc.UnaryServerInterceptor {
	public := make(map[string]struct{}, len(publicMethods))
	for _, m := range publicMethods {
		public[m] = struct{}{}
	}

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if _, ok := public[info.FullMethod]; ok {
			return handler(ctx, req)
		}

		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(AccessTokenMetadataKey); len(values) > 0 {
				accessToken = values[0]
			}
		}

		principal, err := guard.AuthenticateToken(ctx, accessToken)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrNoCredential):
				return nil, status.Error(codes.Unauthenticated, "missing token")
			case errors.Is(err, common.ErrTokenExpired):
				return nil, status.Error(codes.Unauthenticated, "token expired")
			case errors.Is(err, common.ErrPrincipalNotFound):
				return nil, status.Error(codes.PermissionDenied, "unknown principal")
			default:
				return nil, status.Error(codes.Unauthenticated, "invalid token")
			}
		}

		return handler(context.WithValue(ctx, principalKey, principal), req)
	}
}
