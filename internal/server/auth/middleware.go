package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/Noureldein28/security-todo/internal/common"
	"github.com/Noureldein28/security-todo/internal/logging"
	"github.com/Noureldein28/security-todo/internal/server/models"
)

type ctxKey int

const principalKey ctxKey = 0

// PrincipalFromContext returns the principal stored by Middleware.
func PrincipalFromContext(ctx context.Context) (*models.User, bool) {
	p, ok := ctx.Value(principalKey).(*models.User)
	return p, ok
}

// Middleware adapts the guard to HTTP routing: it authenticates the
// Authorization header and passes the principal to the next handler via the
// request context. All failures collapse into 401; the typed error is logged
// but the raw token never is.
func (g *Guard) Middleware(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := g.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				status := http.StatusUnauthorized
				if errors.Is(err, common.ErrPrincipalNotFound) {
					// The token was valid but the subject no longer exists.
					status = http.StatusForbidden
				}
				logger.Warn(r.Context(), "request rejected by session guard", "reason", err.Error())
				http.Error(w, http.StatusText(status), status)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
