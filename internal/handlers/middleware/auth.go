package middleware

import (
	"context"
	"net/http"

	"github.com/nkiryanov/trainingdiary/internal/handlers/render"
	"github.com/nkiryanov/trainingdiary/internal/handlers/userctx"
	"github.com/nkiryanov/trainingdiary/internal/logger"
	"github.com/nkiryanov/trainingdiary/internal/models"
)

type authService interface {
	AccessToken(r *http.Request) (string, bool)
	Validate(token string) bool
	Authenticate(ctx context.Context, token string) (models.Principal, error)
}

// Authenticate installs principal to request context if request has valid bearer token
// It never rejects: request without valid token goes further as anonymous
func Authenticate(as authService, l logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := as.AccessToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			if !as.Validate(token) {
				logger.FromContext(ctx, l).Debug("access token rejected", "reason", "invalid or expired")
				next.ServeHTTP(w, r)
				return
			}

			principal, err := as.Authenticate(ctx, token)
			if err != nil {
				logger.FromContext(ctx, l).Debug("access token rejected", "reason", err)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(userctx.New(ctx, principal)))
		})
	}
}

// RequireAuth rejects anonymous requests with 401
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := userctx.FromContext(r.Context()); !ok {
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous requests with 401 and principals without role with 403
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := userctx.FromContext(r.Context())
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !p.HasAuthority(role.String()) {
				render.ServiceError(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
