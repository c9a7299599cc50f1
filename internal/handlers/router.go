package handlers

import (
	"context"
	"net/http"

	"github.com/nkiryanov/trainingdiary/internal/handlers/middleware"
	"github.com/nkiryanov/trainingdiary/internal/logger"
	"github.com/nkiryanov/trainingdiary/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	userService userService,
	logger logger.Logger,
) http.Handler {
	withAuth := middleware.RequireAuth
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	mux := http.NewServeMux()

	mux.Handle("POST /auth/register", handleRegister(authService, logger))
	mux.Handle("POST /auth/login", handleLogin(authService, logger))
	mux.Handle("POST /auth/refresh", handleTokenRefresh(authService, logger))

	mux.Handle("GET /users/me", withAuth(handleUserMe()))
	mux.Handle("GET /users/{id}", withAuth(handleGetUser(userService, logger)))
	mux.Handle("GET /users/all", adminOnly(handleListUsers(userService, logger)))
	mux.Handle("PUT /users/{id}/role", adminOnly(handleChangeRole(userService, logger)))
	mux.Handle("GET /users/{id}/audit", adminOnly(handleUserAudit(userService, logger)))

	handler := chain(mux,
		middleware.LoggerMiddleware(logger),
		middleware.Authenticate(authService, logger),
	)

	return handler
}

type authService interface {
	// Register user with USER role
	// Has to return apperrors.ErrUserAlreadyExists if user already exists
	Register(ctx context.Context, login string, password string) (models.User, error)

	// Login user with login and password
	// Has to return apperrors.ErrInvalidCredentials if login unknown or password is wrong
	Login(ctx context.Context, login string, password string) (models.AuthResult, error)

	// Refresh tokens using refresh token
	// If token invalid or expired: has to return apperrors.ErrAccessDenied
	// If user is gone: has to return apperrors.ErrInvalidIdentity
	Refresh(ctx context.Context, refresh string) (models.AuthResult, error)

	// Get access token from request
	AccessToken(r *http.Request) (string, bool)

	Validate(token string) bool

	// Resolve principal from valid access token
	Authenticate(ctx context.Context, token string) (models.Principal, error)
}

type userService interface {
	GetUser(ctx context.Context, userID int64) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ChangeRole(ctx context.Context, userID int64, role models.Role) (models.User, error)
	AuditTrail(ctx context.Context, userID int64, limit int) ([]models.AuditEvent, error)
}
