package repository

import (
	"context"

	"github.com/nkiryanov/trainingdiary/internal/models"
)

// User repository: the credential store
type UserRepo interface {
	// Create user
	// If user with login exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, login string, passwordHash string, role models.Role) (models.User, error)

	// Get user by it's id or login
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID int64) (models.User, error)
	GetUserByLogin(ctx context.Context, login string) (models.User, error)

	ListUsers(ctx context.Context) ([]models.User, error)

	// Change user role
	// If user not found must return apperrors.ErrUserNotFound
	UpdateRole(ctx context.Context, userID int64, role models.Role) (models.User, error)
}

// Append only log of authentication events
type AuditRepo interface {
	Save(ctx context.Context, event models.AuditEvent) (models.AuditEvent, error)

	// Events for login, newest first
	ListByLogin(ctx context.Context, login string, limit int) ([]models.AuditEvent, error)
}

type Storage interface {
	User() UserRepo
	Audit() AuditRepo

	// Run fn in transaction: commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
