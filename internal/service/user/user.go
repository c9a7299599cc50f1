package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/trainingdiary/internal/apperrors"
	"github.com/nkiryanov/trainingdiary/internal/models"
	"github.com/nkiryanov/trainingdiary/internal/repository"
	"github.com/nkiryanov/trainingdiary/internal/service/auth"
)

const defaultAuditLimit = 50

type UserService struct {
	hasher  auth.PasswordHasher
	storage repository.Storage
}

func NewService(hasher auth.PasswordHasher, storage repository.Storage) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
	}
}

func (s *UserService) CreateUser(ctx context.Context, login string, password string, role models.Role) (models.User, error) {
	var user models.User
	if !role.Valid() {
		return user, apperrors.ErrInvalidRole
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	user, err = s.storage.User().CreateUser(ctx, login, hash, role)
	if err != nil {
		return user, fmt.Errorf("can't create user. Err: %w", err)
	}

	return user, nil
}

// EnsureUser creates user if there is no user with such login
// Existing user is returned as is, password and role are not touched
func (s *UserService) EnsureUser(ctx context.Context, login string, password string, role models.Role) (user models.User, created bool, err error) {
	err = s.storage.InTx(ctx, func(storage repository.Storage) error {
		user, err = storage.User().GetUserByLogin(ctx, login)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			return err
		}

		user, err = NewService(s.hasher, storage).CreateUser(ctx, login, password, role)
		created = err == nil
		return err
	})

	return user, created, err
}

func (s *UserService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, userID)
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.storage.User().ListUsers(ctx)
}

// ChangeRole sets new role. Already issued access tokens keep old role until refreshed
func (s *UserService) ChangeRole(ctx context.Context, userID int64, role models.Role) (models.User, error) {
	if !role.Valid() {
		return models.User{}, apperrors.ErrInvalidRole
	}
	return s.storage.User().UpdateRole(ctx, userID, role)
}

// AuditTrail returns latest auth events of the user, newest first
func (s *UserService) AuditTrail(ctx context.Context, userID int64, limit int) ([]models.AuditEvent, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}

	user, err := s.storage.User().GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.storage.Audit().ListByLogin(ctx, user.Login, limit)
}
