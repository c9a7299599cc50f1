package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nkiryanov/trainingdiary/internal/apperrors"
	"github.com/nkiryanov/trainingdiary/internal/logger"
	"github.com/nkiryanov/trainingdiary/internal/models"
	"github.com/nkiryanov/trainingdiary/internal/repository"
)

const (
	defaultAccessHeaderName = "Authorization"
	defaultAccessAuthScheme = "Bearer"
)

type Config struct {
	// Hasher to use during user registration or login process
	Hasher PasswordHasher

	// Request header and auth scheme access token is read from
	AccessHeaderName string
	AccessAuthScheme string

	Logger logger.Logger
}

// Token issuer and validator
type TokenManager interface {
	GeneratePair(user models.User) (models.TokenPair, error)
	Parse(token string) (models.Claims, error)
	Validate(token string) bool
}

// Auth service
type AuthService struct {
	tokens  TokenManager
	hasher  PasswordHasher
	storage repository.Storage
	logger  logger.Logger

	accessHeaderName string
	accessAuthScheme string

	// Compared on unknown login so response time doesn't tell whether login exists
	dummyHash string
}

func NewService(cfg Config, tokens TokenManager, storage repository.Storage) (*AuthService, error) {
	if cfg.Hasher == nil {
		cfg.Hasher = DefaultHasher
	}
	if cfg.AccessHeaderName == "" {
		cfg.AccessHeaderName = defaultAccessHeaderName
	}
	if cfg.AccessAuthScheme == "" {
		cfg.AccessAuthScheme = defaultAccessAuthScheme
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}

	dummyHash, err := cfg.Hasher.Hash("dummy-password-never-matches")
	if err != nil {
		return nil, fmt.Errorf("hasher is broken: %w", err)
	}

	return &AuthService{
		tokens:           tokens,
		hasher:           cfg.Hasher,
		storage:          storage,
		logger:           cfg.Logger,
		accessHeaderName: cfg.AccessHeaderName,
		accessAuthScheme: cfg.AccessAuthScheme,
		dummyHash:        dummyHash,
	}, nil
}

// Register creates user with USER role
// Returns apperrors.ErrUserAlreadyExists if login is taken
func (s *AuthService) Register(ctx context.Context, login string, password string) (models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err := s.storage.User().CreateUser(ctx, login, hash, models.RoleUser)
	if err != nil {
		s.audit(ctx, login, models.AuditActionRegister, err)
		return models.User{}, err
	}

	s.audit(ctx, login, models.AuditActionRegister, nil)
	return user, nil
}

// Login checks credentials and issues fresh token pair
// Wrong password and unknown login both return apperrors.ErrInvalidCredentials
func (s *AuthService) Login(ctx context.Context, login string, password string) (models.AuthResult, error) {
	user, err := s.storage.User().GetUserByLogin(ctx, login)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		_ = s.hasher.Compare(s.dummyHash, password)
		s.audit(ctx, login, models.AuditActionLogin, apperrors.ErrInvalidCredentials)
		return models.AuthResult{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return models.AuthResult{}, fmt.Errorf("can't get user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.audit(ctx, login, models.AuditActionLogin, apperrors.ErrInvalidCredentials)
		return models.AuthResult{}, apperrors.ErrInvalidCredentials
	}

	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	s.audit(ctx, login, models.AuditActionLogin, nil)
	return models.AuthResult{UserID: user.ID, Login: user.Login, Tokens: pair}, nil
}

// Refresh exchanges refresh token for new pair
// User is fetched again by id so new access token carries current role
//
// Errors:
//   - apperrors.ErrAccessDenied if token is not a valid refresh token
//   - apperrors.ErrInvalidIdentity if user no longer exists
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.AuthResult, error) {
	claims, err := s.tokens.Parse(refresh)
	if err != nil {
		logger.FromContext(ctx, s.logger).Debug("refresh token rejected", "reason", err)
		s.audit(ctx, "", models.AuditActionRefresh, err)
		return models.AuthResult{}, apperrors.ErrAccessDenied
	}
	if claims.Kind != models.TokenKindRefresh {
		s.audit(ctx, claims.Subject, models.AuditActionRefresh, apperrors.ErrTokenMalformed)
		return models.AuthResult{}, apperrors.ErrAccessDenied
	}

	user, err := s.storage.User().GetUserByID(ctx, claims.UserID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		s.audit(ctx, claims.Subject, models.AuditActionRefresh, apperrors.ErrInvalidIdentity)
		return models.AuthResult{}, apperrors.ErrInvalidIdentity
	case err != nil:
		return models.AuthResult{}, fmt.Errorf("can't get user: %w", err)
	}

	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	s.audit(ctx, user.Login, models.AuditActionRefresh, nil)
	return models.AuthResult{UserID: user.ID, Login: user.Login, Tokens: pair}, nil
}

// Validate reports whether token is well signed and not expired
func (s *AuthService) Validate(token string) bool {
	return s.tokens.Validate(token)
}

// Authenticate resolves principal from access token
// Token errors are returned as is, apperrors.ErrInvalidIdentity if login no longer exists
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.Principal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return models.Principal{}, err
	}
	if claims.Kind != models.TokenKindAccess {
		return models.Principal{}, apperrors.ErrTokenMalformed
	}

	user, err := s.storage.User().GetUserByLogin(ctx, claims.Subject)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.Principal{}, apperrors.ErrInvalidIdentity
	case err != nil:
		return models.Principal{}, fmt.Errorf("can't get user: %w", err)
	}

	return models.NewPrincipal(user), nil
}

// AccessToken reads bearer token from request header
func (s *AuthService) AccessToken(r *http.Request) (string, bool) {
	header := r.Header.Get(s.accessHeaderName)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, s.accessAuthScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

// Audit write never fails the operation
func (s *AuthService) audit(ctx context.Context, login string, action string, opErr error) {
	event := models.AuditEvent{
		Login:   login,
		Action:  action,
		Outcome: models.AuditOutcomeSuccess,
	}
	if opErr != nil {
		event.Outcome = models.AuditOutcomeFailure
		event.Detail = opErr.Error()
	}

	if _, err := s.storage.Audit().Save(ctx, event); err != nil {
		logger.FromContext(ctx, s.logger).Error("can't save audit event", "action", action, "error", err)
	}
}
