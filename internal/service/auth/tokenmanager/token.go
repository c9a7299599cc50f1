package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/trainingdiary/internal/models"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultSigningMethod   = "HS256"
	defaultRefreshTokenTTL = 30 * 24 * time.Hour

	// HS256 key should be at least as long as hash output
	MinSecretKeyLen = 32
)

// Token manager with sensible default
type Config struct {
	// Secret key to sign tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm: HS256, HS384 or HS512
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes, configured independently
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Clock, time.Now if not set
	Now func() time.Time
}

type TokenManager struct {
	codec *Codec
	now   func() time.Time

	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(cfg Config) (*TokenManager, error) {
	if len(cfg.SecretKey) < MinSecretKeyLen {
		return nil, fmt.Errorf("secret key must be at least %d bytes long", MinSecretKeyLen)
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	method, ok := jwt.GetSigningMethod(cfg.Alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("signing method %q is not supported", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	// Tokens carry time with second precision
	if cfg.AccessTTL < time.Second || cfg.RefreshTTL < time.Second {
		return nil, errors.New("token lifetime must be at least one second")
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &TokenManager{
		codec:      NewCodec([]byte(cfg.SecretKey), method, cfg.Now),
		now:        cfg.Now,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

func (m *TokenManager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

// Issue access token that carries user role
func (m *TokenManager) CreateAccessToken(userID int64, login string, role models.Role) (models.IssuedToken, error) {
	if !role.Valid() {
		return models.IssuedToken{}, fmt.Errorf("can't issue access token with role %q", role)
	}
	return m.issue(models.TokenKindAccess, userID, login, role, m.accessTTL)
}

// Issue refresh token. It has no role: role is resolved again on refresh
func (m *TokenManager) CreateRefreshToken(userID int64, login string) (models.IssuedToken, error) {
	return m.issue(models.TokenKindRefresh, userID, login, "", m.refreshTTL)
}

func (m *TokenManager) GeneratePair(user models.User) (models.TokenPair, error) {
	var pair models.TokenPair

	access, err := m.CreateAccessToken(user.ID, user.Login, user.Role)
	if err != nil {
		return pair, err
	}

	refresh, err := m.CreateRefreshToken(user.ID, user.Login)
	if err != nil {
		return pair, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Parse and verify token of any kind
func (m *TokenManager) Parse(token string) (models.Claims, error) {
	return m.codec.Parse(token)
}

// Validate reports whether token signature is correct and token is not expired
func (m *TokenManager) Validate(token string) bool {
	_, err := m.codec.Parse(token)
	return err == nil
}

func (m *TokenManager) issue(kind models.TokenKind, userID int64, login string, role models.Role, ttl time.Duration) (models.IssuedToken, error) {
	if login == "" {
		return models.IssuedToken{}, errors.New("can't issue token for empty login")
	}

	now := m.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	value, err := m.codec.Sign(models.Claims{
		ID:        uuid.NewString(),
		Kind:      kind,
		Subject:   login,
		UserID:    userID,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return models.IssuedToken{}, err
	}

	return models.IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}
