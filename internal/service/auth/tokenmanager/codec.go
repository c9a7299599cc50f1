package tokenmanager

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nkiryanov/trainingdiary/internal/apperrors"
	"github.com/nkiryanov/trainingdiary/internal/models"
)

// Wire form of models.Claims
type jwtClaims struct {
	jwt.RegisteredClaims
	UserID int64            `json:"id"`
	Role   models.Role      `json:"roles,omitempty"`
	Kind   models.TokenKind `json:"token_type"`
}

// Codec signs claims into compact JWS string and verifies them back
// Key is set once and never changes, so codec is safe for concurrent use
type Codec struct {
	key    []byte
	method jwt.SigningMethod
	now    func() time.Time
}

func NewCodec(key []byte, method jwt.SigningMethod, now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}
	return &Codec{key: key, method: method, now: now}
}

func (c *Codec) Sign(claims models.Claims) (string, error) {
	token := jwt.NewWithClaims(c.method, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claims.ID,
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
		UserID: claims.UserID,
		Role:   claims.Role,
		Kind:   claims.Kind,
	})

	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("error while signing token. Err: %w", err)
	}
	return signed, nil
}

// Parse verifies signature first and only then decodes and validates claims
// Returned error is one of apperrors.ErrTokenMalformed, ErrTokenSignatureInvalid, ErrTokenExpired
func (c *Codec) Parse(token string) (models.Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return models.Claims{}, apperrors.ErrTokenMalformed
	}

	sig, err := parser.DecodeSegment(parts[2])
	if err != nil {
		return models.Claims{}, apperrors.ErrTokenMalformed
	}

	// HMAC verification compares with hmac.Equal
	if err := c.method.Verify(parts[0]+"."+parts[1], sig, c.key); err != nil {
		return models.Claims{}, apperrors.ErrTokenSignatureInvalid
	}

	claims := &jwtClaims{}
	_, err = parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	})

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return models.Claims{}, apperrors.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return models.Claims{}, apperrors.ErrTokenSignatureInvalid
	default:
		return models.Claims{}, apperrors.ErrTokenMalformed
	}

	if claims.Kind != models.TokenKindAccess && claims.Kind != models.TokenKindRefresh {
		return models.Claims{}, apperrors.ErrTokenMalformed
	}
	if claims.Subject == "" || claims.IssuedAt == nil {
		return models.Claims{}, apperrors.ErrTokenMalformed
	}

	return models.Claims{
		ID:        claims.ID,
		Kind:      claims.Kind,
		Subject:   claims.Subject,
		UserID:    claims.UserID,
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt.UTC(),
		ExpiresAt: claims.ExpiresAt.UTC(),
	}, nil
}
