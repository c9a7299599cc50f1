package tokenmanager

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/trainingdiary/internal/apperrors"
	"github.com/nkiryanov/trainingdiary/internal/models"
)

const testSecret = "test-secret-key-that-is-long-enough-for-hs256"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Replace one symbol of the segment keeping it valid base64url
func flipChar(s string, i int) string {
	b := []byte(s)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}

func TestCodec(t *testing.T) {
	t0 := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	accessClaims := models.Claims{
		ID:        "jti-1",
		Kind:      models.TokenKindAccess,
		Subject:   "alice",
		UserID:    42,
		Role:      models.RoleAdmin,
		IssuedAt:  t0,
		ExpiresAt: t0.Add(15 * time.Minute),
	}
	refreshClaims := models.Claims{
		ID:        "jti-2",
		Kind:      models.TokenKindRefresh,
		Subject:   "bob",
		UserID:    7,
		IssuedAt:  t0,
		ExpiresAt: t0.Add(24 * time.Hour),
	}

	codec := NewCodec([]byte(testSecret), jwt.SigningMethodHS256, fixedClock(t0.Add(time.Minute)))

	t.Run("round trip", func(t *testing.T) {
		for _, claims := range []models.Claims{accessClaims, refreshClaims} {
			token, err := codec.Sign(claims)
			require.NoError(t, err)
			require.Len(t, strings.Split(token, "."), 3, "token has header, payload and signature")

			got, err := codec.Parse(token)

			require.NoError(t, err)
			require.Equal(t, claims, got)
		}
	})

	t.Run("sub-second times are truncated", func(t *testing.T) {
		claims := accessClaims
		claims.IssuedAt = t0.Add(300 * time.Millisecond)

		token, err := codec.Sign(claims)
		require.NoError(t, err)

		got, err := codec.Parse(token)
		require.NoError(t, err)
		require.Equal(t, t0, got.IssuedAt)
	})

	t.Run("tampered payload fails with invalid signature", func(t *testing.T) {
		token, err := codec.Sign(accessClaims)
		require.NoError(t, err)
		parts := strings.Split(token, ".")

		for i := range len(parts[1]) {
			tampered := parts[0] + "." + flipChar(parts[1], i) + "." + parts[2]

			_, err := codec.Parse(tampered)

			require.ErrorIsf(t, err, apperrors.ErrTokenSignatureInvalid, "payload byte %d flipped", i)
		}
	})

	t.Run("tampered header fails with invalid signature", func(t *testing.T) {
		token, err := codec.Sign(accessClaims)
		require.NoError(t, err)
		parts := strings.Split(token, ".")

		tampered := flipChar(parts[0], 3) + "." + parts[1] + "." + parts[2]

		_, err = codec.Parse(tampered)
		require.ErrorIs(t, err, apperrors.ErrTokenSignatureInvalid)
	})

	t.Run("other key fails with invalid signature", func(t *testing.T) {
		other := NewCodec([]byte("another-secret-key-that-is-long-enough"), jwt.SigningMethodHS256, fixedClock(t0))
		token, err := other.Sign(accessClaims)
		require.NoError(t, err)

		_, err = codec.Parse(token)
		require.ErrorIs(t, err, apperrors.ErrTokenSignatureInvalid)
	})

	t.Run("malformed", func(t *testing.T) {
		tests := []struct {
			name  string
			token string
		}{
			{"empty", ""},
			{"not a token", "invalid token"},
			{"two parts", "aaa.bbb"},
			{"four parts", "aaa.bbb.ccc.ddd"},
			{"signature not base64", "aaa.bbb.!!!"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := codec.Parse(tt.token)
				require.ErrorIs(t, err, apperrors.ErrTokenMalformed)
			})
		}
	})

	t.Run("correctly signed garbage is malformed", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "alice",
			"iat": t0.Unix(),
			"exp": t0.Add(time.Hour).Unix(),
			// no token_type
		})
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = codec.Parse(signed)
		require.ErrorIs(t, err, apperrors.ErrTokenMalformed)
	})

	t.Run("token without expiry is malformed", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":        "alice",
			"iat":        t0.Unix(),
			"token_type": "access",
		})
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = codec.Parse(signed)
		require.ErrorIs(t, err, apperrors.ErrTokenMalformed)
	})

	t.Run("not signed token rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub":        "alice",
			"iat":        t0.Unix(),
			"exp":        t0.Add(time.Hour).Unix(),
			"token_type": "access",
		})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = codec.Parse(signed)
		require.Error(t, err, "token with 'none' alg must fail")
	})

	t.Run("expired", func(t *testing.T) {
		token, err := codec.Sign(accessClaims)
		require.NoError(t, err)

		late := NewCodec([]byte(testSecret), jwt.SigningMethodHS256, fixedClock(t0.Add(time.Hour)))
		_, err = late.Parse(token)

		require.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("expired token with bad signature reports signature", func(t *testing.T) {
		token, err := codec.Sign(accessClaims)
		require.NoError(t, err)
		parts := strings.Split(token, ".")

		late := NewCodec([]byte(testSecret), jwt.SigningMethodHS256, fixedClock(t0.Add(time.Hour)))
		_, err = late.Parse(parts[0] + "." + flipChar(parts[1], 5) + "." + parts[2])

		require.ErrorIs(t, err, apperrors.ErrTokenSignatureInvalid, "signature is verified before expiry")
	})
}
