package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrInvalidRole        = errors.New("invalid role")

	// Token codec failures. Malformed and bad signature are treated the same by callers
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token is expired")

	// Token is valid but the identity it refers to is gone
	ErrInvalidIdentity = errors.New("invalid identity")

	// Refresh attempted with invalid or expired refresh token
	ErrAccessDenied = errors.New("access denied")
)
