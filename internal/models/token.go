package models

import (
	"time"
)

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims signed into every token
// Role is set for access tokens only
type Claims struct {
	ID        string
	Kind      TokenKind
	Subject   string // user login
	UserID    int64
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued on login and refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// Result of successful login or refresh
type AuthResult struct {
	UserID int64
	Login  string
	Tokens TokenPair
}
