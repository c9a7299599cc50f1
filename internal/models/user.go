package models

import (
	"time"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

func (r Role) String() string {
	return string(r)
}

type User struct {
	ID           int64
	CreatedAt    time.Time
	Login        string
	PasswordHash string
	Role         Role
}
