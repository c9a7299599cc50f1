package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/trainingdiary/internal/apperrors"
	"github.com/nkiryanov/trainingdiary/internal/models"
)

type UserRepo struct {
	DB DBTX
}

const createUser = `-- name: CreateUser
INSERT INTO users (login, password_hash, role)
VALUES ($1, $2, $3)
RETURNING id, created_at, login, password_hash, role
`

func (r *UserRepo) CreateUser(ctx context.Context, login string, passwordHash string, role models.Role) (models.User, error) {
	user, err := r.queryOne(ctx, createUser, login, passwordHash, role)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT id, created_at, login, password_hash, role FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	return mapNotFound(r.queryOne(ctx, getUserByID, id))
}

const getUserByLogin = `-- name: GetUserByLogin
SELECT id, created_at, login, password_hash, role FROM users
WHERE login = $1
`

func (r *UserRepo) GetUserByLogin(ctx context.Context, login string) (models.User, error) {
	return mapNotFound(r.queryOne(ctx, getUserByLogin, login))
}

const listUsers = `-- name: ListUsers
SELECT id, created_at, login, password_hash, role FROM users
ORDER BY id
`

func (r *UserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.Query(ctx, listUsers)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	users, err := pgx.CollectRows(rows, rowToUser)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

const updateRole = `-- name: UpdateRole
UPDATE users SET role = $2
WHERE id = $1
RETURNING id, created_at, login, password_hash, role
`

func (r *UserRepo) UpdateRole(ctx context.Context, id int64, role models.Role) (models.User, error) {
	return mapNotFound(r.queryOne(ctx, updateRole, id, role))
}

func (r *UserRepo) queryOne(ctx context.Context, sql string, args ...any) (models.User, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return models.User{}, err
	}
	return pgx.CollectOneRow(rows, rowToUser)
}

func mapNotFound(user models.User, err error) (models.User, error) {
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Login, &u.PasswordHash, &u.Role)
	return u, err
}
