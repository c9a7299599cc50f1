package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nkiryanov/trainingdiary/internal/apperrors"
	"github.com/nkiryanov/trainingdiary/internal/models"
	"github.com/nkiryanov/trainingdiary/internal/repository"
)

// In-memory storage for tests that don't need postgres
type MemStorage struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
	events []models.AuditEvent

	// Returned by every user lookup if set
	LookupErr error

	// Returned by audit writes if set
	AuditErr error
}

func NewMemStorage() *MemStorage {
	return &MemStorage{users: make(map[int64]models.User)}
}

func (s *MemStorage) User() repository.UserRepo   { return memUsers{s} }
func (s *MemStorage) Audit() repository.AuditRepo { return memAudit{s} }

func (s *MemStorage) InTx(_ context.Context, fn func(repository.Storage) error) error {
	return fn(s)
}

// Remove user, so tokens issued for it become orphaned
func (s *MemStorage) DeleteUser(login string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.Login == login {
			delete(s.users, id)
		}
	}
}

func (s *MemStorage) Events() []models.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditEvent(nil), s.events...)
}

type memUsers struct{ s *MemStorage }

func (r memUsers) CreateUser(_ context.Context, login string, passwordHash string, role models.Role) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Login == login {
			return models.User{}, apperrors.ErrUserAlreadyExists
		}
	}

	r.s.nextID++
	u := models.User{
		ID:           r.s.nextID,
		CreatedAt:    time.Now().Truncate(time.Microsecond),
		Login:        login,
		PasswordHash: passwordHash,
		Role:         role,
	}
	r.s.users[u.ID] = u
	return u, nil
}

func (r memUsers) GetUserByID(_ context.Context, userID int64) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.LookupErr != nil {
		return models.User{}, r.s.LookupErr
	}
	u, ok := r.s.users[userID]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (r memUsers) GetUserByLogin(_ context.Context, login string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.LookupErr != nil {
		return models.User{}, r.s.LookupErr
	}
	for _, u := range r.s.users {
		if u.Login == login {
			return u, nil
		}
	}
	return models.User{}, apperrors.ErrUserNotFound
}

func (r memUsers) ListUsers(_ context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r memUsers) UpdateRole(_ context.Context, userID int64, role models.Role) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}
	u.Role = role
	r.s.users[userID] = u
	return u, nil
}

type memAudit struct{ s *MemStorage }

func (r memAudit) Save(_ context.Context, event models.AuditEvent) (models.AuditEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.AuditErr != nil {
		return models.AuditEvent{}, r.s.AuditErr
	}
	event.ID = int64(len(r.s.events) + 1)
	event.CreatedAt = time.Now()
	r.s.events = append(r.s.events, event)
	return event, nil
}

func (r memAudit) ListByLogin(_ context.Context, login string, limit int) ([]models.AuditEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var res []models.AuditEvent
	for i := len(r.s.events) - 1; i >= 0 && len(res) < limit; i-- {
		if r.s.events[i].Login == login {
			res = append(res, r.s.events[i])
		}
	}
	return res, nil
}
