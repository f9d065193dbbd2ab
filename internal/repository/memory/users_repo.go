package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/skillstack-backend/internal/models"
	"github.com/baharkarakas/skillstack-backend/internal/repository"
)

type usersRepo struct {
	mu         sync.RWMutex
	byID       map[string]models.User
	byEmail    map[string]string
	byUsername map[string]string
	now        func() time.Time
}

func NewUsers() repository.Users {
	return &usersRepo{
		byID:       map[string]models.User{},
		byEmail:    map[string]string{},
		byUsername: map[string]string{},
		now:        time.Now,
	}
}

func (r *usersRepo) FindByEmailOrUsername(_ context.Context, email, username string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.byEmail[email]; ok {
		return r.byID[id].Sanitized(), nil
	}
	if id, ok := r.byUsername[username]; ok {
		return r.byID[id].Sanitized(), nil
	}
	return models.User{}, repository.ErrNotFound
}

func (r *usersRepo) FindByEmail(_ context.Context, email string, withCredential bool) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	u := r.byID[id]
	if !withCredential {
		u = u.Sanitized()
	}
	return u, nil
}

func (r *usersRepo) FindByID(_ context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return u.Sanitized(), nil
}

func (r *usersRepo) Create(_ context.Context, u models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return models.User{}, &repository.DuplicateFieldError{Field: "email"}
	}
	if _, ok := r.byUsername[u.Username]; ok {
		return models.User{}, &repository.DuplicateFieldError{Field: "username"}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := r.now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.LastActiveAt.IsZero() {
		u.LastActiveAt = u.CreatedAt
	}
	u.UpdatedAt = now

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	r.byUsername[u.Username] = u.ID
	return u.Sanitized(), nil
}

func (r *usersRepo) Save(_ context.Context, u models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.byID[u.ID]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	if id, taken := r.byEmail[u.Email]; taken && id != u.ID {
		return models.User{}, &repository.DuplicateFieldError{Field: "email"}
	}
	if id, taken := r.byUsername[u.Username]; taken && id != u.ID {
		return models.User{}, &repository.DuplicateFieldError{Field: "username"}
	}
	if u.PasswordHash == "" {
		u.PasswordHash = prev.PasswordHash
	}
	u.CreatedAt = prev.CreatedAt
	u.UpdatedAt = r.now().UTC()

	delete(r.byEmail, prev.Email)
	delete(r.byUsername, prev.Username)
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	r.byUsername[u.Username] = u.ID
	return u.Sanitized(), nil
}
