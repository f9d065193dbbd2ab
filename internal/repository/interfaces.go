package repository

import (
	"context"

	"github.com/baharkarakas/skillstack-backend/internal/models"
)

// Users is the user store. Lookups return ErrNotFound when nothing matches;
// Create and Save return *DuplicateFieldError when email or username is taken.
type Users interface {
	FindByEmailOrUsername(ctx context.Context, email, username string) (models.User, error)
	// FindByEmail loads the password hash only when withCredential is set.
	FindByEmail(ctx context.Context, email string, withCredential bool) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	// Save writes every mutable field. An empty PasswordHash keeps the stored one.
	Save(ctx context.Context, u models.User) (models.User, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

type Repositories struct {
	Users     Users
	AuditLogs AuditLogs
}
