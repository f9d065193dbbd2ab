package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	repo "github.com/baharkarakas/skillstack-backend/internal/repository"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func NewRepositories(db DBTX) repo.Repositories {
	return repo.Repositories{
		Users:     NewUsers(db),
		AuditLogs: &auditLogsRepo{db},
	}
}
