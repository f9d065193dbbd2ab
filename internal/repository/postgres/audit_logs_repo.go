package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baharkarakas/skillstack-backend/internal/models"
	"github.com/baharkarakas/skillstack-backend/internal/repository"
)

type auditLogsRepo struct{ db DBTX }

func (r *auditLogsRepo) Create(ctx context.Context, l models.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO audit_logs(id, entity_type, entity_id, action, details) VALUES($1,$2,$3,$4,$5)`,
		l.ID, l.EntityType, l.EntityID, l.Action, l.Details,
	)
	return repository.Wrap("insert audit log", err)
}
