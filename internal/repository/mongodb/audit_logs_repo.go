package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/baharkarakas/skillstack-backend/internal/models"
	"github.com/baharkarakas/skillstack-backend/internal/repository"
)

type auditLogsRepo struct{ coll *mongo.Collection }

func (r *auditLogsRepo) Create(ctx context.Context, l models.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, l)
	return repository.Wrap("insert audit log", err)
}
