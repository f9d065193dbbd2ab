package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/skillstack-backend/internal/models"
)

type AuditLogs struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func NewAuditLogs() *AuditLogs { return &AuditLogs{} }

func (r *AuditLogs) Create(_ context.Context, l models.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	r.logs = append(r.logs, l)
	r.mu.Unlock()
	return nil
}

// Entries returns a copy of everything recorded so far.
func (r *AuditLogs) Entries() []models.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.AuditLog(nil), r.logs...)
}
