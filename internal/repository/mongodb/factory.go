package mongodb

import (
	"go.mongodb.org/mongo-driver/mongo"

	repo "github.com/baharkarakas/skillstack-backend/internal/repository"
)

func NewRepositories(db *mongo.Database) repo.Repositories {
	return repo.Repositories{
		Users:     NewUsers(db.Collection(usersCollection)),
		AuditLogs: &auditLogsRepo{db.Collection(auditLogsCollection)},
	}
}
