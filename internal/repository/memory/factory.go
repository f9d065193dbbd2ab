package memory

import repo "github.com/baharkarakas/skillstack-backend/internal/repository"

func NewRepositories() repo.Repositories {
	return repo.Repositories{
		Users:     NewUsers(),
		AuditLogs: NewAuditLogs(),
	}
}
