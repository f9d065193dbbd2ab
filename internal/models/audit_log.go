package models

import "time"

const (
	AuditUserRegistered      = "user.registered"
	AuditUserLogin           = "user.login"
	AuditUserLevelUp         = "user.level_up"
	AuditUserPasswordChanged = "user.password_changed"
	AuditUserProfileUpdated  = "user.profile_updated"
)

type AuditLog struct {
	ID         string         `json:"id" bson:"_id"`
	EntityType string         `json:"entity_type" bson:"entity_type"`
	EntityID   *string        `json:"entity_id" bson:"entity_id,omitempty"`
	Action     string         `json:"action" bson:"action"`
	Details    map[string]any `json:"details" bson:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
}
