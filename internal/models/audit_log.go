package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog records a mutation to a ledger entity: who did what to which row,
// with the changed fields captured as JSON.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID    uuid.UUID      `gorm:"index" json:"actor_id"`
	EntityType string         `gorm:"index" json:"entity_type"`
	EntityID   uuid.UUID      `gorm:"index" json:"entity_id"`
	Action     string         `json:"action"`
	Changes    datatypes.JSON `json:"changes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
