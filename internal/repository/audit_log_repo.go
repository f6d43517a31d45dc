package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bill-management-backend/internal/models"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Record writes one audit row. Changes is marshalled to JSON; a marshal
// failure drops the payload but still records the action.
func (r *AuditLogRepository) Record(actorID uuid.UUID, entityType string, entityID uuid.UUID, action string, changes interface{}) error {
	entry := &models.AuditLog{
		ID:         uuid.New(),
		ActorID:    actorID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		CreatedAt:  time.Now(),
	}
	if changes != nil {
		if raw, err := json.Marshal(changes); err == nil {
			entry.Changes = raw
		}
	}
	return r.db.Create(entry).Error
}

func (r *AuditLogRepository) List(entityType string, cursor string, limit int) ([]models.AuditLog, string, bool, error) {
	query := r.db.Order("id ASC").Limit(limit + 1)
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if cursor != "" {
		query = query.Where("id > ?", cursor)
	}

	var entries []models.AuditLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, "", false, err
	}

	hasMore := false
	var nextCursor string
	if len(entries) > limit {
		hasMore = true
		nextCursor = entries[limit-1].ID.String()
		entries = entries[:limit]
	}
	return entries, nextCursor, hasMore, nil
}
