package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bill-management-backend/internal/models"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) DB() *gorm.DB {
	return r.db
}

func (r *NotificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

// FindSent returns the existing sent notification for (bill, type), or nil
// if none exists. This is what makes dispatch idempotent.
func (r *NotificationRepository) FindSent(billID uuid.UUID, typ models.NotificationType) (*models.Notification, error) {
	var n models.Notification
	err := r.db.
		Where("bill_id = ? AND notification_type = ? AND status = ?",
			billID, typ, models.NotificationStatusSent).
		First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) GetByID(id uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// NotificationFilter narrows List results.
type NotificationFilter struct {
	CustomerID uuid.UUID
	BillerID   uuid.UUID
	Type       models.NotificationType
}

func (r *NotificationRepository) List(filter NotificationFilter, cursor string, limit int) ([]models.Notification, string, bool, error) {
	query := r.db.Order("notifications.id ASC").Limit(limit + 1)

	if filter.CustomerID != uuid.Nil {
		query = query.Where("notifications.customer_id = ?", filter.CustomerID)
	}
	if filter.BillerID != uuid.Nil {
		query = query.
			Joins("JOIN bills ON bills.id = notifications.bill_id").
			Where("bills.biller_id = ?", filter.BillerID)
	}
	if filter.Type != "" {
		query = query.Where("notifications.notification_type = ?", filter.Type)
	}
	if cursor != "" {
		query = query.Where("notifications.id > ?", cursor)
	}

	var items []models.Notification
	if err := query.Find(&items).Error; err != nil {
		return nil, "", false, err
	}

	hasMore := false
	var nextCursor string
	if len(items) > limit {
		hasMore = true
		nextCursor = items[limit-1].ID.String()
		items = items[:limit]
	}
	return items, nextCursor, hasMore, nil
}
