package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeOverdue             NotificationType = "overdue"
	NotificationTypeUpcomingDue         NotificationType = "upcoming_due"
	NotificationTypePaymentConfirmation NotificationType = "payment_confirmation"
	NotificationTypeGeneral             NotificationType = "general"
)

type NotificationStatus string

const (
	NotificationStatusSent   NotificationStatus = "sent"
	NotificationStatusFailed NotificationStatus = "failed"
)

// Notification records one delivery attempt for a bill event. Rows are never
// mutated after creation; a failed attempt is a new failed row.
type Notification struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	BillID       uuid.UUID          `gorm:"index" json:"bill_id"`
	CustomerID   uuid.UUID          `gorm:"index" json:"customer_id"`
	Type         NotificationType   `gorm:"index;column:notification_type" json:"notification_type"`
	Subject      string             `json:"subject"`
	Message      string             `json:"message"`
	SentVia      string             `json:"sent_via"`
	Status       NotificationStatus `gorm:"index" json:"status"`
	ErrorMessage string             `json:"error_message,omitempty"`
	SentAt       time.Time          `json:"sent_at"`
	CreatedAt    time.Time          `json:"created_at"`
}
