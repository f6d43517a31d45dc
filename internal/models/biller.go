package models

import (
	"time"

	"github.com/google/uuid"
)

// Biller is an account that issues bills to customers.
type Biller struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"uniqueIndex" json:"user_id"`
	Name        string    `json:"name"`
	CompanyName string    `gorm:"index" json:"company_name,omitempty"`
	Address     string    `json:"address,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Email       string    `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CustomerBiller links a customer to a biller, with the address and phone
// the customer registered with that particular biller.
type CustomerBiller struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"index" json:"user_id"`
	BillerID    uuid.UUID `gorm:"index" json:"biller_id"`
	Address     string    `json:"address,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
