package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSuperuser Role = "superuser"
	RoleBiller    Role = "biller"
	RoleCustomer  Role = "customer"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleSuperuser, RoleBiller, RoleCustomer:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex" json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	MiddleName   string    `json:"middle_name,omitempty"`
	LastName     string    `json:"last_name"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	Address      string    `json:"address,omitempty"`
	Role         Role      `gorm:"index" json:"role"`
	IsActive     bool      `json:"is_active"`
	DateJoined   time.Time `json:"date_joined"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
