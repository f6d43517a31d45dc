package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodCard         PaymentMethod = "card"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodMobileMoney, PaymentMethodCard:
		return true
	}
	return false
}

// Payment is a single payment event made by a customer. Amount is always the
// sum of the payment's allocations; it is derived, never supplied.
type Payment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID      uuid.UUID       `gorm:"index" json:"customer_id"`
	Amount          decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount"`
	PaymentMethod   PaymentMethod   `gorm:"index" json:"payment_method"`
	PaymentDate     time.Time       `json:"payment_date"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// PaymentAllocation is the portion of one Payment applied to one Bill.
type PaymentAllocation struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentID     uuid.UUID       `gorm:"index" json:"payment_id"`
	BillID        uuid.UUID       `gorm:"index" json:"bill_id"`
	AmountApplied decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount_applied"`
	CreatedAt     time.Time       `json:"created_at"`
}
