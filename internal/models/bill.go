package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BillStatus string

const (
	BillStatusPending       BillStatus = "pending"
	BillStatusPaid          BillStatus = "paid"
	BillStatusPartiallyPaid BillStatus = "partially_paid"
	BillStatusOverdue       BillStatus = "overdue"
)

func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusPending, BillStatusPaid, BillStatusPartiallyPaid, BillStatusOverdue:
		return true
	}
	return false
}

// Bill is an amount owed by one customer to one biller.
// Status is never written directly by callers; it is derived with
// DeriveBillStatus from the bill's allocation total at every write site.
type Bill struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BillNumber  string          `gorm:"uniqueIndex" json:"bill_number"`
	BillerID    uuid.UUID       `gorm:"index" json:"biller_id"`
	CustomerID  uuid.UUID       `gorm:"index" json:"customer_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount"`
	DueDate     time.Time       `gorm:"index" json:"due_date"`
	Status      BillStatus      `gorm:"index" json:"status"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DeriveBillStatus computes a bill's status from its amount, the sum of all
// payment allocations applied to it, its due date and the current date.
// Precedence: paid > partially_paid > overdue > pending. A fully covered bill
// stays paid no matter how far past its due date it is.
//
// Due-date comparison is calendar-day based: a bill due today is not overdue
// until tomorrow.
func DeriveBillStatus(amount, totalApplied decimal.Decimal, dueDate, today time.Time) BillStatus {
	switch {
	case totalApplied.GreaterThanOrEqual(amount):
		return BillStatusPaid
	case totalApplied.IsPositive():
		return BillStatusPartiallyPaid
	case DateOf(today).After(DateOf(dueDate)):
		return BillStatusOverdue
	default:
		return BillStatusPending
	}
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
