package allocation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidationError reports a malformed allocation request field. Nothing is
// written when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// BillNotFoundError aborts the whole allocation: the transaction is rolled
// back and no payment or allocation row survives.
type BillNotFoundError struct {
	BillID uuid.UUID
}

func (e *BillNotFoundError) Error() string {
	return fmt.Sprintf("bill %s not found", e.BillID)
}

// OverpaymentError is returned when an allocation would push a bill's
// cumulative applied amount above its amount.
type OverpaymentError struct {
	BillID     uuid.UUID
	BillAmount decimal.Decimal
	Attempted  decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("allocation would overpay bill %s: %s applied against amount %s",
		e.BillID, e.Attempted, e.BillAmount)
}
