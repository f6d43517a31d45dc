package allocation

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bill-management-backend/internal/models"
	"bill-management-backend/internal/repository"
)

// ConfirmationNotifier sends a payment confirmation for a bill after a
// successful allocation. Best effort; engine errors never depend on it.
type ConfirmationNotifier interface {
	NotifyPaymentConfirmation(bill *models.Bill, payment *models.Payment)
}

// Engine records a payment and its allocations as one atomic unit and
// reconciles each affected bill's status from the fresh allocation total.
type Engine struct {
	billRepo *repository.BillRepository
	db       *gorm.DB
	notifier ConfirmationNotifier
	log      *zap.Logger
}

func NewEngine(billRepo *repository.BillRepository, notifier ConfirmationNotifier, log *zap.Logger) *Engine {
	return &Engine{
		billRepo: billRepo,
		db:       billRepo.DB(),
		notifier: notifier,
		log:      log,
	}
}

// AllocationInput is one (bill, amount) pair of an allocation request.
type AllocationInput struct {
	BillID        uuid.UUID
	AmountApplied decimal.Decimal
}

type AllocateRequest struct {
	CustomerID      uuid.UUID
	Method          models.PaymentMethod
	Allocations     []AllocationInput
	ReferenceNumber string
	Notes           string
}

// BillAllocation is one entry of the allocation response: the applied amount
// plus the bill's status after reconciliation.
type BillAllocation struct {
	BillID        uuid.UUID         `json:"bill_id"`
	BillNumber    string            `json:"bill_number"`
	AmountApplied decimal.Decimal   `json:"amount_applied"`
	BillStatus    models.BillStatus `json:"bill_status"`
}

type Result struct {
	Payment     *models.Payment  `json:"payment"`
	Allocations []BillAllocation `json:"allocations"`
}

// PaymentTotal sums the applied amounts of an allocation list. The payment's
// amount is always this sum, never supplied independently.
func PaymentTotal(allocations []AllocationInput) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(a.AmountApplied)
	}
	return total
}

// Validate rejects malformed requests before any write happens.
func Validate(req AllocateRequest) error {
	if req.CustomerID == uuid.Nil {
		return &ValidationError{Field: "customer_id", Message: "customer is required"}
	}
	if !req.Method.IsValid() {
		return &ValidationError{Field: "payment_method", Message: "unknown payment method"}
	}
	if len(req.Allocations) == 0 {
		return &ValidationError{Field: "allocations", Message: "at least one allocation is required"}
	}
	for _, a := range req.Allocations {
		if a.BillID == uuid.Nil {
			return &ValidationError{Field: "allocations", Message: "missing bill_id"}
		}
		if !a.AmountApplied.IsPositive() {
			return &ValidationError{Field: "allocations", Message: "amount_applied must be positive"}
		}
		if !a.AmountApplied.Equal(a.AmountApplied.Round(2)) {
			return &ValidationError{Field: "allocations", Message: "amount_applied supports at most 2 decimal places"}
		}
	}
	return nil
}

// Allocate persists one payment, one allocation row per entry and the
// reconciled status of every affected bill inside a single transaction.
// Any failure rolls back every write made in the call.
func (e *Engine) Allocate(req AllocateRequest) (*Result, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	payment := &models.Payment{
		ID:              uuid.New(),
		CustomerID:      req.CustomerID,
		Amount:          PaymentTotal(req.Allocations),
		PaymentMethod:   req.Method,
		PaymentDate:     now,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
	}

	bills := make(map[uuid.UUID]*models.Bill)
	applied := make(map[uuid.UUID]decimal.Decimal)
	var order []uuid.UUID

	err := e.db.Transaction(func(tx *gorm.DB) error {
		// Lock and load each referenced bill once, in request order. The row
		// lock serializes against the overdue sweep and concurrent payments,
		// so the allocation sum read below stays fresh until commit.
		for _, a := range req.Allocations {
			if _, ok := bills[a.BillID]; ok {
				continue
			}
			var bill models.Bill
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&bill, "id = ?", a.BillID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &BillNotFoundError{BillID: a.BillID}
			}
			if err != nil {
				return err
			}

			existing, err := repository.SumAllocations(tx, bill.ID)
			if err != nil {
				return err
			}
			bills[a.BillID] = &bill
			applied[a.BillID] = existing
			order = append(order, a.BillID)
		}

		// Strict no-overpay policy: cumulative applied may never exceed the
		// bill amount. Checked before any row is written.
		for _, a := range req.Allocations {
			next := applied[a.BillID].Add(a.AmountApplied)
			if next.GreaterThan(bills[a.BillID].Amount) {
				return &OverpaymentError{
					BillID:     a.BillID,
					BillAmount: bills[a.BillID].Amount,
					Attempted:  next,
				}
			}
			applied[a.BillID] = next
		}

		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		for _, a := range req.Allocations {
			alloc := &models.PaymentAllocation{
				ID:            uuid.New(),
				PaymentID:     payment.ID,
				BillID:        a.BillID,
				AmountApplied: a.AmountApplied,
				CreatedAt:     now,
			}
			if err := tx.Create(alloc).Error; err != nil {
				return err
			}
		}

		for _, id := range order {
			bill := bills[id]
			status := models.DeriveBillStatus(bill.Amount, applied[id], bill.DueDate, now)
			if err := tx.Model(&models.Bill{}).
				Where("id = ?", id).
				Update("status", status).Error; err != nil {
				return err
			}
			bill.Status = status
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if e.log != nil {
		e.log.Info("payment allocated",
			zap.String("payment_id", payment.ID.String()),
			zap.String("amount", payment.Amount.String()),
			zap.Int("bills", len(order)))
	}

	// Confirmations happen outside the transaction; the dispatcher records
	// delivery failures as data.
	if e.notifier != nil {
		for _, id := range order {
			e.notifier.NotifyPaymentConfirmation(bills[id], payment)
		}
	}

	out := make([]BillAllocation, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		bill := bills[a.BillID]
		out = append(out, BillAllocation{
			BillID:        bill.ID,
			BillNumber:    bill.BillNumber,
			AmountApplied: a.AmountApplied,
			BillStatus:    bill.Status,
		})
	}
	return &Result{Payment: payment, Allocations: out}, nil
}
