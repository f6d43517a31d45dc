package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bill-management-backend/internal/models"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) DB() *gorm.DB {
	return r.db
}

// GetByID fetch a single payment by ID
func (r *PaymentRepository) GetByID(id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// AllocationsForPayment returns all allocations written for one payment.
func (r *PaymentRepository) AllocationsForPayment(paymentID uuid.UUID) ([]models.PaymentAllocation, error) {
	var allocs []models.PaymentAllocation
	err := r.db.Where("payment_id = ?", paymentID).Order("created_at ASC").Find(&allocs).Error
	return allocs, err
}

// ListByCustomer returns a customer's payments with cursor pagination.
func (r *PaymentRepository) ListByCustomer(customerID uuid.UUID, cursor string, limit int) ([]models.Payment, string, bool, error) {
	query := r.db.Order("id ASC").Limit(limit + 1)
	if customerID != uuid.Nil {
		query = query.Where("customer_id = ?", customerID)
	}
	if cursor != "" {
		query = query.Where("id > ?", cursor)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, "", false, err
	}
	return paginate(payments, limit)
}

// ListByBiller returns payments that touched any of the biller's bills.
func (r *PaymentRepository) ListByBiller(billerID uuid.UUID, cursor string, limit int) ([]models.Payment, string, bool, error) {
	query := r.db.
		Distinct("payments.*").
		Joins("JOIN payment_allocations ON payment_allocations.payment_id = payments.id").
		Joins("JOIN bills ON bills.id = payment_allocations.bill_id").
		Where("bills.biller_id = ?", billerID).
		Order("payments.id ASC").
		Limit(limit + 1)
	if cursor != "" {
		query = query.Where("payments.id > ?", cursor)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, "", false, err
	}
	return paginate(payments, limit)
}

func paginate(payments []models.Payment, limit int) ([]models.Payment, string, bool, error) {
	if len(payments) > limit {
		nextCursor := payments[limit-1].ID.String()
		return payments[:limit], nextCursor, true, nil
	}
	return payments, "", false, nil
}
