package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bill-management-backend/internal/models"
)

type BillRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) *BillRepository {
	return &BillRepository{db: db}
}

// Expose DB if needed
func (r *BillRepository) DB() *gorm.DB {
	return r.db
}

func (r *BillRepository) Create(bill *models.Bill) error {
	return r.db.Create(bill).Error
}

func (r *BillRepository) Update(bill *models.Bill) error {
	return r.db.Save(bill).Error
}

// GetByID fetch a single bill by ID
func (r *BillRepository) GetByID(id uuid.UUID) (*models.Bill, error) {
	var bill models.Bill
	if err := r.db.First(&bill, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

// BillFilter narrows List results. Zero values mean "no filter".
type BillFilter struct {
	BillerID   uuid.UUID
	CustomerID uuid.UUID
	Status     models.BillStatus
	BillNumber string
}

// List returns bills matching the filter with cursor pagination, ordered by id.
func (r *BillRepository) List(filter BillFilter, cursor string, limit int) ([]models.Bill, string, bool, error) {
	var bills []models.Bill

	query := r.db.Order("id ASC").Limit(limit + 1)

	if filter.BillerID != uuid.Nil {
		query = query.Where("biller_id = ?", filter.BillerID)
	}
	if filter.CustomerID != uuid.Nil {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.BillNumber != "" {
		query = query.Where("bill_number = ?", filter.BillNumber)
	}
	if cursor != "" {
		query = query.Where("id > ?", cursor)
	}

	if err := query.Find(&bills).Error; err != nil {
		return nil, "", false, err
	}

	hasMore := false
	var nextCursor string
	if len(bills) > limit {
		hasMore = true
		nextCursor = bills[limit-1].ID.String()
		bills = bills[:limit]
	}

	return bills, nextCursor, hasMore, nil
}

// FindOverdueCandidates returns pending bills whose due date is strictly
// before the given day.
func (r *BillRepository) FindOverdueCandidates(today time.Time) ([]models.Bill, error) {
	var bills []models.Bill
	err := r.db.
		Where("status = ?", models.BillStatusPending).
		Where("due_date < ?", models.DateOf(today)).
		Find(&bills).Error
	return bills, err
}

// FindDueOn returns pending bills due on the given calendar day.
func (r *BillRepository) FindDueOn(day time.Time) ([]models.Bill, error) {
	start := models.DateOf(day)
	end := start.AddDate(0, 0, 1)

	var bills []models.Bill
	err := r.db.
		Where("status = ?", models.BillStatusPending).
		Where("due_date >= ? AND due_date < ?", start, end).
		Find(&bills).Error
	return bills, err
}

// SumAllocations returns the total amount applied to a bill across all
// payment allocations ever recorded for it. The query runs on the supplied
// tx so callers can read inside their own transaction.
func SumAllocations(tx *gorm.DB, billID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.Model(&models.PaymentAllocation{}).
		Where("bill_id = ?", billID).
		Select("COALESCE(SUM(amount_applied), 0)").
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
