package reports

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service answers the read-only aggregate queries behind the report
// endpoints. Customer reports aggregate over payments; biller reports
// aggregate over payment allocations joined to the biller's bills, so a
// split payment only counts the slice that landed on this biller.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type MonthlyTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

type BillerSpend struct {
	BillerName string          `json:"biller_name"`
	Total      decimal.Decimal `json:"total"`
}

type CustomerRevenue struct {
	Email     string          `json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	TotalPaid decimal.Decimal `json:"total_paid"`
}

type MethodTotal struct {
	PaymentMethod string          `json:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentCount  int64           `json:"payment_count"`
}

type Outstanding struct {
	TotalDue     decimal.Decimal `json:"total_due"`
	OverdueCount int64           `json:"overdue_count"`
}

type BillerOutstanding struct {
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	OverdueBills     int64           `json:"overdue_bills"`
	PendingBills     int64           `json:"pending_bills"`
	TotalUnpaidBills int64           `json:"total_unpaid_bills"`
}

type CustomerStats struct {
	TotalCustomers    int64 `json:"total_customers"`
	ActiveCustomers   int64 `json:"active_customers"`
	InactiveCustomers int64 `json:"inactive_customers"`
}

func (s *Service) TotalSpending(customerID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.Raw(
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE customer_id = ?`,
		customerID).Row().Scan(&total)
	return total, err
}

func (s *Service) SpendingByBiller(customerID uuid.UUID) ([]BillerSpend, error) {
	var rows []BillerSpend
	err := s.db.Raw(`
		SELECT billers.name AS biller_name, SUM(pa.amount_applied) AS total
		FROM payment_allocations pa
		JOIN payments p ON p.id = pa.payment_id
		JOIN bills b ON b.id = pa.bill_id
		JOIN billers ON billers.id = b.biller_id
		WHERE p.customer_id = ?
		GROUP BY billers.name
		ORDER BY total DESC`, customerID).Scan(&rows).Error
	return rows, err
}

func (s *Service) MonthlySpending(customerID uuid.UUID) ([]MonthlyTotal, error) {
	var rows []MonthlyTotal
	err := s.db.Raw(`
		SELECT to_char(payment_date, 'YYYY-MM') AS month, SUM(amount) AS total
		FROM payments
		WHERE customer_id = ?
		GROUP BY month
		ORDER BY month`, customerID).Scan(&rows).Error
	return rows, err
}

// Outstanding reports what the customer still owes: the unpaid remainder of
// every bill that is not fully paid, plus the count of overdue bills.
func (s *Service) Outstanding(customerID uuid.UUID) (Outstanding, error) {
	var out Outstanding
	err := s.db.Raw(`
		SELECT COALESCE(SUM(b.amount - COALESCE(a.total, 0)), 0)
		FROM bills b
		LEFT JOIN (
			SELECT bill_id, SUM(amount_applied) AS total
			FROM payment_allocations GROUP BY bill_id
		) a ON a.bill_id = b.id
		WHERE b.customer_id = ? AND b.status <> 'paid'`, customerID).
		Row().Scan(&out.TotalDue)
	if err != nil {
		return out, err
	}
	err = s.db.Raw(
		`SELECT COUNT(*) FROM bills WHERE customer_id = ? AND status = 'overdue'`,
		customerID).Row().Scan(&out.OverdueCount)
	return out, err
}

func (s *Service) TotalRevenue(billerID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.Raw(`
		SELECT COALESCE(SUM(pa.amount_applied), 0)
		FROM payment_allocations pa
		JOIN bills b ON b.id = pa.bill_id
		WHERE b.biller_id = ?`, billerID).Row().Scan(&total)
	return total, err
}

func (s *Service) RevenueByCustomer(billerID uuid.UUID) ([]CustomerRevenue, error) {
	var rows []CustomerRevenue
	err := s.db.Raw(`
		SELECT u.email, u.first_name, u.last_name, SUM(pa.amount_applied) AS total_paid
		FROM payment_allocations pa
		JOIN bills b ON b.id = pa.bill_id
		JOIN payments p ON p.id = pa.payment_id
		JOIN users u ON u.id = p.customer_id
		WHERE b.biller_id = ?
		GROUP BY u.email, u.first_name, u.last_name
		ORDER BY total_paid DESC`, billerID).Scan(&rows).Error
	return rows, err
}

func (s *Service) MonthlyRevenue(billerID uuid.UUID) ([]MonthlyTotal, error) {
	var rows []MonthlyTotal
	err := s.db.Raw(`
		SELECT to_char(p.payment_date, 'YYYY-MM') AS month, SUM(pa.amount_applied) AS total
		FROM payment_allocations pa
		JOIN bills b ON b.id = pa.bill_id
		JOIN payments p ON p.id = pa.payment_id
		WHERE b.biller_id = ?
		GROUP BY month
		ORDER BY month`, billerID).Scan(&rows).Error
	return rows, err
}

func (s *Service) OutstandingBills(billerID uuid.UUID) (BillerOutstanding, error) {
	var out BillerOutstanding
	err := s.db.Raw(`
		SELECT
			COALESCE(SUM(b.amount - COALESCE(a.total, 0)), 0) AS total_outstanding,
			COUNT(*) FILTER (WHERE b.status = 'overdue') AS overdue_bills,
			COUNT(*) FILTER (WHERE b.status = 'pending') AS pending_bills,
			COUNT(*) AS total_unpaid_bills
		FROM bills b
		LEFT JOIN (
			SELECT bill_id, SUM(amount_applied) AS total
			FROM payment_allocations GROUP BY bill_id
		) a ON a.bill_id = b.id
		WHERE b.biller_id = ? AND b.status <> 'paid'`, billerID).
		Row().Scan(&out.TotalOutstanding, &out.OverdueBills, &out.PendingBills, &out.TotalUnpaidBills)
	return out, err
}

func (s *Service) CustomerStatistics(billerID uuid.UUID) (CustomerStats, error) {
	var stats CustomerStats
	err := s.db.Raw(
		`SELECT COUNT(*) FROM customer_billers WHERE biller_id = ?`, billerID).
		Row().Scan(&stats.TotalCustomers)
	if err != nil {
		return stats, err
	}
	err = s.db.Raw(`
		SELECT COUNT(DISTINCT cb.user_id)
		FROM customer_billers cb
		JOIN bills b ON b.customer_id = cb.user_id AND b.biller_id = cb.biller_id
		WHERE cb.biller_id = ? AND b.status <> 'paid'`, billerID).
		Row().Scan(&stats.ActiveCustomers)
	if err != nil {
		return stats, err
	}
	stats.InactiveCustomers = stats.TotalCustomers - stats.ActiveCustomers
	return stats, nil
}

func (s *Service) PaymentMethodBreakdown(billerID uuid.UUID) ([]MethodTotal, error) {
	var rows []MethodTotal
	err := s.db.Raw(`
		SELECT p.payment_method, SUM(pa.amount_applied) AS total_amount,
		       COUNT(DISTINCT p.id) AS payment_count
		FROM payment_allocations pa
		JOIN bills b ON b.id = pa.bill_id
		JOIN payments p ON p.id = pa.payment_id
		WHERE b.biller_id = ?
		GROUP BY p.payment_method
		ORDER BY total_amount DESC`, billerID).Scan(&rows).Error
	return rows, err
}
