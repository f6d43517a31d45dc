package sweep

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bill-management-backend/internal/models"
	"bill-management-backend/internal/repository"
)

type fakeNotifier struct {
	overdue  []uuid.UUID
	upcoming []uuid.UUID
}

func (n *fakeNotifier) NotifyOverdue(bill *models.Bill) (*models.Notification, error) {
	n.overdue = append(n.overdue, bill.ID)
	return &models.Notification{ID: uuid.New(), BillID: bill.ID}, nil
}

func (n *fakeNotifier) NotifyUpcomingDue(bill *models.Bill) (*models.Notification, error) {
	n.upcoming = append(n.upcoming, bill.ID)
	return &models.Notification{ID: uuid.New(), BillID: bill.ID}, nil
}

func newMockSweeper(t *testing.T, notifier Notifier) (*Sweeper, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewSweeper(repository.NewBillRepository(gormDB), notifier, zap.NewNop()), mock, mockDB
}

func emptyBillRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "bill_number", "biller_id", "customer_id", "amount", "due_date", "status",
	})
}

func billRow(bill *models.Bill) *sqlmock.Rows {
	return emptyBillRows().AddRow(
		bill.ID, bill.BillNumber, bill.BillerID, bill.CustomerID,
		bill.Amount.String(), bill.DueDate, string(bill.Status),
	)
}

func TestRunWithNoCandidatesIsANoOp(t *testing.T) {
	notifier := &fakeNotifier{}
	s, mock, mockDB := newMockSweeper(t, notifier)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE status =`).
		WillReturnRows(emptyBillRows())
	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE status =`).
		WillReturnRows(emptyBillRows())

	err := s.Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, notifier.overdue)
	assert.Empty(t, notifier.upcoming)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunTransitionsPastDueBillAndNotifiesOnce(t *testing.T) {
	notifier := &fakeNotifier{}
	s, mock, mockDB := newMockSweeper(t, notifier)
	defer mockDB.Close()

	today := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)
	bill := &models.Bill{
		ID:         uuid.New(),
		BillNumber: "BILL-SWEEP",
		BillerID:   uuid.New(),
		CustomerID: uuid.New(),
		Amount:     decimal.RequireFromString("80.00"),
		DueDate:    today.AddDate(0, 0, -3),
		Status:     models.BillStatusPending,
	}

	// candidate scan
	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE status =`).
		WillReturnRows(billRow(bill))
	// per-bill transaction: re-read under lock, fresh sum, transition
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE id =`).
		WillReturnRows(billRow(bill))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount_applied\), 0\) FROM "payment_allocations"`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("0"))
	mock.ExpectExec(`UPDATE "bills" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// upcoming-due scan
	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE status =`).
		WillReturnRows(emptyBillRows())

	err := s.RunAt(context.Background(), today)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bill.ID}, notifier.overdue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLeavesPartiallyPaidBillAlone(t *testing.T) {
	// The candidate scan saw the bill as pending, but by the time the sweep
	// locks the row a payment has landed. The fresh allocation sum wins and
	// the bill is neither transitioned nor notified.
	notifier := &fakeNotifier{}
	s, mock, mockDB := newMockSweeper(t, notifier)
	defer mockDB.Close()

	today := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)
	bill := &models.Bill{
		ID:         uuid.New(),
		BillNumber: "BILL-RACED",
		BillerID:   uuid.New(),
		CustomerID: uuid.New(),
		Amount:     decimal.RequireFromString("1000.00"),
		DueDate:    today.AddDate(0, 0, -1),
		Status:     models.BillStatusPending,
	}

	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE status =`).
		WillReturnRows(billRow(bill))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE id =`).
		WillReturnRows(billRow(bill))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount_applied\), 0\) FROM "payment_allocations"`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("400.00"))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE status =`).
		WillReturnRows(emptyBillRows())

	err := s.RunAt(context.Background(), today)

	require.NoError(t, err)
	assert.Empty(t, notifier.overdue, "a bill with payments applied is never swept to overdue")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunSendsUpcomingDueReminders(t *testing.T) {
	notifier := &fakeNotifier{}
	s, mock, mockDB := newMockSweeper(t, notifier)
	defer mockDB.Close()

	today := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)
	bill := &models.Bill{
		ID:         uuid.New(),
		BillNumber: "BILL-TOMORROW",
		BillerID:   uuid.New(),
		CustomerID: uuid.New(),
		Amount:     decimal.RequireFromString("60.00"),
		DueDate:    today.AddDate(0, 0, 1),
		Status:     models.BillStatusPending,
	}

	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE status =`).
		WillReturnRows(emptyBillRows())
	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE status =`).
		WillReturnRows(billRow(bill))

	err := s.RunAt(context.Background(), today)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bill.ID}, notifier.upcoming)
	assert.Empty(t, notifier.overdue)
	assert.NoError(t, mock.ExpectationsWereMet())
}
