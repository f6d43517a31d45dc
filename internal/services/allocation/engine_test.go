package allocation

import (
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

func newMockEngine(t *testing.T) (*Engine, sqlmock.Sqlmock, *sql.DB) {
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

	engine := NewEngine(repository.NewBillRepository(gormDB), nil, zap.NewNop())
	return engine, mock, mockDB
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValidate(t *testing.T) {
	valid := AllocateRequest{
		CustomerID: uuid.New(),
		Method:     models.PaymentMethodCash,
		Allocations: []AllocationInput{
			{BillID: uuid.New(), AmountApplied: dec("10.50")},
		},
	}

	t.Run("accepts a well-formed request", func(t *testing.T) {
		assert.NoError(t, Validate(valid))
	})

	t.Run("rejects empty allocation list", func(t *testing.T) {
		req := valid
		req.Allocations = nil
		var vErr *ValidationError
		require.ErrorAs(t, Validate(req), &vErr)
		assert.Equal(t, "allocations", vErr.Field)
	})

	t.Run("rejects unknown payment method", func(t *testing.T) {
		req := valid
		req.Method = "barter"
		var vErr *ValidationError
		require.ErrorAs(t, Validate(req), &vErr)
		assert.Equal(t, "payment_method", vErr.Field)
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		req := valid
		req.Allocations = []AllocationInput{{BillID: uuid.New(), AmountApplied: decimal.Zero}}
		assert.Error(t, Validate(req))
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		req := valid
		req.Allocations = []AllocationInput{{BillID: uuid.New(), AmountApplied: dec("-5.00")}}
		assert.Error(t, Validate(req))
	})

	t.Run("rejects more than 2 decimal places", func(t *testing.T) {
		req := valid
		req.Allocations = []AllocationInput{{BillID: uuid.New(), AmountApplied: dec("10.505")}}
		assert.Error(t, Validate(req))
	})

	t.Run("rejects missing customer", func(t *testing.T) {
		req := valid
		req.CustomerID = uuid.Nil
		assert.Error(t, Validate(req))
	})
}

func TestPaymentTotal(t *testing.T) {
	allocs := []AllocationInput{
		{BillID: uuid.New(), AmountApplied: dec("300.00")},
		{BillID: uuid.New(), AmountApplied: dec("50.25")},
		{BillID: uuid.New(), AmountApplied: dec("0.75")},
	}
	assert.True(t, dec("351.00").Equal(PaymentTotal(allocs)))
}

func billRows(bill *models.Bill) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "bill_number", "biller_id", "customer_id", "amount", "due_date", "status",
	}).AddRow(
		bill.ID, bill.BillNumber, bill.BillerID, bill.CustomerID,
		bill.Amount.String(), bill.DueDate, string(bill.Status),
	)
}

func sumRows(total string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"coalesce"}).AddRow(total)
}

func TestAllocateUnknownBillRollsBackEverything(t *testing.T) {
	engine, mock, mockDB := newMockEngine(t)
	defer mockDB.Close()

	missing := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE id =`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectRollback()

	result, err := engine.Allocate(AllocateRequest{
		CustomerID: uuid.New(),
		Method:     models.PaymentMethodBankTransfer,
		Allocations: []AllocationInput{
			{BillID: missing, AmountApplied: dec("50.00")},
		},
	})

	require.Error(t, err)
	var notFound *BillNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, missing, notFound.BillID)
	assert.Nil(t, result)
	// No insert was ever attempted: the mock saw only the lookup and the rollback.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateSecondBillUnknownKeepsFirstUntouched(t *testing.T) {
	engine, mock, mockDB := newMockEngine(t)
	defer mockDB.Close()

	known := &models.Bill{
		ID:         uuid.New(),
		BillNumber: "BILL-7",
		BillerID:   uuid.New(),
		CustomerID: uuid.New(),
		Amount:     dec("1000.00"),
		DueDate:    time.Now().AddDate(0, 0, 10),
		Status:     models.BillStatusPending,
	}
	missing := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE id =`).
		WillReturnRows(billRows(known))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount_applied\), 0\) FROM "payment_allocations"`).
		WillReturnRows(sumRows("0"))
	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE id =`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectRollback()

	_, err := engine.Allocate(AllocateRequest{
		CustomerID: known.CustomerID,
		Method:     models.PaymentMethodCash,
		Allocations: []AllocationInput{
			{BillID: known.ID, AmountApplied: dec("300.00")},
			{BillID: missing, AmountApplied: dec("50.00")},
		},
	})

	var notFound *BillNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, missing, notFound.BillID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateRejectsOverpayment(t *testing.T) {
	engine, mock, mockDB := newMockEngine(t)
	defer mockDB.Close()

	bill := &models.Bill{
		ID:         uuid.New(),
		BillNumber: "BILL-9",
		BillerID:   uuid.New(),
		CustomerID: uuid.New(),
		Amount:     dec("1000.00"),
		DueDate:    time.Now().AddDate(0, 0, 5),
		Status:     models.BillStatusPartiallyPaid,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE id =`).
		WillReturnRows(billRows(bill))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount_applied\), 0\) FROM "payment_allocations"`).
		WillReturnRows(sumRows("800.00"))
	mock.ExpectRollback()

	_, err := engine.Allocate(AllocateRequest{
		CustomerID: bill.CustomerID,
		Method:     models.PaymentMethodCard,
		Allocations: []AllocationInput{
			{BillID: bill.ID, AmountApplied: dec("400.00")},
		},
	})

	var overpay *OverpaymentError
	require.ErrorAs(t, err, &overpay)
	assert.Equal(t, bill.ID, overpay.BillID)
	assert.True(t, dec("1200.00").Equal(overpay.Attempted))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateFullPaymentMarksBillPaid(t *testing.T) {
	engine, mock, mockDB := newMockEngine(t)
	defer mockDB.Close()

	bill := &models.Bill{
		ID:         uuid.New(),
		BillNumber: "BILL-1001",
		BillerID:   uuid.New(),
		CustomerID: uuid.New(),
		Amount:     dec("1000.00"),
		DueDate:    time.Now().AddDate(0, 0, -1), // already past due
		Status:     models.BillStatusPending,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE id =`).
		WillReturnRows(billRows(bill))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount_applied\), 0\) FROM "payment_allocations"`).
		WillReturnRows(sumRows("0"))
	mock.ExpectExec(`INSERT INTO "payments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "payment_allocations"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "bills" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := engine.Allocate(AllocateRequest{
		CustomerID: bill.CustomerID,
		Method:     models.PaymentMethodMobileMoney,
		Allocations: []AllocationInput{
			{BillID: bill.ID, AmountApplied: dec("1000.00")},
		},
	})

	require.NoError(t, err)
	require.Len(t, result.Allocations, 1)
	// Full coverage wins over the past due date.
	assert.Equal(t, models.BillStatusPaid, result.Allocations[0].BillStatus)
	assert.Equal(t, "BILL-1001", result.Allocations[0].BillNumber)
	assert.True(t, dec("1000.00").Equal(result.Payment.Amount))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocatePartialPaymentMarksBillPartiallyPaid(t *testing.T) {
	engine, mock, mockDB := newMockEngine(t)
	defer mockDB.Close()

	bill := &models.Bill{
		ID:         uuid.New(),
		BillNumber: "BILL-1002",
		BillerID:   uuid.New(),
		CustomerID: uuid.New(),
		Amount:     dec("1000.00"),
		DueDate:    time.Now().AddDate(0, 0, 14),
		Status:     models.BillStatusPending,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE id =`).
		WillReturnRows(billRows(bill))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount_applied\), 0\) FROM "payment_allocations"`).
		WillReturnRows(sumRows("0"))
	mock.ExpectExec(`INSERT INTO "payments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "payment_allocations"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "bills" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := engine.Allocate(AllocateRequest{
		CustomerID: bill.CustomerID,
		Method:     models.PaymentMethodCash,
		Allocations: []AllocationInput{
			{BillID: bill.ID, AmountApplied: dec("400.00")},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, models.BillStatusPartiallyPaid, result.Allocations[0].BillStatus)
	assert.True(t, dec("400.00").Equal(result.Payment.Amount))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateSplitsPaymentAcrossBills(t *testing.T) {
	engine, mock, mockDB := newMockEngine(t)
	defer mockDB.Close()

	customerID := uuid.New()
	first := &models.Bill{
		ID:         uuid.New(),
		BillNumber: "BILL-A",
		BillerID:   uuid.New(),
		CustomerID: customerID,
		Amount:     dec("300.00"),
		DueDate:    time.Now().AddDate(0, 0, 7),
		Status:     models.BillStatusPending,
	}
	second := &models.Bill{
		ID:         uuid.New(),
		BillNumber: "BILL-B",
		BillerID:   first.BillerID,
		CustomerID: customerID,
		Amount:     dec("500.00"),
		DueDate:    time.Now().AddDate(0, 0, 7),
		Status:     models.BillStatusPending,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE id =`).
		WillReturnRows(billRows(first))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount_applied\), 0\) FROM "payment_allocations"`).
		WillReturnRows(sumRows("0"))
	mock.ExpectQuery(`SELECT \* FROM "bills" WHERE id =`).
		WillReturnRows(billRows(second))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount_applied\), 0\) FROM "payment_allocations"`).
		WillReturnRows(sumRows("0"))
	mock.ExpectExec(`INSERT INTO "payments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "payment_allocations"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "payment_allocations"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "bills" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "bills" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := engine.Allocate(AllocateRequest{
		CustomerID: customerID,
		Method:     models.PaymentMethodBankTransfer,
		Allocations: []AllocationInput{
			{BillID: first.ID, AmountApplied: dec("300.00")},
			{BillID: second.ID, AmountApplied: dec("200.00")},
		},
	})

	require.NoError(t, err)
	require.Len(t, result.Allocations, 2)
	// The payment total is derived from the allocations, never supplied.
	assert.True(t, dec("500.00").Equal(result.Payment.Amount))
	assert.Equal(t, models.BillStatusPaid, result.Allocations[0].BillStatus)
	assert.Equal(t, models.BillStatusPartiallyPaid, result.Allocations[1].BillStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}
