package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bill-management-backend/internal/middleware"
	"bill-management-backend/internal/models"
	"bill-management-backend/internal/repository"
	"bill-management-backend/internal/services/allocation"
)

type PaymentHandler struct {
	engine      *allocation.Engine
	paymentRepo *repository.PaymentRepository
	userRepo    *repository.UserRepository
	auditRepo   *repository.AuditLogRepository
}

func NewPaymentHandler(
	engine *allocation.Engine,
	paymentRepo *repository.PaymentRepository,
	userRepo *repository.UserRepository,
	auditRepo *repository.AuditLogRepository,
) *PaymentHandler {
	return &PaymentHandler{
		engine:      engine,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
	}
}

type allocationEntry struct {
	BillID        string          `json:"bill_id" binding:"required"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
}

// Create records a payment split across one or more bills.
func (h *PaymentHandler) Create(c *gin.Context) {
	var payload struct {
		Allocations     []allocationEntry `json:"allocations" binding:"required"`
		PaymentMethod   string            `json:"payment_method" binding:"required"`
		ReferenceNumber string            `json:"reference_number"`
		Notes           string            `json:"notes"`
		CustomerID      string            `json:"customer_id"` // superuser only
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	customerID := middleware.UserID(c)
	if payload.CustomerID != "" && middleware.Role(c) == models.RoleSuperuser {
		id, err := uuid.Parse(payload.CustomerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer ID"})
			return
		}
		customerID = id
	}

	req := allocation.AllocateRequest{
		CustomerID:      customerID,
		Method:          models.PaymentMethod(payload.PaymentMethod),
		ReferenceNumber: payload.ReferenceNumber,
		Notes:           payload.Notes,
	}
	for _, entry := range payload.Allocations {
		billID, err := uuid.Parse(entry.BillID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bill ID: " + entry.BillID})
			return
		}
		req.Allocations = append(req.Allocations, allocation.AllocationInput{
			BillID:        billID,
			AmountApplied: entry.AmountApplied,
		})
	}

	result, err := h.engine.Allocate(req)
	if err != nil {
		var validationErr *allocation.ValidationError
		var notFoundErr *allocation.BillNotFoundError
		var overpayErr *allocation.OverpaymentError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "field": validationErr.Field})
		case errors.As(err, &notFoundErr):
			c.JSON(http.StatusNotFound, gin.H{"error": "bill not found", "bill_id": notFoundErr.BillID})
		case errors.As(err, &overpayErr):
			c.JSON(http.StatusConflict, gin.H{
				"error":       "allocation exceeds bill amount",
				"bill_id":     overpayErr.BillID,
				"bill_amount": overpayErr.BillAmount,
				"attempted":   overpayErr.Attempted,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	_ = h.auditRepo.Record(middleware.UserID(c), "payment", result.Payment.ID, "create", result)

	c.JSON(http.StatusCreated, gin.H{
		"payment_id":   result.Payment.ID,
		"total_amount": result.Payment.Amount,
		"allocations":  result.Allocations,
	})
}

func (h *PaymentHandler) List(c *gin.Context) {
	cursor := c.Query("cursor")

	var (
		payments   []models.Payment
		nextCursor string
		hasMore    bool
		err        error
	)
	switch middleware.Role(c) {
	case models.RoleSuperuser:
		payments, nextCursor, hasMore, err = h.paymentRepo.ListByCustomer(uuid.Nil, cursor, defaultPageSize)
	case models.RoleBiller:
		var biller *models.Biller
		biller, err = h.userRepo.BillerForUser(middleware.UserID(c))
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "no biller profile for user"})
			return
		}
		payments, nextCursor, hasMore, err = h.paymentRepo.ListByBiller(biller.ID, cursor, defaultPageSize)
	default:
		payments, nextCursor, hasMore, err = h.paymentRepo.ListByCustomer(middleware.UserID(c), cursor, defaultPageSize)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       payments,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
	})
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment ID"})
		return
	}

	payment, err := h.paymentRepo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if middleware.Role(c) == models.RoleCustomer && payment.CustomerID != middleware.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}

	allocs, err := h.paymentRepo.AllocationsForPayment(payment.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment, "allocations": allocs})
}
