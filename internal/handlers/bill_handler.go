package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bill-management-backend/internal/middleware"
	"bill-management-backend/internal/models"
	"bill-management-backend/internal/repository"
)

type BillHandler struct {
	billRepo  *repository.BillRepository
	userRepo  *repository.UserRepository
	auditRepo *repository.AuditLogRepository
}

func NewBillHandler(billRepo *repository.BillRepository, userRepo *repository.UserRepository, auditRepo *repository.AuditLogRepository) *BillHandler {
	return &BillHandler{billRepo: billRepo, userRepo: userRepo, auditRepo: auditRepo}
}

const defaultPageSize = 50

// scopeFilter narrows a bill filter to what the caller may see: billers see
// their own bills, customers their own, superusers everything.
func (h *BillHandler) scopeFilter(c *gin.Context, filter *repository.BillFilter) error {
	switch middleware.Role(c) {
	case models.RoleSuperuser:
		return nil
	case models.RoleBiller:
		biller, err := h.userRepo.BillerForUser(middleware.UserID(c))
		if err != nil {
			return err
		}
		filter.BillerID = biller.ID
		return nil
	default:
		filter.CustomerID = middleware.UserID(c)
		return nil
	}
}

func (h *BillHandler) List(c *gin.Context) {
	filter := repository.BillFilter{
		Status:     models.BillStatus(c.Query("status")),
		BillNumber: c.Query("bill_number"),
	}
	if err := h.scopeFilter(c, &filter); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no biller profile for user"})
		return
	}

	bills, nextCursor, hasMore, err := h.billRepo.List(filter, c.Query("cursor"), defaultPageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       bills,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
	})
}

func (h *BillHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bill ID"})
		return
	}

	bill, err := h.billRepo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "bill not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !h.mayAccess(c, bill) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bill": bill})
}

func (h *BillHandler) mayAccess(c *gin.Context, bill *models.Bill) bool {
	switch middleware.Role(c) {
	case models.RoleSuperuser:
		return true
	case models.RoleBiller:
		biller, err := h.userRepo.BillerForUser(middleware.UserID(c))
		return err == nil && biller.ID == bill.BillerID
	default:
		return bill.CustomerID == middleware.UserID(c)
	}
}

func (h *BillHandler) Create(c *gin.Context) {
	var payload struct {
		BillNumber  string          `json:"bill_number"`
		CustomerID  string          `json:"customer_id" binding:"required"`
		Amount      decimal.Decimal `json:"amount"`
		DueDate     string          `json:"due_date" binding:"required"`
		Description string          `json:"description"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if !payload.Amount.IsPositive() || !payload.Amount.Equal(payload.Amount.Round(2)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive value with at most 2 decimal places"})
		return
	}

	customerID, err := uuid.Parse(payload.CustomerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer ID"})
		return
	}
	dueDate, err := time.Parse("2006-01-02", payload.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due date format, expected yyyy-mm-dd"})
		return
	}

	biller, err := h.userRepo.BillerForUser(middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no biller profile for user"})
		return
	}

	billNumber := payload.BillNumber
	if billNumber == "" {
		billNumber = uuid.New().String()
	}

	now := time.Now()
	bill := &models.Bill{
		ID:          uuid.New(),
		BillNumber:  billNumber,
		BillerID:    biller.ID,
		CustomerID:  customerID,
		Amount:      payload.Amount,
		DueDate:     dueDate,
		Status:      models.DeriveBillStatus(payload.Amount, decimal.Zero, dueDate, now),
		Description: payload.Description,
	}
	if err := h.billRepo.Create(bill); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not create bill: " + err.Error()})
		return
	}

	// audit failure is not fatal to the request
	_ = h.auditRepo.Record(middleware.UserID(c), "bill", bill.ID, "create", bill)

	c.JSON(http.StatusCreated, gin.H{"message": "bill created", "bill": bill})
}

func (h *BillHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bill ID"})
		return
	}

	var payload struct {
		Description *string `json:"description"`
		DueDate     *string `json:"due_date"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	bill, err := h.billRepo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "bill not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !h.mayAccess(c, bill) || middleware.Role(c) == models.RoleCustomer {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}

	changes := map[string]interface{}{}
	if payload.Description != nil {
		bill.Description = *payload.Description
		changes["description"] = *payload.Description
	}
	if payload.DueDate != nil {
		dueDate, err := time.Parse("2006-01-02", *payload.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due date format, expected yyyy-mm-dd"})
			return
		}
		bill.DueDate = dueDate
		changes["due_date"] = *payload.DueDate
	}
	if len(changes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	if err := h.billRepo.Update(bill); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	_ = h.auditRepo.Record(middleware.UserID(c), "bill", bill.ID, "update", changes)

	c.JSON(http.StatusOK, gin.H{"message": "bill updated", "bill": bill})
}
