package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bill-management-backend/internal/middleware"
	"bill-management-backend/internal/repository"
	"bill-management-backend/internal/services/reports"
)

type ReportHandler struct {
	reports  *reports.Service
	userRepo *repository.UserRepository
}

func NewReportHandler(service *reports.Service, userRepo *repository.UserRepository) *ReportHandler {
	return &ReportHandler{reports: service, userRepo: userRepo}
}

// billerID resolves the caller's biller profile, writing the error response
// itself when there is none.
func (h *ReportHandler) billerID(c *gin.Context) (uuid.UUID, bool) {
	biller, err := h.userRepo.BillerForUser(middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "user is not a biller"})
		return uuid.Nil, false
	}
	return biller.ID, true
}

func (h *ReportHandler) TotalSpending(c *gin.Context) {
	total, err := h.reports.TotalSpending(middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_spent": total})
}

func (h *ReportHandler) SpendingByBiller(c *gin.Context) {
	rows, err := h.reports.SpendingByBiller(middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ReportHandler) MonthlySpending(c *gin.Context) {
	rows, err := h.reports.MonthlySpending(middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ReportHandler) Outstanding(c *gin.Context) {
	out, err := h.reports.Outstanding(middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ReportHandler) TotalRevenue(c *gin.Context) {
	billerID, ok := h.billerID(c)
	if !ok {
		return
	}
	total, err := h.reports.TotalRevenue(billerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_revenue": total})
}

func (h *ReportHandler) RevenueByCustomer(c *gin.Context) {
	billerID, ok := h.billerID(c)
	if !ok {
		return
	}
	rows, err := h.reports.RevenueByCustomer(billerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ReportHandler) MonthlyRevenue(c *gin.Context) {
	billerID, ok := h.billerID(c)
	if !ok {
		return
	}
	rows, err := h.reports.MonthlyRevenue(billerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ReportHandler) OutstandingBills(c *gin.Context) {
	billerID, ok := h.billerID(c)
	if !ok {
		return
	}
	out, err := h.reports.OutstandingBills(billerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ReportHandler) CustomerStatistics(c *gin.Context) {
	billerID, ok := h.billerID(c)
	if !ok {
		return
	}
	stats, err := h.reports.CustomerStatistics(billerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ReportHandler) PaymentMethodBreakdown(c *gin.Context) {
	billerID, ok := h.billerID(c)
	if !ok {
		return
	}
	rows, err := h.reports.PaymentMethodBreakdown(billerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}
