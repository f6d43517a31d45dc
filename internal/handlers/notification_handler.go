package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bill-management-backend/internal/middleware"
	"bill-management-backend/internal/models"
	"bill-management-backend/internal/repository"
)

type NotificationHandler struct {
	notificationRepo *repository.NotificationRepository
	userRepo         *repository.UserRepository
}

func NewNotificationHandler(notificationRepo *repository.NotificationRepository, userRepo *repository.UserRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo, userRepo: userRepo}
}

func (h *NotificationHandler) List(c *gin.Context) {
	filter := repository.NotificationFilter{
		Type: models.NotificationType(c.Query("type")),
	}
	switch middleware.Role(c) {
	case models.RoleSuperuser:
	case models.RoleBiller:
		biller, err := h.userRepo.BillerForUser(middleware.UserID(c))
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "no biller profile for user"})
			return
		}
		filter.BillerID = biller.ID
	default:
		filter.CustomerID = middleware.UserID(c)
	}

	items, nextCursor, hasMore, err := h.notificationRepo.List(filter, c.Query("cursor"), defaultPageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
	})
}

func (h *NotificationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification ID"})
		return
	}

	n, err := h.notificationRepo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if middleware.Role(c) == models.RoleCustomer && n.CustomerID != middleware.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification": n})
}
