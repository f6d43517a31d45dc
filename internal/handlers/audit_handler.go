package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bill-management-backend/internal/repository"
)

type AuditLogHandler struct {
	auditRepo *repository.AuditLogRepository
}

func NewAuditLogHandler(auditRepo *repository.AuditLogRepository) *AuditLogHandler {
	return &AuditLogHandler{auditRepo: auditRepo}
}

func (h *AuditLogHandler) List(c *gin.Context) {
	entries, nextCursor, hasMore, err := h.auditRepo.List(c.Query("entity_type"), c.Query("cursor"), defaultPageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       entries,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
	})
}
