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

type BillerHandler struct {
	db       *gorm.DB
	userRepo *repository.UserRepository
}

func NewBillerHandler(db *gorm.DB, userRepo *repository.UserRepository) *BillerHandler {
	return &BillerHandler{db: db, userRepo: userRepo}
}

func (h *BillerHandler) List(c *gin.Context) {
	var billers []models.Biller
	query := h.db.Order("id ASC")
	if name := c.Query("company_name"); name != "" {
		query = query.Where("company_name = ?", name)
	}
	if err := query.Find(&billers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": billers})
}

func (h *BillerHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid biller ID"})
		return
	}
	var biller models.Biller
	if err := h.db.First(&biller, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "biller not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"biller": biller})
}

func (h *BillerHandler) Create(c *gin.Context) {
	var payload struct {
		Name        string `json:"name" binding:"required"`
		CompanyName string `json:"company_name"`
		Address     string `json:"address"`
		PhoneNumber string `json:"phone_number"`
		Email       string `json:"email"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	biller := &models.Biller{
		ID:          uuid.New(),
		UserID:      middleware.UserID(c),
		Name:        payload.Name,
		CompanyName: payload.CompanyName,
		Address:     payload.Address,
		PhoneNumber: payload.PhoneNumber,
		Email:       payload.Email,
	}
	if err := h.db.Create(biller).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not create biller: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "biller created", "biller": biller})
}

func (h *BillerHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid biller ID"})
		return
	}

	var biller models.Biller
	if err := h.db.First(&biller, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "biller not found"})
		return
	}
	if middleware.Role(c) != models.RoleSuperuser && biller.UserID != middleware.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}

	var payload struct {
		Name        *string `json:"name"`
		CompanyName *string `json:"company_name"`
		Address     *string `json:"address"`
		PhoneNumber *string `json:"phone_number"`
		Email       *string `json:"email"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if payload.Name != nil {
		biller.Name = *payload.Name
	}
	if payload.CompanyName != nil {
		biller.CompanyName = *payload.CompanyName
	}
	if payload.Address != nil {
		biller.Address = *payload.Address
	}
	if payload.PhoneNumber != nil {
		biller.PhoneNumber = *payload.PhoneNumber
	}
	if payload.Email != nil {
		biller.Email = *payload.Email
	}

	if err := h.db.Save(&biller).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "biller updated", "biller": biller})
}

// Customer-biller links

func (h *BillerHandler) ListLinks(c *gin.Context) {
	query := h.db.Order("id ASC")
	switch middleware.Role(c) {
	case models.RoleSuperuser:
	case models.RoleBiller:
		biller, err := h.userRepo.BillerForUser(middleware.UserID(c))
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "no biller profile for user"})
			return
		}
		query = query.Where("biller_id = ?", biller.ID)
	default:
		query = query.Where("user_id = ?", middleware.UserID(c))
	}

	var links []models.CustomerBiller
	if err := query.Find(&links).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": links})
}

func (h *BillerHandler) GetLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid link ID"})
		return
	}
	var link models.CustomerBiller
	if err := h.db.First(&link, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer_biller": link})
}

func (h *BillerHandler) CreateLink(c *gin.Context) {
	var payload struct {
		BillerID    string `json:"biller_id" binding:"required"`
		Address     string `json:"address"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	billerID, err := uuid.Parse(payload.BillerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid biller ID"})
		return
	}

	link := &models.CustomerBiller{
		ID:          uuid.New(),
		UserID:      middleware.UserID(c),
		BillerID:    billerID,
		Address:     payload.Address,
		PhoneNumber: payload.PhoneNumber,
	}
	if err := h.db.Create(link).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not create link: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "customer linked to biller", "customer_biller": link})
}
