package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bill-management-backend/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// BillerForUser resolves the biller profile owned by a user.
func (r *UserRepository) BillerForUser(userID uuid.UUID) (*models.Biller, error) {
	var biller models.Biller
	if err := r.db.First(&biller, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &biller, nil
}
