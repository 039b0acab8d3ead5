package repository

import (
	"context"
	"errors"
	"strings"

	"archives/internal/models"

	"gorm.io/gorm"
)

// AdminRepository stores authoring accounts.
type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	GetByID(ctx context.Context, id uint) (*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) error
	List(ctx context.Context) ([]models.Admin, error)
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository creates a new admin repository.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Admin", email)
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) GetByID(ctx context.Context, id uint) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).First(&admin, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Admin", id)
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *adminRepository) List(ctx context.Context) ([]models.Admin, error) {
	var admins []models.Admin
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}
