package repository

import (
	"context"
	"errors"

	"archives/internal/models"
	"archives/internal/observability"

	"gorm.io/gorm"
)

// VIPRepository stores the guest list.
type VIPRepository interface {
	// List returns every entry, newest first.
	List(ctx context.Context) ([]models.VIPEntry, error)
	GetByID(ctx context.Context, id uint) (*models.VIPEntry, error)
	Create(ctx context.Context, entry *models.VIPEntry) error
	Update(ctx context.Context, id uint, fields map[string]any) (*models.VIPEntry, error)
	Delete(ctx context.Context, id uint) error
}

type vipRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewVIPRepository creates a new guest list repository.
func NewVIPRepository(db *gorm.DB) VIPRepository {
	return &vipRepository{db: db, log: observability.NewRepoLogger("vips")}
}

func (r *vipRepository) List(ctx context.Context) ([]models.VIPEntry, error) {
	var entries []models.VIPEntry
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *vipRepository) GetByID(ctx context.Context, id uint) (*models.VIPEntry, error) {
	var entry models.VIPEntry
	err := r.db.WithContext(ctx).First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("VIP entry", id)
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *vipRepository) Create(ctx context.Context, entry *models.VIPEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogCreate(ctx, map[string]any{"vip_id": entry.ID})
	return nil
}

func (r *vipRepository) Update(ctx context.Context, id uint, fields map[string]any) (*models.VIPEntry, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&models.VIPEntry{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			r.log.LogError(ctx, res.Error, "update")
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, models.NewNotFoundError("VIP entry", id)
		}
		r.log.LogUpdate(ctx, map[string]any{"vip_id": id})
	}
	return r.GetByID(ctx, id)
}

func (r *vipRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.VIPEntry{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("VIP entry", id)
	}
	r.log.LogDelete(ctx, map[string]any{"vip_id": id})
	return nil
}
