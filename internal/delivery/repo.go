package delivery

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/cartreserve-backend/internal/repo"
	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
)

// Repository reads the delivery option catalog.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, option *models.DeliveryOption) error {
	return r.DB(ctx).Create(option).Error
}

// ListActive returns the options offered at checkout in display order.
func (r *Repository) ListActive(ctx context.Context) ([]models.DeliveryOption, error) {
	var options []models.DeliveryOption
	err := r.DB(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC").
		Order("name ASC").
		Find(&options).Error
	if err != nil {
		return nil, err
	}
	return options, nil
}

// FindActiveByID returns gorm.ErrRecordNotFound for unknown or retired options.
func (r *Repository) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.DeliveryOption, error) {
	var option models.DeliveryOption
	err := r.DB(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&option).Error
	if err != nil {
		return nil, err
	}
	return &option, nil
}
