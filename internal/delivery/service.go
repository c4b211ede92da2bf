package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/cartreserve-backend/pkg/errors"
)

type catalog interface {
	ListActive(ctx context.Context) ([]models.DeliveryOption, error)
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.DeliveryOption, error)
}

// Service maps catalog lookups onto API errors.
type Service struct {
	repo catalog
}

func NewService(repo catalog) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	return &Service{repo: repo}, nil
}

func (s *Service) ListActive(ctx context.Context) ([]models.DeliveryOption, error) {
	options, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery options")
	}
	return options, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.DeliveryOption, error) {
	option, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery option not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery option")
	}
	return option, nil
}
