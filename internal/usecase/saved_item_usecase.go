package usecase

import (
	"context"
	"fmt"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/sirupsen/logrus"
)

var _ domain.SavedItemUseCase = (*savedItemUseCase)(nil)

type savedItemUseCase struct {
	savedRepo   domain.SavedItemRepository
	placeholder string
	log         *logrus.Logger
}

func NewSavedItemUseCase(repo domain.SavedItemRepository, placeholderImage string, logger *logrus.Logger) domain.SavedItemUseCase {
	return &savedItemUseCase{
		savedRepo:   repo,
		placeholder: placeholderImage,
		log:         logger,
	}
}

func (uc *savedItemUseCase) ListSavedItems(ctx context.Context, userID int64) ([]domain.SavedItem, error) {
	items, err := uc.savedRepo.ListSavedItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Product != nil {
			items[i].Product.WithImageFallback(uc.placeholder)
		}
	}
	return items, nil
}

func (uc *savedItemUseCase) SaveItem(ctx context.Context, userID, productID int64) (*domain.SavedItem, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: product is required", domain.ErrValidation)
	}
	item, err := uc.savedRepo.AddSavedItem(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if item.Product != nil {
		item.Product.WithImageFallback(uc.placeholder)
	}
	uc.log.Infof("Use Case: User %d saved product %d", userID, productID)
	return item, nil
}

func (uc *savedItemUseCase) RemoveSavedItem(ctx context.Context, userID, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid saved item ID", domain.ErrValidation)
	}
	return uc.savedRepo.DeleteSavedItem(ctx, userID, id)
}
