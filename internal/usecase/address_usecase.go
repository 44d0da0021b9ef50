package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/sirupsen/logrus"
)

var _ domain.AddressUseCase = (*addressUseCase)(nil)

type addressUseCase struct {
	addressRepo domain.AddressRepository
	log         *logrus.Logger
}

func NewAddressUseCase(repo domain.AddressRepository, logger *logrus.Logger) domain.AddressUseCase {
	return &addressUseCase{
		addressRepo: repo,
		log:         logger,
	}
}

func validateAddress(a *domain.Address) error {
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	if a.Label == "" {
		a.Label = domain.LabelHome
	}
	if a.Street == "" {
		return fmt.Errorf("%w: street is required", domain.ErrValidation)
	}
	if a.City == "" {
		return fmt.Errorf("%w: city is required", domain.ErrValidation)
	}
	if !a.Label.IsValid() {
		return fmt.Errorf("%w: label must be one of home, work, other", domain.ErrValidation)
	}
	if len(a.Phone) > 20 {
		return fmt.Errorf("%w: phone is limited to 20 characters", domain.ErrValidation)
	}
	return nil
}

func (uc *addressUseCase) ListAddresses(ctx context.Context, userID int64) ([]domain.Address, error) {
	return uc.addressRepo.ListAddresses(ctx, userID)
}

func (uc *addressUseCase) GetAddress(ctx context.Context, userID, id int64) (*domain.Address, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid address ID", domain.ErrValidation)
	}
	return uc.addressRepo.GetAddress(ctx, userID, id)
}

func (uc *addressUseCase) CreateAddress(ctx context.Context, userID int64, address domain.Address) (*domain.Address, error) {
	address.ID = 0
	address.UserID = userID
	if err := validateAddress(&address); err != nil {
		uc.log.Warnf("Use Case: Rejected address for user %d: %v", userID, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Creating address for user %d (default: %t)", userID, address.IsDefault)
	return uc.addressRepo.SaveAddress(ctx, &address)
}

func (uc *addressUseCase) UpdateAddress(ctx context.Context, userID, id int64, patch domain.AddressPatch) (*domain.Address, error) {
	address, err := uc.GetAddress(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(address)
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	uc.log.Infof("Use Case: Updating address %d of user %d", id, userID)
	return uc.addressRepo.SaveAddress(ctx, address)
}

func (uc *addressUseCase) DeleteAddress(ctx context.Context, userID, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid address ID", domain.ErrValidation)
	}
	return uc.addressRepo.DeleteAddress(ctx, userID, id)
}

func (uc *addressUseCase) SetDefaultAddress(ctx context.Context, userID, id int64) (*domain.Address, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid address ID", domain.ErrValidation)
	}
	uc.log.Infof("Use Case: Making address %d the default of user %d", id, userID)
	return uc.addressRepo.SetDefaultAddress(ctx, userID, id)
}
