package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/idempotency"

	"github.com/sirupsen/logrus"
)

var _ domain.OrderUseCase = (*orderUseCase)(nil)

const (
	exportPageSize = 100
	maxIdemKeyLen  = 255
)

type orderUseCase struct {
	orderRepo domain.OrderRepository
	keys      idempotency.Store
	log       *logrus.Logger
}

func NewOrderUseCase(repo domain.OrderRepository, keys idempotency.Store, logger *logrus.Logger) domain.OrderUseCase {
	return &orderUseCase{
		orderRepo: repo,
		keys:      keys,
		log:       logger,
	}
}

func validateOrderInput(input *domain.PlaceOrderInput) error {
	if input.UserID <= 0 {
		return fmt.Errorf("%w: invalid user ID", domain.ErrValidation)
	}
	if len(input.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", domain.ErrValidation)
	}
	for i, item := range input.Items {
		if item.ProductID <= 0 {
			return fmt.Errorf("%w: item %d: invalid product ID", domain.ErrValidation, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d (product %d): quantity must be positive", domain.ErrValidation, i, item.ProductID)
		}
	}
	input.ShippingAddress = strings.TrimSpace(input.ShippingAddress)
	if input.ShippingAddress == "" {
		return fmt.Errorf("%w: shipping address is required", domain.ErrValidation)
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = domain.PaymentMpesa
	}
	if !input.PaymentMethod.IsValid() {
		return fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, input.PaymentMethod)
	}
	if len(input.PhoneNumber) > 20 {
		return fmt.Errorf("%w: phone number is limited to 20 characters", domain.ErrValidation)
	}
	if len(input.IdempotencyKey) > maxIdemKeyLen {
		return fmt.Errorf("%w: idempotency key is limited to %d characters", domain.ErrValidation, maxIdemKeyLen)
	}
	return nil
}

func (uc *orderUseCase) PlaceOrder(ctx context.Context, input domain.PlaceOrderInput) (*domain.Order, bool, error) {
	if err := validateOrderInput(&input); err != nil {
		uc.log.Warnf("Use Case: Rejected order for user %d: %v", input.UserID, err)
		return nil, false, err
	}
	uc.log.Infof("Use Case: Validated order data for user %d (%d lines)", input.UserID, len(input.Items))

	var key string
	if input.IdempotencyKey != "" {
		key = idempotency.Key(input.UserID, input.IdempotencyKey)
		state, orderID, err := uc.keys.Begin(ctx, key)
		if err != nil {
			uc.log.Errorf("Use Case: Idempotency store failed for user %d: %v", input.UserID, err)
			return nil, false, err
		}
		switch state {
		case idempotency.InFlight:
			uc.log.Warnf("Use Case: Order with idempotency key %q for user %d is still being placed", input.IdempotencyKey, input.UserID)
			return nil, false, fmt.Errorf("%w: an order with this idempotency key is already in progress", domain.ErrConflict)
		case idempotency.Completed:
			uc.log.Infof("Use Case: Replaying order %d for idempotency key %q", orderID, input.IdempotencyKey)
			order, err := uc.orderRepo.GetOrderByID(ctx, orderID)
			if err != nil {
				return nil, false, err
			}
			return order, false, nil
		}

		// The key store forgets keys on restart and after the TTL; the orders
		// table does not.
		if existing, err := uc.storedOrder(ctx, key, input); existing != nil || err != nil {
			return existing, false, err
		}
	}

	order := &domain.Order{
		UserID:          input.UserID,
		Status:          domain.StatusPending,
		ShippingAddress: input.ShippingAddress,
		PhoneNumber:     input.PhoneNumber,
		PaymentMethod:   input.PaymentMethod,
		IdempotencyKey:  input.IdempotencyKey,
		Items:           make([]domain.OrderItem, 0, len(input.Items)),
	}
	for _, line := range input.Items {
		order.Items = append(order.Items, domain.OrderItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	created, err := uc.orderRepo.PlaceOrder(ctx, order)
	if err != nil && key != "" && errors.Is(err, domain.ErrConflict) {
		// another instance inserted the same key first
		existing, lookupErr := uc.storedOrder(ctx, key, input)
		if existing != nil {
			return existing, false, nil
		}
		if lookupErr != nil {
			uc.log.Errorf("Use Case: Failed to look up order for idempotency key %q: %v", input.IdempotencyKey, lookupErr)
		}
	}
	if err != nil {
		uc.log.Warnf("Use Case: Order placement failed for user %d: %v", input.UserID, err)
		if key != "" {
			if relErr := uc.keys.Release(ctx, key); relErr != nil {
				uc.log.Errorf("Use Case: Failed to release idempotency key %q: %v", input.IdempotencyKey, relErr)
			}
		}
		return nil, false, err
	}

	if key != "" {
		if err := uc.keys.Complete(ctx, key, created.ID); err != nil {
			// The order exists; the unique (user, key) constraint still blocks a duplicate.
			uc.log.Errorf("Use Case: Failed to record idempotency key %q for order %d: %v", input.IdempotencyKey, created.ID, err)
		}
	}

	uc.log.Infof("Use Case: Order created successfully with ID %d for user %d, total %s", created.ID, created.UserID, created.TotalAmount.StringFixed(2))
	return created, true, nil
}

// storedOrder returns the order already persisted under the caller's key and
// marks the key completed, or nil when there is none. On error the key is
// released.
func (uc *orderUseCase) storedOrder(ctx context.Context, key string, input domain.PlaceOrderInput) (*domain.Order, error) {
	existing, err := uc.orderRepo.GetOrderByIdempotencyKey(ctx, input.UserID, input.IdempotencyKey)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		if relErr := uc.keys.Release(ctx, key); relErr != nil {
			uc.log.Errorf("Use Case: Failed to release idempotency key %q: %v", input.IdempotencyKey, relErr)
		}
		return nil, err
	}
	if err := uc.keys.Complete(ctx, key, existing.ID); err != nil {
		uc.log.Errorf("Use Case: Failed to record idempotency key %q for order %d: %v", input.IdempotencyKey, existing.ID, err)
	}
	uc.log.Infof("Use Case: Replaying stored order %d for idempotency key %q", existing.ID, input.IdempotencyKey)
	return existing, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, caller domain.Principal, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid order ID", domain.ErrValidation)
	}
	order, err := uc.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(order.UserID) {
		uc.log.Warnf("Use Case: User %d attempted to read order %d of user %d", caller.UserID, id, order.UserID)
		return nil, fmt.Errorf("%w: order %d belongs to another user", domain.ErrForbidden, id)
	}
	return order, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.Status != "" && !domain.IsValidStatus(filter.Status) {
		return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrValidation, filter.Status)
	}
	return uc.orderRepo.ListOrders(ctx, filter)
}

// ListAllOrders pages through every order matching status, newest first.
func (uc *orderUseCase) ListAllOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	all := []domain.Order{}
	for offset := 0; ; offset += exportPageSize {
		page, err := uc.ListOrders(ctx, domain.OrderFilter{Status: status, Limit: exportPageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < exportPageSize {
			return all, nil
		}
	}
}

func (uc *orderUseCase) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid order ID for status update", domain.ErrValidation)
	}
	if !domain.IsValidStatus(status) {
		return nil, fmt.Errorf("%w: invalid target order status: %s", domain.ErrValidation, status)
	}
	uc.log.Infof("Use Case: Attempting to update status for order ID %d to '%s'", id, status)
	return uc.orderRepo.TransitionOrderStatus(ctx, id, "", status)
}

// CancelOrder lets an owner withdraw an order that nobody has started processing.
func (uc *orderUseCase) CancelOrder(ctx context.Context, caller domain.Principal, id int64) (*domain.Order, error) {
	order, err := uc.GetOrder(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	var from domain.OrderStatus
	if !caller.IsStaff {
		if order.Status != domain.StatusPending {
			return nil, fmt.Errorf("%w: only pending orders can be cancelled, order %d is %s", domain.ErrInvalidTransition, id, order.Status)
		}
		from = domain.StatusPending
	}
	cancelled, err := uc.orderRepo.TransitionOrderStatus(ctx, id, from, domain.StatusCancelled)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			uc.log.Warnf("Use Case: Order %d changed status before it could be cancelled", id)
		}
		return nil, err
	}
	uc.log.Infof("Use Case: Order %d cancelled by user %d", id, caller.UserID)
	return cancelled, nil
}
