package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions is the complete status graph. Statuses without an entry
// are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

func IsValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentMpesa PaymentMethod = "mpesa"
	PaymentCard  PaymentMethod = "card"
	PaymentCOD   PaymentMethod = "cod"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMpesa, PaymentCard, PaymentCOD:
		return true
	default:
		return false
	}
}

type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user"`
	Status          OrderStatus     `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress string          `json:"shipping_address"`
	PhoneNumber     string          `json:"phone_number"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	IdempotencyKey  string          `json:"-"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem.Price is the product price captured when the order was placed.
type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"-"`
	ProductID    int64           `json:"product"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CalculateTotal sums price × quantity over items without rounding.
func CalculateTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// RequestedQuantities folds duplicate product lines into one quantity per product.
func RequestedQuantities(items []OrderItem) map[int64]int {
	quantities := make(map[int64]int, len(items))
	for _, item := range items {
		quantities[item.ProductID] += item.Quantity
	}
	return quantities
}

type OrderFilter struct {
	UserID int64
	Status OrderStatus
	Limit  int
	Offset int
}

type OrderRepository interface {
	// PlaceOrder locks the referenced products, snapshots their prices,
	// decrements stock and writes the header and items in one transaction.
	PlaceOrder(ctx context.Context, order *Order) (*Order, error)
	GetOrderByID(ctx context.Context, id int64) (*Order, error)
	// GetOrderByIdempotencyKey finds the order a user placed with key, or
	// ErrNotFound.
	GetOrderByIdempotencyKey(ctx context.Context, userID int64, key string) (*Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)
	// TransitionOrderStatus moves an order along the status graph and puts
	// stock back when the order is cancelled. A non-empty from must match the
	// status read under the row lock, otherwise ErrInvalidTransition.
	TransitionOrderStatus(ctx context.Context, id int64, from, to OrderStatus) (*Order, error)
}
