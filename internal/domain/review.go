package domain

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 5
)

type Review struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product"`
	UserID    int64     `json:"-"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type ReviewFilter struct {
	ProductID int64
	UserID    int64
	Limit     int
	Offset    int
}

// AverageRating is the mean of count ratings summing to sum, rounded to one
// decimal place. Rounding applies to the float64 mean, so a mean that is
// exactly halfway goes to the even digit (17/4 = 4.25 gives 4.2) and 87/20,
// stored as 4.3499..., gives 4.3. No reviews yields 0.
func AverageRating(sum, count int64) float64 {
	if count <= 0 {
		return 0
	}
	mean := float64(sum) / float64(count)
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(mean, 'f', 1, 64), 64)
	if err != nil {
		return mean
	}
	return rounded
}

type ReviewRepository interface {
	// UpsertReview keeps one review per (user, product): a second submission
	// replaces the rating and comment of the first.
	UpsertReview(ctx context.Context, review *Review) (*Review, error)
	GetReviewByID(ctx context.Context, id int64) (*Review, error)
	UpdateReview(ctx context.Context, review *Review) (*Review, error)
	DeleteReview(ctx context.Context, id int64) error
	ListReviews(ctx context.Context, filter ReviewFilter) ([]Review, error)
}

type SavedItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	ProductID int64     `json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SavedItemRepository interface {
	AddSavedItem(ctx context.Context, userID, productID int64) (*SavedItem, error)
	ListSavedItems(ctx context.Context, userID int64) ([]SavedItem, error)
	DeleteSavedItem(ctx context.Context, userID, id int64) error
}

type Analytics struct {
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalOrders      int             `json:"total_orders"`
	TotalCustomers   int             `json:"total_customers"`
	TotalProducts    int             `json:"total_products"`
	LowStockProducts int             `json:"low_stock_products"`
	RecentOrders     []Order         `json:"recent_orders"`
}

type AnalyticsRepository interface {
	// Totals fills every Analytics field except RecentOrders.
	Totals(ctx context.Context, lowStockThreshold int) (*Analytics, error)
}
