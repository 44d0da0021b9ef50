package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image"`
}

type Product struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	Slug          string              `json:"slug"`
	Description   string              `json:"description"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice decimal.NullDecimal `json:"discount_price"`
	CategoryID    int64               `json:"category_id"`
	Category      *Category           `json:"category,omitempty"`
	Image         string              `json:"image"`
	Stock         int                 `json:"stock"`
	IsFeatured    bool                `json:"is_featured"`
	Rating        float64             `json:"rating"`
	ReviewCount   int                 `json:"review_count"`
	Reviews       []Review            `json:"reviews,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ProductPatch carries a partial product update. Nil fields are left alone.
// Slug is deliberately absent: a product keeps its first slug forever.
type ProductPatch struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	ClearDiscount bool             `json:"clear_discount"`
	CategoryID    *int64           `json:"category_id"`
	Stock         *int             `json:"stock"`
	IsFeatured    *bool            `json:"is_featured"`
	Image         *string          `json:"-"`
}

func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.DiscountPrice == nil &&
		!p.ClearDiscount && p.CategoryID == nil && p.Stock == nil && p.IsFeatured == nil && p.Image == nil
}

type ProductFilter struct {
	CategorySlug string
	Search       string
	Featured     *bool
	Limit        int
	Offset       int
}

// WithImageFallback points Image at fallback when no image was uploaded.
func (p *Product) WithImageFallback(fallback string) {
	if p.Image == "" {
		p.Image = fallback
	}
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *Category) (*Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	UpdateCategory(ctx context.Context, category *Category) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]Category, error)
	CategorySlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
	GetProductByID(ctx context.Context, id int64) (*Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	ListPurchasedProducts(ctx context.Context, userID int64) ([]Product, error)
	ProductSlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}
