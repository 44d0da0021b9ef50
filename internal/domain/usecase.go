package domain

import (
	"context"
	"io"
)

// Principal is the authenticated caller as seen by use cases.
type Principal struct {
	UserID  int64
	IsStaff bool
}

// CanAccess reports whether the caller may act on a resource owned by ownerID.
func (p Principal) CanAccess(ownerID int64) bool {
	return p.IsStaff || p.UserID == ownerID
}

// Upload is a file received from a client, not yet stored.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MediaStore persists uploaded files and returns the public URL to store on
// the owning record.
type MediaStore interface {
	Save(ctx context.Context, folder string, upload Upload) (string, error)
	Delete(ctx context.Context, url string) error
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"-"`
}

type PlaceOrderInput struct {
	UserID          int64
	Items           []OrderLine
	ShippingAddress string
	PhoneNumber     string
	PaymentMethod   PaymentMethod
	IdempotencyKey  string
}

type OrderLine struct {
	ProductID int64 `json:"product"`
	Quantity  int   `json:"quantity"`
}

type CategoryUseCase interface {
	CreateCategory(ctx context.Context, category *Category) (*Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]Category, error)
	SetCategoryImage(ctx context.Context, id int64, upload Upload) (*Category, error)
}

type ProductUseCase interface {
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
	GetProduct(ctx context.Context, slug string) (*Product, error)
	UpdateProduct(ctx context.Context, slug string, patch ProductPatch) (*Product, error)
	DeleteProduct(ctx context.Context, slug string) error
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	ListPurchasedProducts(ctx context.Context, userID int64) ([]Product, error)
	SetProductImage(ctx context.Context, slug string, upload Upload) (*Product, error)
}

type AccountUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, username, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetProfile(ctx context.Context, userID int64) (*User, error)
	UpdateProfile(ctx context.Context, userID int64, patch ProfilePatch) (*User, error)
	SetAvatar(ctx context.Context, userID int64, upload Upload) (*User, error)
	ListCustomers(ctx context.Context, limit, offset int) ([]User, error)
}

type AddressUseCase interface {
	ListAddresses(ctx context.Context, userID int64) ([]Address, error)
	GetAddress(ctx context.Context, userID, id int64) (*Address, error)
	CreateAddress(ctx context.Context, userID int64, address Address) (*Address, error)
	UpdateAddress(ctx context.Context, userID, id int64, patch AddressPatch) (*Address, error)
	DeleteAddress(ctx context.Context, userID, id int64) error
	SetDefaultAddress(ctx context.Context, userID, id int64) (*Address, error)
}

type OrderUseCase interface {
	// PlaceOrder returns created=false when an idempotency key replays an
	// order that was already placed.
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (order *Order, created bool, err error)
	GetOrder(ctx context.Context, caller Principal, id int64) (*Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)
	ListAllOrders(ctx context.Context, status OrderStatus) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus) (*Order, error)
	CancelOrder(ctx context.Context, caller Principal, id int64) (*Order, error)
}

type ReviewUseCase interface {
	ListReviews(ctx context.Context, filter ReviewFilter) ([]Review, error)
	SubmitReview(ctx context.Context, userID, productID int64, rating *int, comment string) (*Review, error)
	UpdateReview(ctx context.Context, caller Principal, id int64, rating *int, comment *string) (*Review, error)
	DeleteReview(ctx context.Context, caller Principal, id int64) error
}

type SavedItemUseCase interface {
	ListSavedItems(ctx context.Context, userID int64) ([]SavedItem, error)
	SaveItem(ctx context.Context, userID, productID int64) (*SavedItem, error)
	RemoveSavedItem(ctx context.Context, userID, id int64) error
}

type AnalyticsUseCase interface {
	GetAnalytics(ctx context.Context) (*Analytics, error)
}
