package seed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/clients"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Fixtures struct {
	Categories []CategoryFixture `yaml:"categories"`
	Products   []ProductFixture  `yaml:"products"`
	Users      []UserFixture     `yaml:"users"`
}

type CategoryFixture struct {
	Name  string `yaml:"name"`
	Image string `yaml:"image"`
}

type ProductFixture struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Stock       int    `yaml:"stock"`
	Featured    bool   `yaml:"featured"`
	// Image is a path under the images directory or an http(s) URL.
	Image string `yaml:"image"`
}

type UserFixture struct {
	Username  string          `yaml:"username"`
	Email     string          `yaml:"email"`
	Password  string          `yaml:"password"`
	FirstName string          `yaml:"first_name"`
	LastName  string          `yaml:"last_name"`
	Staff     bool            `yaml:"staff"`
	Address   *AddressFixture `yaml:"address"`
	Orders    []OrderFixture  `yaml:"orders"`
	Reviews   []ReviewFixture `yaml:"reviews"`
}

type AddressFixture struct {
	Label      string `yaml:"label"`
	Street     string `yaml:"street"`
	City       string `yaml:"city"`
	PostalCode string `yaml:"postal_code"`
	Country    string `yaml:"country"`
	Phone      string `yaml:"phone"`
}

type OrderFixture struct {
	Items         []OrderItemFixture `yaml:"items"`
	Status        domain.OrderStatus `yaml:"status"`
	PaymentMethod string             `yaml:"payment_method"`
}

type OrderItemFixture struct {
	Product  string `yaml:"product"`
	Quantity int    `yaml:"quantity"`
}

type ReviewFixture struct {
	Product string `yaml:"product"`
	Rating  int    `yaml:"rating"`
	Comment string `yaml:"comment"`
}

// Load decodes fixtures and checks that every cross reference resolves.
func Load(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f Fixtures
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: could not parse fixtures: %v", domain.ErrValidation, err)
	}

	categories := make(map[string]bool, len(f.Categories))
	for _, c := range f.Categories {
		categories[c.Name] = true
	}
	products := make(map[string]bool, len(f.Products))
	for _, p := range f.Products {
		if !categories[p.Category] {
			return nil, fmt.Errorf("%w: product %q references unknown category %q", domain.ErrValidation, p.Name, p.Category)
		}
		if _, err := decimal.NewFromString(p.Price); err != nil {
			return nil, fmt.Errorf("%w: product %q has invalid price %q", domain.ErrValidation, p.Name, p.Price)
		}
		products[p.Name] = true
	}
	for _, u := range f.Users {
		for _, o := range u.Orders {
			if o.Status != "" && !domain.IsValidStatus(o.Status) {
				return nil, fmt.Errorf("%w: order for %q has unknown status %q", domain.ErrValidation, u.Username, o.Status)
			}
			for _, item := range o.Items {
				if !products[item.Product] {
					return nil, fmt.Errorf("%w: order for %q references unknown product %q", domain.ErrValidation, u.Username, item.Product)
				}
			}
		}
		for _, rv := range u.Reviews {
			if !products[rv.Product] {
				return nil, fmt.Errorf("%w: review by %q references unknown product %q", domain.ErrValidation, u.Username, rv.Product)
			}
		}
	}
	return &f, nil
}

func LoadFile(path string) (*Fixtures, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open fixtures: %w", err)
	}
	defer file.Close()
	return Load(file)
}

type Summary struct {
	Categories int
	Products   int
	Images     int
	Users      int
	Orders     int
	Reviews    int
}

// Seeder writes fixtures through the use cases so every business rule
// (slugs, hashing, stock, totals) applies exactly as it does for API calls.
type Seeder struct {
	categories domain.CategoryUseCase
	products   domain.ProductUseCase
	accounts   domain.AccountUseCase
	addresses  domain.AddressUseCase
	orders     domain.OrderUseCase
	reviews    domain.ReviewUseCase
	images     clients.ImageClient
	imageDir   string
	log        *logrus.Logger
}

func NewSeeder(
	categories domain.CategoryUseCase,
	products domain.ProductUseCase,
	accounts domain.AccountUseCase,
	addresses domain.AddressUseCase,
	orders domain.OrderUseCase,
	reviews domain.ReviewUseCase,
	images clients.ImageClient,
	imageDir string,
	logger *logrus.Logger,
) *Seeder {
	return &Seeder{
		categories: categories,
		products:   products,
		accounts:   accounts,
		addresses:  addresses,
		orders:     orders,
		reviews:    reviews,
		images:     images,
		imageDir:   imageDir,
		log:        logger,
	}
}

// statusPath lists the transitions that take a pending order to each status.
var statusPath = map[domain.OrderStatus][]domain.OrderStatus{
	domain.StatusPending:    nil,
	domain.StatusProcessing: {domain.StatusProcessing},
	domain.StatusShipped:    {domain.StatusProcessing, domain.StatusShipped},
	domain.StatusDelivered:  {domain.StatusProcessing, domain.StatusShipped, domain.StatusDelivered},
	domain.StatusCancelled:  {domain.StatusCancelled},
}

func (s *Seeder) Run(ctx context.Context, f *Fixtures) (Summary, error) {
	var sum Summary

	existing, err := s.categories.ListCategories(ctx)
	if err != nil {
		return sum, err
	}
	if len(existing) > 0 {
		return sum, fmt.Errorf("%w: database already holds %d categories, rerun with -reset", domain.ErrConflict, len(existing))
	}

	categoryIDs := make(map[string]int64, len(f.Categories))
	for _, c := range f.Categories {
		created, err := s.categories.CreateCategory(ctx, &domain.Category{Name: c.Name})
		if err != nil {
			return sum, fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		categoryIDs[c.Name] = created.ID
		sum.Categories++
		if c.Image != "" {
			if upload, ok := s.openImage(ctx, c.Image); ok {
				if _, err := s.categories.SetCategoryImage(ctx, created.ID, upload); err != nil {
					s.log.Warnf("Seed: could not store image for category %q: %v", c.Name, err)
				} else {
					sum.Images++
				}
			}
		}
	}

	products := make(map[string]*domain.Product, len(f.Products))
	for _, p := range f.Products {
		price, _ := decimal.NewFromString(p.Price)
		description := p.Description
		if description == "" {
			description = fmt.Sprintf("Authentic %s. Premium build quality. Includes 1 year warranty.", p.Name)
		}
		created, err := s.products.CreateProduct(ctx, &domain.Product{
			Name:        p.Name,
			Description: description,
			Price:       price,
			CategoryID:  categoryIDs[p.Category],
			Stock:       p.Stock,
			IsFeatured:  p.Featured,
		})
		if err != nil {
			return sum, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
		products[p.Name] = created
		sum.Products++
		if p.Image == "" {
			continue
		}
		upload, ok := s.openImage(ctx, p.Image)
		if !ok {
			continue
		}
		if _, err := s.products.SetProductImage(ctx, created.Slug, upload); err != nil {
			s.log.Warnf("Seed: could not store image for product %q: %v", p.Name, err)
			continue
		}
		sum.Images++
	}

	for _, u := range f.Users {
		if err := s.seedUser(ctx, u, products, &sum); err != nil {
			return sum, err
		}
	}

	s.log.Infof("Seed: created %d categories, %d products (%d images), %d users, %d orders, %d reviews",
		sum.Categories, sum.Products, sum.Images, sum.Users, sum.Orders, sum.Reviews)
	return sum, nil
}

func (s *Seeder) seedUser(ctx context.Context, u UserFixture, products map[string]*domain.Product, sum *Summary) error {
	email := u.Email
	if email == "" {
		email = u.Username + "@nova.com"
	}
	user, err := s.accounts.Register(ctx, domain.RegisterInput{
		Username:  u.Username,
		Email:     email,
		Password:  u.Password,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsStaff:   u.Staff,
	})
	if err != nil {
		return fmt.Errorf("seed user %q: %w", u.Username, err)
	}
	sum.Users++

	shipping := ""
	phone := ""
	if a := u.Address; a != nil {
		fullName := strings.TrimSpace(u.FirstName + " " + u.LastName)
		if fullName == "" {
			fullName = u.Username
		}
		created, err := s.addresses.CreateAddress(ctx, user.ID, domain.Address{
			FullName:   fullName,
			Label:      domain.AddressLabel(a.Label),
			Street:     a.Street,
			City:       a.City,
			PostalCode: a.PostalCode,
			Country:    a.Country,
			Phone:      a.Phone,
			IsDefault:  true,
		})
		if err != nil {
			return fmt.Errorf("seed address for %q: %w", u.Username, err)
		}
		shipping = created.Street + ", " + created.City
		phone = created.Phone
	}

	for i, o := range u.Orders {
		lines := make([]domain.OrderLine, 0, len(o.Items))
		for _, item := range o.Items {
			qty := item.Quantity
			if qty == 0 {
				qty = 1
			}
			lines = append(lines, domain.OrderLine{ProductID: products[item.Product].ID, Quantity: qty})
		}
		method := domain.PaymentMethod(o.PaymentMethod)
		if method == "" {
			method = domain.PaymentMpesa
		}
		order, _, err := s.orders.PlaceOrder(ctx, domain.PlaceOrderInput{
			UserID:          user.ID,
			Items:           lines,
			ShippingAddress: shipping,
			PhoneNumber:     phone,
			PaymentMethod:   method,
			IdempotencyKey:  fmt.Sprintf("seed-%s-%d", u.Username, i),
		})
		if err != nil {
			return fmt.Errorf("seed order %d for %q: %w", i, u.Username, err)
		}
		for _, next := range statusPath[o.Status] {
			if _, err := s.orders.UpdateOrderStatus(ctx, order.ID, next); err != nil {
				return fmt.Errorf("seed order %d for %q to %s: %w", order.ID, u.Username, next, err)
			}
		}
		sum.Orders++
	}

	for _, rv := range u.Reviews {
		rating := rv.Rating
		if _, err := s.reviews.SubmitReview(ctx, user.ID, products[rv.Product].ID, &rating, rv.Comment); err != nil {
			return fmt.Errorf("seed review by %q: %w", u.Username, err)
		}
		sum.Reviews++
	}
	return nil
}

// openImage resolves a fixture image. Missing or unreadable images are
// logged and skipped so a partial media directory still seeds.
func (s *Seeder) openImage(ctx context.Context, ref string) (domain.Upload, bool) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		upload, err := s.images.Fetch(ctx, ref)
		if err != nil {
			s.log.Warnf("Seed: skipping remote image %s: %v", ref, err)
			return domain.Upload{}, false
		}
		return upload, true
	}

	data, err := os.ReadFile(filepath.Join(s.imageDir, filepath.Clean(ref)))
	if err != nil {
		s.log.Warnf("Seed: image file missing: %s (skipping)", ref)
		return domain.Upload{}, false
	}
	return domain.Upload{
		Filename:    filepath.Base(ref),
		ContentType: http.DetectContentType(data),
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	}, true
}
