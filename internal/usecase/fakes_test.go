package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// memStore is an in-memory implementation of every repository interface.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	clock      time.Time
	categories map[int64]domain.Category
	products   map[int64]domain.Product
	users      map[int64]domain.User
	addresses  map[int64]domain.Address
	orders     map[int64]domain.Order
	reviews    map[int64]domain.Review
	saved      map[int64]domain.SavedItem

	// beforeTransition runs under mu when a status change starts, standing in
	// for a concurrent writer that got the row lock first.
	beforeTransition func(orderID int64)
}

func newMemStore() *memStore {
	return &memStore{
		clock:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		categories: map[int64]domain.Category{},
		products:   map[int64]domain.Product{},
		users:      map[int64]domain.User{},
		addresses:  map[int64]domain.Address{},
		orders:     map[int64]domain.Order{},
		reviews:    map[int64]domain.Review{},
		saved:      map[int64]domain.SavedItem{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func page(n, limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset > n {
		offset = n
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}

// --- categories ---

func (s *memStore) CreateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Slug == c.Slug {
			return nil, fmt.Errorf("%w: duplicate slug", domain.ErrConflict)
		}
	}
	c.ID = s.id()
	s.categories[c.ID] = *c
	out := *c
	return &out, nil
}

func (s *memStore) GetCategoryByID(_ context.Context, id int64) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, fmt.Errorf("%w: category %d", domain.ErrNotFound, id)
	}
	return &c, nil
}

func (s *memStore) GetCategoryBySlug(_ context.Context, slug string) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Slug == slug {
			out := c
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: category %s", domain.ErrNotFound, slug)
}

func (s *memStore) UpdateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.categories[c.ID]
	if !ok {
		return nil, fmt.Errorf("%w: category %d", domain.ErrNotFound, c.ID)
	}
	existing.Name = c.Name
	existing.Image = c.Image
	s.categories[c.ID] = existing
	return &existing, nil
}

func (s *memStore) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("%w: category %d", domain.ErrNotFound, id)
	}
	delete(s.categories, id)
	for pid, p := range s.products {
		if p.CategoryID == id {
			delete(s.products, pid)
		}
	}
	return nil
}

func (s *memStore) ListCategories(context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Category{}
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) CategorySlugExists(_ context.Context, slug string, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Slug == slug && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// --- products ---

func (s *memStore) decorate(p domain.Product) domain.Product {
	var sum, count int64
	for _, r := range s.reviews {
		if r.ProductID == p.ID {
			sum += int64(r.Rating)
			count++
		}
	}
	p.Rating = domain.AverageRating(sum, count)
	p.ReviewCount = int(count)
	if c, ok := s.categories[p.CategoryID]; ok {
		p.Category = &c
	}
	return p
}

func (s *memStore) CreateProduct(_ context.Context, p *domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[p.CategoryID]; !ok {
		return nil, fmt.Errorf("%w: category %d", domain.ErrValidation, p.CategoryID)
	}
	for _, existing := range s.products {
		if existing.Slug == p.Slug {
			return nil, fmt.Errorf("%w: duplicate slug", domain.ErrConflict)
		}
	}
	p.ID = s.id()
	p.CreatedAt = s.tick()
	p.UpdatedAt = p.CreatedAt
	s.products[p.ID] = *p
	out := s.decorate(*p)
	return &out, nil
}

func (s *memStore) GetProductByID(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
	}
	out := s.decorate(p)
	return &out, nil
}

func (s *memStore) GetProductBySlug(_ context.Context, slug string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Slug == slug {
			out := s.decorate(p)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, slug)
}

func (s *memStore) UpdateProduct(_ context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.ClearDiscount {
		p.DiscountPrice = decimal.NullDecimal{}
	} else if patch.DiscountPrice != nil {
		p.DiscountPrice = decimal.NewNullDecimal(*patch.DiscountPrice)
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.IsFeatured != nil {
		p.IsFeatured = *patch.IsFeatured
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	p.UpdatedAt = s.tick()
	s.products[id] = p
	out := s.decorate(p)
	return &out, nil
}

func (s *memStore) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
	}
	delete(s.products, id)
	return nil
}

func (s *memStore) ListProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Product{}
	for _, p := range s.products {
		if filter.CategorySlug != "" && s.categories[p.CategoryID].Slug != filter.CategorySlug {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Description), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Featured != nil && p.IsFeatured != *filter.Featured {
			continue
		}
		out = append(out, s.decorate(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	from, to := page(len(out), filter.Limit, filter.Offset)
	return out[from:to], nil
}

func (s *memStore) ListPurchasedProducts(_ context.Context, userID int64) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[int64]bool{}
	out := []domain.Product{}
	for _, o := range s.orders {
		if o.UserID != userID {
			continue
		}
		for _, item := range o.Items {
			if p, ok := s.products[item.ProductID]; ok && !seen[p.ID] {
				seen[p.ID] = true
				out = append(out, s.decorate(p))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) ProductSlugExists(_ context.Context, slug string, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// --- users ---

func (s *memStore) CreateUserWithProfile(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, fmt.Errorf("%w: duplicate user", domain.ErrConflict)
		}
	}
	u.ID = s.id()
	u.DateJoined = s.tick()
	s.users[u.ID] = *u
	out := *u
	return &out, nil
}

func (s *memStore) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, username)
}

func (s *memStore) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", domain.ErrNotFound, id)
	}
	return &u, nil
}

func (s *memStore) UpdateProfile(_ context.Context, userID int64, patch domain.ProfilePatch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", domain.ErrNotFound, userID)
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Bio != nil {
		u.Profile.Bio = *patch.Bio
	}
	if patch.Location != nil {
		u.Profile.Location = *patch.Location
	}
	if patch.Avatar != nil {
		u.Profile.Avatar = *patch.Avatar
	}
	s.users[userID] = u
	return &u, nil
}

func (s *memStore) ListCustomers(_ context.Context, limit, offset int) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.User{}
	for _, u := range s.users {
		if u.IsStaff {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	from, to := page(len(out), limit, offset)
	return out[from:to], nil
}

// --- addresses ---

func (s *memStore) SaveAddress(_ context.Context, a *domain.Address) (*domain.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID != 0 {
		existing, ok := s.addresses[a.ID]
		if !ok || existing.UserID != a.UserID {
			return nil, fmt.Errorf("%w: address %d", domain.ErrNotFound, a.ID)
		}
		a.CreatedAt = existing.CreatedAt
	} else {
		a.ID = s.id()
		a.CreatedAt = s.tick()
	}
	if a.IsDefault {
		s.clearDefaults(a.UserID, a.ID)
	}
	s.addresses[a.ID] = *a
	out := *a
	return &out, nil
}

func (s *memStore) clearDefaults(userID, keepID int64) {
	for id, other := range s.addresses {
		if other.UserID == userID && id != keepID && other.IsDefault {
			other.IsDefault = false
			s.addresses[id] = other
		}
	}
}

func (s *memStore) GetAddress(_ context.Context, userID, id int64) (*domain.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addresses[id]
	if !ok || a.UserID != userID {
		return nil, fmt.Errorf("%w: address %d", domain.ErrNotFound, id)
	}
	return &a, nil
}

func (s *memStore) ListAddresses(_ context.Context, userID int64) ([]domain.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Address{}
	for _, a := range s.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memStore) DeleteAddress(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addresses[id]
	if !ok || a.UserID != userID {
		return fmt.Errorf("%w: address %d", domain.ErrNotFound, id)
	}
	delete(s.addresses, id)
	return nil
}

func (s *memStore) SetDefaultAddress(_ context.Context, userID, id int64) (*domain.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addresses[id]
	if !ok || a.UserID != userID {
		return nil, fmt.Errorf("%w: address %d", domain.ErrNotFound, id)
	}
	s.clearDefaults(userID, id)
	a.IsDefault = true
	s.addresses[id] = a
	return &a, nil
}

// --- orders ---

func copyOrder(o domain.Order) *domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return &o
}

func (s *memStore) PlaceOrder(_ context.Context, order *domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.IdempotencyKey != "" {
		for _, o := range s.orders {
			if o.UserID == order.UserID && o.IdempotencyKey == order.IdempotencyKey {
				return nil, fmt.Errorf("%w: duplicate idempotency key", domain.ErrConflict)
			}
		}
	}
	for productID, qty := range domain.RequestedQuantities(order.Items) {
		p, ok := s.products[productID]
		if !ok {
			return nil, fmt.Errorf("%w: product %d does not exist", domain.ErrValidation, productID)
		}
		if p.Stock < qty {
			return nil, fmt.Errorf("%w: product %d", domain.ErrInsufficientStock, productID)
		}
	}
	for productID, qty := range domain.RequestedQuantities(order.Items) {
		p := s.products[productID]
		p.Stock -= qty
		s.products[productID] = p
	}
	order.ID = s.id()
	for i := range order.Items {
		p := s.products[order.Items[i].ProductID]
		order.Items[i].ID = s.id()
		order.Items[i].OrderID = order.ID
		order.Items[i].Price = p.Price
		order.Items[i].ProductName = p.Name
		order.Items[i].ProductImage = p.Image
	}
	order.TotalAmount = domain.CalculateTotal(order.Items)
	order.CreatedAt = s.tick()
	order.UpdatedAt = order.CreatedAt
	s.orders[order.ID] = *copyOrder(*order)
	return copyOrder(*order), nil
}

func (s *memStore) GetOrderByID(_ context.Context, id int64) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, id)
	}
	return copyOrder(o), nil
}

func (s *memStore) GetOrderByIdempotencyKey(_ context.Context, userID int64, key string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.UserID == userID && o.IdempotencyKey == key {
			return copyOrder(o), nil
		}
	}
	return nil, fmt.Errorf("%w: no order with key %q", domain.ErrNotFound, key)
}

func (s *memStore) ListOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Order{}
	for _, o := range s.orders {
		if filter.UserID > 0 && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, *copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	from, to := page(len(out), filter.Limit, filter.Offset)
	return out[from:to], nil
}

func (s *memStore) TransitionOrderStatus(_ context.Context, id int64, from, to domain.OrderStatus) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.beforeTransition != nil {
		s.beforeTransition(id)
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, id)
	}
	if from != "" && o.Status != from {
		return nil, fmt.Errorf("%w: order %d is %s, not %s", domain.ErrInvalidTransition, id, o.Status, from)
	}
	if !o.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, o.Status, to)
	}
	if to == domain.StatusCancelled {
		for _, item := range o.Items {
			p := s.products[item.ProductID]
			p.Stock += item.Quantity
			s.products[item.ProductID] = p
		}
	}
	o.Status = to
	o.UpdatedAt = s.tick()
	s.orders[id] = o
	return copyOrder(o), nil
}

// --- reviews ---

func (s *memStore) UpsertReview(_ context.Context, r *domain.Review) (*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[r.ProductID]; !ok {
		return nil, fmt.Errorf("%w: product %d does not exist", domain.ErrValidation, r.ProductID)
	}
	for id, existing := range s.reviews {
		if existing.ProductID == r.ProductID && existing.UserID == r.UserID {
			existing.Rating = r.Rating
			existing.Comment = r.Comment
			s.reviews[id] = existing
			return &existing, nil
		}
	}
	r.ID = s.id()
	r.CreatedAt = s.tick()
	r.UserName = s.users[r.UserID].Username
	s.reviews[r.ID] = *r
	out := *r
	return &out, nil
}

func (s *memStore) GetReviewByID(_ context.Context, id int64) (*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, fmt.Errorf("%w: review %d", domain.ErrNotFound, id)
	}
	return &r, nil
}

func (s *memStore) UpdateReview(_ context.Context, r *domain.Review) (*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[r.ID]; !ok {
		return nil, fmt.Errorf("%w: review %d", domain.ErrNotFound, r.ID)
	}
	s.reviews[r.ID] = *r
	out := *r
	return &out, nil
}

func (s *memStore) DeleteReview(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[id]; !ok {
		return fmt.Errorf("%w: review %d", domain.ErrNotFound, id)
	}
	delete(s.reviews, id)
	return nil
}

func (s *memStore) ListReviews(_ context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Review{}
	for _, r := range s.reviews {
		if filter.ProductID > 0 && r.ProductID != filter.ProductID {
			continue
		}
		if filter.UserID > 0 && r.UserID != filter.UserID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	from, to := page(len(out), filter.Limit, filter.Offset)
	return out[from:to], nil
}

// --- saved items ---

func (s *memStore) AddSavedItem(_ context.Context, userID, productID int64) (*domain.SavedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: product %d does not exist", domain.ErrValidation, productID)
	}
	for _, item := range s.saved {
		if item.UserID == userID && item.ProductID == productID {
			item.Product = &p
			return &item, nil
		}
	}
	item := domain.SavedItem{ID: s.id(), UserID: userID, ProductID: productID, CreatedAt: s.tick()}
	s.saved[item.ID] = item
	item.Product = &p
	return &item, nil
}

func (s *memStore) ListSavedItems(_ context.Context, userID int64) ([]domain.SavedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.SavedItem{}
	for _, item := range s.saved {
		if item.UserID == userID {
			p := s.products[item.ProductID]
			item.Product = &p
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *memStore) DeleteSavedItem(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.saved[id]
	if !ok || item.UserID != userID {
		return fmt.Errorf("%w: saved item %d", domain.ErrNotFound, id)
	}
	delete(s.saved, id)
	return nil
}

// --- analytics ---

func (s *memStore) Totals(_ context.Context, lowStockThreshold int) (*domain.Analytics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &domain.Analytics{TotalRevenue: decimal.Zero}
	for _, o := range s.orders {
		a.TotalOrders++
		if o.Status != domain.StatusCancelled {
			a.TotalRevenue = a.TotalRevenue.Add(o.TotalAmount)
		}
	}
	for _, u := range s.users {
		if !u.IsStaff {
			a.TotalCustomers++
		}
	}
	for _, p := range s.products {
		a.TotalProducts++
		if p.Stock <= lowStockThreshold {
			a.LowStockProducts++
		}
	}
	return a, nil
}

// fakeMedia records saved and deleted URLs.
type fakeMedia struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
	fail    error
}

func (m *fakeMedia) Save(_ context.Context, folder string, upload domain.Upload) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", m.fail
	}
	url := fmt.Sprintf("https://media.test/%s/%d-%s", folder, len(m.saved)+1, upload.Filename)
	m.saved = append(m.saved, url)
	return url, nil
}

func (m *fakeMedia) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, url)
	return nil
}

// seedProduct inserts a category (if needed) and a product directly into the store.
func (s *memStore) seedProduct(name string, price int64, stock int) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	var categoryID int64
	for id := range s.categories {
		categoryID = id
		break
	}
	if categoryID == 0 {
		categoryID = s.id()
		s.categories[categoryID] = domain.Category{ID: categoryID, Name: "Audio", Slug: "audio"}
	}
	p := domain.Product{
		ID:         s.id(),
		Name:       name,
		Slug:       strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		Price:      decimal.NewFromInt(price),
		CategoryID: categoryID,
		Stock:      stock,
		CreatedAt:  s.tick(),
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) seedUser(username string, staff bool) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := domain.User{ID: s.id(), Username: username, Email: username + "@example.com", IsStaff: staff, DateJoined: s.tick()}
	s.users[u.ID] = u
	return u
}

func (s *memStore) stockOf(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}
