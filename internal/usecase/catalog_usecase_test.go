package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const placeholder = "https://media.test/placeholder.png"

type catalogFixture struct {
	store      *memStore
	media      *fakeMedia
	categories domain.CategoryUseCase
	products   domain.ProductUseCase
	reviews    domain.ReviewUseCase
}

func newCatalogFixture() *catalogFixture {
	store := newMemStore()
	media := &fakeMedia{}
	log := quietLogger()
	return &catalogFixture{
		store:      store,
		media:      media,
		categories: NewCategoryUseCase(store, media, log),
		products:   NewProductUseCase(store, store, store, media, placeholder, log),
		reviews:    NewReviewUseCase(store, log),
	}
}

func (f *catalogFixture) category(t *testing.T, name string) *domain.Category {
	t.Helper()
	c, err := f.categories.CreateCategory(context.Background(), &domain.Category{Name: name})
	require.NoError(t, err)
	return c
}

func (f *catalogFixture) product(t *testing.T, categoryID int64, name string, price int64) *domain.Product {
	t.Helper()
	p, err := f.products.CreateProduct(context.Background(), &domain.Product{
		Name:       name,
		Price:      decimal.NewFromInt(price),
		CategoryID: categoryID,
		Stock:      25,
	})
	require.NoError(t, err)
	return p
}

func pngUpload(name string) domain.Upload {
	return domain.Upload{Filename: name, ContentType: "image/png", Size: 4, Body: strings.NewReader("\x89PNG")}
}

func TestCreateCategoryDerivesUniqueSlug(t *testing.T) {
	f := newCatalogFixture()

	first := f.category(t, "Smart Home")
	second := f.category(t, "Smart  Home!")

	assert.Equal(t, "smart-home", first.Slug)
	assert.Equal(t, "smart-home-2", second.Slug)
}

func TestCreateCategoryRequiresName(t *testing.T) {
	f := newCatalogFixture()

	_, err := f.categories.CreateCategory(context.Background(), &domain.Category{Name: "  "})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateCategoryKeepsSlug(t *testing.T) {
	f := newCatalogFixture()
	c := f.category(t, "Audio")

	updated, err := f.categories.UpdateCategory(context.Background(), c.ID, "Audio & Sound")

	require.NoError(t, err)
	assert.Equal(t, "Audio & Sound", updated.Name)
	assert.Equal(t, "audio", updated.Slug)
}

func TestDeleteCategoryRemovesProducts(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	c := f.category(t, "Audio")
	p := f.product(t, c.ID, "Sony WH-1000XM5", 45000)

	require.NoError(t, f.categories.DeleteCategory(ctx, c.ID))

	_, err := f.products.GetProduct(ctx, p.Slug)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.categories.DeleteCategory(ctx, c.ID), domain.ErrNotFound)
}

func TestSetCategoryImageReplacesPrevious(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	c := f.category(t, "Audio")

	first, err := f.categories.SetCategoryImage(ctx, c.ID, pngUpload("a.png"))
	require.NoError(t, err)
	second, err := f.categories.SetCategoryImage(ctx, c.ID, pngUpload("b.png"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Image, second.Image)
	assert.Contains(t, second.Image, "/categories/")
	assert.Equal(t, []string{first.Image}, f.media.deleted)
}

func TestSetImageRejectsUnsupportedType(t *testing.T) {
	f := newCatalogFixture()
	c := f.category(t, "Audio")
	p := f.product(t, c.ID, "Speaker", 1200)
	upload := domain.Upload{Filename: "notes.txt", ContentType: "text/plain", Body: strings.NewReader("hi")}

	_, err := f.categories.SetCategoryImage(context.Background(), c.ID, upload)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.products.SetProductImage(context.Background(), p.Slug, upload)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.media.saved)
}

func TestCreateProductSlug(t *testing.T) {
	f := newCatalogFixture()
	c := f.category(t, "Audio")

	p := f.product(t, c.ID, "Sony WH-1000XM5", 45000)
	dup := f.product(t, c.ID, "Sony WH 1000XM5", 44000)

	assert.Equal(t, "sony-wh-1000xm5", p.Slug)
	assert.Equal(t, "sony-wh-1000xm5-2", dup.Slug)
	assert.Equal(t, placeholder, p.Image)
}

func TestCreateProductValidation(t *testing.T) {
	f := newCatalogFixture()
	c := f.category(t, "Audio")
	tests := []struct {
		name    string
		product domain.Product
	}{
		{"empty name", domain.Product{Name: " ", Price: decimal.NewFromInt(1), CategoryID: c.ID}},
		{"negative price", domain.Product{Name: "Cable", Price: decimal.NewFromInt(-1), CategoryID: c.ID}},
		{"negative stock", domain.Product{Name: "Cable", Price: decimal.NewFromInt(1), CategoryID: c.ID, Stock: -2}},
		{"no category", domain.Product{Name: "Cable", Price: decimal.NewFromInt(1)}},
		{"unknown category", domain.Product{Name: "Cable", Price: decimal.NewFromInt(1), CategoryID: 9999}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := tt.product
			_, err := f.products.CreateProduct(context.Background(), &product)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestUpdateProductKeepsSlug(t *testing.T) {
	f := newCatalogFixture()
	c := f.category(t, "Audio")
	p := f.product(t, c.ID, "Sony WH-1000XM5", 45000)
	name := "Sony WH-1000XM5 Wireless"
	price := decimal.NewFromInt(42000)

	updated, err := f.products.UpdateProduct(context.Background(), p.Slug, domain.ProductPatch{Name: &name, Price: &price})

	require.NoError(t, err)
	assert.Equal(t, "sony-wh-1000xm5", updated.Slug)
	assert.Equal(t, name, updated.Name)
	assert.True(t, updated.Price.Equal(price))

	negative := -1
	_, err = f.products.UpdateProduct(context.Background(), p.Slug, domain.ProductPatch{Stock: &negative})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetProductAggregatesReviews(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	c := f.category(t, "Audio")
	p := f.product(t, c.ID, "Speaker", 1200)
	alice := f.store.seedUser("alice", false)
	bob := f.store.seedUser("bob", false)
	four, five := 4, 5

	_, err := f.reviews.SubmitReview(ctx, alice.ID, p.ID, &four, "good")
	require.NoError(t, err)
	_, err = f.reviews.SubmitReview(ctx, bob.ID, p.ID, &five, "great")
	require.NoError(t, err)

	got, err := f.products.GetProduct(ctx, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, 4.5, got.Rating)
	assert.Equal(t, 2, got.ReviewCount)
	assert.Len(t, got.Reviews, 2)
}

func TestSetProductImage(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	c := f.category(t, "Audio")
	p := f.product(t, c.ID, "Speaker", 1200)

	updated, err := f.products.SetProductImage(ctx, p.Slug, pngUpload("speaker.png"))
	require.NoError(t, err)
	assert.Contains(t, updated.Image, "/products/")
	assert.Empty(t, f.media.deleted)

	f.media.fail = errors.New("bucket unavailable")
	_, err = f.products.SetProductImage(ctx, p.Slug, pngUpload("again.png"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteProductDropsImage(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	c := f.category(t, "Audio")
	p := f.product(t, c.ID, "Speaker", 1200)
	withImage, err := f.products.SetProductImage(ctx, p.Slug, pngUpload("speaker.png"))
	require.NoError(t, err)

	require.NoError(t, f.products.DeleteProduct(ctx, p.Slug))

	assert.Equal(t, []string{withImage.Image}, f.media.deleted)
	assert.ErrorIs(t, f.products.DeleteProduct(ctx, p.Slug), domain.ErrNotFound)
}

func TestListProductsFilters(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	audio := f.category(t, "Audio")
	phones := f.category(t, "Phones")
	f.product(t, audio.ID, "Sony WH-1000XM5", 45000)
	f.product(t, audio.ID, "JBL Flip 6", 15000)
	f.product(t, phones.ID, "Samsung Galaxy A54", 52000)

	byCategory, err := f.products.ListProducts(ctx, domain.ProductFilter{CategorySlug: "audio"})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	bySearch, err := f.products.ListProducts(ctx, domain.ProductFilter{Search: "galaxy"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "samsung-galaxy-a54", bySearch[0].Slug)
	assert.Equal(t, placeholder, bySearch[0].Image)
}

func TestListPurchasedProducts(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	c := f.category(t, "Audio")
	p := f.product(t, c.ID, "Speaker", 1200)
	f.product(t, c.ID, "Mug", 500)
	buyer := f.store.seedUser("buyer", false)
	orders := NewOrderUseCase(f.store, nil, quietLogger())
	_, _, err := orders.PlaceOrder(ctx, domain.PlaceOrderInput{
		UserID:          buyer.ID,
		Items:           []domain.OrderLine{{ProductID: p.ID, Quantity: 1}, {ProductID: p.ID, Quantity: 1}},
		ShippingAddress: "Moi Avenue, Nairobi",
	})
	require.NoError(t, err)

	purchased, err := f.products.ListPurchasedProducts(ctx, buyer.ID)

	require.NoError(t, err)
	require.Len(t, purchased, 1)
	assert.Equal(t, p.ID, purchased[0].ID)
}

func TestSubmitReviewDefaultsAndRange(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	c := f.category(t, "Audio")
	p := f.product(t, c.ID, "Speaker", 1200)
	user := f.store.seedUser("reviewer", false)

	review, err := f.reviews.SubmitReview(ctx, user.ID, p.ID, nil, "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRating, review.Rating)

	for _, bad := range []int{0, 6, -3} {
		rating := bad
		_, err := f.reviews.SubmitReview(ctx, user.ID, p.ID, &rating, "")
		assert.ErrorIs(t, err, domain.ErrValidation, "rating %d", bad)
	}

	_, err = f.reviews.SubmitReview(ctx, user.ID, 0, nil, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSubmitReviewTwiceReplaces(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	c := f.category(t, "Audio")
	p := f.product(t, c.ID, "Speaker", 1200)
	user := f.store.seedUser("reviewer", false)
	two := 2

	first, err := f.reviews.SubmitReview(ctx, user.ID, p.ID, nil, "love it")
	require.NoError(t, err)
	second, err := f.reviews.SubmitReview(ctx, user.ID, p.ID, &two, "broke after a week")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	all, err := f.reviews.ListReviews(ctx, domain.ReviewFilter{ProductID: p.ID})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 2, all[0].Rating)
}

func TestReviewOwnership(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	c := f.category(t, "Audio")
	p := f.product(t, c.ID, "Speaker", 1200)
	author := f.store.seedUser("author", false)
	stranger := f.store.seedUser("stranger", false)
	review, err := f.reviews.SubmitReview(ctx, author.ID, p.ID, nil, "")
	require.NoError(t, err)
	comment := "edited"

	_, err = f.reviews.UpdateReview(ctx, domain.Principal{UserID: stranger.ID}, review.ID, nil, &comment)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	err = f.reviews.DeleteReview(ctx, domain.Principal{UserID: stranger.ID}, review.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := f.reviews.UpdateReview(ctx, domain.Principal{UserID: author.ID}, review.ID, nil, &comment)
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Comment)

	require.NoError(t, f.reviews.DeleteReview(ctx, domain.Principal{UserID: stranger.ID, IsStaff: true}, review.ID))
	_, err = f.reviews.UpdateReview(ctx, domain.Principal{UserID: author.ID}, review.ID, nil, &comment)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSavedItems(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	c := f.category(t, "Audio")
	p := f.product(t, c.ID, "Speaker", 1200)
	user := f.store.seedUser("saver", false)
	saved := NewSavedItemUseCase(f.store, placeholder, quietLogger())

	first, err := saved.SaveItem(ctx, user.ID, p.ID)
	require.NoError(t, err)
	again, err := saved.SaveItem(ctx, user.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, placeholder, again.Product.Image)

	items, err := saved.ListSavedItems(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	assert.ErrorIs(t, saved.RemoveSavedItem(ctx, user.ID+1, first.ID), domain.ErrNotFound)
	require.NoError(t, saved.RemoveSavedItem(ctx, user.ID, first.ID))
	_, err = saved.SaveItem(ctx, user.ID, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetAnalytics(t *testing.T) {
	store := newMemStore()
	store.seedUser("admin", true)
	customer := store.seedUser("customer", false)
	store.seedUser("another", false)
	mug := store.seedProduct("Mug", 100, 50)
	store.seedProduct("Cable", 10, 2)
	orders := NewOrderUseCase(store, nil, quietLogger())
	ctx := context.Background()

	var last *domain.Order
	for _, qty := range []int{1, 2, 3} {
		order, _, err := orders.PlaceOrder(ctx, domain.PlaceOrderInput{
			UserID:          customer.ID,
			Items:           []domain.OrderLine{{ProductID: mug.ID, Quantity: qty}},
			ShippingAddress: "Moi Avenue, Nairobi",
		})
		require.NoError(t, err)
		last = order
	}
	_, err := orders.CancelOrder(ctx, domain.Principal{UserID: customer.ID}, last.ID)
	require.NoError(t, err)

	analytics, err := NewAnalyticsUseCase(store, store, 5, quietLogger()).GetAnalytics(ctx)

	require.NoError(t, err)
	assert.True(t, analytics.TotalRevenue.Equal(decimal.NewFromInt(300)), "got %s", analytics.TotalRevenue)
	assert.Equal(t, 3, analytics.TotalOrders)
	assert.Equal(t, 2, analytics.TotalCustomers)
	assert.Equal(t, 2, analytics.TotalProducts)
	assert.Equal(t, 1, analytics.LowStockProducts)
	require.Len(t, analytics.RecentOrders, 3)
	assert.Equal(t, last.ID, analytics.RecentOrders[0].ID)
}

func TestGetAnalyticsSumsOrderTotals(t *testing.T) {
	store := newMemStore()
	customer := store.seedUser("customer", false)
	mug := store.seedProduct("Mug", 100, 50)
	orders := NewOrderUseCase(store, nil, quietLogger())
	ctx := context.Background()

	for _, qty := range []int{1, 2, 3} {
		_, _, err := orders.PlaceOrder(ctx, domain.PlaceOrderInput{
			UserID:          customer.ID,
			Items:           []domain.OrderLine{{ProductID: mug.ID, Quantity: qty}},
			ShippingAddress: "Moi Avenue, Nairobi",
		})
		require.NoError(t, err)
	}

	analytics, err := NewAnalyticsUseCase(store, store, 5, quietLogger()).GetAnalytics(ctx)

	require.NoError(t, err)
	assert.True(t, analytics.TotalRevenue.Equal(decimal.NewFromInt(600)), "got %s", analytics.TotalRevenue)
	assert.Equal(t, 3, analytics.TotalOrders)
}
