package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/media"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/slug"

	"github.com/sirupsen/logrus"
)

var _ domain.ProductUseCase = (*productUseCase)(nil)

type productUseCase struct {
	productRepo  domain.ProductRepository
	categoryRepo domain.CategoryRepository
	reviewRepo   domain.ReviewRepository
	media        domain.MediaStore
	placeholder  string
	log          *logrus.Logger
}

func NewProductUseCase(
	pRepo domain.ProductRepository,
	cRepo domain.CategoryRepository,
	rRepo domain.ReviewRepository,
	store domain.MediaStore,
	placeholderImage string,
	logger *logrus.Logger,
) domain.ProductUseCase {
	return &productUseCase{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		reviewRepo:   rRepo,
		media:        store,
		placeholder:  placeholderImage,
		log:          logger,
	}
}

func validateProduct(product *domain.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("%w: product name cannot be empty", domain.ErrValidation)
	}
	if product.Price.IsNegative() {
		return fmt.Errorf("%w: product price cannot be negative", domain.ErrValidation)
	}
	if product.DiscountPrice.Valid && product.DiscountPrice.Decimal.IsNegative() {
		return fmt.Errorf("%w: discount price cannot be negative", domain.ErrValidation)
	}
	if product.Stock < 0 {
		return fmt.Errorf("%w: product stock cannot be negative", domain.ErrValidation)
	}
	if product.CategoryID <= 0 {
		return fmt.Errorf("%w: category is required", domain.ErrValidation)
	}
	return nil
}

func (uc *productUseCase) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if err := validateProduct(product); err != nil {
		uc.log.Warnf("Use Case: Rejected product '%s': %v", product.Name, err)
		return nil, err
	}
	if _, err := uc.categoryRepo.GetCategoryByID(ctx, product.CategoryID); err != nil {
		uc.log.Warnf("Use Case: Category ID %d not found during product creation: %v", product.CategoryID, err)
		return nil, fmt.Errorf("%w: category with id %d does not exist", domain.ErrValidation, product.CategoryID)
	}

	base := slug.Make(product.Slug)
	if base == "" {
		base = slug.Make(product.Name)
	}
	unique, err := slug.Unique(ctx, base, func(ctx context.Context, s string) (bool, error) {
		return uc.productRepo.ProductSlugExists(ctx, s, 0)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	product.Slug = unique

	uc.log.Infof("Use Case: Attempting to create product '%s' (slug %s)", product.Name, product.Slug)
	created, err := uc.productRepo.CreateProduct(ctx, product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", product.Name, err)
		return nil, err
	}
	created.WithImageFallback(uc.placeholder)
	uc.log.Infof("Use Case: Product '%s' created successfully with ID %d", created.Name, created.ID)
	return created, nil
}

// GetProduct returns the product with its reviews attached.
func (uc *productUseCase) GetProduct(ctx context.Context, productSlug string) (*domain.Product, error) {
	product, err := uc.productRepo.GetProductBySlug(ctx, productSlug)
	if err != nil {
		return nil, err
	}
	reviews, err := uc.reviewRepo.ListReviews(ctx, domain.ReviewFilter{ProductID: product.ID, Limit: 100})
	if err != nil {
		uc.log.Errorf("Use Case: Failed to load reviews for product %d: %v", product.ID, err)
		return nil, err
	}
	product.Reviews = reviews
	product.WithImageFallback(uc.placeholder)
	return product, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, productSlug string, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: product name cannot be empty", domain.ErrValidation)
		}
		patch.Name = &trimmed
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, fmt.Errorf("%w: product price cannot be negative", domain.ErrValidation)
	}
	if patch.DiscountPrice != nil && patch.DiscountPrice.IsNegative() {
		return nil, fmt.Errorf("%w: discount price cannot be negative", domain.ErrValidation)
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return nil, fmt.Errorf("%w: product stock cannot be negative", domain.ErrValidation)
	}
	if patch.CategoryID != nil && *patch.CategoryID <= 0 {
		return nil, fmt.Errorf("%w: invalid category", domain.ErrValidation)
	}

	current, err := uc.productRepo.GetProductBySlug(ctx, productSlug)
	if err != nil {
		return nil, err
	}

	uc.log.Infof("Use Case: Attempting to update product %d (%s)", current.ID, current.Slug)
	updated, err := uc.productRepo.UpdateProduct(ctx, current.ID, patch)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update product %d: %v", current.ID, err)
		return nil, err
	}
	updated.WithImageFallback(uc.placeholder)
	return updated, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, productSlug string) error {
	product, err := uc.productRepo.GetProductBySlug(ctx, productSlug)
	if err != nil {
		return err
	}
	uc.log.Infof("Use Case: Deleting product %d (%s)", product.ID, product.Slug)
	if err := uc.productRepo.DeleteProduct(ctx, product.ID); err != nil {
		return err
	}
	if product.Image != "" {
		if err := uc.media.Delete(ctx, product.Image); err != nil {
			uc.log.Warnf("Use Case: Could not delete image of product %d: %v", product.ID, err)
		}
	}
	return nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	products, err := uc.productRepo.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	applyImageFallback(products, uc.placeholder)
	return products, nil
}

func (uc *productUseCase) ListPurchasedProducts(ctx context.Context, userID int64) ([]domain.Product, error) {
	products, err := uc.productRepo.ListPurchasedProducts(ctx, userID)
	if err != nil {
		return nil, err
	}
	applyImageFallback(products, uc.placeholder)
	return products, nil
}

func (uc *productUseCase) SetProductImage(ctx context.Context, productSlug string, upload domain.Upload) (*domain.Product, error) {
	if !media.IsAllowedImage(upload.ContentType) {
		return nil, fmt.Errorf("%w: unsupported image type %q", domain.ErrValidation, upload.ContentType)
	}
	product, err := uc.productRepo.GetProductBySlug(ctx, productSlug)
	if err != nil {
		return nil, err
	}

	url, err := uc.media.Save(ctx, "products", upload)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to store image for product %d: %v", product.ID, err)
		return nil, fmt.Errorf("could not store product image: %w", err)
	}
	updated, err := uc.productRepo.UpdateProduct(ctx, product.ID, domain.ProductPatch{Image: &url})
	if err != nil {
		_ = uc.media.Delete(ctx, url)
		return nil, err
	}
	if product.Image != "" {
		if err := uc.media.Delete(ctx, product.Image); err != nil {
			uc.log.Warnf("Use Case: Could not delete previous image of product %d: %v", product.ID, err)
		}
	}
	uc.log.Infof("Use Case: Product %d image set to %s", product.ID, url)
	return updated, nil
}

func applyImageFallback(products []domain.Product, placeholder string) {
	for i := range products {
		products[i].WithImageFallback(placeholder)
	}
}
