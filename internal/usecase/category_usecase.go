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

var _ domain.CategoryUseCase = (*categoryUseCase)(nil)

type categoryUseCase struct {
	categoryRepo domain.CategoryRepository
	media        domain.MediaStore
	log          *logrus.Logger
}

func NewCategoryUseCase(repo domain.CategoryRepository, store domain.MediaStore, logger *logrus.Logger) domain.CategoryUseCase {
	return &categoryUseCase{
		categoryRepo: repo,
		media:        store,
		log:          logger,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		uc.log.Warn("Use Case: Attempted to create category with empty name")
		return nil, fmt.Errorf("%w: category name cannot be empty", domain.ErrValidation)
	}

	base := slug.Make(category.Slug)
	if base == "" {
		base = slug.Make(category.Name)
	}
	unique, err := slug.Unique(ctx, base, func(ctx context.Context, s string) (bool, error) {
		return uc.categoryRepo.CategorySlugExists(ctx, s, 0)
	})
	if err != nil {
		uc.log.Warnf("Use Case: Could not derive slug for category '%s': %v", category.Name, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	category.Slug = unique

	uc.log.Infof("Use Case: Attempting to create category '%s' (slug %s)", category.Name, category.Slug)
	created, err := uc.categoryRepo.CreateCategory(ctx, category)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create category '%s': %v", category.Name, err)
		return nil, err
	}
	return created, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid category ID", domain.ErrValidation)
	}
	return uc.categoryRepo.GetCategoryByID(ctx, id)
}

// UpdateCategory renames a category. The slug stays as first assigned.
func (uc *categoryUseCase) UpdateCategory(ctx context.Context, id int64, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name cannot be empty", domain.ErrValidation)
	}
	category, err := uc.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = name

	uc.log.Infof("Use Case: Renaming category %d to '%s'", id, name)
	return uc.categoryRepo.UpdateCategory(ctx, category)
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id int64) error {
	category, err := uc.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	uc.log.Warnf("Use Case: Deleting category %d (%s) and all of its products", id, category.Slug)
	if err := uc.categoryRepo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	uc.dropMedia(ctx, category.Image)
	return nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return uc.categoryRepo.ListCategories(ctx)
}

func (uc *categoryUseCase) SetCategoryImage(ctx context.Context, id int64, upload domain.Upload) (*domain.Category, error) {
	if !media.IsAllowedImage(upload.ContentType) {
		return nil, fmt.Errorf("%w: unsupported image type %q", domain.ErrValidation, upload.ContentType)
	}
	category, err := uc.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := uc.media.Save(ctx, "categories", upload)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to store image for category %d: %v", id, err)
		return nil, fmt.Errorf("could not store category image: %w", err)
	}
	previous := category.Image
	category.Image = url
	updated, err := uc.categoryRepo.UpdateCategory(ctx, category)
	if err != nil {
		uc.dropMedia(ctx, url)
		return nil, err
	}
	uc.dropMedia(ctx, previous)
	return updated, nil
}

func (uc *categoryUseCase) dropMedia(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := uc.media.Delete(ctx, url); err != nil {
		uc.log.Warnf("Use Case: Could not delete media %s: %v", url, err)
	}
}
