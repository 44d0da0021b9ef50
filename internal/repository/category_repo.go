package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresCategoryRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresCategoryRepository(db *sql.DB, logger *logrus.Logger) domain.CategoryRepository {
	return &postgresCategoryRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresCategoryRepository) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `INSERT INTO categories (name, slug, image) VALUES ($1, $2, $3) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, category.Name, category.Slug, category.Image).Scan(&category.ID)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			r.log.Warnf("Attempted to create category with duplicate slug: %s", category.Slug)
			return nil, fmt.Errorf("%w: category with slug '%s' already exists", domain.ErrConflict, category.Slug)
		}
		r.log.Errorf("Failed to create category '%s': %v", category.Name, err)
		return nil, fmt.Errorf("could not create category: %w", err)
	}
	r.log.Infof("Category created successfully with ID: %d, Slug: %s", category.ID, category.Slug)
	return category, nil
}

func (r *postgresCategoryRepository) GetCategoryByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT id, name, slug, image FROM categories WHERE id = $1`
	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&category.ID, &category.Name, &category.Slug, &category.Image)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Category with ID %d not found", id)
			return nil, fmt.Errorf("%w: category with id %d", domain.ErrNotFound, id)
		}
		r.log.Errorf("Failed to get category by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get category by id: %w", err)
	}
	return category, nil
}

func (r *postgresCategoryRepository) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	query := `SELECT id, name, slug, image FROM categories WHERE slug = $1`
	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&category.ID, &category.Name, &category.Slug, &category.Image)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Category with slug '%s' not found", slug)
			return nil, fmt.Errorf("%w: category with slug '%s'", domain.ErrNotFound, slug)
		}
		r.log.Errorf("Failed to get category by slug '%s': %v", slug, err)
		return nil, fmt.Errorf("could not get category by slug: %w", err)
	}
	return category, nil
}

func (r *postgresCategoryRepository) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `UPDATE categories SET name = $1, image = $2 WHERE id = $3 RETURNING id, name, slug, image`
	err := r.db.QueryRowContext(ctx, query, category.Name, category.Image, category.ID).
		Scan(&category.ID, &category.Name, &category.Slug, &category.Image)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Category with ID %d not found for update", category.ID)
			return nil, fmt.Errorf("%w: category with id %d", domain.ErrNotFound, category.ID)
		}
		r.log.Errorf("Failed to update category ID %d: %v", category.ID, err)
		return nil, fmt.Errorf("could not update category: %w", err)
	}
	r.log.Infof("Category updated successfully with ID: %d", category.ID)
	return category, nil
}

func (r *postgresCategoryRepository) DeleteCategory(ctx context.Context, id int64) error {
	query := `DELETE FROM categories WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			r.log.Warnf("Refused to delete category ID %d: its products appear on past orders", id)
			return fmt.Errorf("%w: category %d has products on existing orders", domain.ErrConflict, id)
		}
		r.log.Errorf("Failed to delete category ID %d: %v", id, err)
		return fmt.Errorf("could not delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to get rows affected after deleting category ID %d: %v", id, err)
		return fmt.Errorf("could not confirm category deletion: %w", err)
	}

	if rowsAffected == 0 {
		r.log.Warnf("Attempted to delete non-existent category ID %d", id)
		return fmt.Errorf("%w: category with id %d", domain.ErrNotFound, id)
	}

	r.log.Infof("Category deleted successfully with ID: %d", id)
	return nil
}

func (r *postgresCategoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT id, name, slug, image FROM categories ORDER BY name ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Failed to list categories: %v", err)
		return nil, fmt.Errorf("could not list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.Image); err != nil {
			r.log.Errorf("Failed to scan category row: %v", err)
			return nil, fmt.Errorf("error scanning category data: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during categories list iteration: %v", err)
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	r.log.Debugf("Retrieved %d categories", len(categories))
	return categories, nil
}

func (r *postgresCategoryRepository) CategorySlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1 AND id <> $2)`, slug, excludeID).Scan(&exists)
	if err != nil {
		r.log.Errorf("Failed to check category slug '%s': %v", slug, err)
		return false, fmt.Errorf("could not check category slug: %w", err)
	}
	return exists, nil
}
