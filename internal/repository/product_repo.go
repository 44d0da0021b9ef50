package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresProductRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

// productSelect joins the owning category and the review aggregate so rating
// and review_count are derived on every read.
const productSelect = `
	SELECT p.id, p.name, p.slug, p.description, p.price, p.discount_price,
	       p.category_id, c.name, c.slug, c.image,
	       p.image, p.stock, p.is_featured,
	       COALESCE(rs.rating_sum, 0), COALESCE(rs.review_count, 0),
	       p.created_at, p.updated_at
	FROM products p
	JOIN categories c ON c.id = p.category_id
	LEFT JOIN (
		SELECT product_id, SUM(rating) AS rating_sum, COUNT(*) AS review_count
		FROM reviews
		GROUP BY product_id
	) rs ON rs.product_id = p.id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		product     domain.Product
		category    domain.Category
		ratingSum   int64
		reviewCount int64
	)
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Slug,
		&product.Description,
		&product.Price,
		&product.DiscountPrice,
		&product.CategoryID,
		&category.Name,
		&category.Slug,
		&category.Image,
		&product.Image,
		&product.Stock,
		&product.IsFeatured,
		&ratingSum,
		&reviewCount,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	category.ID = product.CategoryID
	product.Category = &category
	product.Rating = domain.AverageRating(ratingSum, reviewCount)
	product.ReviewCount = int(reviewCount)
	return &product, nil
}

func (r *postgresProductRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, slug, description, price, discount_price, category_id, image, stock, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		product.Name,
		product.Slug,
		product.Description,
		product.Price,
		product.DiscountPrice,
		product.CategoryID,
		product.Image,
		product.Stock,
		product.IsFeatured,
	).Scan(&product.ID)
	if err != nil {
		switch pqCode(err) {
		case pqForeignKeyViolation:
			r.log.Warnf("Attempted to create product with non-existent category ID: %d", product.CategoryID)
			return nil, fmt.Errorf("%w: category with id %d does not exist", domain.ErrValidation, product.CategoryID)
		case pqCheckViolation:
			r.log.Warnf("Check constraint violation for product '%s': %v", product.Name, err)
			return nil, fmt.Errorf("%w: product data constraint violation (%s)", domain.ErrValidation, pqConstraint(err))
		case pqUniqueViolation:
			r.log.Warnf("Attempted to create product with duplicate slug: %s", product.Slug)
			return nil, fmt.Errorf("%w: product with slug '%s' already exists", domain.ErrConflict, product.Slug)
		}
		r.log.Errorf("Failed to create product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}
	r.log.Infof("Product created successfully with ID: %d, Slug: %s", product.ID, product.Slug)
	return r.GetProductByID(ctx, product.ID)
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := scanProduct(r.db.QueryRowContext(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Product with ID %d not found", id)
			return nil, fmt.Errorf("%w: product with id %d", domain.ErrNotFound, id)
		}
		r.log.Errorf("Failed to get product by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}
	return product, nil
}

func (r *postgresProductRepository) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	product, err := scanProduct(r.db.QueryRowContext(ctx, productSelect+` WHERE p.slug = $1`, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Product with slug '%s' not found", slug)
			return nil, fmt.Errorf("%w: product with slug '%s'", domain.ErrNotFound, slug)
		}
		r.log.Errorf("Failed to get product by slug '%s': %v", slug, err)
		return nil, fmt.Errorf("could not get product by slug: %w", err)
	}
	return product, nil
}

func (r *postgresProductRepository) UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.IsEmpty() {
		r.log.Infof("Repository: No fields provided for product update ID %d. Returning current product.", id)
		return r.GetProductByID(ctx, id)
	}

	args := []interface{}{}
	setClauses := []string{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.ClearDiscount {
		set("discount_price", nil)
	} else if patch.DiscountPrice != nil {
		set("discount_price", *patch.DiscountPrice)
	}
	if patch.CategoryID != nil {
		set("category_id", *patch.CategoryID)
	}
	if patch.Stock != nil {
		set("stock", *patch.Stock)
	}
	if patch.IsFeatured != nil {
		set("is_featured", *patch.IsFeatured)
	}
	if patch.Image != nil {
		set("image", *patch.Image)
	}

	args = append(args, id)
	query := "UPDATE products SET " + strings.Join(setClauses, ", ") + fmt.Sprintf(", updated_at = NOW() WHERE id = $%d", len(args))

	r.log.Debugf("Repository: Executing partial update query for ID %d: %s", id, query)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		switch pqCode(err) {
		case pqForeignKeyViolation:
			r.log.Warnf("Repository: Attempted to update product ID %d with non-existent category", id)
			return nil, fmt.Errorf("%w: category does not exist", domain.ErrValidation)
		case pqCheckViolation:
			r.log.Warnf("Repository: Check constraint violation for product update ID %d: %v", id, err)
			return nil, fmt.Errorf("%w: product data constraint violation (%s)", domain.ErrValidation, pqConstraint(err))
		}
		r.log.Errorf("Repository: Failed to execute partial update for product ID %d: %v", id, err)
		return nil, fmt.Errorf("could not partially update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Repository: Failed to get rows affected after partial update for ID %d: %v", id, err)
		return nil, fmt.Errorf("could not confirm product update: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Repository: Product with ID %d not found for update", id)
		return nil, fmt.Errorf("%w: product with id %d", domain.ErrNotFound, id)
	}

	r.log.Infof("Repository: Partial update successful for product ID %d", id)
	return r.GetProductByID(ctx, id)
}

func (r *postgresProductRepository) DeleteProduct(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			r.log.Warnf("Refused to delete product ID %d: it appears on past orders", id)
			return fmt.Errorf("%w: product %d appears on existing orders", domain.ErrConflict, id)
		}
		r.log.Errorf("Failed to delete product ID %d: %v", id, err)
		return fmt.Errorf("could not delete product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to get rows affected after deleting product ID %d: %v", id, err)
		return fmt.Errorf("could not confirm product deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Attempted to delete non-existent product ID %d", id)
		return fmt.Errorf("%w: product with id %d", domain.ErrNotFound, id)
	}
	r.log.Infof("Product deleted successfully with ID: %d", id)
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *postgresProductRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	conditions := []string{}
	args := []interface{}{}
	if filter.CategorySlug != "" {
		args = append(args, filter.CategorySlug)
		conditions = append(conditions, fmt.Sprintf("c.slug = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args)))
	}
	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		conditions = append(conditions, fmt.Sprintf("p.is_featured = $%d", len(args)))
	}

	query := productSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	products, err := r.queryProducts(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Failed to list products (%+v): %v", filter, err)
		return nil, err
	}
	r.log.Debugf("Retrieved %d products (limit: %d, offset: %d)", len(products), limit, offset)
	return products, nil
}

func (r *postgresProductRepository) ListPurchasedProducts(ctx context.Context, userID int64) ([]domain.Product, error) {
	query := productSelect + `
		WHERE p.id IN (
			SELECT oi.product_id
			FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE o.user_id = $1
		)
		ORDER BY p.name ASC`
	products, err := r.queryProducts(ctx, query, userID)
	if err != nil {
		r.log.Errorf("Failed to list purchased products for user %d: %v", userID, err)
		return nil, err
	}
	return products, nil
}

func (r *postgresProductRepository) ProductSlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1 AND id <> $2)`, slug, excludeID).Scan(&exists)
	if err != nil {
		r.log.Errorf("Failed to check product slug '%s': %v", slug, err)
		return false, fmt.Errorf("could not check product slug: %w", err)
	}
	return exists, nil
}

func (r *postgresProductRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning product data: %w", err)
		}
		products = append(products, *product)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

// productsByIDs loads products keyed by id, used to attach products to saved items.
func productsByIDs(ctx context.Context, db *sql.DB, ids []int64) (map[int64]domain.Product, error) {
	rows, err := db.QueryContext(ctx, productSelect+` WHERE p.id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("could not load products: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]domain.Product, len(ids))
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning product data: %w", err)
		}
		byID[product.ID] = *product
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return byID, nil
}
