package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresSavedItemRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresSavedItemRepository(db *sql.DB, logger *logrus.Logger) domain.SavedItemRepository {
	return &postgresSavedItemRepository{
		db:  db,
		log: logger,
	}
}

// AddSavedItem is idempotent: saving the same product twice returns the
// existing row.
func (r *postgresSavedItemRepository) AddSavedItem(ctx context.Context, userID, productID int64) (*domain.SavedItem, error) {
	item := &domain.SavedItem{UserID: userID, ProductID: productID}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO saved_items (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, created_at`, userID, productID).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			r.log.Warnf("Repository: Saved item references missing product %d", productID)
			return nil, fmt.Errorf("%w: product with id %d does not exist", domain.ErrValidation, productID)
		}
		r.log.Errorf("Repository: Failed to save product %d for user %d: %v", productID, userID, err)
		return nil, fmt.Errorf("could not save item: %w", err)
	}

	products, err := productsByIDs(ctx, r.db, []int64{productID})
	if err != nil {
		return nil, err
	}
	if p, ok := products[productID]; ok {
		item.Product = &p
	}
	r.log.Infof("Repository: Product %d saved for user %d", productID, userID)
	return item, nil
}

func (r *postgresSavedItemRepository) ListSavedItems(ctx context.Context, userID int64) ([]domain.SavedItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, product_id, created_at
		FROM saved_items
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		r.log.Errorf("Repository: Failed to list saved items for user %d: %v", userID, err)
		return nil, fmt.Errorf("could not list saved items: %w", err)
	}
	defer rows.Close()

	items := []domain.SavedItem{}
	productIDs := []int64{}
	for rows.Next() {
		var item domain.SavedItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning saved item: %w", err)
		}
		items = append(items, item)
		productIDs = append(productIDs, item.ProductID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saved items: %w", err)
	}
	if len(items) == 0 {
		return items, nil
	}

	products, err := productsByIDs(ctx, r.db, productIDs)
	if err != nil {
		r.log.Errorf("Repository: Failed to load saved products for user %d: %v", userID, err)
		return nil, err
	}
	for i := range items {
		if p, ok := products[items[i].ProductID]; ok {
			items[i].Product = &p
		}
	}
	return items, nil
}

func (r *postgresSavedItemRepository) DeleteSavedItem(ctx context.Context, userID, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM saved_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete saved item %d: %v", id, err)
		return fmt.Errorf("could not delete saved item: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not confirm saved item deletion: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: saved item with id %d", domain.ErrNotFound, id)
	}
	return nil
}
