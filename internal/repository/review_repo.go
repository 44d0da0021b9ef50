package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresReviewRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresReviewRepository(db *sql.DB, logger *logrus.Logger) domain.ReviewRepository {
	return &postgresReviewRepository{
		db:  db,
		log: logger,
	}
}

const reviewSelect = `
	SELECT r.id, r.product_id, r.user_id, u.username, r.rating, r.comment, r.created_at
	FROM reviews r
	JOIN users u ON u.id = r.user_id`

func scanReview(row rowScanner) (*domain.Review, error) {
	review := &domain.Review{}
	err := row.Scan(&review.ID, &review.ProductID, &review.UserID, &review.UserName, &review.Rating, &review.Comment, &review.CreatedAt)
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (r *postgresReviewRepository) UpsertReview(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO reviews (product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, user_id)
		DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment
		RETURNING id`,
		review.ProductID, review.UserID, review.Rating, review.Comment,
	).Scan(&review.ID)
	if err != nil {
		switch pqCode(err) {
		case pqForeignKeyViolation:
			r.log.Warnf("Repository: Review references missing product %d", review.ProductID)
			return nil, fmt.Errorf("%w: product with id %d does not exist", domain.ErrValidation, review.ProductID)
		case pqCheckViolation:
			return nil, fmt.Errorf("%w: rating must be between %d and %d", domain.ErrValidation, domain.MinRating, domain.MaxRating)
		}
		r.log.Errorf("Repository: Failed to upsert review for product %d by user %d: %v", review.ProductID, review.UserID, err)
		return nil, fmt.Errorf("could not save review: %w", err)
	}
	r.log.Infof("Repository: Review %d saved for product %d by user %d", review.ID, review.ProductID, review.UserID)
	return r.GetReviewByID(ctx, review.ID)
}

func (r *postgresReviewRepository) GetReviewByID(ctx context.Context, id int64) (*domain.Review, error) {
	review, err := scanReview(r.db.QueryRowContext(ctx, reviewSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Review with ID %d not found", id)
			return nil, fmt.Errorf("%w: review with id %d", domain.ErrNotFound, id)
		}
		r.log.Errorf("Repository: Failed to get review %d: %v", id, err)
		return nil, fmt.Errorf("could not get review: %w", err)
	}
	return review, nil
}

func (r *postgresReviewRepository) UpdateReview(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE reviews SET rating = $1, comment = $2 WHERE id = $3`, review.Rating, review.Comment, review.ID)
	if err != nil {
		if pqCode(err) == pqCheckViolation {
			return nil, fmt.Errorf("%w: rating must be between %d and %d", domain.ErrValidation, domain.MinRating, domain.MaxRating)
		}
		r.log.Errorf("Repository: Failed to update review %d: %v", review.ID, err)
		return nil, fmt.Errorf("could not update review: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: review with id %d", domain.ErrNotFound, review.ID)
	}
	return r.GetReviewByID(ctx, review.ID)
}

func (r *postgresReviewRepository) DeleteReview(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete review %d: %v", id, err)
		return fmt.Errorf("could not delete review: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not confirm review deletion: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: review with id %d", domain.ErrNotFound, id)
	}
	r.log.Infof("Repository: Review %d deleted", id)
	return nil
}

func (r *postgresReviewRepository) ListReviews(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	conditions := []string{}
	args := []interface{}{}
	if filter.ProductID > 0 {
		args = append(args, filter.ProductID)
		conditions = append(conditions, fmt.Sprintf("r.product_id = $%d", len(args)))
	}
	if filter.UserID > 0 {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("r.user_id = $%d", len(args)))
	}
	query := reviewSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY r.created_at DESC, r.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Repository: Failed to list reviews (%+v): %v", filter, err)
		return nil, fmt.Errorf("could not list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			r.log.Errorf("Repository: Failed to scan review row: %v", err)
			return nil, fmt.Errorf("error scanning review data: %w", err)
		}
		reviews = append(reviews, *review)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}
	return reviews, nil
}
