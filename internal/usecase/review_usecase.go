package usecase

import (
	"context"
	"fmt"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/sirupsen/logrus"
)

var _ domain.ReviewUseCase = (*reviewUseCase)(nil)

type reviewUseCase struct {
	reviewRepo domain.ReviewRepository
	log        *logrus.Logger
}

func NewReviewUseCase(repo domain.ReviewRepository, logger *logrus.Logger) domain.ReviewUseCase {
	return &reviewUseCase{
		reviewRepo: repo,
		log:        logger,
	}
}

func checkRating(rating int) error {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", domain.ErrValidation, domain.MinRating, domain.MaxRating)
	}
	return nil
}

func (uc *reviewUseCase) ListReviews(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	return uc.reviewRepo.ListReviews(ctx, filter)
}

// SubmitReview creates the caller's review of a product, or replaces it if
// one already exists. A nil rating means the default.
func (uc *reviewUseCase) SubmitReview(ctx context.Context, userID, productID int64, rating *int, comment string) (*domain.Review, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: product is required", domain.ErrValidation)
	}
	value := domain.DefaultRating
	if rating != nil {
		value = *rating
	}
	if err := checkRating(value); err != nil {
		uc.log.Warnf("Use Case: User %d submitted rating %d for product %d", userID, value, productID)
		return nil, err
	}

	uc.log.Infof("Use Case: User %d reviewing product %d with rating %d", userID, productID, value)
	return uc.reviewRepo.UpsertReview(ctx, &domain.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    value,
		Comment:   comment,
	})
}

func (uc *reviewUseCase) UpdateReview(ctx context.Context, caller domain.Principal, id int64, rating *int, comment *string) (*domain.Review, error) {
	review, err := uc.reviewRepo.GetReviewByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != caller.UserID {
		return nil, fmt.Errorf("%w: review %d belongs to another user", domain.ErrForbidden, id)
	}
	if rating != nil {
		if err := checkRating(*rating); err != nil {
			return nil, err
		}
		review.Rating = *rating
	}
	if comment != nil {
		review.Comment = *comment
	}
	return uc.reviewRepo.UpdateReview(ctx, review)
}

// DeleteReview is allowed for the author and for staff.
func (uc *reviewUseCase) DeleteReview(ctx context.Context, caller domain.Principal, id int64) error {
	review, err := uc.reviewRepo.GetReviewByID(ctx, id)
	if err != nil {
		return err
	}
	if !caller.CanAccess(review.UserID) {
		return fmt.Errorf("%w: review %d belongs to another user", domain.ErrForbidden, id)
	}
	uc.log.Infof("Use Case: User %d deleting review %d", caller.UserID, id)
	return uc.reviewRepo.DeleteReview(ctx, id)
}
