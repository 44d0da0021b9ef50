package usecase

import (
	"context"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/sirupsen/logrus"
)

var _ domain.AnalyticsUseCase = (*analyticsUseCase)(nil)

const recentOrdersLimit = 5

type analyticsUseCase struct {
	analyticsRepo     domain.AnalyticsRepository
	orderRepo         domain.OrderRepository
	lowStockThreshold int
	log               *logrus.Logger
}

func NewAnalyticsUseCase(aRepo domain.AnalyticsRepository, oRepo domain.OrderRepository, lowStockThreshold int, logger *logrus.Logger) domain.AnalyticsUseCase {
	return &analyticsUseCase{
		analyticsRepo:     aRepo,
		orderRepo:         oRepo,
		lowStockThreshold: lowStockThreshold,
		log:               logger,
	}
}

// GetAnalytics is recomputed on every call.
func (uc *analyticsUseCase) GetAnalytics(ctx context.Context) (*domain.Analytics, error) {
	totals, err := uc.analyticsRepo.Totals(ctx, uc.lowStockThreshold)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to compute analytics: %v", err)
		return nil, err
	}
	recent, err := uc.orderRepo.ListOrders(ctx, domain.OrderFilter{Limit: recentOrdersLimit})
	if err != nil {
		uc.log.Errorf("Use Case: Failed to load recent orders for analytics: %v", err)
		return nil, err
	}
	totals.RecentOrders = recent
	return totals, nil
}
