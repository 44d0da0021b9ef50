package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresAnalyticsRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresAnalyticsRepository(db *sql.DB, logger *logrus.Logger) domain.AnalyticsRepository {
	return &postgresAnalyticsRepository{
		db:  db,
		log: logger,
	}
}

// Totals counts every order but only sums revenue of orders that were not cancelled.
func (r *postgresAnalyticsRepository) Totals(ctx context.Context, lowStockThreshold int) (*domain.Analytics, error) {
	a := &domain.Analytics{}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status <> 'cancelled'),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM users WHERE NOT is_staff),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM products WHERE stock <= $1)`, lowStockThreshold,
	).Scan(&a.TotalRevenue, &a.TotalOrders, &a.TotalCustomers, &a.TotalProducts, &a.LowStockProducts)
	if err != nil {
		r.log.Errorf("Repository: Failed to compute analytics totals: %v", err)
		return nil, fmt.Errorf("could not compute analytics: %w", err)
	}
	r.log.Debugf("Repository: Analytics totals computed (orders: %d, revenue: %s)", a.TotalOrders, a.TotalRevenue.StringFixed(2))
	return a, nil
}
