package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type postgresOrderRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresOrderRepository(db *sql.DB, logger *logrus.Logger) domain.OrderRepository {
	return &postgresOrderRepository{
		db:  db,
		log: logger,
	}
}

type lockedProduct struct {
	ID    int64
	Name  string
	Image string
	Price decimal.Decimal
	Stock int
}

func (r *postgresOrderRepository) PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	quantities := domain.RequestedQuantities(order.Items)
	productIDs := make([]int64, 0, len(quantities))
	for id := range quantities {
		productIDs = append(productIDs, id)
	}
	// Lock rows in a fixed order so two orders for the same products cannot deadlock.
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	err := withTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		products := make(map[int64]lockedProduct, len(productIDs))
		for _, id := range productIDs {
			var p lockedProduct
			err := tx.QueryRowContext(ctx, `
				SELECT id, name, image, price, stock
				FROM products
				WHERE id = $1
				FOR UPDATE`, id).Scan(&p.ID, &p.Name, &p.Image, &p.Price, &p.Stock)
			if errors.Is(err, sql.ErrNoRows) {
				r.log.Warnf("Repository: Order for user %d references missing product %d", order.UserID, id)
				return fmt.Errorf("%w: product with id %d does not exist", domain.ErrValidation, id)
			}
			if err != nil {
				r.log.Errorf("Repository: Failed to lock product %d: %v", id, err)
				return fmt.Errorf("could not lock product %d: %w", id, err)
			}
			if p.Stock < quantities[id] {
				r.log.Warnf("Repository: Insufficient stock for product %d (requested %d, available %d)", id, quantities[id], p.Stock)
				return fmt.Errorf("%w: product %d has %d in stock, %d requested", domain.ErrInsufficientStock, id, p.Stock, quantities[id])
			}
			products[id] = p
		}

		for i := range order.Items {
			p := products[order.Items[i].ProductID]
			order.Items[i].Price = p.Price
			order.Items[i].ProductName = p.Name
			order.Items[i].ProductImage = p.Image
		}
		order.TotalAmount = domain.CalculateTotal(order.Items)

		var idempotencyKey sql.NullString
		if order.IdempotencyKey != "" {
			idempotencyKey = sql.NullString{String: order.IdempotencyKey, Valid: true}
		}
		err := tx.QueryRowContext(ctx, `
			INSERT INTO orders (user_id, status, total_amount, shipping_address, phone_number, payment_method, idempotency_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at`,
			order.UserID, order.Status, order.TotalAmount, order.ShippingAddress, order.PhoneNumber, order.PaymentMethod, idempotencyKey,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			if pqCode(err) == pqUniqueViolation {
				return fmt.Errorf("%w: order with this idempotency key already exists", domain.ErrConflict)
			}
			if pqCode(err) == pqForeignKeyViolation {
				return fmt.Errorf("%w: user %d does not exist", domain.ErrValidation, order.UserID)
			}
			r.log.Errorf("Repository: Failed to insert order for user %d: %v", order.UserID, err)
			return fmt.Errorf("could not create order entry: %w", err)
		}

		for i := range order.Items {
			item := &order.Items[i]
			err := tx.QueryRowContext(ctx, `
				INSERT INTO order_items (order_id, product_id, quantity, price)
				VALUES ($1, $2, $3, $4)
				RETURNING id`,
				order.ID, item.ProductID, item.Quantity, item.Price,
			).Scan(&item.ID)
			if err != nil {
				r.log.Errorf("Repository: Failed to insert order item (product_id: %d, quantity: %d) for order %d: %v", item.ProductID, item.Quantity, order.ID, err)
				if pqCode(err) == pqCheckViolation {
					return fmt.Errorf("%w: invalid item data for product %d", domain.ErrValidation, item.ProductID)
				}
				return fmt.Errorf("could not create order item (product_id: %d): %w", item.ProductID, err)
			}
			item.OrderID = order.ID
		}

		for _, id := range productIDs {
			_, err := tx.ExecContext(ctx, `
				UPDATE products
				SET stock = stock - $1, updated_at = NOW()
				WHERE id = $2`, quantities[id], id)
			if err != nil {
				r.log.Errorf("Repository: Failed to decrement stock for product %d: %v", id, err)
				return fmt.Errorf("could not update stock for product %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Infof("Repository: Order %d created for user %d with %d items, total %s", order.ID, order.UserID, len(order.Items), order.TotalAmount.StringFixed(2))
	return order, nil
}

func (r *postgresOrderRepository) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, status, total_amount, shipping_address, phone_number, payment_method, created_at, updated_at
		FROM orders
		WHERE id = $1`, id).Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.TotalAmount,
		&order.ShippingAddress,
		&order.PhoneNumber,
		&order.PaymentMethod,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Order with ID %d not found", id)
			return nil, fmt.Errorf("%w: order with id %d", domain.ErrNotFound, id)
		}
		r.log.Errorf("Repository: Failed to get order by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}

	items, err := r.loadItems(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	if order.Items == nil {
		order.Items = []domain.OrderItem{}
	}
	return order, nil
}

func (r *postgresOrderRepository) GetOrderByIdempotencyKey(ctx context.Context, userID int64, key string) (*domain.Order, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM orders WHERE user_id = $1 AND idempotency_key = $2`, userID, key).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no order for user %d with idempotency key %q", domain.ErrNotFound, userID, key)
		}
		r.log.Errorf("Repository: Failed to look up order by idempotency key for user %d: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}
	return r.GetOrderByID(ctx, id)
}

func (r *postgresOrderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	conditions := []string{}
	args := []interface{}{}
	if filter.UserID > 0 {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `
		SELECT id, user_id, status, total_amount, shipping_address, phone_number, payment_method, created_at, updated_at
		FROM orders`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Repository: Failed to list orders (%+v): %v", filter, err)
		return nil, fmt.Errorf("could not retrieve orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	orderIDs := []int64{}
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Status,
			&order.TotalAmount,
			&order.ShippingAddress,
			&order.PhoneNumber,
			&order.PaymentMethod,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			r.log.Errorf("Repository: Failed to scan order row: %v", err)
			return nil, fmt.Errorf("error scanning order data: %w", err)
		}
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.ID)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Repository: Error during orders iteration: %v", err)
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemsByOrder, err := r.loadItems(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if items, ok := itemsByOrder[orders[i].ID]; ok {
			orders[i].Items = items
		} else {
			orders[i].Items = []domain.OrderItem{}
		}
	}

	r.log.Debugf("Repository: Retrieved %d orders (limit %d, offset %d)", len(orders), limit, offset)
	return orders, nil
}

func (r *postgresOrderRepository) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, p.image, oi.quantity, oi.price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.id`, pq.Array(orderIDs))
	if err != nil {
		r.log.Errorf("Repository: Failed to query items for orders %v: %v", orderIDs, err)
		return nil, fmt.Errorf("could not retrieve order items: %w", err)
	}
	defer rows.Close()

	itemsMap := make(map[int64][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.ProductImage, &item.Quantity, &item.Price); err != nil {
			r.log.Errorf("Repository: Failed to scan order item row: %v", err)
			return nil, fmt.Errorf("error scanning order item: %w", err)
		}
		itemsMap[item.OrderID] = append(itemsMap[item.OrderID], item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return itemsMap, nil
}

func (r *postgresOrderRepository) TransitionOrderStatus(ctx context.Context, id int64, from, to domain.OrderStatus) (*domain.Order, error) {
	err := withTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		var current domain.OrderStatus
		err := tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Order with ID %d not found for status update", id)
			return fmt.Errorf("%w: order with id %d", domain.ErrNotFound, id)
		}
		if err != nil {
			r.log.Errorf("Repository: Failed to lock order %d: %v", id, err)
			return fmt.Errorf("could not lock order: %w", err)
		}
		if from != "" && current != from {
			r.log.Warnf("Repository: Order %d is '%s', expected '%s' before moving to '%s'", id, current, from, to)
			return fmt.Errorf("%w: order %d is %s, not %s", domain.ErrInvalidTransition, id, current, from)
		}
		if !current.CanTransitionTo(to) {
			r.log.Warnf("Repository: Rejected transition of order %d from '%s' to '%s'", id, current, to)
			return fmt.Errorf("%w: order %d cannot move from %s to %s", domain.ErrInvalidTransition, id, current, to)
		}

		if to == domain.StatusCancelled {
			_, err = tx.ExecContext(ctx, `
				UPDATE products p
				SET stock = p.stock + q.quantity, updated_at = NOW()
				FROM (
					SELECT product_id, SUM(quantity) AS quantity
					FROM order_items
					WHERE order_id = $1
					GROUP BY product_id
				) q
				WHERE p.id = q.product_id`, id)
			if err != nil {
				r.log.Errorf("Repository: Failed to restock items of cancelled order %d: %v", id, err)
				return fmt.Errorf("could not restock cancelled order: %w", err)
			}
		}

		_, err = tx.ExecContext(ctx, `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, to, id)
		if err != nil {
			r.log.Errorf("Repository: Failed to update status for order ID %d: %v", id, err)
			return fmt.Errorf("could not update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Infof("Repository: Order %d moved to '%s'", id, to)
	return r.GetOrderByID(ctx, id)
}
