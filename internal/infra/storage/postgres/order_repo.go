package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vietddude/storefront/internal/core/domain"
)

// OrderRepo implements storage.OrderRepository using PostgreSQL.
type OrderRepo struct {
	db *DB
}

// NewOrderRepo creates a new PostgreSQL order repository.
func NewOrderRepo(db *DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// CheckProvisioned probes the orders table.
func (r *OrderRepo) CheckProvisioned(ctx context.Context) error {
	var id int64
	err := r.db.GetContext(ctx, &id, `SELECT id FROM orders LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // table exists, just empty
	}
	if isUndefinedTable(err) {
		return domain.ErrTablesNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to probe orders table: %w", err)
	}
	return nil
}

// Insert persists an order and returns its ID.
func (r *OrderRepo) Insert(ctx context.Context, order *domain.Order) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO orders (customer_name, customer_email, customer_address, total_amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerAddress,
		order.TotalAmount,
		order.Status,
	).Scan(&id)
	if isUndefinedTable(err) {
		return 0, domain.ErrTablesNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}
	return id, nil
}

// InsertItems persists the order lines.
func (r *OrderRepo) InsertItems(ctx context.Context, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES (:order_id, :product_id, :quantity, :price)`, items)
	if err != nil {
		return fmt.Errorf("failed to insert order items: %w", err)
	}
	return nil
}

// Get retrieves an order by ID.
func (r *OrderRepo) Get(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.GetContext(ctx, &o, `
		SELECT id, customer_name, customer_email, customer_address, total_amount, status, created_at
		FROM orders
		WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if isUndefinedTable(err) {
		return nil, domain.ErrTablesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}
