package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vietddude/storefront/internal/core/domain"
)

// ProductRepo implements storage.ProductRepository using PostgreSQL.
type ProductRepo struct {
	db *DB
}

// NewProductRepo creates a new PostgreSQL product repository.
func NewProductRepo(db *DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// List retrieves all products, oldest first.
func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.SelectContext(ctx, &products, `
		SELECT id, name, description, price, image_url, stock_quantity, created_at
		FROM products
		ORDER BY created_at ASC`)
	if isUndefinedTable(err) {
		return nil, domain.ErrTablesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Get retrieves a product by ID.
func (r *ProductRepo) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `
		SELECT id, name, description, price, image_url, stock_quantity, created_at
		FROM products
		WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if isUndefinedTable(err) {
		return nil, domain.ErrTablesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// DecrementStock reduces a product's stock, clamped at zero.
func (r *ProductRepo) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET stock_quantity = GREATEST(stock_quantity - $1, 0)
		WHERE id = $2`, quantity, productID)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	return nil
}
