package storage

import (
	"context"

	"github.com/vietddude/storefront/internal/core/domain"
)

// ProductRepository handles catalog reads and stock updates
type ProductRepository interface {
	// List retrieves all products, oldest first
	List(ctx context.Context) ([]domain.Product, error)

	// Get retrieves a product by ID, nil if absent
	Get(ctx context.Context, id int64) (*domain.Product, error)

	// DecrementStock reduces a product's stock, never below zero
	DecrementStock(ctx context.Context, productID int64, quantity int) error
}

// OrderRepository handles order persistence
type OrderRepository interface {
	// CheckProvisioned reports domain.ErrTablesNotFound when the
	// backing tables do not exist
	CheckProvisioned(ctx context.Context) error

	// Insert persists an order and returns its ID
	Insert(ctx context.Context, order *domain.Order) (int64, error)

	// InsertItems persists the order lines
	InsertItems(ctx context.Context, items []domain.OrderItem) error

	// Get retrieves an order by ID, nil if absent
	Get(ctx context.Context, id int64) (*domain.Order, error)
}
