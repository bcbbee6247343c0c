package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vietddude/storefront/internal/core/domain"
	"github.com/vietddude/storefront/internal/infra/storage"
	"github.com/vietddude/storefront/internal/metrics"
)

var (
	// ErrMissingFields rejects an order without customer details.
	ErrMissingFields = errors.New("missing required fields")
	// ErrEmptyCart rejects an order without items.
	ErrEmptyCart = errors.New("cart is empty")
)

// CreateRequest is a validated order submission.
type CreateRequest struct {
	CustomerName    string
	CustomerEmail   string
	CustomerAddress string
	Items           []domain.OrderLine
	TotalAmount     float64
}

// Service persists orders. Stock decrements are best-effort: a failed
// decrement for one line is logged and the rest continue, and the
// order stands regardless.
type Service struct {
	orders   storage.OrderRepository
	products storage.ProductRepository
	log      *slog.Logger
}

// NewService creates an order service.
func NewService(orders storage.OrderRepository, products storage.ProductRepository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{orders: orders, products: products, log: log}
}

// Create validates and persists an order, returning its ID.
func (s *Service) Create(ctx context.Context, req CreateRequest) (int64, error) {
	if req.CustomerName == "" || req.CustomerEmail == "" || req.CustomerAddress == "" || req.TotalAmount <= 0 {
		return 0, ErrMissingFields
	}
	if len(req.Items) == 0 {
		return 0, ErrEmptyCart
	}

	if err := s.orders.CheckProvisioned(ctx); err != nil {
		return 0, err
	}

	orderID, err := s.orders.Insert(ctx, &domain.Order{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		TotalAmount:     req.TotalAmount,
		Status:          domain.OrderStatusPending,
	})
	if err != nil {
		metrics.OrdersTotal.WithLabelValues("failed").Inc()
		return 0, fmt.Errorf("failed to create order: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, domain.OrderItem{
			OrderID:   orderID,
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			Price:     line.Product.Price,
		})
	}
	if err := s.orders.InsertItems(ctx, items); err != nil {
		metrics.OrdersTotal.WithLabelValues("failed").Inc()
		return 0, fmt.Errorf("failed to create order items: %w", err)
	}

	// Inventory updates are secondary: one failure must not abort the
	// others or the order itself.
	for _, line := range req.Items {
		if err := s.products.DecrementStock(ctx, line.Product.ID, line.Quantity); err != nil {
			s.log.Error("failed to update inventory",
				"order_id", orderID,
				"product_id", line.Product.ID,
				"error", err)
		}
	}

	metrics.OrdersTotal.WithLabelValues("placed").Inc()
	s.log.Info("order placed", "order_id", orderID, "total", req.TotalAmount, "items", len(items))
	return orderID, nil
}

// Get retrieves an order for the confirmation view. Returns nil when
// absent.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return s.orders.Get(ctx, id)
}
