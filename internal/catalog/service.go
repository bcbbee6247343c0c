package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vietddude/storefront/internal/core/domain"
	"github.com/vietddude/storefront/internal/infra/storage"
)

// Service serves the product catalog, degrading to the built-in sample
// set while the backing store is unprovisioned.
type Service struct {
	products storage.ProductRepository
	log      *slog.Logger
}

// NewService creates a catalog service.
func NewService(products storage.ProductRepository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{products: products, log: log}
}

// ListProducts returns the catalog, oldest first.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if errors.Is(err, domain.ErrTablesNotFound) {
		s.log.Warn("products table missing, serving sample catalog")
		return SampleProducts(), nil
	}
	if err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct returns one product, falling back to the sample set when
// the store is unprovisioned. Returns nil when absent.
func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.Get(ctx, id)
	if errors.Is(err, domain.ErrTablesNotFound) {
		for _, sp := range SampleProducts() {
			if sp.ID == id {
				return &sp, nil
			}
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
