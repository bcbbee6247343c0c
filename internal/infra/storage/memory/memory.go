package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vietddude/storefront/internal/core/domain"
)

// MemoryStorage backs the repositories when no database is configured.
type MemoryStorage struct {
	products   map[int64]*domain.Product
	orders     map[int64]*domain.Order
	orderItems map[int64][]domain.OrderItem
	nextOrder  int64
	mu         sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		products:   make(map[int64]*domain.Product),
		orders:     make(map[int64]*domain.Order),
		orderItems: make(map[int64][]domain.OrderItem),
		nextOrder:  1,
	}
}

// Seed loads a product set, replacing whatever is stored.
func (s *MemoryStorage) Seed(products []domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make(map[int64]*domain.Product, len(products))
	for i := range products {
		p := products[i]
		s.products[p.ID] = &p
	}
}

// -----------------------------------------------------------------------------
// Product Repository
// -----------------------------------------------------------------------------

type ProductRepo struct {
	store *MemoryStorage
}

func NewProductRepo(store *MemoryStorage) *ProductRepo {
	return &ProductRepo{store: store}
}

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	products := make([]domain.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].ID < products[j].ID
		}
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})
	return products, nil
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (*domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[productID]
	if !ok {
		return nil
	}
	p.StockQuantity -= quantity
	if p.StockQuantity < 0 {
		p.StockQuantity = 0
	}
	return nil
}

// -----------------------------------------------------------------------------
// Order Repository
// -----------------------------------------------------------------------------

type OrderRepo struct {
	store *MemoryStorage
}

func NewOrderRepo(store *MemoryStorage) *OrderRepo {
	return &OrderRepo{store: store}
}

func (r *OrderRepo) CheckProvisioned(ctx context.Context) error {
	return nil
}

func (r *OrderRepo) Insert(ctx context.Context, order *domain.Order) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id := r.store.nextOrder
	r.store.nextOrder++

	cp := *order
	cp.ID = id
	r.store.orders[id] = &cp
	return id, nil
}

func (r *OrderRepo) InsertItems(ctx context.Context, items []domain.OrderItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, it := range items {
		r.store.orderItems[it.OrderID] = append(r.store.orderItems[it.OrderID], it)
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id int64) (*domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	o, ok := r.store.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}
