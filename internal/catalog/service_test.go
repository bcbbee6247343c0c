package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/vietddude/storefront/internal/core/domain"
)

type fakeProductRepo struct {
	products []domain.Product
	err      error
}

func (f *fakeProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	return f.products, f.err
}

func (f *fakeProductRepo) Get(ctx context.Context, id int64) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	return nil
}

func TestListProducts(t *testing.T) {
	repo := &fakeProductRepo{products: []domain.Product{{ID: 7, Name: "Phone Charger"}}}
	svc := NewService(repo, nil)

	got, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != 7 {
		t.Errorf("ListProducts() = %+v", got)
	}
}

func TestListProductsFallsBackWhenUnprovisioned(t *testing.T) {
	repo := &fakeProductRepo{err: domain.ErrTablesNotFound}
	svc := NewService(repo, nil)

	got, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(got) != 10 {
		t.Errorf("fallback catalog has %d products, want 10", len(got))
	}
}

func TestListProductsPropagatesOtherErrors(t *testing.T) {
	repo := &fakeProductRepo{err: errors.New("connection refused")}
	svc := NewService(repo, nil)

	if _, err := svc.ListProducts(context.Background()); err == nil {
		t.Error("ListProducts() swallowed a non-provisioning error")
	}
}

func TestGetProductFallback(t *testing.T) {
	repo := &fakeProductRepo{err: domain.ErrTablesNotFound}
	svc := NewService(repo, nil)

	p, err := svc.GetProduct(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetProduct() error = %v", err)
	}
	if p == nil || p.Name != "Bluetooth Speaker" {
		t.Errorf("GetProduct(3) = %+v", p)
	}

	missing, err := svc.GetProduct(context.Background(), 999)
	if err != nil || missing != nil {
		t.Errorf("GetProduct(999) = %+v, %v, want nil, nil", missing, err)
	}
}
