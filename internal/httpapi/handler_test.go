package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/vietddude/storefront/internal/cart"
	"github.com/vietddude/storefront/internal/catalog"
	"github.com/vietddude/storefront/internal/checkout"
	"github.com/vietddude/storefront/internal/core/domain"
	"github.com/vietddude/storefront/internal/infra/httpclient"
	"github.com/vietddude/storefront/internal/infra/storage"
	"github.com/vietddude/storefront/internal/infra/storage/memory"
	"github.com/vietddude/storefront/internal/order"
	"github.com/vietddude/storefront/internal/telemetry"
)

type apiFixture struct {
	srv    *httptest.Server
	client *http.Client
	carts  *cart.Store
	store  *memory.MemoryStorage
}

// newFixture brings up the full API on a real listener so checkout can
// call back into its own orders endpoint.
func newFixture(t *testing.T, orderRepo storage.OrderRepository) *apiFixture {
	t.Helper()

	store := memory.NewMemoryStorage()
	store.Seed(catalog.SampleProducts())
	if orderRepo == nil {
		orderRepo = memory.NewOrderRepo(store)
	}
	products := memory.NewProductRepo(store)

	carts := cart.NewStore()
	catalogSvc := catalog.NewService(products, nil)
	orderSvc := order.NewService(orderRepo, products, nil)
	tracker := telemetry.New(telemetry.Config{Enabled: false}, nil, nil)

	// The listener is bound up front so the checkout service can be
	// configured with the server's own address.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	baseURL := "http://" + l.Addr().String()

	checkoutSvc := checkout.NewService(carts, httpclient.NewClient(nil, nil), tracker,
		checkout.Config{OrdersURL: baseURL}, nil)

	h := NewHandler(catalogSvc, orderSvc, carts, checkoutSvc, nil, nil)
	srv := httptest.NewUnstartedServer(NewRouter(h))
	srv.Listener.Close()
	srv.Listener = l
	srv.Start()
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	return &apiFixture{
		srv:    srv,
		client: &http.Client{Jar: jar},
		carts:  carts,
		store:  store,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, f.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out bytes.Buffer
	out.ReadFrom(resp.Body)
	return resp, out.Bytes()
}

func TestListProducts(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodGet, "/api/products", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}

	var products []domain.Product
	if err := json.Unmarshal(body, &products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) != 10 {
		t.Errorf("products = %d, want 10", len(products))
	}
}

func TestGetProduct(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodGet, "/api/products/3", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var p domain.Product
	json.Unmarshal(body, &p)
	if p.Name != "Bluetooth Speaker" {
		t.Errorf("product 3 = %q", p.Name)
	}

	resp, _ = f.do(t, http.MethodGet, "/api/products/999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("absent product status = %d, want 404", resp.StatusCode)
	}
}

func TestCartFlow(t *testing.T) {
	f := newFixture(t, nil)

	addItem := func(id int64) cart.State {
		t.Helper()
		resp, body := f.do(t, http.MethodPost, "/api/cart/items", AddCartItemRequest{ProductID: id})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add item status = %d, body %s", resp.StatusCode, body)
		}
		var st cart.State
		json.Unmarshal(body, &st)
		return st
	}

	// The cap bites on the fourth add of the same product.
	for i := 0; i < 3; i++ {
		addItem(1)
	}
	st := addItem(1)
	if len(st.Items) != 1 || st.Items[0].Quantity != 3 {
		t.Fatalf("cart after capped adds = %+v", st)
	}
	if st.LastError == "" {
		t.Error("expected a rejection message on the capped add")
	}

	// Acknowledge the rejection.
	resp, body := f.do(t, http.MethodDelete, "/api/cart/error", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ack status = %d", resp.StatusCode)
	}
	json.Unmarshal(body, &st)
	if st.LastError != "" {
		t.Errorf("rejection message survived acknowledgement: %q", st.LastError)
	}

	// Update quantity down, then remove.
	resp, body = f.do(t, http.MethodPut, "/api/cart/items/1", UpdateCartItemRequest{Quantity: 2})
	json.Unmarshal(body, &st)
	if st.Items[0].Quantity != 2 {
		t.Errorf("quantity after update = %d, want 2", st.Items[0].Quantity)
	}

	resp, body = f.do(t, http.MethodDelete, "/api/cart/items/1", nil)
	json.Unmarshal(body, &st)
	if len(st.Items) != 0 {
		t.Errorf("cart not empty after remove: %+v", st)
	}

	// Unknown products can't be added.
	resp, _ = f.do(t, http.MethodPost, "/api/cart/items", AddCartItemRequest{ProductID: 999})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown product add status = %d, want 404", resp.StatusCode)
	}
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t, nil)

	req := CreateOrderRequest{
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		CustomerAddress: "12 Analytical Way",
		Items: []domain.OrderLine{
			{Product: domain.Product{ID: 1, Price: 99.99}, Quantity: 1},
		},
		TotalAmount: 99.99,
	}

	resp, body := f.do(t, http.MethodPost, "/api/orders", req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var out OrderResponse
	json.Unmarshal(body, &out)
	if !out.Success || out.OrderID == 0 {
		t.Fatalf("response = %+v", out)
	}

	resp, body = f.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", out.OrderID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get order status = %d", resp.StatusCode)
	}
	var o domain.Order
	json.Unmarshal(body, &o)
	if o.CustomerName != "Ada Lovelace" || o.Status != domain.OrderStatusPending {
		t.Errorf("order = %+v", o)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodPost, "/api/orders", CreateOrderRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var e ErrorResponse
	json.Unmarshal(body, &e)
	if e.Error != "Missing required fields" {
		t.Errorf("error = %q", e.Error)
	}
}

type unprovisionedOrderRepo struct{}

func (unprovisionedOrderRepo) CheckProvisioned(ctx context.Context) error { return domain.ErrTablesNotFound }
func (unprovisionedOrderRepo) Insert(ctx context.Context, o *domain.Order) (int64, error) {
	return 0, domain.ErrTablesNotFound
}
func (unprovisionedOrderRepo) InsertItems(ctx context.Context, items []domain.OrderItem) error {
	return domain.ErrTablesNotFound
}
func (unprovisionedOrderRepo) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return nil, domain.ErrTablesNotFound
}

func TestCreateOrderTablesNotFound(t *testing.T) {
	f := newFixture(t, unprovisionedOrderRepo{})

	req := CreateOrderRequest{
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		CustomerAddress: "12 Analytical Way",
		Items: []domain.OrderLine{
			{Product: domain.Product{ID: 1, Price: 99.99}, Quantity: 1},
		},
		TotalAmount: 99.99,
	}

	resp, body := f.do(t, http.MethodPost, "/api/orders", req)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	var e ErrorResponse
	json.Unmarshal(body, &e)
	if e.Code != checkout.CodeTablesNotFound {
		t.Errorf("code = %q, want %q", e.Code, checkout.CodeTablesNotFound)
	}
}

func TestCheckoutEndToEnd(t *testing.T) {
	f := newFixture(t, nil)

	for i := 0; i < 2; i++ {
		resp, body := f.do(t, http.MethodPost, "/api/cart/items", AddCartItemRequest{ProductID: 1})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add item status = %d, body %s", resp.StatusCode, body)
		}
	}

	resp, body := f.do(t, http.MethodPost, "/api/checkout", CheckoutRequest{
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		CustomerAddress: "12 Analytical Way",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("checkout status = %d, body %s", resp.StatusCode, body)
	}
	var out OrderResponse
	json.Unmarshal(body, &out)
	if !out.Success || out.OrderID == 0 {
		t.Fatalf("checkout response = %+v", out)
	}

	// Cart is cleared on success.
	resp, body = f.do(t, http.MethodGet, "/api/cart", nil)
	var st cart.State
	json.Unmarshal(body, &st)
	if len(st.Items) != 0 {
		t.Errorf("cart after checkout = %+v", st)
	}

	// Stock moved through the full path.
	p, _ := memory.NewProductRepo(f.store).Get(context.Background(), 1)
	if p.StockQuantity != 23 {
		t.Errorf("stock = %d, want 23", p.StockQuantity)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodPost, "/api/checkout", CheckoutRequest{
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		CustomerAddress: "12 Analytical Way",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", resp.StatusCode, body)
	}
}

func TestCheckoutTablesNotFound(t *testing.T) {
	f := newFixture(t, unprovisionedOrderRepo{})

	f.do(t, http.MethodPost, "/api/cart/items", AddCartItemRequest{ProductID: 1})

	resp, body := f.do(t, http.MethodPost, "/api/checkout", CheckoutRequest{
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		CustomerAddress: "12 Analytical Way",
	})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503, body %s", resp.StatusCode, body)
	}
	var e ErrorResponse
	json.Unmarshal(body, &e)
	if e.Code != checkout.CodeTablesNotFound {
		t.Errorf("code = %q", e.Code)
	}

	// The cart survives the failure.
	_, body = f.do(t, http.MethodGet, "/api/cart", nil)
	var st cart.State
	json.Unmarshal(body, &st)
	if len(st.Items) != 1 {
		t.Errorf("cart after failed checkout = %+v", st)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
}
