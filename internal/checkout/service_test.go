package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vietddude/storefront/internal/cart"
	"github.com/vietddude/storefront/internal/core/domain"
	"github.com/vietddude/storefront/internal/infra/httpclient"
	"github.com/vietddude/storefront/internal/telemetry"
)

func silentTracker() *telemetry.Tracker {
	return telemetry.New(telemetry.Config{Enabled: false}, nil, nil)
}

func seededCart(t *testing.T) (*cart.Store, string) {
	t.Helper()
	carts := cart.NewStore()
	sid := carts.NewSession()
	carts.Dispatch(sid, cart.AddItem{Product: domain.Product{
		ID: 1, Name: "Wireless Headphones", Price: 99.99, StockQuantity: 25,
	}})
	carts.Dispatch(sid, cart.AddItem{Product: domain.Product{
		ID: 5, Name: "USB-C Cable", Price: 14.99, StockQuantity: 100,
	}})
	return carts, sid
}

func newService(carts *cart.Store, cfg Config) *Service {
	return NewService(carts, httpclient.NewClient(nil, nil), silentTracker(), cfg, nil)
}

func submitForm(sid string) SubmitRequest {
	return SubmitRequest{
		SessionID:       sid,
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		CustomerAddress: "12 Analytical Way",
	}
}

func TestSubmit(t *testing.T) {
	var got orderPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		json.NewEncoder(w).Encode(orderResponse{Success: true, OrderID: 42})
	}))
	defer srv.Close()

	carts, sid := seededCart(t)
	svc := newService(carts, Config{OrdersURL: srv.URL})

	id, err := svc.Submit(context.Background(), submitForm(sid))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if id != 42 {
		t.Errorf("order ID = %d, want 42", id)
	}

	if got.CustomerName != "Ada Lovelace" || got.CustomerEmail != "ada@example.com" {
		t.Errorf("payload customer = %q / %q", got.CustomerName, got.CustomerEmail)
	}
	if len(got.Items) != 2 {
		t.Fatalf("payload items = %d, want 2", len(got.Items))
	}
	if got.TotalAmount != 99.99+14.99 {
		t.Errorf("payload total = %v", got.TotalAmount)
	}

	if state := carts.Get(sid); len(state.Items) != 0 || state.Total != 0 {
		t.Errorf("cart not cleared after success: %+v", state)
	}
}

func TestSubmitEmptyCart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("order API must not be called for an empty cart")
	}))
	defer srv.Close()

	carts := cart.NewStore()
	sid := carts.NewSession()
	svc := newService(carts, Config{OrdersURL: srv.URL})

	_, err := svc.Submit(context.Background(), submitForm(sid))
	var serr *SubmitError
	if !errors.As(err, &serr) {
		t.Fatalf("Submit() error = %v, want *SubmitError", err)
	}
	if !strings.Contains(serr.Message, "cart is empty") {
		t.Errorf("message = %q", serr.Message)
	}
}

func TestSubmitFailureKeepsCart(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantCode    string
		wantMessage string
	}{
		{
			name:        "missing tables",
			status:      http.StatusServiceUnavailable,
			body:        `{"error":"Database tables not set up. Please run the SQL scripts first.","code":"TABLES_NOT_FOUND"}`,
			wantCode:    CodeTablesNotFound,
			wantMessage: "Database setup required",
		},
		{
			name:        "validation rejection",
			status:      http.StatusBadRequest,
			body:        `{"error":"Missing required fields"}`,
			wantMessage: "Missing required fields",
		},
		{
			name:        "opaque server error",
			status:      http.StatusInternalServerError,
			body:        `boom`,
			wantMessage: "Failed to place order. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			carts, sid := seededCart(t)
			svc := newService(carts, Config{OrdersURL: srv.URL})

			_, err := svc.Submit(context.Background(), submitForm(sid))
			var serr *SubmitError
			if !errors.As(err, &serr) {
				t.Fatalf("Submit() error = %v, want *SubmitError", err)
			}
			if serr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", serr.Code, tt.wantCode)
			}
			if !strings.Contains(serr.Message, tt.wantMessage) {
				t.Errorf("message = %q, want it to contain %q", serr.Message, tt.wantMessage)
			}

			if state := carts.Get(sid); len(state.Items) != 2 {
				t.Errorf("cart changed after failure: %+v", state)
			}
		})
	}
}

func TestSubmitExternalFailureNotFatal(t *testing.T) {
	var externalHits atomic.Int32
	external := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		externalHits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer external.Close()

	orders := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(orderResponse{Success: true, OrderID: 7})
	}))
	defer orders.Close()

	carts, sid := seededCart(t)
	svc := newService(carts, Config{
		OrdersURL: orders.URL,
		External: ExternalConfig{
			Enabled: true,
			URL:     external.URL,
			Timeout: time.Second,
			Retries: 1,
		},
	})

	id, err := svc.Submit(context.Background(), submitForm(sid))
	if err != nil {
		t.Fatalf("Submit() error = %v, external failures must not abort the order", err)
	}
	if id != 7 {
		t.Errorf("order ID = %d, want 7", id)
	}
	if hits := externalHits.Load(); hits != 2 {
		t.Errorf("external service hit %d times, want 2 (one retry)", hits)
	}
}

func TestSubmitFailureClassification(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{
			name:    "timeout",
			err:     &httpclient.NetworkError{Kind: httpclient.KindTimeout, Message: "request timed out after 15s"},
			message: "Request timed out. Please check your connection and try again.",
		},
		{
			name:    "network",
			err:     &httpclient.NetworkError{Kind: httpclient.KindNetwork, Message: "connection refused"},
			message: "Network error occurred. Please check your internet connection and try again.",
		},
		{
			name:    "plain error",
			err:     errors.New("boom"),
			message: "Failed to place order. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serr := submitFailure(tt.err)
			if serr.Message != tt.message {
				t.Errorf("message = %q, want %q", serr.Message, tt.message)
			}
			if !errors.Is(serr, tt.err) {
				t.Error("cause not preserved")
			}
		})
	}
}
