package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vietddude/storefront/internal/cart"
	"github.com/vietddude/storefront/internal/catalog"
	"github.com/vietddude/storefront/internal/checkout"
	"github.com/vietddude/storefront/internal/core/domain"
	"github.com/vietddude/storefront/internal/order"
)

const sessionCookie = "cart_session"

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler serves the storefront API.
type Handler struct {
	catalog  *catalog.Service
	orders   *order.Service
	carts    *cart.Store
	checkout *checkout.Service
	checks   map[string]HealthChecker
	log      *slog.Logger
}

// NewHandler wires the API handler. checks maps dependency names to
// their health probes; pass nil when a dependency is not configured.
func NewHandler(
	catalogSvc *catalog.Service,
	orderSvc *order.Service,
	carts *cart.Store,
	checkoutSvc *checkout.Service,
	checks map[string]HealthChecker,
	log *slog.Logger,
) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		catalog:  catalogSvc,
		orders:   orderSvc,
		carts:    carts,
		checkout: checkoutSvc,
		checks:   checks,
		log:      log,
	}
}

// ListProducts serves the catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.log.Error("failed to list products", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch products", "")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct serves one product by ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID", "")
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.log.Error("failed to fetch product", "product_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch product", "")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Product not found", "")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetCart returns the session's cart state.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sid := h.session(w, r)
	writeJSON(w, http.StatusOK, h.carts.Get(sid))
}

// AddCartItem adds one unit of a product to the cart.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		h.log.Error("failed to fetch product", "product_id", req.ProductID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch product", "")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Product not found", "")
		return
	}

	sid := h.session(w, r)
	writeJSON(w, http.StatusOK, h.carts.Dispatch(sid, cart.AddItem{Product: *p}))
}

// UpdateCartItem sets a line's quantity. Zero or negative removes it.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID", "")
		return
	}

	var req UpdateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	sid := h.session(w, r)
	writeJSON(w, http.StatusOK, h.carts.Dispatch(sid, cart.UpdateQuantity{ProductID: id, Quantity: req.Quantity}))
}

// RemoveCartItem deletes a line from the cart.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID", "")
		return
	}

	sid := h.session(w, r)
	writeJSON(w, http.StatusOK, h.carts.Dispatch(sid, cart.RemoveItem{ProductID: id}))
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sid := h.session(w, r)
	writeJSON(w, http.StatusOK, h.carts.Dispatch(sid, cart.ClearCart{}))
}

// AckCartError acknowledges the cart's last rejection message.
func (h *Handler) AckCartError(w http.ResponseWriter, r *http.Request) {
	sid := h.session(w, r)
	writeJSON(w, http.StatusOK, h.carts.Dispatch(sid, cart.AckError{}))
}

// CreateOrder persists an order submitted with its full line snapshot.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	orderID, err := h.orders.Create(r.Context(), order.CreateRequest{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		Items:           req.Items,
		TotalAmount:     req.TotalAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, order.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "Missing required fields", "")
		case errors.Is(err, order.ErrEmptyCart):
			writeError(w, http.StatusBadRequest, "Cart is empty", "")
		case errors.Is(err, domain.ErrTablesNotFound):
			writeError(w, http.StatusServiceUnavailable,
				"Database tables not set up. Please run the SQL scripts first.",
				checkout.CodeTablesNotFound)
		default:
			h.log.Error("failed to create order", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to create order", "")
		}
		return
	}

	writeJSON(w, http.StatusOK, OrderResponse{
		Success: true,
		OrderID: orderID,
		Message: "Order placed successfully",
	})
}

// GetOrder serves one order for the confirmation view.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order ID", "")
		return
	}

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		h.log.Error("failed to fetch order", "order_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch order", "")
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "Order not found", "")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// Checkout submits the session's cart as an order.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	sid := h.session(w, r)
	orderID, err := h.checkout.Submit(r.Context(), checkout.SubmitRequest{
		SessionID:       sid,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
	})
	if err != nil {
		var serr *checkout.SubmitError
		if errors.As(err, &serr) {
			writeError(w, checkoutStatus(serr), serr.Message, serr.Code)
			return
		}
		h.log.Error("checkout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to place order. Please try again.", "")
		return
	}

	writeJSON(w, http.StatusOK, OrderResponse{
		Success: true,
		OrderID: orderID,
		Message: "Order placed successfully",
	})
}

// Health pings the configured dependencies.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.Health(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			deps[name] = "ok"
		}
	}

	writeJSON(w, status, map[string]any{
		"status":       http.StatusText(status),
		"dependencies": deps,
	})
}

// session returns the cart session ID from the request cookie,
// creating one when absent.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	sid := h.carts.NewSession()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

func checkoutStatus(serr *checkout.SubmitError) int {
	switch {
	case serr.Code == checkout.CodeTablesNotFound:
		return http.StatusServiceUnavailable
	case serr.Unwrap() == nil:
		// Rejected locally (empty cart), before any order call.
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}
