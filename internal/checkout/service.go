package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vietddude/storefront/internal/cart"
	"github.com/vietddude/storefront/internal/core/domain"
	"github.com/vietddude/storefront/internal/infra/httpclient"
	"github.com/vietddude/storefront/internal/telemetry"
)

// CodeTablesNotFound marks an order rejection caused by missing tables.
const CodeTablesNotFound = "TABLES_NOT_FOUND"

// ExternalConfig gates the optional external order-service notification.
type ExternalConfig struct {
	Enabled bool
	URL     string
	Timeout time.Duration
	Retries int
}

// Config holds checkout settings.
type Config struct {
	// OrdersURL is the base URL of the order API. Usually this
	// process's own listen address.
	OrdersURL string
	External  ExternalConfig
}

// SubmitRequest carries the checkout form for one cart session.
type SubmitRequest struct {
	SessionID       string
	CustomerName    string
	CustomerEmail   string
	CustomerAddress string
}

// SubmitError is a failed submission with a message fit to show the
// customer. The cart is left intact so they can retry.
type SubmitError struct {
	Message string
	Code    string
	cause   error
}

func (e *SubmitError) Error() string { return e.Message }
func (e *SubmitError) Unwrap() error { return e.cause }

type orderPayload struct {
	CustomerName    string             `json:"customerName"`
	CustomerEmail   string             `json:"customerEmail"`
	CustomerAddress string             `json:"customerAddress"`
	Items           []domain.OrderLine `json:"items"`
	TotalAmount     float64            `json:"totalAmount"`
}

type orderResponse struct {
	Success bool  `json:"success"`
	OrderID int64 `json:"orderId"`
}

type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Service drives order submission: telemetry, the optional external
// order service, the order API call, and clearing the cart on success.
type Service struct {
	carts   *cart.Store
	client  *httpclient.Client
	tracker *telemetry.Tracker
	cfg     Config
	log     *slog.Logger
}

func NewService(carts *cart.Store, client *httpclient.Client, tracker *telemetry.Tracker, cfg Config, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{carts: carts, client: client, tracker: tracker, cfg: cfg, log: log}
}

// Submit places the order for a cart session. On success the cart is
// cleared and the new order ID returned. On failure the cart is left
// untouched and the returned *SubmitError carries a customer-facing
// message.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (int64, error) {
	state := s.carts.Get(req.SessionID)
	if len(state.Items) == 0 {
		return 0, &SubmitError{Message: "Your cart is empty. Add some products before checking out."}
	}

	s.tracker.Track("order_attempt", map[string]any{
		"item_count": len(state.Items),
		"total":      state.Total,
	})

	if s.cfg.External.Enabled {
		s.notifyExternal(ctx, req, state)
	}

	lines := make([]domain.OrderLine, 0, len(state.Items))
	for _, it := range state.Items {
		lines = append(lines, domain.OrderLine{Product: it.Product, Quantity: it.Quantity})
	}
	body, err := json.Marshal(orderPayload{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		Items:           lines,
		TotalAmount:     state.Total,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to encode order: %w", err)
	}

	var out orderResponse
	callErr := s.client.DoJSON(ctx, "orders_api", httpclient.Request{
		Method: http.MethodPost,
		URL:    s.cfg.OrdersURL + "/api/orders",
		Body:   body,
	}, &out, httpclient.CallOptions{
		Timeout:     15 * time.Second,
		Retries:     0,
		TrackErrors: true,
	})
	if callErr != nil {
		serr := submitFailure(callErr)
		s.tracker.Track("order_failed", map[string]any{
			"error": serr.Message,
			"code":  serr.Code,
			"total": state.Total,
		})
		s.log.Error("order submission failed", "error", callErr, "code", serr.Code)
		return 0, serr
	}

	s.tracker.Track("order_success", map[string]any{
		"order_id":   out.OrderID,
		"item_count": len(state.Items),
		"total":      state.Total,
	})
	s.carts.Dispatch(req.SessionID, cart.ClearCart{})
	s.log.Info("order placed", "order_id", out.OrderID, "total", state.Total)
	return out.OrderID, nil
}

// notifyExternal pings the external order service. Its failure is
// recorded and swallowed: the customer's order does not depend on it.
func (s *Service) notifyExternal(ctx context.Context, req SubmitRequest, state cart.State) {
	payload, err := json.Marshal(map[string]any{
		"customer_email": req.CustomerEmail,
		"item_count":     len(state.Items),
		"total":          state.Total,
	})
	if err != nil {
		return
	}

	_, err = s.client.Do(ctx, "external_order_service", httpclient.Request{
		Method: http.MethodPost,
		URL:    s.cfg.External.URL,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   payload,
	}, httpclient.CallOptions{
		Timeout:           s.cfg.External.Timeout,
		Retries:           s.cfg.External.Retries,
		UseCircuitBreaker: true,
		TrackErrors:       true,
	})
	if err != nil {
		s.log.Warn("external order service unavailable", "error", err)
		s.tracker.Track("external_order_failed", map[string]any{
			"error": err.Error(),
		})
	}
}

// submitFailure turns a failed order call into a customer-facing error.
// A structured rejection from the order API wins over the transport
// classification.
func submitFailure(err error) *SubmitError {
	var nerr *httpclient.NetworkError
	if !errors.As(err, &nerr) {
		return &SubmitError{Message: "Failed to place order. Please try again.", cause: err}
	}

	switch nerr.Kind {
	case httpclient.KindHTTP:
		var env errorEnvelope
		if json.Unmarshal(nerr.Body, &env) == nil {
			if env.Code == CodeTablesNotFound {
				return &SubmitError{
					Message: "Database setup required. Please run the SQL scripts to set up the database tables first.",
					Code:    CodeTablesNotFound,
					cause:   err,
				}
			}
			if env.Error != "" {
				return &SubmitError{Message: env.Error, Code: env.Code, cause: err}
			}
		}
	case httpclient.KindTimeout:
		return &SubmitError{
			Message: "Request timed out. Please check your connection and try again.",
			cause:   err,
		}
	case httpclient.KindNetwork:
		return &SubmitError{
			Message: "Network error occurred. Please check your internet connection and try again.",
			cause:   err,
		}
	}
	return &SubmitError{Message: "Failed to place order. Please try again.", cause: err}
}
