package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/vietddude/storefront/internal/cart"
	"github.com/vietddude/storefront/internal/catalog"
	"github.com/vietddude/storefront/internal/checkout"
	"github.com/vietddude/storefront/internal/core/config"
	"github.com/vietddude/storefront/internal/httpapi"
	"github.com/vietddude/storefront/internal/infra/httpclient"
	redisclient "github.com/vietddude/storefront/internal/infra/redis"
	"github.com/vietddude/storefront/internal/infra/storage"
	"github.com/vietddude/storefront/internal/infra/storage/memory"
	"github.com/vietddude/storefront/internal/infra/storage/postgres"
	"github.com/vietddude/storefront/internal/order"
	"github.com/vietddude/storefront/internal/telemetry"
)

// Storefront is the main application struct that owns the service
// dependencies and the HTTP server lifecycle.
type Storefront struct {
	cfg         *config.AppConfig
	server      *http.Server
	tracker     *telemetry.Tracker
	db          *postgres.DB
	redisClient *redisclient.Client
	log         *slog.Logger
}

// NewStorefront creates a Storefront instance with all dependencies
// initialized. With no database URL configured it runs entirely in
// memory, seeded with the sample catalog.
func NewStorefront(cfg *config.AppConfig) (*Storefront, error) {
	log := slog.Default()

	// 1. Initialize Storage
	var productRepo storage.ProductRepository
	var orderRepo storage.OrderRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		// Run migrations
		// Note: Goose needs direct *sql.DB which sqlx.DB wraps
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		productRepo = postgres.NewProductRepo(db)
		orderRepo = postgres.NewOrderRepo(db)
		log.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		store.Seed(catalog.SampleProducts())
		productRepo = memory.NewProductRepo(store)
		orderRepo = memory.NewOrderRepo(store)
		log.Info("Using Memory storage")
	}

	// 2. Initialize Redis-backed telemetry queue when available
	var redisClient *redisclient.Client
	var queue telemetry.Queue
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, telemetry queue kept in memory", "error", err)
		} else {
			queue = redisclient.NewEventQueue(redisClient, "")
			log.Info("Using Redis telemetry queue")
		}
	}

	// 3. Telemetry and the resilient outbound client
	tracker := telemetry.New(telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		URL:         cfg.Telemetry.URL,
		APIKey:      cfg.Telemetry.APIKey,
		Environment: cfg.Telemetry.Environment,
		Timeout:     time.Duration(cfg.Telemetry.TimeoutMS) * time.Millisecond,
		Retries:     cfg.Telemetry.Retries,
	}, queue, log)
	client := httpclient.NewClient(tracker, log)

	// 4. Services
	carts := cart.NewStore()
	catalogSvc := catalog.NewService(productRepo, log)
	orderSvc := order.NewService(orderRepo, productRepo, log)
	checkoutSvc := checkout.NewService(carts, client, tracker, checkout.Config{
		OrdersURL: cfg.OrdersAPI.BaseURL,
		External: checkout.ExternalConfig{
			Enabled: cfg.ExternalOrder.Enabled,
			URL:     cfg.ExternalOrder.URL,
			Timeout: time.Duration(cfg.ExternalOrder.TimeoutMS) * time.Millisecond,
			Retries: cfg.ExternalOrder.Retries,
		},
	}, log)

	// 5. HTTP surface
	checks := make(map[string]httpapi.HealthChecker)
	if db != nil {
		checks["database"] = db
	}
	if redisClient != nil {
		checks["redis"] = redisClient
	}
	handler := httpapi.NewHandler(catalogSvc, orderSvc, carts, checkoutSvc, checks, log)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           httpapi.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Storefront{
		cfg:         cfg,
		server:      server,
		tracker:     tracker,
		db:          db,
		redisClient: redisClient,
		log:         log,
	}, nil
}

// Start starts the HTTP server and the telemetry flush worker.
func (s *Storefront) Start(ctx context.Context) error {
	go func() {
		s.log.Info("HTTP server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server failed", "error", err)
		}
	}()

	go s.runQueueFlusher(ctx)
	return nil
}

// Stop stops the storefront.
func (s *Storefront) Stop(ctx context.Context) error {
	s.log.Info("Stopping Storefront...")

	if err := s.server.Shutdown(ctx); err != nil {
		s.log.Warn("HTTP server shutdown failed", "error", err)
	}

	// Let in-flight telemetry deliveries settle before closing
	s.tracker.Close()

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warn("Failed to close database", "error", err)
		}
	}
	return nil
}

// runQueueFlusher periodically redelivers telemetry events that failed
// and were parked in the durable queue.
func (s *Storefront) runQueueFlusher(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.tracker.FlushQueued(ctx); err != nil {
				s.log.Debug("Telemetry queue flush incomplete", "error", err)
			}
		}
	}
}
