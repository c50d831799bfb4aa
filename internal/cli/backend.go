package cli

import (
	"context"
	"fmt"
	"io"

	"shopfront/internal/config"
	"shopfront/internal/database"
	"shopfront/internal/model"
	"shopfront/internal/payment"
	"shopfront/internal/repository"
	"shopfront/internal/seed"
	"shopfront/internal/service"

	"github.com/rs/zerolog"
)

// Backend is what the commands need from the database and services.
type Backend struct {
	Migrate       func(ctx context.Context) error
	ServerVersion func(ctx context.Context) (string, error)

	Customers interface {
		SetRole(ctx context.Context, email string, role model.Role) error
	}
	Products seed.ProductCreator
	Orders   interface {
		ListAll(ctx context.Context) ([]model.Order, error)
	}
	Payments interface {
		Reconcile(ctx context.Context) (*model.ReconcileReport, error)
	}

	Close func()
}

// Opener builds a Backend. Log lines go to logger.
type Opener func(ctx context.Context, logger zerolog.Logger) (*Backend, error)

// OpenBackend connects to the database described by the environment.
func OpenBackend(ctx context.Context, logger zerolog.Logger) (*Backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	paymentRepo := repository.NewPaymentRepository(pool, logger)

	orders := service.NewOrderService(
		cartRepo, productRepo, orderRepo, paymentRepo,
		payment.NewIntaSendClient(cfg.Payment, logger),
		service.CheckoutOptions{
			ShippingFee:   cfg.Shop.ShippingFee,
			Narrative:     cfg.Payment.Narrative,
			RefundRetries: cfg.Payment.RefundRetries,
		},
		logger,
	)

	return &Backend{
		Migrate: func(ctx context.Context) error {
			return database.Migrate(ctx, pool, logger)
		},
		ServerVersion: func(ctx context.Context) (string, error) {
			return database.ServerVersion(ctx, pool)
		},
		Customers: repository.NewCustomerRepository(pool, logger),
		Products:  productRepo,
		Orders:    orderRepo,
		Payments:  orders,
		Close:     pool.Close,
	}, nil
}

// newLogger keeps log lines on w, quiet unless verbose.
func newLogger(opts *RootOptions, w io.Writer) zerolog.Logger {
	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	return config.NewLoggerWithWriter(config.LoggerConfig{Level: level, Format: "console"}, w)
}

// withBackend opens the backend for the duration of fn.
func withBackend(ctx context.Context, opts *RootOptions, errW io.Writer, fn func(b *Backend, logger zerolog.Logger) error) error {
	logger := newLogger(opts, errW)

	b, err := opts.open(ctx, logger)
	if err != nil {
		return err
	}
	if b.Close != nil {
		defer b.Close()
	}

	return fn(b, logger)
}
