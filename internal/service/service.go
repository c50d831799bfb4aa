package service

import (
	"context"
	"errors"
	"io"
	"time"

	"shopfront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// AuthService defines operations for registration, login and sessions.
type AuthService interface {
	// Register validates req and creates a customer with a hashed password.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.Customer, error)

	// Login verifies credentials and issues a session token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error)

	// Authenticate resolves a session token to the caller's current identity.
	Authenticate(ctx context.Context, token string) (model.Identity, error)

	// Profile returns a customer record visible to id.
	Profile(ctx context.Context, id model.Identity, customerID int64) (*model.Customer, error)

	// ChangePassword replaces the caller's password after verifying the current one.
	ChangePassword(ctx context.Context, id model.Identity, req *model.ChangePasswordRequest) error
}

// CatalogService defines the public read operations on products.
type CatalogService interface {
	// Home returns the products flagged for the flash sale.
	Home(ctx context.Context) ([]model.Product, error)

	// List retrieves products with pagination.
	List(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// Search returns products whose name contains term, ignoring case.
	Search(ctx context.Context, term string) ([]model.Product, error)
}

// CartService defines the cart mutations available to a signed-in customer.
type CartService interface {
	Add(ctx context.Context, id model.Identity, productID int64) (*model.CartLine, error)
	Decrement(ctx context.Context, id model.Identity, lineID int64) (*model.CartUpdate, error)
	Remove(ctx context.Context, id model.Identity, lineID int64) (*model.CartUpdate, error)
	View(ctx context.Context, id model.Identity) (*model.Cart, error)
	Totals(ctx context.Context, id model.Identity) (model.CartTotals, error)
}

// OrderService defines checkout and order history.
type OrderService interface {
	// PlaceOrder charges the caller for their cart and converts it into orders.
	PlaceOrder(ctx context.Context, id model.Identity, req *model.PlaceOrderRequest) (*model.PlaceOrderResult, error)

	// History returns the caller's orders, newest first.
	History(ctx context.Context, id model.Identity) ([]model.Order, error)

	// Reconcile retries refunds that previously failed.
	Reconcile(ctx context.Context) (*model.ReconcileReport, error)
}

// AdminService defines catalogue, order and customer management.
// Every operation checks the caller's capabilities.
type AdminService interface {
	CreateProduct(ctx context.Context, id model.Identity, in *model.ProductInput, image *model.Upload) (*model.Product, error)
	UpdateProduct(ctx context.Context, id model.Identity, productID int64, in *model.ProductInput, image *model.Upload) (*model.Product, error)
	DeleteProduct(ctx context.Context, id model.Identity, productID int64) error
	ListProducts(ctx context.Context, id model.Identity) ([]model.Product, error)
	ExportProducts(ctx context.Context, id model.Identity, w io.Writer) error

	ListOrders(ctx context.Context, id model.Identity) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id model.Identity, orderID int64, status string) (*model.Order, error)

	ListCustomers(ctx context.Context, id model.Identity) ([]model.Customer, error)
}

// SessionTokens issues and verifies session tokens.
type SessionTokens interface {
	Issue(c *model.Customer) (string, time.Time, error)
	Parse(token string) (int64, error)
}

// rollbackOnError rolls tx back when *err is set. Deferred right after
// BeginTx; a tx that already committed is left alone.
func rollbackOnError(ctx context.Context, tx pgx.Tx, err *error, logger zerolog.Logger) {
	if *err == nil {
		return
	}
	if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
		logger.Error().Err(rbErr).Msg("failed to rollback transaction")
	}
}
