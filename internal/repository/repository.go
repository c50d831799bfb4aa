package repository

import (
	"context"

	"shopfront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CustomerRepository defines the interface for customer data access operations.
type CustomerRepository interface {
	// Create inserts a customer and fills in its ID and JoinedAt.
	// A duplicate email yields a persistence domain error.
	Create(ctx context.Context, c *model.Customer) error

	// GetByID returns nil, nil when the customer does not exist.
	GetByID(ctx context.Context, id int64) (*model.Customer, error)

	// GetByEmail returns nil, nil when no customer has the address.
	GetByEmail(ctx context.Context, email string) (*model.Customer, error)

	// List returns all customers ordered by join date.
	List(ctx context.Context) ([]model.Customer, error)

	UpdatePasswordHash(ctx context.Context, id int64, hash string) error

	// SetRole changes the role of the customer with the given email.
	SetRole(ctx context.Context, email string, role model.Role) error
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves products newest first with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// ListAll retrieves the whole catalogue newest first.
	ListAll(ctx context.Context) ([]model.Product, error)

	// GetFlashSale retrieves the products flagged for the home page.
	GetFlashSale(ctx context.Context) ([]model.Product, error)

	// Search matches term as a case-insensitive substring of the name.
	Search(ctx context.Context, term string) ([]model.Product, error)

	// GetByID returns nil, nil when the product does not exist.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id int64) error

	// DecrementStock takes qty units within tx. It reports false without
	// changing anything when fewer than qty units remain.
	DecrementStock(ctx context.Context, tx pgx.Tx, id int64, qty int) (bool, error)
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// AddOrIncrement creates a line with quantity 1 or adds one to the
	// existing line for the same product.
	AddOrIncrement(ctx context.Context, customerID, productID int64) (*model.CartLine, error)

	// ListByCustomer returns the customer's lines joined with current product values.
	ListByCustomer(ctx context.Context, customerID int64) ([]model.CartLine, error)

	// GetForUpdate locks a line within tx. Returns nil, nil when absent.
	GetForUpdate(ctx context.Context, tx pgx.Tx, lineID int64) (*model.CartLine, error)

	SetQuantity(ctx context.Context, tx pgx.Tx, lineID int64, quantity int) error
	Delete(ctx context.Context, tx pgx.Tx, lineID int64) error

	// DeleteLines removes the listed lines owned by customerID within tx.
	DeleteLines(ctx context.Context, tx pgx.Tx, customerID int64, lineIDs []int64) (int64, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrders inserts orders within tx and fills in their IDs.
	CreateOrders(ctx context.Context, tx pgx.Tx, orders []model.Order) error

	// GetByID returns nil, nil when the order does not exist.
	GetByID(ctx context.Context, id int64) (*model.Order, error)

	// ListByCustomer returns a customer's orders, newest first.
	ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error)

	// ListAll returns every order, newest first.
	ListAll(ctx context.Context) ([]model.Order, error)

	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error
}

// PaymentRepository defines the interface for the payment attempt ledger.
type PaymentRepository interface {
	Create(ctx context.Context, a *model.PaymentAttempt) error

	// Update persists status, provider reference, provider state and last error.
	Update(ctx context.Context, a *model.PaymentAttempt) error

	// MarkFulfilled flags the attempt inside the order transaction.
	MarkFulfilled(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	ListByStatus(ctx context.Context, status model.PaymentAttemptStatus) ([]model.PaymentAttempt, error)
}
