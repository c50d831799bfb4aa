package repository

import (
	"context"
	"testing"
	"time"

	"shopfront/internal/database"
	"shopfront/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the application
// schema and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// seedCustomer inserts a customer with a throwaway hash.
func seedCustomer(t *testing.T, pool *pgxpool.Pool, email string) *model.Customer {
	t.Helper()

	c := &model.Customer{Email: email, Username: "user", PasswordHash: "x", Role: model.RoleCustomer}
	err := pool.QueryRow(context.Background(), `
		INSERT INTO customers (email, username, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, joined_at
	`, c.Email, c.Username, c.PasswordHash, c.Role).Scan(&c.ID, &c.JoinedAt)
	require.NoError(t, err)
	return c
}

// seedProduct inserts a product with the given name, price and stock.
func seedProduct(t *testing.T, pool *pgxpool.Pool, name string, price int64, stock int) *model.Product {
	t.Helper()

	p := &model.Product{
		Name:          name,
		CurrentPrice:  decimal.NewFromInt(price),
		PreviousPrice: decimal.NewFromInt(price + 100),
		Stock:         stock,
		ImageRef:      "media/" + name + ".jpg",
	}
	err := pool.QueryRow(context.Background(), `
		INSERT INTO products (name, current_price, previous_price, stock, image_ref, flash_sale)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, added_at
	`, p.Name, p.CurrentPrice, p.PreviousPrice, p.Stock, p.ImageRef, p.FlashSale).Scan(&p.ID, &p.AddedAt)
	require.NoError(t, err)
	return p
}

func productStock(t *testing.T, pool *pgxpool.Pool, id int64) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(context.Background(), `SELECT stock FROM products WHERE id = $1`, id).Scan(&stock)
	require.NoError(t, err)
	return stock
}
