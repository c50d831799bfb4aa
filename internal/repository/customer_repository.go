package repository

import (
	"context"
	"fmt"

	"shopfront/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// customerRepository implements the CustomerRepository interface using PostgreSQL.
type customerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool *pgxpool.Pool, logger zerolog.Logger) CustomerRepository {
	return &customerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "customer").Logger(),
	}
}

const customerColumns = `id, email, username, phone, password_hash, role, joined_at`

func scanCustomer(row rowScanner) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.Email, &c.Username, &c.Phone, &c.PasswordHash, &c.Role, &c.JoinedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a customer and fills in its ID and JoinedAt.
func (r *customerRepository) Create(ctx context.Context, c *model.Customer) error {
	if c.Role == "" {
		c.Role = model.RoleCustomer
	}

	query := `
		INSERT INTO customers (email, username, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, joined_at
	`

	err := r.pool.QueryRow(ctx, query, c.Email, c.Username, c.Phone, c.PasswordHash, c.Role).
		Scan(&c.ID, &c.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Debug().Str("email", c.Email).Msg("email already registered")
			return model.NewPersistenceError("Email already registered", err)
		}
		r.logger.Error().Err(err).Str("email", c.Email).Msg("failed to create customer")
		return fmt.Errorf("failed to create customer: %w", err)
	}

	r.logger.Debug().Int64("customer_id", c.ID).Msg("customer created successfully")
	return nil
}

// GetByID retrieves a customer by ID.
func (r *customerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Int64("customer_id", id).Msg("customer not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("customer_id", id).Msg("failed to query customer")
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}

	return c, nil
}

// GetByEmail retrieves a customer by email address.
func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`

	c, err := scanCustomer(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query customer by email")
		return nil, fmt.Errorf("failed to query customer by email: %w", err)
	}

	return c, nil
}

// List returns all customers ordered by join date.
func (r *customerRepository) List(ctx context.Context) ([]model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY joined_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query customers")
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := []model.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan customer row")
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating customer rows")
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

// UpdatePasswordHash replaces the stored hash.
func (r *customerRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE customers SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		r.logger.Error().Err(err).Int64("customer_id", id).Msg("failed to update password")
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError("Customer")
	}
	return nil
}

// SetRole changes the role of the customer with the given email.
func (r *customerRepository) SetRole(ctx context.Context, email string, role model.Role) error {
	if !role.Valid() {
		return model.NewValidationError(map[string]string{"role": fmt.Sprintf("unknown role %q", role)})
	}

	tag, err := r.pool.Exec(ctx, `UPDATE customers SET role = $2 WHERE email = $1`, email, role)
	if err != nil {
		r.logger.Error().Err(err).Str("email", email).Msg("failed to set role")
		return fmt.Errorf("failed to set role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError("Customer")
	}

	r.logger.Info().Str("email", email).Str("role", string(role)).Msg("customer role updated")
	return nil
}
