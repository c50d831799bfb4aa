package repository

import (
	"context"
	"fmt"

	"shopfront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

const cartLineSelect = `
	SELECT c.id, c.customer_id, c.product_id, c.quantity, p.name, p.current_price, p.image_ref, p.stock
	FROM cart_lines c
	JOIN products p ON p.id = c.product_id
`

func scanCartLine(row rowScanner) (*model.CartLine, error) {
	var l model.CartLine
	err := row.Scan(&l.ID, &l.CustomerID, &l.ProductID, &l.Quantity, &l.ProductName, &l.UnitPrice, &l.ImageRef, &l.Stock)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// BeginTx starts a new database transaction.
func (r *cartRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// AddOrIncrement creates a line with quantity 1 or adds one to the existing
// line. The upsert is a single statement so concurrent adds never create
// duplicate lines.
func (r *cartRepository) AddOrIncrement(ctx context.Context, customerID, productID int64) (*model.CartLine, error) {
	query := `
		WITH upserted AS (
			INSERT INTO cart_lines (customer_id, product_id, quantity)
			VALUES ($1, $2, 1)
			ON CONFLICT (customer_id, product_id)
			DO UPDATE SET quantity = cart_lines.quantity + 1
			RETURNING id, customer_id, product_id, quantity
		)
		SELECT u.id, u.customer_id, u.product_id, u.quantity, p.name, p.current_price, p.image_ref, p.stock
		FROM upserted u
		JOIN products p ON p.id = u.product_id
	`

	line, err := scanCartLine(r.pool.QueryRow(ctx, query, customerID, productID))
	if err != nil {
		if isForeignKeyViolation(err) || isNoRows(err) {
			r.logger.Debug().Int64("product_id", productID).Msg("product not found for cart")
			return nil, model.NewNotFoundError("Product")
		}
		r.logger.Error().Err(err).
			Int64("customer_id", customerID).
			Int64("product_id", productID).
			Msg("failed to add cart line")
		return nil, fmt.Errorf("failed to add cart line: %w", err)
	}

	r.logger.Debug().
		Int64("line_id", line.ID).
		Int("quantity", line.Quantity).
		Msg("cart line saved")

	return line, nil
}

// ListByCustomer returns the customer's lines joined with current product values.
func (r *cartRepository) ListByCustomer(ctx context.Context, customerID int64) ([]model.CartLine, error) {
	query := cartLineSelect + `WHERE c.customer_id = $1 ORDER BY c.id`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		r.logger.Error().Err(err).Int64("customer_id", customerID).Msg("failed to query cart lines")
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	lines := []model.CartLine{}
	for rows.Next() {
		l, err := scanCartLine(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart line row")
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, *l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart line rows")
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	return lines, nil
}

// GetForUpdate locks a line within tx.
func (r *cartRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, lineID int64) (*model.CartLine, error) {
	query := cartLineSelect + `WHERE c.id = $1 FOR UPDATE OF c`

	line, err := scanCartLine(tx.QueryRow(ctx, query, lineID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("line_id", lineID).Msg("failed to lock cart line")
		return nil, fmt.Errorf("failed to lock cart line: %w", err)
	}

	return line, nil
}

// SetQuantity updates a line's quantity within tx.
func (r *cartRepository) SetQuantity(ctx context.Context, tx pgx.Tx, lineID int64, quantity int) error {
	_, err := tx.Exec(ctx, `UPDATE cart_lines SET quantity = $2 WHERE id = $1`, lineID, quantity)
	if err != nil {
		r.logger.Error().Err(err).Int64("line_id", lineID).Msg("failed to update cart line")
		return fmt.Errorf("failed to update cart line: %w", err)
	}
	return nil
}

// Delete removes a line within tx.
func (r *cartRepository) Delete(ctx context.Context, tx pgx.Tx, lineID int64) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1`, lineID)
	if err != nil {
		r.logger.Error().Err(err).Int64("line_id", lineID).Msg("failed to delete cart line")
		return fmt.Errorf("failed to delete cart line: %w", err)
	}
	return nil
}

// DeleteLines removes the given lines of a customer's cart within tx and
// reports how many were deleted.
func (r *cartRepository) DeleteLines(ctx context.Context, tx pgx.Tx, customerID int64, lineIDs []int64) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE customer_id = $1 AND id = ANY($2)`, customerID, lineIDs)
	if err != nil {
		r.logger.Error().Err(err).Int64("customer_id", customerID).Msg("failed to clear cart")
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return tag.RowsAffected(), nil
}
