package repository

import (
	"context"
	"fmt"

	"shopfront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type paymentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPaymentRepository creates a new PostgreSQL-backed payment attempt ledger.
func NewPaymentRepository(pool *pgxpool.Pool, logger zerolog.Logger) PaymentRepository {
	return &paymentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "payment").Logger(),
	}
}

func (r *paymentRepository) Create(ctx context.Context, a *model.PaymentAttempt) error {
	query := `
		INSERT INTO payment_attempts (id, customer_id, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, a.ID, a.CustomerID, a.Amount, a.Status).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("attempt_id", a.ID.String()).Msg("failed to record payment attempt")
		return fmt.Errorf("failed to record payment attempt: %w", err)
	}
	return nil
}

func (r *paymentRepository) Update(ctx context.Context, a *model.PaymentAttempt) error {
	query := `
		UPDATE payment_attempts
		SET status = $2, provider_ref = $3, provider_state = $4, last_error = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, a.ID, a.Status, a.ProviderRef, a.ProviderState, a.LastError).Scan(&a.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.NewNotFoundError("Payment attempt")
		}
		r.logger.Error().Err(err).Str("attempt_id", a.ID.String()).Msg("failed to update payment attempt")
		return fmt.Errorf("failed to update payment attempt: %w", err)
	}

	r.logger.Debug().
		Str("attempt_id", a.ID.String()).
		Str("status", string(a.Status)).
		Msg("payment attempt updated")
	return nil
}

func (r *paymentRepository) MarkFulfilled(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE payment_attempts SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, model.PaymentFulfilled)
	if err != nil {
		r.logger.Error().Err(err).Str("attempt_id", id.String()).Msg("failed to mark payment fulfilled")
		return fmt.Errorf("failed to mark payment fulfilled: %w", err)
	}
	return nil
}

func (r *paymentRepository) ListByStatus(ctx context.Context, status model.PaymentAttemptStatus) ([]model.PaymentAttempt, error) {
	query := `
		SELECT id, customer_id, amount, status, provider_ref, provider_state, last_error, created_at, updated_at
		FROM payment_attempts
		WHERE status = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		r.logger.Error().Err(err).Str("status", string(status)).Msg("failed to query payment attempts")
		return nil, fmt.Errorf("failed to query payment attempts: %w", err)
	}
	defer rows.Close()

	attempts := []model.PaymentAttempt{}
	for rows.Next() {
		var a model.PaymentAttempt
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Amount, &a.Status, &a.ProviderRef, &a.ProviderState, &a.LastError, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment attempts: %w", err)
	}

	return attempts, nil
}
