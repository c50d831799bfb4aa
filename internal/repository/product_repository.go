package repository

import (
	"context"
	"fmt"
	"strings"

	"shopfront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = `id, name, current_price, previous_price, stock, image_ref, flash_sale, added_at`

func scanProduct(row rowScanner) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.CurrentPrice, &p.PreviousPrice, &p.Stock, &p.ImageRef, &p.FlashSale, &p.AddedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) queryProducts(ctx context.Context, op, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("op", op).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetAll retrieves products newest first with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY added_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	return r.queryProducts(ctx, "get_all", query, limit, offset)
}

// ListAll retrieves the whole catalogue newest first.
func (r *productRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY added_at DESC, id DESC
	`
	return r.queryProducts(ctx, "list_all", query)
}

// GetFlashSale retrieves the products flagged for the home page.
func (r *productRepository) GetFlashSale(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE flash_sale
		ORDER BY added_at DESC, id DESC
	`
	return r.queryProducts(ctx, "get_flash_sale", query)
}

// Search matches term as a case-insensitive substring of the name.
// LIKE metacharacters in term are matched literally.
func (r *productRepository) Search(ctx context.Context, term string) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE $1 ESCAPE '\'
		ORDER BY name, id
	`
	return r.queryProducts(ctx, "search", query, "%"+escapeLike(term)+"%")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// Create inserts a product and fills in its ID and AddedAt.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (name, current_price, previous_price, stock, image_ref, flash_sale)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, added_at
	`

	err := r.pool.QueryRow(ctx, query, p.Name, p.CurrentPrice, p.PreviousPrice, p.Stock, p.ImageRef, p.FlashSale).
		Scan(&p.ID, &p.AddedAt)
	if err != nil {
		if isCheckViolation(err) {
			return model.NewPersistenceError("Product values violate catalogue constraints", err)
		}
		r.logger.Error().Err(err).Str("name", p.Name).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Int64("product_id", p.ID).Msg("product created successfully")
	return nil
}

// Update replaces the editable fields of a product.
func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, current_price = $3, previous_price = $4, stock = $5, image_ref = $6, flash_sale = $7
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, p.ID, p.Name, p.CurrentPrice, p.PreviousPrice, p.Stock, p.ImageRef, p.FlashSale)
	if err != nil {
		if isCheckViolation(err) {
			return model.NewPersistenceError("Product values violate catalogue constraints", err)
		}
		r.logger.Error().Err(err).Int64("product_id", p.ID).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError("Product")
	}

	return nil
}

// Delete removes a product. Products referenced by orders cannot be deleted.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			r.logger.Warn().Int64("product_id", id).Msg("product has orders, refusing delete")
			return model.NewPersistenceError("Product has orders and cannot be deleted", err)
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError("Product")
	}

	r.logger.Debug().Int64("product_id", id).Msg("product deleted")
	return nil
}

// DecrementStock takes qty units within tx when enough remain. The
// conditional update holds the row lock until tx ends, so concurrent
// checkouts of the same product serialize here.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, id int64, qty int) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`, id, qty)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Int("quantity", qty).Msg("failed to decrement stock")
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
