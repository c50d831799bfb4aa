package service

import (
	"context"
	"fmt"

	"shopfront/internal/model"
	"shopfront/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	shippingFee decimal.Decimal
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, shippingFee decimal.Decimal, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		shippingFee: shippingFee,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Add puts one unit of the product in the caller's cart.
func (s *cartService) Add(ctx context.Context, id model.Identity, productID int64) (*model.CartLine, error) {
	if productID <= 0 {
		return nil, model.NewNotFoundError("Product")
	}

	line, err := s.cartRepo.AddOrIncrement(ctx, id.CustomerID, productID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int64("customer_id", id.CustomerID).
		Int64("product_id", productID).
		Int("quantity", line.Quantity).
		Msg("item added to cart")

	return line, nil
}

// Decrement reduces a line by one unit. A line at quantity 1 must be removed
// instead.
func (s *cartService) Decrement(ctx context.Context, id model.Identity, lineID int64) (update *model.CartUpdate, err error) {
	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	line, err := s.ownedLine(ctx, tx, id, lineID)
	if err != nil {
		return nil, err
	}

	if line.Quantity <= 1 {
		err = model.NewInvalidStateError("Quantity is already 1; remove the item instead")
		return nil, err
	}

	newQuantity := line.Quantity - 1
	if err = s.cartRepo.SetQuantity(ctx, tx, lineID, newQuantity); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("line_id", lineID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}

	return s.cartUpdate(ctx, id, lineID, newQuantity)
}

// Remove deletes a line from the caller's cart.
func (s *cartService) Remove(ctx context.Context, id model.Identity, lineID int64) (update *model.CartUpdate, err error) {
	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	if _, err = s.ownedLine(ctx, tx, id, lineID); err != nil {
		return nil, err
	}

	if err = s.cartRepo.Delete(ctx, tx, lineID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("line_id", lineID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}

	return s.cartUpdate(ctx, id, lineID, 0)
}

// View returns the caller's lines and totals at current prices.
func (s *cartService) View(ctx context.Context, id model.Identity) (*model.Cart, error) {
	lines, err := s.cartRepo.ListByCustomer(ctx, id.CustomerID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []model.CartLine{}
	}

	return &model.Cart{
		Lines:  lines,
		Totals: model.ComputeTotals(lines, s.shippingFee),
	}, nil
}

// Totals sums the caller's cart at current prices plus shipping.
func (s *cartService) Totals(ctx context.Context, id model.Identity) (model.CartTotals, error) {
	lines, err := s.cartRepo.ListByCustomer(ctx, id.CustomerID)
	if err != nil {
		return model.CartTotals{}, err
	}
	return model.ComputeTotals(lines, s.shippingFee), nil
}

// ownedLine locks the line and hides lines belonging to other customers.
func (s *cartService) ownedLine(ctx context.Context, tx pgx.Tx, id model.Identity, lineID int64) (*model.CartLine, error) {
	line, err := s.cartRepo.GetForUpdate(ctx, tx, lineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, model.NewNotFoundError("Cart item")
	}
	if line.CustomerID != id.CustomerID {
		s.logger.Warn().
			Int64("customer_id", id.CustomerID).
			Int64("line_id", lineID).
			Msg("cart line belongs to another customer")
		return nil, model.NewNotFoundError("Cart item")
	}
	return line, nil
}

func (s *cartService) cartUpdate(ctx context.Context, id model.Identity, lineID int64, quantity int) (*model.CartUpdate, error) {
	totals, err := s.Totals(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.CartUpdate{
		LineID:   lineID,
		Quantity: quantity,
		Amount:   totals.Subtotal,
		Total:    totals.Total,
	}, nil
}
