package service

import (
	"context"
	"fmt"
	"strings"

	"shopfront/internal/model"
	"shopfront/internal/payment"
	"shopfront/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultNarrative = "Purchase of goods"
	refundReason     = "order could not be fulfilled"
)

// CheckoutOptions carries the order service settings.
type CheckoutOptions struct {
	ShippingFee   decimal.Decimal
	Narrative     string
	RefundRetries int
}

// orderService implements OrderService.
type orderService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	provider    payment.Provider
	opts        CheckoutOptions
	newBackOff  func() backoff.BackOff
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	provider payment.Provider,
	opts CheckoutOptions,
	logger zerolog.Logger,
) OrderService {
	if opts.Narrative == "" {
		opts.Narrative = defaultNarrative
	}
	if opts.RefundRetries < 0 {
		opts.RefundRetries = 0
	}

	retries := uint64(opts.RefundRetries)
	return &orderService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		provider:    provider,
		opts:        opts,
		newBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries)
		},
		logger: logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder charges the caller for their cart, then converts the cart into
// orders in one transaction. A charge that cannot be fulfilled is refunded.
func (s *orderService) PlaceOrder(ctx context.Context, id model.Identity, req *model.PlaceOrderRequest) (*model.PlaceOrderResult, error) {
	lines, err := s.cartRepo.ListByCustomer(ctx, id.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, model.NewDomainError(model.ErrCodeEmptyCart, "Your cart is empty")
	}

	// Fail before charging when the current stock already cannot cover a line.
	for _, line := range lines {
		if line.Stock < line.Quantity {
			s.logger.Info().
				Int64("product_id", line.ProductID).
				Int("stock", line.Stock).
				Int("quantity", line.Quantity).
				Msg("checkout rejected, insufficient stock")
			return nil, model.NewInsufficientStockError(line.ProductName)
		}
	}

	phone := id.Phone
	if req != nil && strings.TrimSpace(req.Phone) != "" {
		phone = strings.TrimSpace(req.Phone)
	}
	if phone == "" {
		return nil, model.NewValidationError(map[string]string{"phone": "phone number is required for payment"})
	}

	totals := model.ComputeTotals(lines, s.opts.ShippingFee)

	attempt, res, err := s.charge(ctx, id, phone, totals.Total)
	if err != nil {
		return nil, err
	}

	orders, err := s.fulfil(ctx, id, lines, attempt, res)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("attempt_id", attempt.ID.String()).
			Msg("checkout failed after payment, refunding")
		s.compensate(context.WithoutCancel(ctx), attempt, err)
		return nil, err
	}

	s.logger.Info().
		Int64("customer_id", id.CustomerID).
		Str("payment_id", res.Reference()).
		Int("order_count", len(orders)).
		Str("total", totals.Total.StringFixed(2)).
		Msg("order placed successfully")

	return &model.PlaceOrderResult{
		PaymentID: res.Reference(),
		Orders:    orders,
		Total:     totals.Total,
	}, nil
}

// charge records a payment attempt and asks the provider to collect amount.
func (s *orderService) charge(ctx context.Context, id model.Identity, phone string, amount decimal.Decimal) (*model.PaymentAttempt, *payment.CollectResult, error) {
	key, err := uuid.NewV7()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate idempotency key: %w", err)
	}

	attempt := &model.PaymentAttempt{
		ID:         key,
		CustomerID: id.CustomerID,
		Amount:     amount,
		Status:     model.PaymentInitiated,
	}
	if err := s.paymentRepo.Create(ctx, attempt); err != nil {
		return nil, nil, err
	}

	res, err := s.provider.Collect(ctx, payment.CollectRequest{
		IdempotencyKey: key.String(),
		Phone:          phone,
		Email:          id.Email,
		Amount:         amount,
		Narrative:      s.opts.Narrative,
	})
	if err != nil {
		attempt.Status = model.PaymentDeclined
		attempt.LastError = err.Error()
		if res != nil {
			attempt.ProviderRef = res.Reference()
			attempt.ProviderState = res.InvoiceState
		}
		s.saveAttempt(context.WithoutCancel(ctx), attempt)

		s.logger.Warn().Err(err).Str("attempt_id", key.String()).Msg("payment not completed")
		return nil, nil, model.NewPaymentError("Payment was not completed", err)
	}

	attempt.Status = model.PaymentAuthorized
	attempt.ProviderRef = res.InvoiceID
	if attempt.ProviderRef == "" {
		attempt.ProviderRef = res.Reference()
	}
	attempt.ProviderState = res.InvoiceState
	s.saveAttempt(ctx, attempt)

	return attempt, res, nil
}

// fulfil takes stock, writes the orders, clears the purchased lines and marks
// the attempt fulfilled in one transaction.
func (s *orderService) fulfil(ctx context.Context, id model.Identity, lines []model.CartLine, attempt *model.PaymentAttempt, res *payment.CollectResult) (orders []model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	var ok bool
	for _, line := range lines {
		ok, err = s.productRepo.DecrementStock(ctx, tx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			err = model.NewInsufficientStockError(line.ProductName)
			return nil, err
		}
	}

	status := model.StatusFromPaymentState(res.InvoiceState)
	orders = make([]model.Order, len(lines))
	lineIDs := make([]int64, len(lines))
	for i, line := range lines {
		orders[i] = model.Order{
			Quantity:    line.Quantity,
			Price:       line.UnitPrice,
			Status:      status,
			PaymentID:   res.Reference(),
			CustomerID:  id.CustomerID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
		}
		lineIDs[i] = line.ID
	}

	if err = s.orderRepo.CreateOrders(ctx, tx, orders); err != nil {
		return nil, err
	}

	if _, err = s.cartRepo.DeleteLines(ctx, tx, id.CustomerID, lineIDs); err != nil {
		return nil, err
	}

	if err = s.paymentRepo.MarkFulfilled(ctx, tx, attempt.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("attempt_id", attempt.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	attempt.Status = model.PaymentFulfilled
	return orders, nil
}

// compensate refunds an authorized attempt whose orders could not be written.
func (s *orderService) compensate(ctx context.Context, attempt *model.PaymentAttempt, cause error) {
	if err := s.refund(ctx, attempt); err != nil {
		attempt.Status = model.PaymentRefundFailed
		attempt.LastError = err.Error()
		s.logger.Error().
			Err(err).
			Str("attempt_id", attempt.ID.String()).
			Str("provider_ref", attempt.ProviderRef).
			Msg("refund failed, left for reconciliation")
	} else {
		attempt.Status = model.PaymentRefunded
		attempt.LastError = cause.Error()
		s.logger.Info().Str("attempt_id", attempt.ID.String()).Msg("payment refunded")
	}
	s.saveAttempt(ctx, attempt)
}

func (s *orderService) refund(ctx context.Context, attempt *model.PaymentAttempt) error {
	op := func() error {
		return s.provider.Refund(ctx, payment.RefundRequest{
			InvoiceID: attempt.ProviderRef,
			Amount:    attempt.Amount,
			Reason:    refundReason,
		})
	}
	return backoff.Retry(op, backoff.WithContext(s.newBackOff(), ctx))
}

// saveAttempt persists attempt state. Failures are logged only; the attempt
// row already exists and the caller's outcome does not depend on it.
func (s *orderService) saveAttempt(ctx context.Context, attempt *model.PaymentAttempt) {
	if err := s.paymentRepo.Update(ctx, attempt); err != nil {
		s.logger.Error().
			Err(err).
			Str("attempt_id", attempt.ID.String()).
			Str("status", string(attempt.Status)).
			Msg("failed to update payment attempt")
	}
}

// History returns the caller's orders.
func (s *orderService) History(ctx context.Context, id model.Identity) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByCustomer(ctx, id.CustomerID)
	if err != nil {
		s.logger.Error().Err(err).Int64("customer_id", id.CustomerID).Msg("failed to get order history")
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// Reconcile retries every refund_failed attempt once through the backoff
// policy.
func (s *orderService) Reconcile(ctx context.Context) (*model.ReconcileReport, error) {
	attempts, err := s.paymentRepo.ListByStatus(ctx, model.PaymentRefundFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment attempts: %w", err)
	}

	report := &model.ReconcileReport{Checked: len(attempts)}
	for i := range attempts {
		attempt := &attempts[i]
		if err := s.refund(ctx, attempt); err != nil {
			report.Failed++
			attempt.LastError = err.Error()
			s.logger.Warn().Err(err).Str("attempt_id", attempt.ID.String()).Msg("refund still failing")
		} else {
			report.Refunded++
			attempt.Status = model.PaymentRefunded
			s.logger.Info().Str("attempt_id", attempt.ID.String()).Msg("refund reconciled")
		}
		s.saveAttempt(ctx, attempt)
	}

	s.logger.Info().
		Int("checked", report.Checked).
		Int("refunded", report.Refunded).
		Int("failed", report.Failed).
		Msg("reconciliation completed")

	return report, nil
}
