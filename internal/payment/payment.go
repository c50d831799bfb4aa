// Package payment talks to the external payment collection service.
package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// StatusSuccess is the provider status for an accepted collection request.
const StatusSuccess = "SUCCESS"

// ErrDeclined is returned when the provider answers with a non-success status.
var ErrDeclined = errors.New("payment declined")

// CollectRequest asks the provider to charge a customer.
type CollectRequest struct {
	// IdempotencyKey is sent as the provider's api_ref so a retried request
	// is recognised as the same charge.
	IdempotencyKey string
	Phone          string
	Email          string
	Amount         decimal.Decimal
	Narrative      string
}

// CollectResult is the provider's answer to a collection request.
type CollectResult struct {
	ID           string
	Status       string
	InvoiceID    string
	InvoiceState string
}

// Reference returns the identifier stored on orders for this payment.
func (r *CollectResult) Reference() string {
	if r.ID != "" {
		return r.ID
	}
	return r.InvoiceID
}

// RefundRequest reverses a completed collection.
type RefundRequest struct {
	InvoiceID string
	Amount    decimal.Decimal
	Reason    string
}

// Provider collects and refunds payments.
type Provider interface {
	Collect(ctx context.Context, req CollectRequest) (*CollectResult, error)
	Refund(ctx context.Context, req RefundRequest) error
}
