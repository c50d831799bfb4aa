package model

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentAttemptStatus tracks a charge from request to fulfilment or refund.
type PaymentAttemptStatus string

const (
	PaymentInitiated    PaymentAttemptStatus = "initiated"
	PaymentDeclined     PaymentAttemptStatus = "declined"
	PaymentAuthorized   PaymentAttemptStatus = "authorized"
	PaymentFulfilled    PaymentAttemptStatus = "fulfilled"
	PaymentRefunded     PaymentAttemptStatus = "refunded"
	PaymentRefundFailed PaymentAttemptStatus = "refund_failed"
)

// PaymentAttempt is the ledger row written before the provider is called.
// ID doubles as the idempotency key sent to the provider.
type PaymentAttempt struct {
	ID            uuid.UUID            `json:"id" db:"id"`
	CustomerID    int64                `json:"customerId" db:"customer_id"`
	Amount        decimal.Decimal      `json:"amount" db:"amount"`
	Status        PaymentAttemptStatus `json:"status" db:"status"`
	ProviderRef   string               `json:"providerRef" db:"provider_ref"`
	ProviderState string               `json:"providerState" db:"provider_state"`
	LastError     string               `json:"lastError,omitempty" db:"last_error"`
	CreatedAt     time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time            `json:"updatedAt" db:"updated_at"`
}

// ReconcileReport summarises a reconciliation run.
type ReconcileReport struct {
	Checked  int `json:"checked"`
	Refunded int `json:"refunded"`
	Failed   int `json:"failed"`
}

// Upload is an image file received with a product form.
type Upload struct {
	Filename string
	Body     io.Reader
}
