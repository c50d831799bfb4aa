package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending        OrderStatus = "Pending"
	OrderAccepted       OrderStatus = "Accepted"
	OrderOutForDelivery OrderStatus = "Out for delivery"
	OrderDelivered      OrderStatus = "Delivered"
	OrderCanceled       OrderStatus = "Canceled"
)

// OrderStatuses lists every valid status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderPending,
	OrderAccepted,
	OrderOutForDelivery,
	OrderDelivered,
	OrderCanceled,
}

// ParseOrderStatus matches s against the known statuses, ignoring case.
func ParseOrderStatus(s string) (OrderStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range OrderStatuses {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// StatusFromPaymentState maps a provider invoice state such as "PENDING"
// onto an order status. Unknown states start the order as Pending.
func StatusFromPaymentState(state string) OrderStatus {
	st, err := ParseOrderStatus(capitalize(state))
	if err != nil {
		return OrderPending
	}
	return st
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Order is one purchased product line.
type Order struct {
	ID          int64           `json:"id" db:"id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Status      OrderStatus     `json:"status" db:"status"`
	PaymentID   string          `json:"paymentId" db:"payment_id"`
	CustomerID  int64           `json:"customerId" db:"customer_id"`
	ProductID   int64           `json:"productId" db:"product_id"`
	ProductName string          `json:"productName,omitempty" db:"name"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// PlaceOrderRequest is the checkout payload. Phone overrides the number on
// the customer's profile.
type PlaceOrderRequest struct {
	Phone string `json:"phone"`
}

// PlaceOrderResult summarises a completed checkout.
type PlaceOrderResult struct {
	PaymentID string          `json:"paymentId"`
	Orders    []Order         `json:"orders"`
	Total     decimal.Decimal `json:"total"`
}

// UpdateOrderStatusRequest is the admin status change payload.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}
