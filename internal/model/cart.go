package model

import "github.com/shopspring/decimal"

// CartLine is one product in a customer's cart, joined with the product's
// current catalogue values.
type CartLine struct {
	ID          int64           `json:"id" db:"id"`
	CustomerID  int64           `json:"-" db:"customer_id"`
	ProductID   int64           `json:"productId" db:"product_id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	ProductName string          `json:"productName" db:"name"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"current_price"`
	ImageRef    string          `json:"imageRef" db:"image_ref"`
	Stock       int             `json:"-" db:"stock"`
}

// LineTotal is the unit price times the quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartTotals is the cart amount before and after shipping.
type CartTotals struct {
	Subtotal    decimal.Decimal `json:"amount"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Total       decimal.Decimal `json:"total"`
}

// ComputeTotals sums the lines at their current unit prices and adds the
// shipping fee.
func ComputeTotals(lines []CartLine, shippingFee decimal.Decimal) CartTotals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	return CartTotals{
		Subtotal:    subtotal,
		ShippingFee: shippingFee,
		Total:       subtotal.Add(shippingFee),
	}
}

// Cart is the full cart view.
type Cart struct {
	Lines  []CartLine `json:"lines"`
	Totals CartTotals `json:"totals"`
}

// CartUpdate is returned after a quantity change or removal.
type CartUpdate struct {
	LineID   int64           `json:"lineId"`
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
	Total    decimal.Decimal `json:"total"`
}
