package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money goes over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents an item in the catalogue.
type Product struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	CurrentPrice  decimal.Decimal `json:"currentPrice" db:"current_price"`
	PreviousPrice decimal.Decimal `json:"previousPrice" db:"previous_price"`
	Stock         int             `json:"stock" db:"stock"`
	ImageRef      string          `json:"imageRef" db:"image_ref"`
	FlashSale     bool            `json:"flashSale" db:"flash_sale"`
	AddedAt       time.Time       `json:"addedAt" db:"added_at"`
}

// InStock reports whether qty units can be taken.
func (p *Product) InStock(qty int) bool {
	return p.Stock >= qty
}

// ProductInput carries the editable fields of a product.
type ProductInput struct {
	Name          string          `json:"name"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	PreviousPrice decimal.Decimal `json:"previousPrice"`
	Stock         int             `json:"stock"`
	FlashSale     bool            `json:"flashSale"`
}

// Validate checks the product constraints.
func (in *ProductInput) Validate() error {
	v := Validator{}
	in.Name = strings.TrimSpace(in.Name)
	v.Check(in.Name != "", "name", "name is required")
	v.Check(len(in.Name) <= 100, "name", "name must be at most 100 characters")
	v.Check(!in.CurrentPrice.IsNegative(), "currentPrice", "current price cannot be negative")
	v.Check(!in.PreviousPrice.IsNegative(), "previousPrice", "previous price cannot be negative")
	v.Check(in.Stock >= 0, "stock", "stock cannot be negative")
	return v.Err()
}

// Apply copies the input fields onto p.
func (in *ProductInput) Apply(p *Product) {
	p.Name = in.Name
	p.CurrentPrice = in.CurrentPrice
	p.PreviousPrice = in.PreviousPrice
	p.Stock = in.Stock
	p.FlashSale = in.FlashSale
}
