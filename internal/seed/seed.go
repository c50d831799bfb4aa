// Package seed loads a product catalogue from YAML.
//
// A catalogue file looks like:
//
//	products:
//	  - name: Blue Shirt
//	    current_price: 250
//	    previous_price: 300
//	    stock: 12
//	    flash_sale: true
//	    image: blue_shirt.png
package seed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"shopfront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Price is a decimal amount written as a plain YAML number or string.
type Price struct {
	decimal.Decimal
}

// UnmarshalYAML parses the scalar exactly, without a float round trip.
func (p *Price) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: price must be a scalar", value.Line)
	}
	d, err := decimal.NewFromString(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid price %q", value.Line, value.Value)
	}
	p.Decimal = d
	return nil
}

// Entry is one product in a catalogue file.
type Entry struct {
	Name          string `yaml:"name"`
	CurrentPrice  Price  `yaml:"current_price"`
	PreviousPrice Price  `yaml:"previous_price"`
	Stock         int    `yaml:"stock"`
	FlashSale     bool   `yaml:"flash_sale"`
	Image         string `yaml:"image"`
}

// Product converts the entry into a validated product.
func (e Entry) Product() (*model.Product, error) {
	in := model.ProductInput{
		Name:          e.Name,
		CurrentPrice:  e.CurrentPrice.Decimal,
		PreviousPrice: e.PreviousPrice.Decimal,
		Stock:         e.Stock,
		FlashSale:     e.FlashSale,
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p := &model.Product{ImageRef: e.Image}
	in.Apply(p)
	return p, nil
}

// Catalog is a parsed catalogue file.
type Catalog struct {
	Products []Entry `yaml:"products"`
}

// Parse decodes a catalogue. Unknown keys are rejected so typos surface.
func Parse(r io.Reader) (*Catalog, error) {
	var c Catalog
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		if err == io.EOF {
			return &c, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, e := range c.Products {
		if _, err := e.Product(); err != nil {
			return nil, fmt.Errorf("product %d (%q): %w", i+1, e.Name, err)
		}
	}
	return &c, nil
}

// LoadFile reads and parses the catalogue at path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// ProductCreator stores new products.
type ProductCreator interface {
	Create(ctx context.Context, p *model.Product) error
}

// Apply creates every product in c and returns them with their new IDs.
// It stops at the first failure.
func Apply(ctx context.Context, repo ProductCreator, c *Catalog, logger zerolog.Logger) ([]model.Product, error) {
	created := make([]model.Product, 0, len(c.Products))
	for i, e := range c.Products {
		p, err := e.Product()
		if err != nil {
			return created, fmt.Errorf("product %d (%q): %w", i+1, e.Name, err)
		}
		if err := repo.Create(ctx, p); err != nil {
			return created, fmt.Errorf("product %d (%q): %w", i+1, e.Name, err)
		}
		logger.Debug().Int64("product_id", p.ID).Str("name", p.Name).Msg("product seeded")
		created = append(created, *p)
	}

	logger.Info().Int("count", len(created)).Msg("catalogue seeded")
	return created, nil
}
