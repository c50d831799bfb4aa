// Package export writes catalogue data to spreadsheet workbooks.
package export

import (
	"fmt"
	"io"

	"shopfront/internal/model"

	"github.com/tealeg/xlsx"
)

// ContentType is the MIME type of the workbooks written here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const timeLayout = "2006-01-02 15:04:05"

var productHeaders = []string{
	"ID", "Name", "CurrentPrice", "PreviousPrice", "Stock", "Image", "FlashSale", "AddedAt",
}

// WriteProducts writes products as a single-sheet xlsx workbook to w.
func WriteProducts(w io.Writer, products []model.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range productHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt64(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.CurrentPrice.StringFixed(2))
		row.AddCell().SetString(p.PreviousPrice.StringFixed(2))
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetString(p.ImageRef)
		row.AddCell().SetBool(p.FlashSale)
		row.AddCell().SetString(p.AddedAt.UTC().Format(timeLayout))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
