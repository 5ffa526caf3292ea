package services

import (
	"io"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

var exportHeaders = []string{"ID", "Description", "Price", "CategoryID", "Category", "ImageURL", "CreatedAt"}

// ExportProducts writes the whole catalog as a single-sheet xlsx workbook.
func (s *CatalogService) ExportProducts(w io.Writer) (int, error) {
	products, err := s.Prods.List()
	if err != nil {
		return 0, err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return 0, err
	}
	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetString(h)
	}
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetFloat(priceOf(p.Price))
		row.AddCell().SetString(p.CategoryID)
		row.AddCell().SetString(p.CategoryName)
		row.AddCell().SetString(p.Image.URL)
		row.AddCell().SetString(p.CreatedAt)
	}
	return len(products), file.Write(w)
}

func priceOf(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
