package domain

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Prices and totals go over the wire as JSON numbers (499.99, not "499.99").
	decimal.MarshalJSONWithoutQuotes = true
}

type Category struct {
	ID         string   `db:"id" json:"id"`
	Name       string   `db:"name" json:"name"`
	ProductIDs []string `db:"-" json:"products"`
	CreatedAt  string   `db:"created_at" json:"createdAt"`
}

type Image struct {
	URL string `db:"image_url" json:"url"`
	Key string `db:"image_key" json:"publicId"`
}

type Product struct {
	ID           string          `db:"id" json:"id"`
	Description  string          `db:"description" json:"description"`
	Price        decimal.Decimal `db:"price" json:"price"`
	CategoryID   string          `db:"category_id" json:"categoryId"`
	CategoryName string          `db:"category_name" json:"category"`
	Image        `json:"productImage"`
	CreatedAt    string          `db:"created_at" json:"createdAt"`
}
