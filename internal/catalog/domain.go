package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products for reporting.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is a sellable catalog entry with its stock counter.
// Stock never goes below zero.
type Product struct {
	ID         string          `json:"id"`
	Barcode    string          `json:"barcode"`
	Name       string          `json:"name"`
	CategoryID *string         `json:"category"`
	Cost       decimal.Decimal `json:"cost"`
	Price      decimal.Decimal `json:"price"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	Stock      int             `json:"stock"`
	MinStock   int             `json:"min_stock"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
