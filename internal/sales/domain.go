package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment method tags used by the register reconciliation. Sales may carry
// other tags; only these three get their own bucket in the cash summary CSV.
const (
	PaymentCash = "cash"
	PaymentQR   = "qr"
	PaymentCard = "card"
)

// Sale is a committed sales transaction. It is created exactly once by the
// transaction processor and never modified afterwards.
type Sale struct {
	ID            string          `json:"id"`
	Datetime      time.Time       `json:"datetime"`
	User          string          `json:"user"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	PosID         string          `json:"pos_id"`
	Items         []SaleItem      `json:"items"`
}

// SaleItem is one line of a sale. Price, tax rate and total are snapshots
// taken at sale time and stay fixed when the product later changes.
type SaleItem struct {
	ProductID   string          `json:"product"`
	ProductName string          `json:"product_name"`
	Qty         int             `json:"qty"`
	Price       decimal.Decimal `json:"price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Total       decimal.Decimal `json:"total"`
}

// SaleLine is one requested line as submitted by the register client.
type SaleLine struct {
	ProductID string          `json:"product"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Total     decimal.Decimal `json:"total"`
}

// SaleInput is the full sale request. The monetary totals are taken as
// submitted by the register client; see the service for the trust boundary.
type SaleInput struct {
	Items         []SaleLine      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	PosID         string          `json:"pos_id"`
}
