package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account entry direction tags. DEBIT means the customer owes more,
// CREDIT means the customer paid down.
const (
	EntryDebit  = "DEBIT"
	EntryCredit = "CREDIT"
)

// Customer is a running-account holder. CreditLimit and AllowOverLimit are
// recorded but not enforced anywhere; see DESIGN.md.
type Customer struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Document       string          `json:"document"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	Email          string          `json:"email"`
	Notes          string          `json:"notes"`
	Active         bool            `json:"active"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	AllowOverLimit bool            `json:"allow_over_limit"`
	CreatedAt      time.Time       `json:"created_at"`
}

// AccountEntry is one append-only debit or credit on a customer's running
// account. SaleID links the sale that produced the entry, when any.
type AccountEntry struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer"`
	SaleID     *string         `json:"sale"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      string          `json:"notes"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Statement is a customer's derived balance with the full entry history,
// newest entries first.
type Statement struct {
	Customer *Customer       `json:"customer"`
	Balance  decimal.Decimal `json:"balance"`
	Entries  []*AccountEntry `json:"entries"`
}

// BalanceRow is one line of the accounts summary.
type BalanceRow struct {
	CustomerID string          `json:"customer_id"`
	Customer   string          `json:"customer"`
	Balance    decimal.Decimal `json:"balance"`
}
