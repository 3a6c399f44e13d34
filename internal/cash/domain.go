package cash

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement direction tags.
const (
	MovementIn  = "IN"
	MovementOut = "OUT"
)

// CashSession is one bounded period of cash handling at the register.
// At most one session is open system-wide at any instant.
type CashSession struct {
	ID            string          `json:"id"`
	OpenedAt      time.Time       `json:"opened_at"`
	ClosedAt      *time.Time      `json:"closed_at"`
	OpenedBy      string          `json:"opened_by"`
	ClosedBy      *string         `json:"closed_by"`
	OpeningAmount decimal.Decimal `json:"opening_amount"`
	ClosingAmount decimal.Decimal `json:"closing_amount"`
	Notes         string          `json:"notes"`
}

// IsOpen reports whether the session has not been closed yet.
func (s *CashSession) IsOpen() bool {
	return s.ClosedAt == nil
}

// CashMovement is a manual cash inflow or outflow inside a session,
// outside of sales. Movements are append-only.
type CashMovement struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
	CreatedAt time.Time       `json:"created_at"`
}
