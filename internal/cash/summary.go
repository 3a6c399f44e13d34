package cash

import (
	"time"

	"github.com/shopspring/decimal"

	"api_pos/internal/sales"
)

// Summary is the reconciliation of one cash session: what the drawer should
// hold versus what was counted.
type Summary struct {
	SessionID     string                     `json:"session_id"`
	OpenedAt      time.Time                  `json:"opened_at"`
	ClosedAt      *time.Time                 `json:"closed_at"`
	OpeningAmount decimal.Decimal            `json:"opening_amount"`
	Inflows       decimal.Decimal            `json:"inflows"`
	Outflows      decimal.Decimal            `json:"outflows"`
	SalesByMethod map[string]decimal.Decimal `json:"sales_by_method"`
	ExpectedCash  decimal.Decimal            `json:"expected_cash"`
	ClosingAmount decimal.Decimal            `json:"closing_amount"`
	Difference    decimal.Decimal            `json:"difference"`
}

// Summarize computes the reconciliation for a session from its movements and
// the per-method sale totals of its time window. Only cash-method sales feed
// the expected physical cash; other methods are reported but excluded.
// For an open session the counted closing amount is zero, so the difference
// reads as the negated expectation until close.
func Summarize(session *CashSession, salesByMethod map[string]decimal.Decimal, movements []*CashMovement) Summary {
	inflows, outflows := sumMovements(movements)

	expected := session.OpeningAmount.
		Add(inflows).
		Sub(outflows).
		Add(salesByMethod[sales.PaymentCash])

	counted := decimal.Zero
	if session.ClosedAt != nil {
		counted = session.ClosingAmount
	}

	if salesByMethod == nil {
		salesByMethod = map[string]decimal.Decimal{}
	}

	return Summary{
		SessionID:     session.ID,
		OpenedAt:      session.OpenedAt,
		ClosedAt:      session.ClosedAt,
		OpeningAmount: session.OpeningAmount,
		Inflows:       inflows,
		Outflows:      outflows,
		SalesByMethod: salesByMethod,
		ExpectedCash:  expected,
		ClosingAmount: counted,
		Difference:    counted.Sub(expected),
	}
}

func sumMovements(movements []*CashMovement) (inflows, outflows decimal.Decimal) {
	inflows, outflows = decimal.Zero, decimal.Zero
	for _, m := range movements {
		switch m.Type {
		case MovementIn:
			inflows = inflows.Add(m.Amount)
		case MovementOut:
			outflows = outflows.Add(m.Amount)
		}
	}
	return inflows, outflows
}

// CSVRows renders the summary as the fixed two-column export table. Row
// order is part of the export contract.
func (s *Summary) CSVRows() [][]string {
	closed := ""
	if s.ClosedAt != nil {
		closed = s.ClosedAt.Format(time.RFC3339)
	}
	return [][]string{
		{"Field", "Value"},
		{"Session", s.SessionID},
		{"Opened", s.OpenedAt.Format(time.RFC3339)},
		{"Closed", closed},
		{"Opening amount", s.OpeningAmount.String()},
		{"Inflows", s.Inflows.String()},
		{"Outflows", s.Outflows.String()},
		{"Cash sales", s.SalesByMethod[sales.PaymentCash].String()},
		{"QR sales", s.SalesByMethod[sales.PaymentQR].String()},
		{"Card sales", s.SalesByMethod[sales.PaymentCard].String()},
		{"Expected cash", s.ExpectedCash.String()},
		{"Counted closing", s.ClosingAmount.String()},
		{"Difference", s.Difference.String()},
	}
}
