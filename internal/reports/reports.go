// Package reports holds the read-only sales aggregations. Reports only see
// committed data; they never coordinate with the write paths.
package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"api_pos/internal/sales"
)

// CategoryRow aggregates sold items by product category.
type CategoryRow struct {
	CategoryID *string         `json:"category_id"`
	Category   string          `json:"category"`
	Qty        int             `json:"qty"`
	Total      decimal.Decimal `json:"total"`
}

// ProductRow aggregates sold items by product.
type ProductRow struct {
	ProductID string          `json:"product_id"`
	Barcode   string          `json:"barcode"`
	Product   string          `json:"product"`
	Qty       int             `json:"qty"`
	Total     decimal.Decimal `json:"total"`
}

// MethodRow aggregates sales by payment method.
type MethodRow struct {
	Method string          `json:"method"`
	Total  decimal.Decimal `json:"total"`
	Count  int             `json:"count"`
}

// Storage is the read-only query surface for report aggregations.
type Storage interface {
	// SalesInWindow returns the sales of [from, to] in chronological order,
	// items included.
	SalesInWindow(ctx context.Context, from, to time.Time) ([]*sales.Sale, error)
	ItemTotalsByCategory(ctx context.Context, from, to time.Time) ([]CategoryRow, error)
	ItemTotalsByProduct(ctx context.Context, from, to time.Time) ([]ProductRow, error)
	TotalsByMethod(ctx context.Context, from, to time.Time) ([]MethodRow, error)
}

// Service exposes the report projections.
type Service struct {
	storage Storage
}

// NewService creates a new reports Service.
func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

// DailyReport is the single-day sale count and revenue.
type DailyReport struct {
	Date  string          `json:"date"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// Daily sums the sales of one calendar day.
func (s *Service) Daily(ctx context.Context, day time.Time) (*DailyReport, error) {
	from, to := DayWindow(day, day)
	results, err := s.storage.SalesInWindow(ctx, from, to)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, sale := range results {
		total = total.Add(sale.Total)
	}
	return &DailyReport{
		Date:  day.Format("2006-01-02"),
		Count: len(results),
		Total: total,
	}, nil
}

// Detailed returns the sales of the window with their line items.
func (s *Service) Detailed(ctx context.Context, from, to time.Time) ([]*sales.Sale, error) {
	return s.storage.SalesInWindow(ctx, from, to)
}

// ByCategory groups window item totals by product category.
func (s *Service) ByCategory(ctx context.Context, from, to time.Time) ([]CategoryRow, error) {
	return s.storage.ItemTotalsByCategory(ctx, from, to)
}

// ByProduct groups window item totals by product.
func (s *Service) ByProduct(ctx context.Context, from, to time.Time) ([]ProductRow, error) {
	return s.storage.ItemTotalsByProduct(ctx, from, to)
}

// ByMethod groups window sale totals by payment method.
func (s *Service) ByMethod(ctx context.Context, from, to time.Time) ([]MethodRow, error) {
	return s.storage.TotalsByMethod(ctx, from, to)
}

// DayWindow expands two calendar days into the closed timestamp window
// [start of from, end of to].
func DayWindow(from, to time.Time) (time.Time, time.Time) {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), to.Location())
	return start, end
}
