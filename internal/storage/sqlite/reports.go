package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"api_pos/internal/reports"
	"api_pos/internal/sales"
)

// SalesInWindow returns the sales of [from, to] in chronological order,
// line items included.
func (s *Store) SalesInWindow(ctx context.Context, from, to time.Time) ([]*sales.Sale, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, datetime, user, subtotal, tax_total, discount, total, payment_method, pos_id
		 FROM sales WHERE datetime >= ? AND datetime <= ? ORDER BY datetime`,
		nanos(from), nanos(to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}
	defer rows.Close()

	results := make([]*sales.Sale, 0)
	for rows.Next() {
		sale := &sales.Sale{}
		var datetime int64
		var subtotal, taxTotal, discount, total string
		if err := rows.Scan(&sale.ID, &datetime, &sale.User, &subtotal, &taxTotal,
			&discount, &total, &sale.PaymentMethod, &sale.PosID); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sale.Datetime = fromNanos(datetime)
		if sale.Subtotal, err = scanDec(subtotal); err != nil {
			return nil, err
		}
		if sale.TaxTotal, err = scanDec(taxTotal); err != nil {
			return nil, err
		}
		if sale.Discount, err = scanDec(discount); err != nil {
			return nil, err
		}
		if sale.Total, err = scanDec(total); err != nil {
			return nil, err
		}
		results = append(results, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sales: %w", err)
	}

	for _, sale := range results {
		if sale.Items, err = s.saleItems(ctx, sale.ID); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (s *Store) saleItems(ctx context.Context, saleID string) ([]sales.SaleItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT si.product_id, ifnull(p.name, '(unknown)'), si.qty, si.price, si.tax_rate, si.total
		 FROM sale_items si LEFT JOIN products p ON p.id = si.product_id
		 WHERE si.sale_id = ? ORDER BY si.id`, saleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load sale items: %w", err)
	}
	defer rows.Close()

	items := make([]sales.SaleItem, 0)
	for rows.Next() {
		var item sales.SaleItem
		var price, taxRate, total string
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Qty, &price, &taxRate, &total); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		if item.Price, err = scanDec(price); err != nil {
			return nil, err
		}
		if item.TaxRate, err = scanDec(taxRate); err != nil {
			return nil, err
		}
		if item.Total, err = scanDec(total); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sale items: %w", err)
	}
	return items, nil
}

// ItemTotalsByCategory groups window item totals by product category.
// Decimal sums are computed in Go.
func (s *Store) ItemTotalsByCategory(ctx context.Context, from, to time.Time) ([]reports.CategoryRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.category_id, c.name, si.qty, si.total
		 FROM sale_items si
		 JOIN sales s ON s.id = si.sale_id
		 LEFT JOIN products p ON p.id = si.product_id
		 LEFT JOIN categories c ON c.id = p.category_id
		 WHERE s.datetime >= ? AND s.datetime <= ?`,
		nanos(from), nanos(to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load category totals: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string]*reports.CategoryRow)
	for rows.Next() {
		var categoryID, categoryName sql.NullString
		var qty int
		var total string
		if err := rows.Scan(&categoryID, &categoryName, &qty, &total); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		amount, err := scanDec(total)
		if err != nil {
			return nil, err
		}

		key := ""
		if categoryID.Valid {
			key = categoryID.String
		}
		row, ok := grouped[key]
		if !ok {
			row = &reports.CategoryRow{Category: "(no category)"}
			if categoryID.Valid {
				row.CategoryID = &categoryID.String
			}
			if categoryName.Valid {
				row.Category = categoryName.String
			}
			grouped[key] = row
		}
		row.Qty += qty
		row.Total = row.Total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category totals: %w", err)
	}

	result := make([]reports.CategoryRow, 0, len(grouped))
	for _, row := range grouped {
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result, nil
}

// ItemTotalsByProduct groups window item totals by product, best sellers
// first, capped at 500 rows.
func (s *Store) ItemTotalsByProduct(ctx context.Context, from, to time.Time) ([]reports.ProductRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT si.product_id, ifnull(p.barcode, ''), ifnull(p.name, '(unknown)'), si.qty, si.total
		 FROM sale_items si
		 JOIN sales s ON s.id = si.sale_id
		 LEFT JOIN products p ON p.id = si.product_id
		 WHERE s.datetime >= ? AND s.datetime <= ?`,
		nanos(from), nanos(to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load product totals: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string]*reports.ProductRow)
	for rows.Next() {
		var productID, barcode, name string
		var qty int
		var total string
		if err := rows.Scan(&productID, &barcode, &name, &qty, &total); err != nil {
			return nil, fmt.Errorf("failed to scan product total: %w", err)
		}
		amount, err := scanDec(total)
		if err != nil {
			return nil, err
		}

		row, ok := grouped[productID]
		if !ok {
			row = &reports.ProductRow{ProductID: productID, Barcode: barcode, Product: name}
			grouped[productID] = row
		}
		row.Qty += qty
		row.Total = row.Total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product totals: %w", err)
	}

	result := make([]reports.ProductRow, 0, len(grouped))
	for _, row := range grouped {
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Total.Equal(result[j].Total) {
			return result[i].Total.GreaterThan(result[j].Total)
		}
		return result[i].Product < result[j].Product
	})
	if len(result) > 500 {
		result = result[:500]
	}
	return result, nil
}

// TotalsByMethod groups window sale totals by payment method.
func (s *Store) TotalsByMethod(ctx context.Context, from, to time.Time) ([]reports.MethodRow, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payment_method, total FROM sales WHERE datetime >= ? AND datetime <= ?",
		nanos(from), nanos(to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load method totals: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string]*reports.MethodRow)
	for rows.Next() {
		var method, total string
		if err := rows.Scan(&method, &total); err != nil {
			return nil, fmt.Errorf("failed to scan method total: %w", err)
		}
		amount, err := scanDec(total)
		if err != nil {
			return nil, err
		}

		row, ok := grouped[method]
		if !ok {
			row = &reports.MethodRow{Method: method}
			grouped[method] = row
		}
		row.Count++
		row.Total = row.Total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate method totals: %w", err)
	}

	result := make([]reports.MethodRow, 0, len(grouped))
	for _, row := range grouped {
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Method < result[j].Method })
	return result, nil
}
