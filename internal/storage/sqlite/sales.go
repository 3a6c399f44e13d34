package sqlite

import (
	"context"
	"fmt"
	"sort"

	"api_pos/internal/sales"
)

// CommitSale persists a sale and decrements stock, all-or-nothing.
//
// The open-session check, the availability check and the decrement run in
// one transaction on the store's single writer connection, so a concurrent
// sale observes the decremented stock and re-evaluates instead of racing a
// stale read. The MAX(..., 0) clamp on the decrement is a last-resort
// backstop only; the in-transaction check is the correctness mechanism.
func (s *Store) CommitSale(ctx context.Context, sale *sales.Sale, demand map[string]int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var open int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cash_sessions WHERE closed_at IS NULL",
	).Scan(&open); err != nil {
		return fmt.Errorf("failed to check cash session: %w", err)
	}
	if open == 0 {
		return sales.ErrRegisterClosed
	}

	ids := make([]string, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := tx.QueryContext(ctx,
		"SELECT id, name, stock FROM products WHERE id IN ("+placeholders(len(ids))+")", args...,
	)
	if err != nil {
		return fmt.Errorf("failed to load stock: %w", err)
	}

	type productInfo struct {
		name  string
		stock int
	}
	available := make(map[string]productInfo, len(ids))
	for rows.Next() {
		var id string
		var info productInfo
		if err := rows.Scan(&id, &info.name, &info.stock); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan stock row: %w", err)
		}
		available[id] = info
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate stock rows: %w", err)
	}

	var shortages []sales.StockShortage
	for _, id := range ids {
		need := demand[id]
		info, ok := available[id]
		if !ok {
			// Unknown product ids count as zero available stock.
			shortages = append(shortages, sales.StockShortage{
				ProductID: id, Name: "(unknown)", Available: 0, Need: need,
			})
			continue
		}
		if info.stock < need {
			shortages = append(shortages, sales.StockShortage{
				ProductID: id, Name: info.name, Available: info.stock, Need: need,
			})
		}
	}
	if len(shortages) > 0 {
		return &sales.InsufficientStockError{Items: shortages}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sales (id, datetime, user, subtotal, tax_total, discount, total, payment_method, pos_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.ID, nanos(sale.Datetime), sale.User, dec(sale.Subtotal), dec(sale.TaxTotal),
		dec(sale.Discount), dec(sale.Total), sale.PaymentMethod, sale.PosID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	// The items go in exactly as submitted, not coalesced, so the stored
	// receipt mirrors the request.
	for i := range sale.Items {
		item := &sale.Items[i]
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sale_items (sale_id, product_id, qty, price, tax_rate, total)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			sale.ID, item.ProductID, item.Qty, dec(item.Price), dec(item.TaxRate), dec(item.Total),
		)
		if err != nil {
			return fmt.Errorf("failed to insert sale item: %w", err)
		}
		item.ProductName = available[item.ProductID].name
	}

	for _, id := range ids {
		_, err = tx.ExecContext(ctx,
			"UPDATE products SET stock = MAX(stock - ?, 0), updated_at = ? WHERE id = ?",
			demand[id], nanos(sale.Datetime), id,
		)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
