package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"api_pos/internal/ledger"
)

const customerColumns = "id, name, document, phone, address, email, notes, active, credit_limit, allow_over_limit, created_at"

// CreateCustomer persists a new customer.
func (s *Store) CreateCustomer(ctx context.Context, c *ledger.Customer) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO customers ("+customerColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.Name, c.Document, c.Phone, c.Address, c.Email, c.Notes,
		c.Active, dec(c.CreditLimit), c.AllowOverLimit, nanos(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

// GetCustomer retrieves a customer by ID.
func (s *Store) GetCustomer(ctx context.Context, id string) (*ledger.Customer, error) {
	return scanCustomer(s.db.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = ?", id,
	))
}

// UpdateCustomer replaces a customer's stored fields.
func (s *Store) UpdateCustomer(ctx context.Context, c *ledger.Customer) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE customers SET name = ?, document = ?, phone = ?, address = ?, email = ?,
		 notes = ?, active = ?, credit_limit = ?, allow_over_limit = ? WHERE id = ?`,
		c.Name, c.Document, c.Phone, c.Address, c.Email, c.Notes,
		c.Active, dec(c.CreditLimit), c.AllowOverLimit, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrCustomerNotFound
	}
	return nil
}

// SearchCustomers returns up to limit active customers matching query by
// name, or the most recently created ones when query is empty.
func (s *Store) SearchCustomers(ctx context.Context, query string, limit int) ([]*ledger.Customer, error) {
	var rows *sql.Rows
	var err error
	if query != "" {
		rows, err = s.db.QueryContext(ctx,
			"SELECT "+customerColumns+" FROM customers WHERE active = 1 AND name LIKE ? COLLATE NOCASE ORDER BY name LIMIT ?",
			"%"+query+"%", limit,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			"SELECT "+customerColumns+" FROM customers WHERE active = 1 ORDER BY created_at DESC LIMIT ?", limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	defer rows.Close()
	return collectCustomers(rows)
}

// ActiveCustomers returns every active customer.
func (s *Store) ActiveCustomers(ctx context.Context) ([]*ledger.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE active = 1 ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()
	return collectCustomers(rows)
}

// AppendEntry adds an entry to a customer's ledger. Entries are append-only;
// there is no update or delete path.
func (s *Store) AppendEntry(ctx context.Context, e *ledger.AccountEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO account_entries (id, customer_id, sale_id, type, amount, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CustomerID, e.SaleID, e.Type, dec(e.Amount), e.Notes, nanos(e.CreatedAt),
	)
	if isForeignKeyViolation(err) {
		return ledger.ErrCustomerNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to insert account entry: %w", err)
	}
	return nil
}

// EntriesByCustomer returns the customer's full entry history, newest first.
func (s *Store) EntriesByCustomer(ctx context.Context, customerID string) ([]*ledger.AccountEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_id, sale_id, type, amount, notes, created_at FROM account_entries
		 WHERE customer_id = ? ORDER BY created_at DESC, rowid DESC`, customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load account entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*ledger.AccountEntry, 0)
	for rows.Next() {
		e := &ledger.AccountEntry{}
		var saleID sql.NullString
		var amount string
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.CustomerID, &saleID, &e.Type, &amount, &e.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan account entry: %w", err)
		}
		if saleID.Valid {
			e.SaleID = &saleID.String
		}
		if e.Amount, err = scanDec(amount); err != nil {
			return nil, err
		}
		e.CreatedAt = fromNanos(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account entries: %w", err)
	}
	return entries, nil
}

func scanCustomer(row rowScanner) (*ledger.Customer, error) {
	c := &ledger.Customer{}
	var creditLimit string
	var createdAt int64

	err := row.Scan(&c.ID, &c.Name, &c.Document, &c.Phone, &c.Address, &c.Email, &c.Notes,
		&c.Active, &creditLimit, &c.AllowOverLimit, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}

	if c.CreditLimit, err = scanDec(creditLimit); err != nil {
		return nil, err
	}
	c.CreatedAt = fromNanos(createdAt)
	return c, nil
}

func collectCustomers(rows *sql.Rows) ([]*ledger.Customer, error) {
	customers := make([]*ledger.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return customers, nil
}
