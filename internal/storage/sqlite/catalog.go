package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"api_pos/internal/catalog"
)

const productColumns = "id, barcode, name, category_id, cost, price, tax_rate, stock, min_stock, updated_at"

// CreateProduct persists a new product.
func (s *Store) CreateProduct(ctx context.Context, p *catalog.Product) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO products ("+productColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Barcode, p.Name, p.CategoryID, dec(p.Cost), dec(p.Price), dec(p.TaxRate),
		p.Stock, p.MinStock, nanos(p.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return catalog.ErrDuplicateBarcode
	}
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// GetProduct retrieves a product by ID.
func (s *Store) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	return scanProduct(row)
}

// GetProductByBarcode retrieves a product by its unique barcode.
func (s *Store) GetProductByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE barcode = ?", barcode)
	return scanProduct(row)
}

// UpdateProduct replaces a product's stored fields.
func (s *Store) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET barcode = ?, name = ?, category_id = ?, cost = ?, price = ?,
		 tax_rate = ?, stock = ?, min_stock = ?, updated_at = ? WHERE id = ?`,
		p.Barcode, p.Name, p.CategoryID, dec(p.Cost), dec(p.Price), dec(p.TaxRate),
		p.Stock, p.MinStock, nanos(p.UpdatedAt), p.ID,
	)
	if isUniqueViolation(err) {
		return catalog.ErrDuplicateBarcode
	}
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// DeleteProduct removes a product. Products referenced by sale items cannot
// be deleted; the sale history keeps its snapshots.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if isForeignKeyViolation(err) {
		return catalog.ErrProductInUse
	}
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// SearchProducts returns up to limit products matching query by name, or the
// most recently updated ones when query is empty.
func (s *Store) SearchProducts(ctx context.Context, query string, limit int) ([]*catalog.Product, error) {
	var rows *sql.Rows
	var err error
	if query != "" {
		rows, err = s.db.QueryContext(ctx,
			"SELECT "+productColumns+" FROM products WHERE name LIKE ? COLLATE NOCASE ORDER BY name LIMIT ?",
			"%"+query+"%", limit,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			"SELECT "+productColumns+" FROM products ORDER BY updated_at DESC LIMIT ?", limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products := make([]*catalog.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// CreateCategory persists a new category.
func (s *Store) CreateCategory(ctx context.Context, c *catalog.Category) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO categories (id, name) VALUES (?, ?)", c.ID, c.Name)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// ListCategories returns every category ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]*catalog.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*catalog.Category, 0)
	for rows.Next() {
		c := &catalog.Category{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*catalog.Product, error) {
	p := &catalog.Product{}
	var category sql.NullString
	var cost, price, taxRate string
	var updatedAt int64

	err := row.Scan(&p.ID, &p.Barcode, &p.Name, &category, &cost, &price, &taxRate,
		&p.Stock, &p.MinStock, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if category.Valid {
		p.CategoryID = &category.String
	}
	if p.Cost, err = scanDec(cost); err != nil {
		return nil, err
	}
	if p.Price, err = scanDec(price); err != nil {
		return nil, err
	}
	if p.TaxRate, err = scanDec(taxRate); err != nil {
		return nil, err
	}
	p.UpdatedAt = fromNanos(updatedAt)
	return p, nil
}
