package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a product or category does not exist.
var ErrNotFound = errors.New("product not found")

// ErrDuplicateBarcode is returned when a barcode is already taken.
var ErrDuplicateBarcode = errors.New("barcode already in use")

// ErrProductInUse is returned when deleting a product that sales reference.
var ErrProductInUse = errors.New("product is referenced by sales")

// Storage is the persistence surface for the product catalog.
type Storage interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id string) error
	// SearchProducts returns up to limit products whose name contains query,
	// or the most recently updated products when query is empty.
	SearchProducts(ctx context.Context, query string, limit int) ([]*Product, error)

	CreateCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context) ([]*Category, error)
}
