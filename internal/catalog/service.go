package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const searchLimit = 50

// Service provides high-level catalog operations on a Storage backend.
type Service struct {
	storage Storage
	logger  *zap.Logger
}

// NewService creates a new catalog Service.
func NewService(storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{storage: storage, logger: logger}
}

// ProductInput carries the caller-supplied fields for create and update.
type ProductInput struct {
	Barcode    string          `json:"barcode"`
	Name       string          `json:"name"`
	CategoryID *string         `json:"category"`
	Cost       decimal.Decimal `json:"cost"`
	Price      decimal.Decimal `json:"price"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	Stock      int             `json:"stock"`
	MinStock   int             `json:"min_stock"`
}

func (in *ProductInput) validate() error {
	if strings.TrimSpace(in.Barcode) == "" {
		return fmt.Errorf("barcode is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if in.Price.IsNegative() || in.Cost.IsNegative() {
		return fmt.Errorf("price and cost must not be negative")
	}
	if in.Stock < 0 || in.MinStock < 0 {
		return fmt.Errorf("stock must not be negative")
	}
	return nil
}

// CreateProduct validates the input and persists a new product.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &Product{
		ID:         uuid.NewString(),
		Barcode:    strings.TrimSpace(in.Barcode),
		Name:       strings.TrimSpace(in.Name),
		CategoryID: in.CategoryID,
		Cost:       in.Cost,
		Price:      in.Price,
		TaxRate:    in.TaxRate,
		Stock:      in.Stock,
		MinStock:   in.MinStock,
		UpdatedAt:  time.Now(),
	}
	if err := s.storage.CreateProduct(ctx, p); err != nil {
		s.logger.Error("failed to create product", zap.String("barcode", p.Barcode), zap.Error(err))
		return nil, err
	}

	s.logger.Info("product created", zap.String("product_id", p.ID), zap.String("barcode", p.Barcode))
	return p, nil
}

// GetProduct returns a single product by ID.
func (s *Service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.storage.GetProduct(ctx, id)
}

// UpdateProduct replaces the editable fields of an existing product.
func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p, err := s.storage.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Barcode = strings.TrimSpace(in.Barcode)
	p.Name = strings.TrimSpace(in.Name)
	p.CategoryID = in.CategoryID
	p.Cost = in.Cost
	p.Price = in.Price
	p.TaxRate = in.TaxRate
	p.Stock = in.Stock
	p.MinStock = in.MinStock
	p.UpdatedAt = time.Now()

	if err := s.storage.UpdateProduct(ctx, p); err != nil {
		s.logger.Error("failed to update product", zap.String("product_id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

// DeleteProduct removes a product from the catalog.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.storage.DeleteProduct(ctx, id)
}

// Search looks a product up by exact barcode when barcode is non-empty,
// otherwise returns products matching query by name, most recent first.
func (s *Service) Search(ctx context.Context, barcode, query string) ([]*Product, error) {
	if barcode != "" {
		p, err := s.storage.GetProductByBarcode(ctx, barcode)
		if err != nil {
			return nil, err
		}
		return []*Product{p}, nil
	}
	return s.storage.SearchProducts(ctx, query, searchLimit)
}

// CreateCategory persists a new category.
func (s *Service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	c := &Category{ID: uuid.NewString(), Name: strings.TrimSpace(name)}
	if err := s.storage.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCategories returns every category.
func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.storage.ListCategories(ctx)
}
