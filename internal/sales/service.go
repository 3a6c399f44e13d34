package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service validates and commits sales against a Storage backend.
type Service struct {
	storage      Storage
	logger       *zap.Logger
	defaultPosID string
}

// NewService creates a new sales Service. defaultPosID is used when the
// request does not name a register.
func NewService(storage Storage, logger *zap.Logger, defaultPosID string) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		storage:      storage,
		logger:       logger,
		defaultPosID: defaultPosID,
	}
}

// Commit validates the request and commits the sale atomically.
//
// The submitted lines are persisted exactly as received so the receipt
// mirrors the request; stock is decremented by the per-product coalesced
// demand. Monetary totals are trusted from the caller and not recomputed
// from the lines, matching the register clients this service was built for.
func (s *Service) Commit(ctx context.Context, user string, in SaleInput) (*Sale, error) {
	if len(in.Items) == 0 {
		return nil, ErrInvalidLine
	}

	demand := make(map[string]int, len(in.Items))
	items := make([]SaleItem, 0, len(in.Items))
	for _, line := range in.Items {
		if line.ProductID == "" || line.Qty <= 0 {
			return nil, ErrInvalidLine
		}
		demand[line.ProductID] += line.Qty
		items = append(items, SaleItem{
			ProductID: line.ProductID,
			Qty:       line.Qty,
			Price:     line.Price,
			TaxRate:   line.TaxRate,
			Total:     line.Total,
		})
	}

	method := in.PaymentMethod
	if method == "" {
		method = PaymentCash
	}
	posID := in.PosID
	if posID == "" {
		posID = s.defaultPosID
	}

	sale := &Sale{
		ID:            uuid.NewString(),
		Datetime:      time.Now(),
		User:          user,
		Subtotal:      in.Subtotal,
		TaxTotal:      in.TaxTotal,
		Discount:      in.Discount,
		Total:         in.Total,
		PaymentMethod: method,
		PosID:         posID,
		Items:         items,
	}

	if err := s.storage.CommitSale(ctx, sale, demand); err != nil {
		s.logger.Warn("sale rejected",
			zap.String("user", user),
			zap.Int("lines", len(in.Items)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("sale committed",
		zap.String("sale_id", sale.ID),
		zap.String("user", user),
		zap.String("payment_method", sale.PaymentMethod),
		zap.String("total", sale.Total.String()),
	)
	return sale, nil
}
