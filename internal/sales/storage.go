package sales

import (
	"context"
	"errors"
	"fmt"
)

// ErrRegisterClosed is returned when a sale is attempted with no open
// cash session.
var ErrRegisterClosed = errors.New("cash register is closed")

// ErrInvalidLine is returned when a request line has a missing product
// reference or a non-positive quantity.
var ErrInvalidLine = errors.New("invalid sale line")

// StockShortage describes one product whose available stock cannot cover
// the requested quantity.
type StockShortage struct {
	ProductID string `json:"product"`
	Name      string `json:"name"`
	Available int    `json:"available"`
	Need      int    `json:"need"`
}

// InsufficientStockError aborts a whole sale; it lists every deficient
// product so the register can show what is short and by how much.
type InsufficientStockError struct {
	Items []StockShortage
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d product(s)", len(e.Items))
}

// Storage is the transactional surface the sale processor commits through.
type Storage interface {
	// CommitSale persists the sale and decrements stock for each product by
	// its coalesced demand, all inside one isolated transaction. The open
	// session check, the stock availability check and the decrement happen
	// within that same transaction. On success the sale's items carry the
	// resolved product names. Fails with ErrRegisterClosed or
	// *InsufficientStockError, leaving the store untouched.
	CommitSale(ctx context.Context, sale *Sale, demand map[string]int) error
}
