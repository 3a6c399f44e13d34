package ledger

import (
	"context"
	"errors"
)

// ErrCustomerNotFound is returned when a customer ID does not exist.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrInvalidAmount is returned for non-positive payment amounts.
var ErrInvalidAmount = errors.New("amount must be greater than zero")

// Storage is the persistence surface for customers and account entries.
type Storage interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	UpdateCustomer(ctx context.Context, c *Customer) error
	// SearchCustomers returns up to limit active customers matching query by
	// name, or the most recently created ones when query is empty.
	SearchCustomers(ctx context.Context, query string, limit int) ([]*Customer, error)
	// ActiveCustomers returns every active customer.
	ActiveCustomers(ctx context.Context) ([]*Customer, error)

	// AppendEntry adds an entry to the customer's ledger. The entry history
	// is append-only; entries are never updated or deleted.
	AppendEntry(ctx context.Context, e *AccountEntry) error
	// EntriesByCustomer returns the customer's full entry history,
	// newest first.
	EntriesByCustomer(ctx context.Context, customerID string) ([]*AccountEntry, error)
}
