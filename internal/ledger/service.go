package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const searchLimit = 100

// Service provides customer and running-account operations on a Storage
// backend. Balances are always derived from the full entry history, never
// stored, so no write path can leave them inconsistent.
type Service struct {
	storage Storage
	logger  *zap.Logger
}

// NewService creates a new ledger Service.
func NewService(storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{storage: storage, logger: logger}
}

// CustomerInput carries the caller-supplied customer fields.
type CustomerInput struct {
	Name           string          `json:"name"`
	Document       string          `json:"document"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	Email          string          `json:"email"`
	Notes          string          `json:"notes"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	AllowOverLimit bool            `json:"allow_over_limit"`
}

// CreateCustomer persists a new active customer.
func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	c := &Customer{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		Document:       in.Document,
		Phone:          in.Phone,
		Address:        in.Address,
		Email:          in.Email,
		Notes:          in.Notes,
		Active:         true,
		CreditLimit:    in.CreditLimit,
		AllowOverLimit: in.AllowOverLimit,
		CreatedAt:      time.Now(),
	}
	if err := s.storage.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("customer created", zap.String("customer_id", c.ID))
	return c, nil
}

// GetCustomer returns a customer by ID.
func (s *Service) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	return s.storage.GetCustomer(ctx, id)
}

// UpdateCustomer replaces the editable fields of a customer.
func (s *Service) UpdateCustomer(ctx context.Context, id string, in CustomerInput) (*Customer, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	c, err := s.storage.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Document = in.Document
	c.Phone = in.Phone
	c.Address = in.Address
	c.Email = in.Email
	c.Notes = in.Notes
	c.CreditLimit = in.CreditLimit
	c.AllowOverLimit = in.AllowOverLimit

	if err := s.storage.UpdateCustomer(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeactivateCustomer soft-deletes a customer; the entry history stays.
func (s *Service) DeactivateCustomer(ctx context.Context, id string) error {
	c, err := s.storage.GetCustomer(ctx, id)
	if err != nil {
		return err
	}
	c.Active = false
	return s.storage.UpdateCustomer(ctx, c)
}

// Search returns active customers matching query by name.
func (s *Service) Search(ctx context.Context, query string) ([]*Customer, error) {
	return s.storage.SearchCustomers(ctx, query, searchLimit)
}

// Balance recomputes the customer's balance from the full entry history:
// sum of debits minus sum of credits.
func (s *Service) Balance(ctx context.Context, customerID string) (decimal.Decimal, error) {
	if _, err := s.storage.GetCustomer(ctx, customerID); err != nil {
		return decimal.Zero, err
	}
	entries, err := s.storage.EntriesByCustomer(ctx, customerID)
	if err != nil {
		return decimal.Zero, err
	}
	return balanceOf(entries), nil
}

// RegisterPayment appends a CREDIT entry paying down the customer's account.
// This is the only ledger write path; no sale creates entries automatically.
func (s *Service) RegisterPayment(ctx context.Context, customerID string, amount decimal.Decimal, notes string) (*AccountEntry, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if _, err := s.storage.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	e := &AccountEntry{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Type:       EntryCredit,
		Amount:     amount,
		Notes:      notes,
		CreatedAt:  time.Now(),
	}
	if err := s.storage.AppendEntry(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("account payment registered",
		zap.String("customer_id", customerID),
		zap.String("amount", amount.String()),
	)
	return e, nil
}

// Statement returns the customer, their derived balance and the full entry
// history, newest first.
func (s *Service) Statement(ctx context.Context, customerID string) (*Statement, error) {
	c, err := s.storage.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	entries, err := s.storage.EntriesByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &Statement{
		Customer: c,
		Balance:  balanceOf(entries),
		Entries:  entries,
	}, nil
}

// AccountsSummary lists every active customer with a non-zero balance,
// largest debt first.
func (s *Service) AccountsSummary(ctx context.Context) ([]BalanceRow, error) {
	customers, err := s.storage.ActiveCustomers(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]BalanceRow, 0, len(customers))
	for _, c := range customers {
		entries, err := s.storage.EntriesByCustomer(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		balance := balanceOf(entries)
		if balance.IsZero() {
			continue
		}
		rows = append(rows, BalanceRow{CustomerID: c.ID, Customer: c.Name, Balance: balance})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Balance.GreaterThan(rows[j].Balance)
	})
	return rows, nil
}

func balanceOf(entries []*AccountEntry) decimal.Decimal {
	balance := decimal.Zero
	for _, e := range entries {
		switch e.Type {
		case EntryDebit:
			balance = balance.Add(e.Amount)
		case EntryCredit:
			balance = balance.Sub(e.Amount)
		}
	}
	return balance
}
