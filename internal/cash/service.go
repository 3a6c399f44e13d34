package cash

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"api_pos/internal/sales"
)

// ErrInvalidAmount is returned for non-positive movement amounts and
// negative opening or closing amounts.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrInvalidMovementType is returned when the direction tag is not IN or OUT.
var ErrInvalidMovementType = errors.New("movement type must be IN or OUT")

// Service manages the register's cash session lifecycle.
type Service struct {
	storage Storage
	logger  *zap.Logger
}

// NewService creates a new cash Service.
func NewService(storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{storage: storage, logger: logger}
}

// Open starts a new cash session. Fails with ErrSessionAlreadyOpen when one
// is already open.
func (s *Service) Open(ctx context.Context, user string, openingAmount decimal.Decimal, notes string) (*CashSession, error) {
	if openingAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	session := &CashSession{
		ID:            uuid.NewString(),
		OpenedAt:      time.Now(),
		OpenedBy:      user,
		OpeningAmount: openingAmount,
		ClosingAmount: decimal.Zero,
		Notes:         notes,
	}
	if err := s.storage.OpenSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("cash session opened",
		zap.String("session_id", session.ID),
		zap.String("user", user),
		zap.String("opening_amount", openingAmount.String()),
	)
	return session, nil
}

// Move appends a manual cash movement to the current open session.
func (s *Service) Move(ctx context.Context, movementType string, amount decimal.Decimal, reason string) (*CashMovement, error) {
	if movementType != MovementIn && movementType != MovementOut {
		return nil, ErrInvalidMovementType
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	m := &CashMovement{
		ID:        uuid.NewString(),
		Type:      movementType,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
	if err := s.storage.AddMovement(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("cash movement recorded",
		zap.String("session_id", m.SessionID),
		zap.String("type", m.Type),
		zap.String("amount", amount.String()),
	)
	return m, nil
}

// Close ends the current open session, recording the counted closing amount.
// Closing is terminal; there is no reopen.
func (s *Service) Close(ctx context.Context, user string, closingAmount decimal.Decimal, notes string) (*CashSession, error) {
	if closingAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	session, err := s.storage.CloseSession(ctx, closingAmount, user, notes, time.Now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("cash session closed",
		zap.String("session_id", session.ID),
		zap.String("user", user),
		zap.String("closing_amount", closingAmount.String()),
	)
	return session, nil
}

// Status describes the register state for the UI.
type Status struct {
	Open          bool             `json:"open"`
	Session       *CashSession     `json:"session,omitempty"`
	CurrentAmount *decimal.Decimal `json:"current_amount,omitempty"`
}

// Status returns whether a session is open and, if so, the live cash amount:
// opening amount plus manual inflows, minus outflows, plus cash-method sales
// since the session opened. Non-cash sales do not touch the drawer.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	session, err := s.storage.CurrentSession(ctx)
	if errors.Is(err, ErrNoOpenSession) {
		return &Status{Open: false}, nil
	}
	if err != nil {
		return nil, err
	}

	movements, err := s.storage.MovementsBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	byMethod, err := s.storage.SalesTotalsByMethod(ctx, session.OpenedAt, time.Now())
	if err != nil {
		return nil, err
	}

	inflows, outflows := sumMovements(movements)
	current := session.OpeningAmount.
		Add(inflows).
		Sub(outflows).
		Add(byMethod[sales.PaymentCash])

	return &Status{Open: true, Session: session, CurrentAmount: &current}, nil
}

// Summary reconciles a session. With an empty sessionID it uses the current
// open session, falling back to the most recently opened one.
func (s *Service) Summary(ctx context.Context, sessionID string) (*Summary, error) {
	var session *CashSession
	var err error
	if sessionID != "" {
		session, err = s.storage.GetSession(ctx, sessionID)
	} else {
		session, err = s.storage.CurrentSession(ctx)
		if errors.Is(err, ErrNoOpenSession) {
			session, err = s.storage.LastSession(ctx)
		}
	}
	if err != nil {
		return nil, err
	}

	end := time.Now()
	if session.ClosedAt != nil {
		end = *session.ClosedAt
	}
	byMethod, err := s.storage.SalesTotalsByMethod(ctx, session.OpenedAt, end)
	if err != nil {
		return nil, err
	}
	movements, err := s.storage.MovementsBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	summary := Summarize(session, byMethod, movements)
	return &summary, nil
}
