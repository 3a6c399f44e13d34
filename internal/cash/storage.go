package cash

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrSessionAlreadyOpen is returned by open when a session is open.
	ErrSessionAlreadyOpen = errors.New("a cash session is already open")
	// ErrNoOpenSession is returned when an operation requires an open session.
	ErrNoOpenSession = errors.New("no open cash session")
	// ErrSessionNotFound is returned when a session ID does not exist.
	ErrSessionNotFound = errors.New("cash session not found")
)

// Storage is the persistence surface for cash sessions and movements.
type Storage interface {
	// OpenSession inserts the session; the no-open-session check and the
	// insert share one transaction, backed by a storage-level uniqueness
	// constraint on open sessions. Fails with ErrSessionAlreadyOpen.
	OpenSession(ctx context.Context, s *CashSession) error
	// CloseSession closes the current open session in one atomic step and
	// returns it. Fails with ErrNoOpenSession.
	CloseSession(ctx context.Context, closingAmount decimal.Decimal, closedBy, notes string, closedAt time.Time) (*CashSession, error)
	// CurrentSession returns the open session, or ErrNoOpenSession.
	CurrentSession(ctx context.Context) (*CashSession, error)
	// GetSession returns a session by ID, or ErrSessionNotFound.
	GetSession(ctx context.Context, id string) (*CashSession, error)
	// LastSession returns the most recently opened session, open or closed,
	// or ErrSessionNotFound when none exist.
	LastSession(ctx context.Context) (*CashSession, error)
	// AddMovement resolves the current open session inside its transaction,
	// fills m.SessionID and appends the movement. Fails with ErrNoOpenSession.
	AddMovement(ctx context.Context, m *CashMovement) error
	// MovementsBySession returns the session's movements in append order.
	MovementsBySession(ctx context.Context, sessionID string) ([]*CashMovement, error)
	// SalesTotalsByMethod sums committed sale totals per payment method over
	// the closed time window [from, to].
	SalesTotalsByMethod(ctx context.Context, from, to time.Time) (map[string]decimal.Decimal, error)
}
