package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"api_pos/internal/cash"
)

const sessionColumns = "id, opened_at, closed_at, opened_by, closed_by, opening_amount, closing_amount, notes"

// OpenSession inserts a new open session. The existence check and the insert
// share one transaction; the partial unique index on open sessions backs the
// invariant at the storage level.
func (s *Store) OpenSession(ctx context.Context, session *cash.CashSession) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var open int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cash_sessions WHERE closed_at IS NULL",
	).Scan(&open); err != nil {
		return fmt.Errorf("failed to check open sessions: %w", err)
	}
	if open > 0 {
		return cash.ErrSessionAlreadyOpen
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO cash_sessions (id, opened_at, opened_by, opening_amount, closing_amount, notes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID, nanos(session.OpenedAt), session.OpenedBy,
		dec(session.OpeningAmount), dec(session.ClosingAmount), session.Notes,
	)
	if isUniqueViolation(err) {
		return cash.ErrSessionAlreadyOpen
	}
	if err != nil {
		return fmt.Errorf("failed to insert cash session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CloseSession terminally closes the current open session.
func (s *Store) CloseSession(ctx context.Context, closingAmount decimal.Decimal, closedBy, notes string, closedAt time.Time) (*cash.CashSession, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	session, err := scanSession(tx.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM cash_sessions WHERE closed_at IS NULL",
	))
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE cash_sessions SET closed_at = ?, closed_by = ?, closing_amount = ?, notes = ?
		 WHERE id = ? AND closed_at IS NULL`,
		nanos(closedAt), closedBy, dec(closingAmount), notes, session.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to close cash session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, cash.ErrNoOpenSession
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	session.ClosedAt = &closedAt
	session.ClosedBy = &closedBy
	session.ClosingAmount = closingAmount
	session.Notes = notes
	return session, nil
}

// CurrentSession returns the open session, or ErrNoOpenSession.
func (s *Store) CurrentSession(ctx context.Context) (*cash.CashSession, error) {
	return scanSession(s.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM cash_sessions WHERE closed_at IS NULL",
	))
}

// GetSession returns a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*cash.CashSession, error) {
	session, err := scanSession(s.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM cash_sessions WHERE id = ?", id,
	))
	if err == cash.ErrNoOpenSession {
		return nil, cash.ErrSessionNotFound
	}
	return session, err
}

// LastSession returns the most recently opened session, open or closed.
func (s *Store) LastSession(ctx context.Context) (*cash.CashSession, error) {
	session, err := scanSession(s.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM cash_sessions ORDER BY opened_at DESC LIMIT 1",
	))
	if err == cash.ErrNoOpenSession {
		return nil, cash.ErrSessionNotFound
	}
	return session, err
}

// AddMovement appends a movement to the current open session. Resolving the
// session and inserting the movement share one transaction.
func (s *Store) AddMovement(ctx context.Context, m *cash.CashMovement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var sessionID string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM cash_sessions WHERE closed_at IS NULL",
	).Scan(&sessionID)
	if err == sql.ErrNoRows {
		return cash.ErrNoOpenSession
	}
	if err != nil {
		return fmt.Errorf("failed to resolve open session: %w", err)
	}

	m.SessionID = sessionID
	_, err = tx.ExecContext(ctx,
		`INSERT INTO cash_movements (id, session_id, type, amount, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.SessionID, m.Type, dec(m.Amount), m.Reason, nanos(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert cash movement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// MovementsBySession returns the session's movements in append order.
func (s *Store) MovementsBySession(ctx context.Context, sessionID string) ([]*cash.CashMovement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, type, amount, reason, created_at FROM cash_movements
		 WHERE session_id = ? ORDER BY created_at, rowid`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load movements: %w", err)
	}
	defer rows.Close()

	movements := make([]*cash.CashMovement, 0)
	for rows.Next() {
		m := &cash.CashMovement{}
		var amount string
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Type, &amount, &m.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		if m.Amount, err = scanDec(amount); err != nil {
			return nil, err
		}
		m.CreatedAt = fromNanos(createdAt)
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate movements: %w", err)
	}
	return movements, nil
}

// SalesTotalsByMethod sums committed sale totals per payment method over the
// closed window [from, to]. Amounts are summed as decimals in Go.
func (s *Store) SalesTotalsByMethod(ctx context.Context, from, to time.Time) (map[string]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payment_method, total FROM sales WHERE datetime >= ? AND datetime <= ?",
		nanos(from), nanos(to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load sale totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var method, total string
		if err := rows.Scan(&method, &total); err != nil {
			return nil, fmt.Errorf("failed to scan sale total: %w", err)
		}
		amount, err := scanDec(total)
		if err != nil {
			return nil, err
		}
		totals[method] = totals[method].Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sale totals: %w", err)
	}
	return totals, nil
}

func scanSession(row rowScanner) (*cash.CashSession, error) {
	session := &cash.CashSession{}
	var openedAt int64
	var closedAt sql.NullInt64
	var closedBy sql.NullString
	var opening, closing string

	err := row.Scan(&session.ID, &openedAt, &closedAt, &session.OpenedBy, &closedBy,
		&opening, &closing, &session.Notes)
	if err == sql.ErrNoRows {
		return nil, cash.ErrNoOpenSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan cash session: %w", err)
	}

	session.OpenedAt = fromNanos(openedAt)
	if closedAt.Valid {
		t := fromNanos(closedAt.Int64)
		session.ClosedAt = &t
	}
	if closedBy.Valid {
		session.ClosedBy = &closedBy.String
	}
	if session.OpeningAmount, err = scanDec(opening); err != nil {
		return nil, err
	}
	if session.ClosingAmount, err = scanDec(closing); err != nil {
		return nil, err
	}
	return session, nil
}
