package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/database"
	"github.com/MrJamesThe3rd/invoicer/internal/ledger"
)

// Apply increments a client's totals by d. It runs on exec so that callers
// can keep the ledger write in the same transaction as the invoice write.
func Apply(ctx context.Context, exec database.Execer, clientID uuid.UUID, d ledger.Delta) error {
	if d.IsZero() {
		return nil
	}

	query := `
		UPDATE clients
		SET total_invoiced = total_invoiced + $1,
		    total_paid = total_paid + $2,
		    total_outstanding = total_outstanding + $3,
		    updated_at = NOW()
		WHERE id = $4
	`

	res, err := exec.ExecContext(ctx, query, d.Invoiced, d.Paid, d.Outstanding, clientID)
	if err != nil {
		return fmt.Errorf("applying ledger delta: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("applying ledger delta: %w", err)
	}

	if n == 0 {
		return apperr.NotFound("client")
	}

	return nil
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const reportQuery = `
	SELECT c.id, c.name, c.total_invoiced, c.total_paid, c.total_outstanding,
	       COALESCE(SUM(i.total_amount), 0),
	       COALESCE(SUM(i.paid_amount), 0),
	       COALESCE(SUM(i.remaining_amount), 0),
	       COUNT(i.id),
	       COALESCE(SUM(i.remaining_amount) FILTER (WHERE i.status = 'overdue'), 0)
	FROM clients c
	LEFT JOIN invoices i ON i.client_id = c.id
`

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (*ledger.Report, error) {
	var r ledger.Report

	if err := s.Scan(
		&r.ClientID, &r.ClientName,
		&r.Stored.Invoiced, &r.Stored.Paid, &r.Stored.Outstanding,
		&r.Actual.Invoiced, &r.Actual.Paid, &r.Actual.Outstanding,
		&r.InvoiceCount, &r.OverdueAmount,
	); err != nil {
		return nil, err
	}

	r.StatusBreakdown = make(map[string]int)

	return &r, nil
}

func (s *Store) Report(ctx context.Context, userID, clientID uuid.UUID) (*ledger.Report, error) {
	query := reportQuery + `
		WHERE c.id = $1 AND c.user_id = $2
		GROUP BY c.id`

	report, err := scanReport(s.db.QueryRowContext(ctx, query, clientID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("client")
		}

		return nil, fmt.Errorf("building ledger report: %w", err)
	}

	if err := s.fillBreakdown(ctx, userID, map[uuid.UUID]*ledger.Report{report.ClientID: report}); err != nil {
		return nil, err
	}

	return report, nil
}

func (s *Store) Reports(ctx context.Context, userID uuid.UUID) ([]*ledger.Report, error) {
	query := reportQuery + `
		WHERE c.user_id = $1
		GROUP BY c.id
		ORDER BY c.name ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing ledger reports: %w", err)
	}
	defer rows.Close()

	var reports []*ledger.Report

	byClient := make(map[uuid.UUID]*ledger.Report)

	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ledger report: %w", err)
		}

		reports = append(reports, r)
		byClient[r.ClientID] = r
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger reports: %w", err)
	}

	if err := s.fillBreakdown(ctx, userID, byClient); err != nil {
		return nil, err
	}

	return reports, nil
}

func (s *Store) fillBreakdown(ctx context.Context, userID uuid.UUID, byClient map[uuid.UUID]*ledger.Report) error {
	if len(byClient) == 0 {
		return nil
	}

	query := `
		SELECT client_id, status, COUNT(*)
		FROM invoices
		WHERE user_id = $1
		GROUP BY client_id, status
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("counting invoice statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			clientID uuid.UUID
			status   string
			count    int
		)

		if err := rows.Scan(&clientID, &status, &count); err != nil {
			return fmt.Errorf("scanning status count: %w", err)
		}

		if r, ok := byClient[clientID]; ok {
			r.StatusBreakdown[status] = count
		}
	}

	return rows.Err()
}
