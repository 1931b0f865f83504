package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/invoicer/internal/invoice/store"
	"github.com/MrJamesThe3rd/invoicer/internal/paymentrequest"
)

type Store struct {
	db       *sql.DB
	invoices *invoiceStore.Store
}

func New(db *sql.DB, invoices *invoiceStore.Store) *Store {
	return &Store{db: db, invoices: invoices}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectRequestColumns = `
	pr.id, pr.invoice_id, pr.business_user_id, pr.client_id, pr.amount, pr.date, pr.method,
	pr.transaction_id, pr.notes, pr.status, pr.reviewed_at, pr.reviewed_by, pr.created_at, pr.updated_at
`

func scanRequest(s scanner, extra ...any) (*paymentrequest.Request, error) {
	var (
		r              paymentrequest.Request
		method, status string
	)

	dest := []any{
		&r.ID, &r.InvoiceID, &r.BusinessUserID, &r.ClientID, &r.Amount, &r.Date, &method,
		&r.TransactionID, &r.Notes, &status, &r.ReviewedAt, &r.ReviewedBy, &r.CreatedAt, &r.UpdatedAt,
	}

	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	r.Method = invoice.Method(method)
	r.Status = paymentrequest.Status(status)

	return &r, nil
}

// ClientInvoice fetches an invoice only if it is addressed to clientID.
func (s *Store) ClientInvoice(ctx context.Context, clientID, invoiceID uuid.UUID) (*invoice.Invoice, error) {
	var userID uuid.UUID

	query := `SELECT user_id FROM invoices WHERE id = $1 AND client_id = $2`
	if err := s.db.QueryRowContext(ctx, query, invoiceID, clientID).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Invoice")
		}

		return nil, fmt.Errorf("finding client invoice: %w", err)
	}

	return s.invoices.GetInvoice(ctx, userID, invoiceID)
}

func (s *Store) CreateRequest(ctx context.Context, r *paymentrequest.Request) error {
	query := `
		INSERT INTO payment_requests (invoice_id, business_user_id, client_id, amount, date, method, transaction_id, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		r.InvoiceID, r.BusinessUserID, r.ClientID, r.Amount, r.Date, r.Method, r.TransactionID, r.Notes, r.Status,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating payment request: %w", err)
	}

	return nil
}

func (s *Store) ListRequests(ctx context.Context, filter paymentrequest.ListFilter) ([]*paymentrequest.Request, error) {
	query := `SELECT ` + selectRequestColumns + `,
		i.invoice_number, i.total_amount, i.remaining_amount, i.status, c.name, c.email
		FROM payment_requests pr
		JOIN invoices i ON i.id = pr.invoice_id
		JOIN clients c ON c.id = pr.client_id
		WHERE pr.business_user_id = $1 AND pr.status = $2
		ORDER BY pr.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, filter.BusinessID, filter.Status)
	if err != nil {
		return nil, fmt.Errorf("listing payment requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*paymentrequest.Request, 0)

	for rows.Next() {
		var (
			inv       paymentrequest.InvoiceSummary
			invStatus string
			client    paymentrequest.ClientSummary
		)

		r, err := scanRequest(rows,
			&inv.InvoiceNumber, &inv.TotalAmount, &inv.RemainingAmount, &invStatus, &client.Name, &client.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning payment request: %w", err)
		}

		inv.Status = invoice.Status(invStatus)
		r.Invoice = &inv
		r.Client = &client

		requests = append(requests, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment requests: %w", err)
	}

	return requests, nil
}

func (s *Store) BeginReview(ctx context.Context) (paymentrequest.ReviewTx, error) {
	tx, err := invoiceStore.NewTx(ctx, s.db)
	if err != nil {
		return nil, err
	}

	return &reviewTx{Tx: tx}, nil
}

// reviewTx shares the invoice transaction so that the request, the invoice
// and the client ledger commit together.
type reviewTx struct {
	*invoiceStore.Tx
}

func (t *reviewTx) LockRequest(ctx context.Context, businessID, id uuid.UUID) (*paymentrequest.Request, error) {
	query := `SELECT ` + selectRequestColumns + `
		FROM payment_requests pr
		WHERE pr.id = $1 AND pr.business_user_id = $2
		FOR UPDATE`

	r, err := scanRequest(t.SQL().QueryRowContext(ctx, query, id, businessID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Payment request")
		}

		return nil, fmt.Errorf("locking payment request: %w", err)
	}

	return r, nil
}

func (t *reviewTx) SaveRequest(ctx context.Context, r *paymentrequest.Request) error {
	query := `
		UPDATE payment_requests
		SET status = $1, reviewed_at = $2, reviewed_by = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	if err := t.SQL().QueryRowContext(ctx, query, r.Status, r.ReviewedAt, r.ReviewedBy, r.ID).Scan(&r.UpdatedAt); err != nil {
		return fmt.Errorf("updating payment request: %w", err)
	}

	return nil
}
