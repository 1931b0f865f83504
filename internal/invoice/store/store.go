package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/database"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/invoicer/internal/ledger/store"
)

const numberConstraint = "invoices_user_number_key"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanInvoice reads an invoice row joined with its client.
// Expected column order matches selectInvoiceColumns.
func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var (
		inv                              invoice.Invoice
		status, template                 string
		items, payments, sent, reminders []byte
		client                           invoice.Party
	)

	if err := s.Scan(
		&inv.ID, &inv.UserID, &inv.ClientID, &inv.InvoiceNumber, &status,
		&inv.IssueDate, &inv.DueDate, &items,
		&inv.Subtotal, &inv.TaxAmount, &inv.DiscountAmount, &inv.TotalAmount, &inv.PaidAmount, &inv.RemainingAmount,
		&inv.Currency, &inv.PaymentTerms, &inv.Notes, &inv.InternalNotes, &template,
		&payments, &sent, &reminders,
		&inv.PaidAt, &inv.ViewedAt, &inv.CreatedAt, &inv.UpdatedAt,
		&client.Name, &client.Company, &client.Email, &client.Phone, &client.Address,
	); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(status)
	inv.Template = invoice.Template(template)

	for _, doc := range []struct {
		raw  []byte
		dest any
	}{
		{items, &inv.Items},
		{payments, &inv.PaymentHistory},
		{sent, &inv.SentHistory},
		{reminders, &inv.Reminders},
	} {
		if err := json.Unmarshal(doc.raw, doc.dest); err != nil {
			return nil, fmt.Errorf("decoding invoice %s: %w", inv.ID, err)
		}
	}

	client.ID = inv.ClientID
	inv.Client = &client

	return &inv, nil
}

const selectInvoiceColumns = `
	i.id, i.user_id, i.client_id, i.invoice_number, i.status,
	i.issue_date, i.due_date, i.items,
	i.subtotal, i.tax_amount, i.discount_amount, i.total_amount, i.paid_amount, i.remaining_amount,
	i.currency, i.payment_terms, i.notes, i.internal_notes, i.template,
	i.payment_history, i.sent_history, i.reminders,
	i.paid_at, i.viewed_at, i.created_at, i.updated_at,
	c.name, c.company, c.email, c.phone, c.address
`

const fromInvoices = `
	FROM invoices i
	JOIN clients c ON c.id = i.client_id
`

func (s *Store) GetInvoice(ctx context.Context, userID, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + fromInvoices + `WHERE i.id = $1 AND i.user_id = $2`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Invoice")
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

var sortColumns = map[string]string{
	"createdAt":     "i.created_at",
	"issueDate":     "i.issue_date",
	"dueDate":       "i.due_date",
	"totalAmount":   "i.total_amount",
	"invoiceNumber": "i.invoice_number",
}

func (s *Store) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, int, error) {
	where := ` WHERE i.user_id = $1`
	args := []any{filter.UserID}
	argIdx := 2

	if filter.Status != nil {
		where += fmt.Sprintf(" AND i.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.ClientID != nil {
		where += fmt.Sprintf(" AND i.client_id = $%d", argIdx)

		args = append(args, *filter.ClientID)
		argIdx++
	}

	if filter.Search != "" {
		where += fmt.Sprintf(" AND (i.invoice_number ILIKE $%d OR i.notes ILIKE $%d)", argIdx, argIdx)

		args = append(args, database.ContainsPattern(filter.Search))
		argIdx++
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*)`+fromInvoices+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting invoices: %w", err)
	}

	orderBy, ok := sortColumns[filter.SortBy]
	if !ok {
		orderBy = sortColumns["createdAt"]
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	query := `SELECT ` + selectInvoiceColumns + fromInvoices + where +
		fmt.Sprintf(" ORDER BY %s %s, i.id LIMIT $%d OFFSET $%d", orderBy, direction, argIdx, argIdx+1)

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	invoices, err := s.queryInvoices(ctx, s.db, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (s *Store) ListForClients(ctx context.Context, userID uuid.UUID, clientIDs []uuid.UUID, statuses []invoice.Status) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + fromInvoices + `
		WHERE i.user_id = $1 AND i.client_id = ANY($2) AND i.status = ANY($3)
		ORDER BY i.created_at DESC`

	statusNames := make([]string, len(statuses))
	for i, st := range statuses {
		statusNames[i] = string(st)
	}

	return s.queryInvoices(ctx, s.db, query, userID, uuidStrings(clientIDs), statusNames)
}

func (s *Store) GetForClients(ctx context.Context, id uuid.UUID, clientIDs []uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + fromInvoices + `
		WHERE i.id = $1 AND i.client_id = ANY($2) AND i.status NOT IN ('draft', 'cancelled')`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id, uuidStrings(clientIDs)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Invoice")
		}

		return nil, fmt.Errorf("getting client invoice: %w", err)
	}

	return inv, nil
}

func (s *Store) queryInvoices(ctx context.Context, exec database.Execer, query string, args ...any) ([]*invoice.Invoice, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]*invoice.Invoice, 0)

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoices: %w", err)
	}

	return invoices, nil
}

func (s *Store) Overview(ctx context.Context, userID uuid.UUID) (*invoice.Overview, error) {
	query := `
		SELECT status, COUNT(*),
		       COALESCE(SUM(total_amount), 0),
		       COALESCE(SUM(paid_amount), 0),
		       COALESCE(SUM(remaining_amount), 0)
		FROM invoices
		WHERE user_id = $1
		GROUP BY status
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("building invoice overview: %w", err)
	}
	defer rows.Close()

	ov := &invoice.Overview{StatusCounts: make(map[invoice.Status]int)}

	for rows.Next() {
		var (
			status                   string
			count                    int
			total, paid, outstanding decimal.Decimal
		)

		if err := rows.Scan(&status, &count, &total, &paid, &outstanding); err != nil {
			return nil, fmt.Errorf("scanning invoice overview: %w", err)
		}

		ov.StatusCounts[invoice.Status(status)] = count
		ov.TotalInvoices += count

		if invoice.Status(status) == invoice.StatusCancelled {
			continue
		}

		ov.TotalAmount = ov.TotalAmount.Add(total)
		ov.PaidAmount = ov.PaidAmount.Add(paid)
		ov.OutstandingAmount = ov.OutstandingAmount.Add(outstanding)

		if invoice.Status(status) == invoice.StatusOverdue {
			ov.OverdueAmount = ov.OverdueAmount.Add(outstanding)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice overview: %w", err)
	}

	return ov, nil
}

func (s *Store) Document(ctx context.Context, userID, id uuid.UUID) (*invoice.Document, error) {
	inv, err := s.GetInvoice(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	doc := &invoice.Document{Invoice: inv, Client: *inv.Client}

	query := `
		SELECT b.id, COALESCE(NULLIF(b.business_name, ''), b.name), b.email, b.phone, b.address, b.tax_id,
		       COALESCE(c.tax_id, '')
		FROM businesses b
		JOIN clients c ON c.id = $2
		WHERE b.id = $1
	`

	b := &doc.Business
	if err := s.db.QueryRowContext(ctx, query, userID, inv.ClientID).Scan(
		&b.ID, &b.Name, &b.Email, &b.Phone, &b.Address, &b.TaxID, &doc.Client.TaxID,
	); err != nil {
		return nil, fmt.Errorf("loading invoice parties: %w", err)
	}

	return doc, nil
}

func (s *Store) Begin(ctx context.Context) (invoice.Tx, error) {
	return NewTx(ctx, s.db)
}

// Tx is an invoice unit of work on a single database transaction. Other
// stores embed it to write invoices atomically with their own rows.
type Tx struct {
	tx *sql.Tx
}

func NewTx(ctx context.Context, db *sql.DB) (*Tx, error) {
	dbTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &Tx{tx: dbTx}, nil
}

// SQL exposes the underlying transaction to embedding stores.
func (t *Tx) SQL() *sql.Tx { return t.tx }

func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return classify(err)
	}

	return nil
}

func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}

	return err
}

// classify turns lost races into invoice.ErrConcurrentUpdate so that callers
// can retry.
func classify(err error) error {
	if database.IsRetryable(err) {
		return fmt.Errorf("%w: %w", invoice.ErrConcurrentUpdate, err)
	}

	return err
}

func (t *Tx) LockInvoice(ctx context.Context, userID, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + fromInvoices + `
		WHERE i.id = $1 AND i.user_id = $2
		FOR UPDATE OF i`

	inv, err := scanInvoice(t.tx.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Invoice")
		}

		return nil, fmt.Errorf("locking invoice: %w", classify(err))
	}

	return inv, nil
}

func (t *Tx) ClientExists(ctx context.Context, userID, clientID uuid.UUID) (bool, error) {
	var exists bool

	query := `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1 AND user_id = $2)`
	if err := t.tx.QueryRowContext(ctx, query, clientID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking client: %w", err)
	}

	return exists, nil
}

func (t *Tx) BusinessDefaults(ctx context.Context, userID uuid.UUID) (invoice.Defaults, error) {
	var d invoice.Defaults

	query := `SELECT invoice_prefix, currency, payment_terms FROM businesses WHERE id = $1`

	err := t.tx.QueryRowContext(ctx, query, userID).Scan(&d.Prefix, &d.Currency, &d.PaymentTerms)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invoice.Defaults{}, apperr.NotFound("Business")
		}

		return invoice.Defaults{}, fmt.Errorf("loading business defaults: %w", err)
	}

	return d, nil
}

func (t *Tx) CountInvoices(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	if err := t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoices WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting invoices: %w", err)
	}

	return n, nil
}

type encodedDocs struct {
	items, payments, sent, reminders []byte
}

func encodeDocs(inv *invoice.Invoice) (encodedDocs, error) {
	var (
		e   encodedDocs
		err error
	)

	if e.items, err = json.Marshal(nonNil(inv.Items)); err != nil {
		return e, fmt.Errorf("encoding items: %w", err)
	}

	if e.payments, err = json.Marshal(nonNil(inv.PaymentHistory)); err != nil {
		return e, fmt.Errorf("encoding payment history: %w", err)
	}

	if e.sent, err = json.Marshal(nonNil(inv.SentHistory)); err != nil {
		return e, fmt.Errorf("encoding sent history: %w", err)
	}

	if e.reminders, err = json.Marshal(nonNil(inv.Reminders)); err != nil {
		return e, fmt.Errorf("encoding reminders: %w", err)
	}

	return e, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}

func (t *Tx) InsertInvoice(ctx context.Context, inv *invoice.Invoice) error {
	docs, err := encodeDocs(inv)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO invoices (
			user_id, client_id, invoice_number, status, issue_date, due_date, items,
			subtotal, tax_amount, discount_amount, total_amount, paid_amount, remaining_amount,
			currency, payment_terms, notes, internal_notes, template,
			payment_history, sent_history, reminders, paid_at, viewed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING id, created_at, updated_at
	`

	err = t.tx.QueryRowContext(ctx, query,
		inv.UserID, inv.ClientID, inv.InvoiceNumber, inv.Status, inv.IssueDate, inv.DueDate, docs.items,
		inv.Subtotal, inv.TaxAmount, inv.DiscountAmount, inv.TotalAmount, inv.PaidAmount, inv.RemainingAmount,
		inv.Currency, inv.PaymentTerms, inv.Notes, inv.InternalNotes, inv.Template,
		docs.payments, docs.sent, docs.reminders, inv.PaidAt, inv.ViewedAt,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, numberConstraint) {
			return invoice.ErrDuplicateNumber
		}

		return fmt.Errorf("creating invoice: %w", classify(err))
	}

	return nil
}

// SaveInvoice writes every mutable column of inv. The owner and number are
// never written after insert.
func (t *Tx) SaveInvoice(ctx context.Context, inv *invoice.Invoice) error {
	docs, err := encodeDocs(inv)
	if err != nil {
		return err
	}

	query := `
		UPDATE invoices
		SET client_id = $1, status = $2, issue_date = $3, due_date = $4, items = $5,
		    subtotal = $6, tax_amount = $7, discount_amount = $8, total_amount = $9,
		    paid_amount = $10, remaining_amount = $11,
		    currency = $12, payment_terms = $13, notes = $14, internal_notes = $15, template = $16,
		    payment_history = $17, sent_history = $18, reminders = $19,
		    paid_at = $20, viewed_at = $21, updated_at = NOW()
		WHERE id = $22
		RETURNING updated_at
	`

	err = t.tx.QueryRowContext(ctx, query,
		inv.ClientID, inv.Status, inv.IssueDate, inv.DueDate, docs.items,
		inv.Subtotal, inv.TaxAmount, inv.DiscountAmount, inv.TotalAmount,
		inv.PaidAmount, inv.RemainingAmount,
		inv.Currency, inv.PaymentTerms, inv.Notes, inv.InternalNotes, inv.Template,
		docs.payments, docs.sent, docs.reminders,
		inv.PaidAt, inv.ViewedAt, inv.ID,
	).Scan(&inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Invoice")
		}

		return fmt.Errorf("updating invoice: %w", classify(err))
	}

	return nil
}

func (t *Tx) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting invoice: %w", classify(err))
	}

	return nil
}

func (t *Tx) ApplyLedger(ctx context.Context, clientID uuid.UUID, d ledger.Delta) error {
	if err := ledgerStore.Apply(ctx, t.tx, clientID, d); err != nil {
		return classify(err)
	}

	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}

	return out
}
