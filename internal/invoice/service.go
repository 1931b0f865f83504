package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/ledger"
)

// ErrConcurrentUpdate is returned by stores when a transaction lost a race
// with another one and may be retried from the start.
var ErrConcurrentUpdate = &apperr.Error{Kind: apperr.ErrConflict, Message: "The invoice was modified concurrently, please retry"}

const maxNotesLength = 1000

// Settings are the system-wide invoice defaults.
type Settings struct {
	Prefix         string
	Currency       string
	PaymentTerms   string
	PaymentRetries int
	Now            func() time.Time
}

type Service struct {
	repo     Repository
	settings Settings
}

func NewService(repo Repository, settings Settings) *Service {
	if settings.Now == nil {
		settings.Now = time.Now
	}

	if settings.PaymentRetries < 1 {
		settings.PaymentRetries = 1
	}

	return &Service{repo: repo, settings: settings}
}

type CreateParams struct {
	ClientID       uuid.UUID
	InvoiceNumber  string
	IssueDate      time.Time
	DueDate        time.Time
	Items          []LineItem
	DiscountAmount decimal.Decimal
	Currency       string
	PaymentTerms   string
	Notes          string
	InternalNotes  string
	Template       Template
}

// UpdateParams lists the fields an update may touch. Nil means unchanged.
// InvoiceNumber and UserID are accepted only when they match the stored
// values.
type UpdateParams struct {
	InvoiceNumber  *string
	UserID         *uuid.UUID
	ClientID       *uuid.UUID
	IssueDate      *time.Time
	DueDate        *time.Time
	Items          []LineItem
	DiscountAmount *decimal.Decimal
	Currency       *string
	PaymentTerms   *string
	Notes          *string
	InternalNotes  *string
	Template       *Template
}

type ListFilter struct {
	UserID   uuid.UUID
	Status   *Status
	ClientID *uuid.UUID
	Search   string
	SortBy   string
	SortDesc bool
	Page     int
	Limit    int
}

// SortColumns are the accepted values of ListFilter.SortBy.
var SortColumns = []string{"createdAt", "issueDate", "dueDate", "totalAmount", "invoiceNumber"}

type Page struct {
	Invoices    []*Invoice
	Total       int
	TotalPages  int
	CurrentPage int
}

// Create validates and prices a new draft invoice, assigns its number and adds
// it to the client's ledger.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Invoice, error) {
	inv := &Invoice{
		UserID:        userID,
		ClientID:      params.ClientID,
		InvoiceNumber: strings.TrimSpace(params.InvoiceNumber),
		Status:        StatusDraft,
		IssueDate:     params.IssueDate,
		DueDate:       params.DueDate,
		Currency:      strings.ToUpper(strings.TrimSpace(params.Currency)),
		PaymentTerms:  strings.TrimSpace(params.PaymentTerms),
		Notes:         params.Notes,
		InternalNotes: params.InternalNotes,
		Template:      params.Template,
	}

	if inv.Template == "" {
		inv.Template = TemplateStandard
	}

	if params.ClientID == uuid.Nil {
		return nil, apperr.Validation("Client is required")
	}

	if err := inv.reprice(params.Items, params.DiscountAmount); err != nil {
		return nil, err
	}

	if err := inv.validate(); err != nil {
		return nil, err
	}

	if inv.InvoiceNumber != "" {
		if err := s.insert(ctx, inv, nil); err != nil {
			return nil, err
		}

		return inv, nil
	}

	err := s.insert(ctx, inv, func(ctx context.Context, tx Tx, prefix string) (string, error) {
		count, err := tx.CountInvoices(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("counting invoices: %w", err)
		}

		return SequenceNumber(prefix, count+1), nil
	})
	if err == nil {
		return inv, nil
	}

	if !errors.Is(err, ErrDuplicateNumber) {
		return nil, err
	}

	err = s.insert(ctx, inv, func(_ context.Context, _ Tx, prefix string) (string, error) {
		return FallbackNumber(prefix, s.settings.Now()), nil
	})
	if errors.Is(err, ErrDuplicateNumber) {
		return nil, apperr.Conflict("Could not assign a unique invoice number, please retry")
	}

	if err != nil {
		return nil, err
	}

	return inv, nil
}

type numberFunc func(ctx context.Context, tx Tx, prefix string) (string, error)

// insert writes inv in its own transaction. When number is non-nil it assigns
// the invoice number inside that transaction.
func (s *Service) insert(ctx context.Context, inv *Invoice, number numberFunc) error {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	exists, err := tx.ClientExists(ctx, inv.UserID, inv.ClientID)
	if err != nil {
		return fmt.Errorf("checking client: %w", err)
	}

	if !exists {
		return apperr.NotFound("Client")
	}

	defaults, err := tx.BusinessDefaults(ctx, inv.UserID)
	if err != nil {
		return fmt.Errorf("loading business defaults: %w", err)
	}

	s.applyDefaults(inv, defaults)

	if number != nil {
		n, err := number(ctx, tx, firstNonEmpty(defaults.Prefix, s.settings.Prefix))
		if err != nil {
			return err
		}

		inv.InvoiceNumber = n
	}

	inv.RecomputeStatus(s.settings.Now())

	if err := tx.InsertInvoice(ctx, inv); err != nil {
		return err
	}

	if err := tx.ApplyLedger(ctx, inv.ClientID, ledger.InvoiceCreated(inv.TotalAmount)); err != nil {
		return fmt.Errorf("updating client ledger: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create: %w", err)
	}

	return nil
}

func (s *Service) applyDefaults(inv *Invoice, d Defaults) {
	if inv.Currency == "" {
		inv.Currency = firstNonEmpty(d.Currency, s.settings.Currency)
	}

	if inv.PaymentTerms == "" {
		inv.PaymentTerms = firstNonEmpty(d.PaymentTerms, s.settings.PaymentTerms)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

// validate checks the fields outside the lines.
func (inv *Invoice) validate() error {
	if inv.IssueDate.IsZero() {
		return apperr.Validation("Issue date is required")
	}

	if inv.DueDate.IsZero() {
		return apperr.Validation("Due date is required")
	}

	if inv.DueDate.Before(inv.IssueDate) {
		return apperr.Validation("Due date must be on or after the issue date")
	}

	if inv.Currency != "" {
		if _, err := currency.ParseISO(inv.Currency); err != nil {
			return apperr.Validation("Invalid currency code %q", inv.Currency)
		}
	}

	if len(inv.Notes) > maxNotesLength || len(inv.InternalNotes) > maxNotesLength {
		return apperr.Validation("Notes cannot exceed %d characters", maxNotesLength)
	}

	if !inv.Template.Valid() {
		return apperr.Validation("Invalid template %q", inv.Template)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) (*Page, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}

	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 10
	}

	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperr.Validation("Invalid status %q", *filter.Status)
	}

	invoices, total, err := s.repo.ListInvoices(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &Page{
		Invoices:    invoices,
		Total:       total,
		TotalPages:  (total + filter.Limit - 1) / filter.Limit,
		CurrentPage: filter.Page,
	}, nil
}

// Update applies a partial edit. Paid and cancelled invoices are frozen.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Invoice, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	inv, err := tx.LockInvoice(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if inv.Frozen() {
		return nil, apperr.InvalidState("Cannot update a %s invoice", inv.Status)
	}

	if params.InvoiceNumber != nil && *params.InvoiceNumber != inv.InvoiceNumber {
		return nil, apperr.Validation("Invoice number cannot be changed")
	}

	if params.UserID != nil && *params.UserID != inv.UserID {
		return nil, apperr.Validation("Invoice owner cannot be changed")
	}

	before := *inv

	if params.ClientID != nil && *params.ClientID != inv.ClientID {
		if err := s.moveClient(ctx, tx, inv, *params.ClientID); err != nil {
			return nil, err
		}
	}

	if err := inv.applyUpdate(params); err != nil {
		return nil, err
	}

	if inv.TotalAmount.LessThan(inv.PaidAmount) {
		return nil, apperr.Validation("Total amount cannot be less than the amount already paid")
	}

	inv.RecomputeStatus(s.settings.Now())

	if err := tx.SaveInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("saving invoice: %w", err)
	}

	if inv.ClientID == before.ClientID {
		delta := ledger.InvoiceRevised(before.TotalAmount, before.RemainingAmount, inv.TotalAmount, inv.RemainingAmount)
		if err := tx.ApplyLedger(ctx, inv.ClientID, delta); err != nil {
			return nil, fmt.Errorf("updating client ledger: %w", err)
		}
	} else {
		if err := tx.ApplyLedger(ctx, before.ClientID, ledger.InvoiceDeleted(before.TotalAmount, before.RemainingAmount)); err != nil {
			return nil, fmt.Errorf("updating previous client ledger: %w", err)
		}

		if err := tx.ApplyLedger(ctx, inv.ClientID, ledger.InvoiceCreated(inv.TotalAmount)); err != nil {
			return nil, fmt.Errorf("updating client ledger: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}

	return inv, nil
}

func (s *Service) moveClient(ctx context.Context, tx Tx, inv *Invoice, clientID uuid.UUID) error {
	if inv.PaidAmount.IsPositive() {
		return apperr.InvalidState("Cannot move an invoice with recorded payments to another client")
	}

	exists, err := tx.ClientExists(ctx, inv.UserID, clientID)
	if err != nil {
		return fmt.Errorf("checking client: %w", err)
	}

	if !exists {
		return apperr.NotFound("Client")
	}

	inv.ClientID = clientID
	inv.Client = nil

	return nil
}

func (inv *Invoice) applyUpdate(p UpdateParams) error {
	if p.IssueDate != nil {
		inv.IssueDate = *p.IssueDate
	}

	if p.DueDate != nil {
		inv.DueDate = *p.DueDate
	}

	if p.Currency != nil {
		inv.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}

	if p.PaymentTerms != nil {
		inv.PaymentTerms = strings.TrimSpace(*p.PaymentTerms)
	}

	if p.Notes != nil {
		inv.Notes = *p.Notes
	}

	if p.InternalNotes != nil {
		inv.InternalNotes = *p.InternalNotes
	}

	if p.Template != nil {
		inv.Template = *p.Template
	}

	if p.Items != nil || p.DiscountAmount != nil {
		items, discount := inv.Items, inv.DiscountAmount
		if p.Items != nil {
			items = p.Items
		}

		if p.DiscountAmount != nil {
			discount = *p.DiscountAmount
		}

		if err := inv.reprice(items, discount); err != nil {
			return err
		}
	}

	return inv.validate()
}

// Delete removes an unpaid invoice and takes it off the client's ledger.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	inv, err := tx.LockInvoice(ctx, userID, id)
	if err != nil {
		return err
	}

	if inv.Status == StatusPaid {
		return apperr.InvalidState("Cannot delete a paid invoice")
	}

	if err := tx.ApplyLedger(ctx, inv.ClientID, ledger.InvoiceDeleted(inv.TotalAmount, inv.RemainingAmount)); err != nil {
		return fmt.Errorf("updating client ledger: %w", err)
	}

	if err := tx.DeleteInvoice(ctx, inv.ID); err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	return nil
}

type SendParams struct {
	SentTo string
	Method string
}

func (s *Service) Send(ctx context.Context, userID, id uuid.UUID, params SendParams) (*Invoice, error) {
	return s.mutate(ctx, userID, id, func(inv *Invoice, now time.Time) error {
		return inv.MarkSent(now, params.SentTo, params.Method)
	})
}

func (s *Service) Cancel(ctx context.Context, userID, id uuid.UUID) (*Invoice, error) {
	return s.mutate(ctx, userID, id, func(inv *Invoice, _ time.Time) error {
		return inv.Cancel()
	})
}

func (s *Service) Remind(ctx context.Context, userID, id uuid.UUID, kind string) (*Invoice, error) {
	return s.mutate(ctx, userID, id, func(inv *Invoice, now time.Time) error {
		return inv.AddReminder(now, kind)
	})
}

// mutate runs a status operation that does not move money.
func (s *Service) mutate(ctx context.Context, userID, id uuid.UUID, fn func(inv *Invoice, now time.Time) error) (*Invoice, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	inv, err := tx.LockInvoice(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := s.settings.Now()
	if err := fn(inv, now); err != nil {
		return nil, err
	}

	inv.RecomputeStatus(now)

	if err := tx.SaveInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("saving invoice: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return inv, nil
}

// RecordPayment applies a payment entered by the business. A transaction that
// loses a race with a concurrent writer is retried a bounded number of times.
func (s *Service) RecordPayment(ctx context.Context, userID, id uuid.UUID, in PaymentInput) (*Invoice, error) {
	var (
		inv *Invoice
		err error
	)

	for n := s.settings.PaymentRetries; n > 0; n-- {
		inv, err = s.recordPayment(ctx, userID, id, in)
		if !errors.Is(err, ErrConcurrentUpdate) {
			break
		}
	}

	if err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Service) recordPayment(ctx context.Context, userID, id uuid.UUID, in PaymentInput) (*Invoice, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin payment: %w", err)
	}
	defer tx.Rollback()

	inv, err := tx.LockInvoice(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if _, err := ApplyPayment(ctx, tx, inv, in, MethodCash, s.settings.Now()); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}

	return inv, nil
}

// PortalStatuses are the statuses a client can see in the portal.
var PortalStatuses = []Status{StatusSent, StatusViewed, StatusOverdue, StatusPaid}

// ListForClients returns the portal view of a business's invoices addressed to
// any of clientIDs.
func (s *Service) ListForClients(ctx context.Context, userID uuid.UUID, clientIDs []uuid.UUID) ([]*Invoice, error) {
	if len(clientIDs) == 0 {
		return nil, nil
	}

	return s.repo.ListForClients(ctx, userID, clientIDs, PortalStatuses)
}

// OpenForClient fetches an invoice for the portal and records the first view.
func (s *Service) OpenForClient(ctx context.Context, id uuid.UUID, clientIDs []uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetForClients(ctx, id, clientIDs)
	if err != nil {
		return nil, err
	}

	if inv.Status != StatusSent {
		return inv, nil
	}

	return s.mutate(ctx, inv.UserID, inv.ID, func(inv *Invoice, now time.Time) error {
		inv.MarkViewed(now)
		return nil
	})
}

func (s *Service) Overview(ctx context.Context, userID uuid.UUID) (*Overview, error) {
	return s.repo.Overview(ctx, userID)
}

func (s *Service) Document(ctx context.Context, userID, id uuid.UUID) (*Document, error) {
	return s.repo.Document(ctx, userID, id)
}
