package paymentrequest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type Service struct {
	repo    Repository
	retries int
	now     func() time.Time
}

func NewService(repo Repository, retries int) *Service {
	return &Service{repo: repo, retries: max(retries, 1), now: time.Now}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type SubmitParams struct {
	Amount        decimal.Decimal
	Date          *time.Time
	Method        string
	TransactionID string
	Notes         string
}

type ListFilter struct {
	BusinessID uuid.UUID
	Status     Status
}

// Submit queues a payment claim from a client against one of its invoices.
// The invoice and ledger are left untouched.
func (s *Service) Submit(ctx context.Context, clientID, invoiceID uuid.UUID, params SubmitParams) (*Request, error) {
	method := invoice.MethodCash

	if raw := strings.TrimSpace(params.Method); raw != "" {
		method = invoice.Method(strings.ToLower(raw))
		if !method.Valid() {
			return nil, apperr.Validation("Invalid payment method %q", raw)
		}
	}

	inv, err := s.repo.ClientInvoice(ctx, clientID, invoiceID)
	if err != nil {
		return nil, err
	}

	if inv.Status == invoice.StatusCancelled {
		return nil, apperr.InvalidState("Cannot submit a payment for a cancelled invoice")
	}

	if err := inv.ValidateAmount(params.Amount); err != nil {
		return nil, err
	}

	date := s.now()
	if params.Date != nil && !params.Date.IsZero() {
		date = *params.Date
	}

	r := &Request{
		InvoiceID:      inv.ID,
		BusinessUserID: inv.UserID,
		ClientID:       clientID,
		Amount:         params.Amount,
		Date:           date,
		Method:         method,
		TransactionID:  strings.TrimSpace(params.TransactionID),
		Notes:          strings.TrimSpace(params.Notes),
		Status:         StatusPending,
	}

	if err := s.repo.CreateRequest(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

// List returns a business's requests, pending ones unless filter says
// otherwise.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Request, error) {
	if filter.Status == "" {
		filter.Status = StatusPending
	}

	if !filter.Status.Valid() {
		return nil, apperr.Validation("Invalid status %q", filter.Status)
	}

	return s.repo.ListRequests(ctx, filter)
}

// Approve re-checks the claim against the invoice's current balance and, if it
// still fits, records it as a payment.
func (s *Service) Approve(ctx context.Context, businessID, id uuid.UUID) (*Request, *invoice.Invoice, error) {
	var (
		req *Request
		inv *invoice.Invoice
		err error
	)

	for n := s.retries; n > 0; n-- {
		req, inv, err = s.approve(ctx, businessID, id)
		if !errors.Is(err, invoice.ErrConcurrentUpdate) {
			break
		}
	}

	if err != nil {
		return nil, nil, err
	}

	return req, inv, nil
}

func (s *Service) approve(ctx context.Context, businessID, id uuid.UUID) (*Request, *invoice.Invoice, error) {
	tx, err := s.repo.BeginReview(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin review: %w", err)
	}
	defer tx.Rollback()

	req, err := tx.LockRequest(ctx, businessID, id)
	if err != nil {
		return nil, nil, err
	}

	if req.Status != StatusPending {
		return nil, nil, apperr.InvalidState("Request is not pending")
	}

	inv, err := tx.LockInvoice(ctx, businessID, req.InvoiceID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()

	_, err = invoice.ApplyPayment(ctx, tx, inv, invoice.PaymentInput{
		Amount:        req.Amount,
		PaymentDate:   &req.Date,
		Method:        string(req.Method),
		TransactionID: req.TransactionID,
		Notes:         req.paymentNotes(),
	}, invoice.MethodOther, now)
	if err != nil {
		return nil, nil, err
	}

	if err := req.Approve(businessID, now); err != nil {
		return nil, nil, err
	}

	if err := tx.SaveRequest(ctx, req); err != nil {
		return nil, nil, fmt.Errorf("saving request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit review: %w", err)
	}

	return req, inv, nil
}

// Reject closes a pending request without touching the invoice.
func (s *Service) Reject(ctx context.Context, businessID, id uuid.UUID) (*Request, error) {
	tx, err := s.repo.BeginReview(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin review: %w", err)
	}
	defer tx.Rollback()

	req, err := tx.LockRequest(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	if err := req.Reject(businessID, s.now()); err != nil {
		return nil, err
	}

	if err := tx.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("saving request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit review: %w", err)
	}

	return req, nil
}
