package paymentrequest

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// Status represents the review state of a payment request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Request is a client's claim that it paid an invoice. It moves no money
// until the business approves it.
type Request struct {
	ID             uuid.UUID
	InvoiceID      uuid.UUID
	BusinessUserID uuid.UUID
	ClientID       uuid.UUID
	Amount         decimal.Decimal
	Date           time.Time
	Method         invoice.Method
	TransactionID  string
	Notes          string
	Status         Status
	ReviewedAt     *time.Time
	ReviewedBy     *uuid.UUID
	Invoice        *InvoiceSummary // Loaded via JOIN
	Client         *ClientSummary  // Loaded via JOIN
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type InvoiceSummary struct {
	InvoiceNumber   string
	TotalAmount     decimal.Decimal
	RemainingAmount decimal.Decimal
	Status          invoice.Status
}

type ClientSummary struct {
	Name  string
	Email string
}

func (r *Request) review(to Status, reviewer uuid.UUID, now time.Time) error {
	if r.Status != StatusPending {
		return apperr.InvalidState("Request is not pending")
	}

	r.Status = to
	r.ReviewedAt = &now
	r.ReviewedBy = &reviewer

	return nil
}

func (r *Request) Approve(reviewer uuid.UUID, now time.Time) error {
	return r.review(StatusApproved, reviewer, now)
}

func (r *Request) Reject(reviewer uuid.UUID, now time.Time) error {
	return r.review(StatusRejected, reviewer, now)
}

// paymentNotes marks a payment as coming from an approved client request.
func (r *Request) paymentNotes() string {
	if r.Notes == "" {
		return "Client-submitted payment approved"
	}

	return "Client submitted: " + r.Notes
}
