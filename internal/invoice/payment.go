package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/ledger"
)

// Method is how a payment was made.
type Method string

const (
	MethodBankTransfer Method = "bank_transfer"
	MethodCheck        Method = "check"
	MethodPayPal       Method = "paypal"
	MethodStripe       Method = "stripe"
	MethodCash         Method = "cash"
	MethodUPI          Method = "upi"
	MethodOther        Method = "other"
)

func (m Method) Valid() bool {
	switch m {
	case MethodBankTransfer, MethodCheck, MethodPayPal, MethodStripe, MethodCash, MethodUPI, MethodOther:
		return true
	}

	return false
}

// NormalizeMethod maps raw onto a known method. An empty value becomes
// fallback and an unknown one becomes other.
func NormalizeMethod(raw string, fallback Method) Method {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return fallback
	}

	if m := Method(raw); m.Valid() {
		return m
	}

	return MethodOther
}

// PaymentInput describes money received against an invoice.
type PaymentInput struct {
	Amount        decimal.Decimal
	PaymentDate   *time.Time
	Method        string
	TransactionID string
	Notes         string
}

var ErrExceedsRemaining = &apperr.Error{Kind: apperr.ErrValidation, Message: "Payment amount exceeds remaining balance"}

// ValidateAmount checks amount against what is still owed on inv.
func (inv *Invoice) ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperr.Validation("Payment amount must be greater than 0")
	}

	if amount.GreaterThan(inv.RemainingAmount) {
		return ErrExceedsRemaining
	}

	return nil
}

// AddPayment appends a payment to the history and re-runs the status rules.
func (inv *Invoice) AddPayment(in PaymentInput, fallback Method, now time.Time) (Payment, error) {
	if inv.Status == StatusCancelled {
		return Payment{}, apperr.InvalidState("Cannot record a payment on a cancelled invoice")
	}

	if err := inv.ValidateAmount(in.Amount); err != nil {
		return Payment{}, err
	}

	paymentDate := now
	if in.PaymentDate != nil && !in.PaymentDate.IsZero() {
		paymentDate = *in.PaymentDate
	}

	p := Payment{
		Amount:        in.Amount,
		PaymentDate:   paymentDate,
		Method:        NormalizeMethod(in.Method, fallback),
		TransactionID: strings.TrimSpace(in.TransactionID),
		Notes:         in.Notes,
		RecordedAt:    now,
	}

	inv.PaymentHistory = append(inv.PaymentHistory, p)
	inv.PaidAmount = inv.PaidAmount.Add(in.Amount)
	inv.RecomputeStatus(now)

	return p, nil
}

// PaymentTx is the unit of work a payment is written in.
type PaymentTx interface {
	SaveInvoice(ctx context.Context, inv *Invoice) error
	ApplyLedger(ctx context.Context, clientID uuid.UUID, d ledger.Delta) error
}

// ApplyPayment is the one path through which money enters an invoice. It
// updates inv and writes it together with the client ledger increment on tx;
// the caller commits. inv must have been read under tx's lock.
func ApplyPayment(ctx context.Context, tx PaymentTx, inv *Invoice, in PaymentInput, fallback Method, now time.Time) (Payment, error) {
	p, err := inv.AddPayment(in, fallback, now)
	if err != nil {
		return Payment{}, err
	}

	if err := tx.SaveInvoice(ctx, inv); err != nil {
		return Payment{}, fmt.Errorf("saving invoice: %w", err)
	}

	if err := tx.ApplyLedger(ctx, inv.ClientID, ledger.PaymentApplied(p.Amount)); err != nil {
		return Payment{}, fmt.Errorf("updating client ledger: %w", err)
	}

	return p, nil
}
