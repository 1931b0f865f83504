// Package ledger keeps the per-client running totals (invoiced, paid,
// outstanding) in step with that client's invoices.
//
// Totals only ever move by a Delta paired with the invoice event that caused
// it. A Report compares the stored totals with the sums recomputed from the
// invoices themselves.
package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Delta is an increment applied to a client's totals.
type Delta struct {
	Invoiced    decimal.Decimal
	Paid        decimal.Decimal
	Outstanding decimal.Decimal
}

func (d Delta) IsZero() bool {
	return d.Invoiced.IsZero() && d.Paid.IsZero() && d.Outstanding.IsZero()
}

// InvoiceCreated counts a new invoice's total as invoiced and outstanding.
func InvoiceCreated(total decimal.Decimal) Delta {
	return Delta{Invoiced: total, Outstanding: total}
}

// InvoiceDeleted reverses an unpaid invoice's contribution. Payments already
// received stay in the paid total.
func InvoiceDeleted(total, remaining decimal.Decimal) Delta {
	return Delta{Invoiced: total.Neg(), Outstanding: remaining.Neg()}
}

// InvoiceRevised moves the totals by the difference between an invoice's old
// and new amounts.
func InvoiceRevised(oldTotal, oldRemaining, newTotal, newRemaining decimal.Decimal) Delta {
	return Delta{
		Invoiced:    newTotal.Sub(oldTotal),
		Outstanding: newRemaining.Sub(oldRemaining),
	}
}

// PaymentApplied moves amount from outstanding to paid.
func PaymentApplied(amount decimal.Decimal) Delta {
	return Delta{Paid: amount, Outstanding: amount.Neg()}
}

// Totals are a client's ledger figures.
type Totals struct {
	Invoiced    decimal.Decimal
	Paid        decimal.Decimal
	Outstanding decimal.Decimal
}

func (t Totals) Apply(d Delta) Totals {
	return Totals{
		Invoiced:    t.Invoiced.Add(d.Invoiced),
		Paid:        t.Paid.Add(d.Paid),
		Outstanding: t.Outstanding.Add(d.Outstanding),
	}
}

// Report is a client's stored ledger next to the figures recomputed from its
// invoices.
type Report struct {
	ClientID        uuid.UUID
	ClientName      string
	Stored          Totals
	Actual          Totals
	InvoiceCount    int
	OverdueAmount   decimal.Decimal
	StatusBreakdown map[string]int
}

// Drift reports whether the stored totals disagree with the invoices.
//
// Paid may legitimately exceed the invoice sum because deleting a partially
// paid invoice keeps its payments in the paid total.
func (r *Report) Drift() bool {
	return !r.Stored.Invoiced.Equal(r.Actual.Invoiced) ||
		!r.Stored.Outstanding.Equal(r.Actual.Outstanding) ||
		r.Stored.Paid.LessThan(r.Actual.Paid)
}
