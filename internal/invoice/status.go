package invoice

import (
	"time"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
)

// transitions lists the explicit status changes. Paid and cancelled are
// terminal.
var transitions = map[Status][]Status{
	StatusDraft:   {StatusSent, StatusCancelled, StatusPaid},
	StatusSent:    {StatusSent, StatusViewed, StatusOverdue, StatusPaid, StatusCancelled},
	StatusViewed:  {StatusOverdue, StatusPaid},
	StatusOverdue: {StatusPaid},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}

	return false
}

// Frozen reports whether the invoice's lines and amounts may no longer change.
func (inv *Invoice) Frozen() bool {
	return inv.Status == StatusPaid || inv.Status == StatusCancelled
}

// RecomputeStatus re-derives the remaining balance and applies the automatic
// transitions. It runs before every write of an invoice.
//
//   - fully paid and not yet marked paid: paid, with PaidAt set to now
//   - otherwise sent and past due: overdue
func (inv *Invoice) RecomputeStatus(now time.Time) {
	inv.RemainingAmount = inv.TotalAmount.Sub(inv.PaidAmount)

	if inv.Status == StatusCancelled {
		return
	}

	if inv.PaidAmount.GreaterThanOrEqual(inv.TotalAmount) {
		if inv.Status != StatusPaid {
			inv.Status = StatusPaid
			inv.PaidAt = &now
		}

		return
	}

	if inv.Status == StatusSent && inv.DueDate.Before(now) {
		inv.Status = StatusOverdue
	}
}

// MarkSent records a delivery of the invoice. A draft becomes sent; sending an
// invoice again only adds to its history.
func (inv *Invoice) MarkSent(now time.Time, sentTo, method string) error {
	switch inv.Status {
	case StatusDraft:
		inv.Status = StatusSent
	case StatusSent, StatusViewed, StatusOverdue:
	default:
		return apperr.InvalidState("Cannot send a %s invoice", inv.Status)
	}

	if method == "" {
		method = "email"
	}

	inv.SentHistory = append(inv.SentHistory, SentRecord{
		SentDate: now,
		SentTo:   sentTo,
		Method:   method,
	})

	return nil
}

// MarkViewed records the first time a client opens a sent invoice. It reports
// whether anything changed.
func (inv *Invoice) MarkViewed(now time.Time) bool {
	if inv.Status != StatusSent {
		return false
	}

	inv.Status = StatusViewed
	inv.ViewedAt = &now

	return true
}

func (inv *Invoice) Cancel() error {
	if !CanTransition(inv.Status, StatusCancelled) {
		return apperr.InvalidState("Cannot cancel a %s invoice", inv.Status)
	}

	if inv.PaidAmount.IsPositive() {
		return apperr.InvalidState("Cannot cancel an invoice with recorded payments")
	}

	inv.Status = StatusCancelled

	return nil
}

// AddReminder logs a payment reminder for an unpaid invoice.
func (inv *Invoice) AddReminder(now time.Time, kind string) error {
	if inv.Frozen() {
		return apperr.InvalidState("Cannot send a reminder for a %s invoice", inv.Status)
	}

	if kind == "" {
		kind = "manual"
	}

	days := 0
	if inv.DueDate.Before(now) {
		days = int(now.Sub(inv.DueDate).Hours() / 24)
	}

	inv.Reminders = append(inv.Reminders, Reminder{
		SentDate:    now,
		Type:        kind,
		DaysOverdue: days,
	})

	return nil
}
