package invoice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

var now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func newInvoice(status invoice.Status, total, paid string, due time.Time) *invoice.Invoice {
	inv := &invoice.Invoice{
		Status:      status,
		IssueDate:   due.AddDate(0, 0, -30),
		DueDate:     due,
		TotalAmount: dec(total),
		PaidAmount:  dec(paid),
	}
	inv.RemainingAmount = inv.TotalAmount.Sub(inv.PaidAmount)

	return inv
}

func TestRecomputeStatus(t *testing.T) {
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 10)

	type testCase struct {
		name       string
		inv        *invoice.Invoice
		wantStatus invoice.Status
		wantPaidAt bool
	}

	tests := []testCase{
		{"DraftStaysDraft", newInvoice(invoice.StatusDraft, "100", "0", past), invoice.StatusDraft, false},
		{"SentPastDueBecomesOverdue", newInvoice(invoice.StatusSent, "100", "0", past), invoice.StatusOverdue, false},
		{"ViewedPastDueStaysViewed", newInvoice(invoice.StatusViewed, "100", "40", past), invoice.StatusViewed, false},
		{"SentNotDue", newInvoice(invoice.StatusSent, "100", "0", future), invoice.StatusSent, false},
		{"FullyPaidFromSent", newInvoice(invoice.StatusSent, "100", "100", future), invoice.StatusPaid, true},
		{"FullyPaidFromOverdue", newInvoice(invoice.StatusOverdue, "100", "100", past), invoice.StatusPaid, true},
		{"FullyPaidFromDraft", newInvoice(invoice.StatusDraft, "100", "100", future), invoice.StatusPaid, true},
		{"CancelledIsUntouched", newInvoice(invoice.StatusCancelled, "100", "0", past), invoice.StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.inv.RecomputeStatus(now)

			assert.Equal(t, tt.wantStatus, tt.inv.Status)
			assert.True(t, tt.inv.TotalAmount.Sub(tt.inv.PaidAmount).Equal(tt.inv.RemainingAmount))

			if tt.wantPaidAt {
				require.NotNil(t, tt.inv.PaidAt)
				assert.Equal(t, now, *tt.inv.PaidAt)
			} else {
				assert.Nil(t, tt.inv.PaidAt)
			}
		})
	}
}

func TestRecomputeStatus_KeepsFirstPaidAt(t *testing.T) {
	paidAt := now.AddDate(0, 0, -5)
	inv := newInvoice(invoice.StatusPaid, "100", "100", now)
	inv.PaidAt = &paidAt

	inv.RecomputeStatus(now)

	assert.Equal(t, paidAt, *inv.PaidAt)
}

func TestMarkSent(t *testing.T) {
	tests := []struct {
		name       string
		status     invoice.Status
		wantStatus invoice.Status
		wantErr    bool
	}{
		{"FromDraft", invoice.StatusDraft, invoice.StatusSent, false},
		{"Resend", invoice.StatusSent, invoice.StatusSent, false},
		{"ResendViewed", invoice.StatusViewed, invoice.StatusViewed, false},
		{"ResendOverdue", invoice.StatusOverdue, invoice.StatusOverdue, false},
		{"Paid", invoice.StatusPaid, invoice.StatusPaid, true},
		{"Cancelled", invoice.StatusCancelled, invoice.StatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := newInvoice(tt.status, "100", "0", now)

			err := inv.MarkSent(now, "billing@example.com", "")
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrInvalidState)
				assert.Empty(t, inv.SentHistory)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, inv.Status)
			require.Len(t, inv.SentHistory, 1)
			assert.Equal(t, "billing@example.com", inv.SentHistory[0].SentTo)
			assert.Equal(t, "email", inv.SentHistory[0].Method)
		})
	}
}

func TestMarkViewed(t *testing.T) {
	sent := newInvoice(invoice.StatusSent, "100", "0", now)
	assert.True(t, sent.MarkViewed(now))
	assert.Equal(t, invoice.StatusViewed, sent.Status)
	require.NotNil(t, sent.ViewedAt)

	draft := newInvoice(invoice.StatusDraft, "100", "0", now)
	assert.False(t, draft.MarkViewed(now))
	assert.Equal(t, invoice.StatusDraft, draft.Status)
	assert.Nil(t, draft.ViewedAt)
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name    string
		inv     *invoice.Invoice
		wantErr bool
	}{
		{"Draft", newInvoice(invoice.StatusDraft, "100", "0", now), false},
		{"Sent", newInvoice(invoice.StatusSent, "100", "0", now), false},
		{"SentWithPayment", newInvoice(invoice.StatusSent, "100", "10", now), true},
		{"Viewed", newInvoice(invoice.StatusViewed, "100", "0", now), true},
		{"Paid", newInvoice(invoice.StatusPaid, "100", "100", now), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.inv.Cancel()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrInvalidState)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, invoice.StatusCancelled, tt.inv.Status)
		})
	}
}

func TestAddReminder(t *testing.T) {
	inv := newInvoice(invoice.StatusOverdue, "100", "0", now.AddDate(0, 0, -3))

	require.NoError(t, inv.AddReminder(now, ""))
	require.Len(t, inv.Reminders, 1)
	assert.Equal(t, "manual", inv.Reminders[0].Type)
	assert.Equal(t, 3, inv.Reminders[0].DaysOverdue)

	paid := newInvoice(invoice.StatusPaid, "100", "100", now)
	assert.ErrorIs(t, paid.AddReminder(now, "manual"), apperr.ErrInvalidState)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, invoice.CanTransition(invoice.StatusDraft, invoice.StatusSent))
	assert.True(t, invoice.CanTransition(invoice.StatusViewed, invoice.StatusOverdue))
	assert.True(t, invoice.CanTransition(invoice.StatusOverdue, invoice.StatusPaid))
	assert.False(t, invoice.CanTransition(invoice.StatusPaid, invoice.StatusSent))
	assert.False(t, invoice.CanTransition(invoice.StatusCancelled, invoice.StatusDraft))
	assert.False(t, invoice.CanTransition(invoice.StatusOverdue, invoice.StatusCancelled))
}
