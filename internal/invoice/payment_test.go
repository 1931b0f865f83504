package invoice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/ledger"
)

func TestNormalizeMethod(t *testing.T) {
	tests := []struct {
		raw      string
		fallback invoice.Method
		want     invoice.Method
	}{
		{"", invoice.MethodCash, invoice.MethodCash},
		{"", invoice.MethodOther, invoice.MethodOther},
		{"UPI", invoice.MethodCash, invoice.MethodUPI},
		{" bank_transfer ", invoice.MethodCash, invoice.MethodBankTransfer},
		{"crypto", invoice.MethodCash, invoice.MethodOther},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, invoice.NormalizeMethod(tt.raw, tt.fallback))
		})
	}
}

func TestAddPayment(t *testing.T) {
	type testCase struct {
		name          string
		inv           *invoice.Invoice
		amount        string
		wantErr       error
		wantStatus    invoice.Status
		wantRemaining string
	}

	tests := []testCase{
		{
			name:          "FullPayment",
			inv:           newInvoice(invoice.StatusSent, "220", "0", now.AddDate(0, 0, 5)),
			amount:        "220",
			wantStatus:    invoice.StatusPaid,
			wantRemaining: "0",
		},
		{
			name:          "PartialPaymentOnOverdue",
			inv:           newInvoice(invoice.StatusOverdue, "220", "0", now.AddDate(0, 0, -5)),
			amount:        "100",
			wantStatus:    invoice.StatusOverdue,
			wantRemaining: "120",
		},
		{
			name:    "ExceedsRemaining",
			inv:     newInvoice(invoice.StatusSent, "220", "0", now),
			amount:  "300",
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "ZeroAmount",
			inv:     newInvoice(invoice.StatusSent, "220", "0", now),
			amount:  "0",
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "Cancelled",
			inv:     newInvoice(invoice.StatusCancelled, "220", "0", now),
			amount:  "10",
			wantErr: apperr.ErrInvalidState,
		},
		{
			name:    "AlreadyPaid",
			inv:     newInvoice(invoice.StatusPaid, "220", "220", now),
			amount:  "1",
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paidBefore := tt.inv.PaidAmount

			p, err := tt.inv.AddPayment(invoice.PaymentInput{Amount: dec(tt.amount), Method: "paypal"}, invoice.MethodCash, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, paidBefore.Equal(tt.inv.PaidAmount))
				assert.Empty(t, tt.inv.PaymentHistory)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, invoice.MethodPayPal, p.Method)
			assert.Equal(t, now, p.PaymentDate)
			assert.Equal(t, tt.wantStatus, tt.inv.Status)
			assert.True(t, dec(tt.wantRemaining).Equal(tt.inv.RemainingAmount), "remaining: %s", tt.inv.RemainingAmount)
			assert.Len(t, tt.inv.PaymentHistory, 1)
		})
	}
}

func TestApplyPayment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tx := invoice.NewMockTx(ctrl)
	inv := newInvoice(invoice.StatusSent, "220", "0", now.AddDate(0, 0, 5))
	inv.ClientID = uuid.New()

	tx.EXPECT().SaveInvoice(gomock.Any(), inv).Return(nil)
	tx.EXPECT().
		ApplyLedger(gomock.Any(), inv.ClientID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, d ledger.Delta) error {
			assert.True(t, dec("220").Equal(d.Paid))
			assert.True(t, dec("-220").Equal(d.Outstanding))
			assert.True(t, d.Invoiced.IsZero())

			return nil
		})

	p, err := invoice.ApplyPayment(context.Background(), tx, inv, invoice.PaymentInput{Amount: dec("220")}, invoice.MethodOther, now)
	require.NoError(t, err)

	assert.Equal(t, invoice.MethodOther, p.Method)
	assert.Equal(t, invoice.StatusPaid, inv.Status)
	require.NotNil(t, inv.PaidAt)
}

func TestApplyPayment_SaveFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tx := invoice.NewMockTx(ctrl)
	inv := newInvoice(invoice.StatusSent, "220", "0", now)

	tx.EXPECT().SaveInvoice(gomock.Any(), inv).Return(errors.New("db error"))

	_, err := invoice.ApplyPayment(context.Background(), tx, inv, invoice.PaymentInput{Amount: dec("20")}, invoice.MethodCash, now)
	assert.Error(t, err)
}
