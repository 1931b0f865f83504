package invoice_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/ledger"
)

func newService(repo invoice.Repository) *invoice.Service {
	return invoice.NewService(repo, invoice.Settings{
		Prefix:         "INV",
		Currency:       "INR",
		PaymentTerms:   "Net 30",
		PaymentRetries: 3,
		Now:            func() time.Time { return now },
	})
}

func createParams(clientID uuid.UUID) invoice.CreateParams {
	return invoice.CreateParams{
		ClientID:  clientID,
		IssueDate: now,
		DueDate:   now.AddDate(0, 0, 30),
		Items:     []invoice.LineItem{item("2", "100", "10")},
	}
}

func expectLedger(t *testing.T, tx *invoice.MockTx, clientID uuid.UUID, want ledger.Delta) {
	t.Helper()

	tx.EXPECT().
		ApplyLedger(gomock.Any(), clientID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, d ledger.Delta) error {
			assert.True(t, want.Invoiced.Equal(d.Invoiced), "invoiced: %s", d.Invoiced)
			assert.True(t, want.Paid.Equal(d.Paid), "paid: %s", d.Paid)
			assert.True(t, want.Outstanding.Equal(d.Outstanding), "outstanding: %s", d.Outstanding)

			return nil
		})
}

func TestService_Create(t *testing.T) {
	userID, clientID := uuid.New(), uuid.New()

	type testCase struct {
		name      string
		params    invoice.CreateParams
		setupMock func(t *testing.T, repo *invoice.MockRepository, tx *invoice.MockTx)
		wantErr   error
		verify    func(t *testing.T, inv *invoice.Invoice)
	}

	tests := []testCase{
		{
			name:   "Success",
			params: createParams(clientID),
			setupMock: func(t *testing.T, repo *invoice.MockRepository, tx *invoice.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().ClientExists(gomock.Any(), userID, clientID).Return(true, nil)
				tx.EXPECT().BusinessDefaults(gomock.Any(), userID).Return(invoice.Defaults{Prefix: "ACME"}, nil)
				tx.EXPECT().CountInvoices(gomock.Any(), userID).Return(4, nil)
				tx.EXPECT().
					InsertInvoice(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
						inv.ID = uuid.New()
						return nil
					})
				expectLedger(t, tx, clientID, ledger.InvoiceCreated(dec("220")))
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil)
			},
			verify: func(t *testing.T, inv *invoice.Invoice) {
				assert.NotEqual(t, uuid.Nil, inv.ID)
				assert.Equal(t, "ACME-0005", inv.InvoiceNumber)
				assert.Equal(t, invoice.StatusDraft, inv.Status)
				assert.Equal(t, "INR", inv.Currency)
				assert.Equal(t, "Net 30", inv.PaymentTerms)
				assert.Equal(t, invoice.TemplateStandard, inv.Template)
				assert.True(t, dec("200").Equal(inv.Subtotal))
				assert.True(t, dec("20").Equal(inv.TaxAmount))
				assert.True(t, dec("220").Equal(inv.TotalAmount))
				assert.True(t, dec("220").Equal(inv.RemainingAmount))
				assert.True(t, inv.PaidAmount.IsZero())
			},
		},
		{
			name:   "NumberCollisionFallsBackToTimestamp",
			params: createParams(clientID),
			setupMock: func(t *testing.T, repo *invoice.MockRepository, tx *invoice.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil).Times(2)
				tx.EXPECT().ClientExists(gomock.Any(), userID, clientID).Return(true, nil).Times(2)
				tx.EXPECT().BusinessDefaults(gomock.Any(), userID).Return(invoice.Defaults{}, nil).Times(2)
				tx.EXPECT().CountInvoices(gomock.Any(), userID).Return(0, nil)
				gomock.InOrder(
					tx.EXPECT().InsertInvoice(gomock.Any(), gomock.Any()).Return(invoice.ErrDuplicateNumber),
					tx.EXPECT().InsertInvoice(gomock.Any(), gomock.Any()).Return(nil),
				)
				expectLedger(t, tx, clientID, ledger.InvoiceCreated(dec("220")))
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil).Times(2)
			},
			verify: func(t *testing.T, inv *invoice.Invoice) {
				assert.Equal(t, fmt.Sprintf("INV-%d", now.UnixMilli()), inv.InvoiceNumber)
			},
		},
		{
			name:   "SecondCollisionIsConflict",
			params: createParams(clientID),
			setupMock: func(t *testing.T, repo *invoice.MockRepository, tx *invoice.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil).Times(2)
				tx.EXPECT().ClientExists(gomock.Any(), userID, clientID).Return(true, nil).Times(2)
				tx.EXPECT().BusinessDefaults(gomock.Any(), userID).Return(invoice.Defaults{}, nil).Times(2)
				tx.EXPECT().CountInvoices(gomock.Any(), userID).Return(0, nil)
				tx.EXPECT().InsertInvoice(gomock.Any(), gomock.Any()).Return(invoice.ErrDuplicateNumber).Times(2)
				tx.EXPECT().Rollback().Return(nil).Times(2)
			},
			wantErr: apperr.ErrConflict,
		},
		{
			name: "CallerSuppliedDuplicateNumber",
			params: func() invoice.CreateParams {
				p := createParams(clientID)
				p.InvoiceNumber = "INV-0001"
				return p
			}(),
			setupMock: func(t *testing.T, repo *invoice.MockRepository, tx *invoice.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().ClientExists(gomock.Any(), userID, clientID).Return(true, nil)
				tx.EXPECT().BusinessDefaults(gomock.Any(), userID).Return(invoice.Defaults{}, nil)
				tx.EXPECT().InsertInvoice(gomock.Any(), gomock.Any()).Return(invoice.ErrDuplicateNumber)
				tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: apperr.ErrConflict,
		},
		{
			name:   "ClientNotFound",
			params: createParams(clientID),
			setupMock: func(t *testing.T, repo *invoice.MockRepository, tx *invoice.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().ClientExists(gomock.Any(), userID, clientID).Return(false, nil)
				tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: apperr.ErrNotFound,
		},
		{
			name: "DueBeforeIssue",
			params: func() invoice.CreateParams {
				p := createParams(clientID)
				p.DueDate = p.IssueDate.AddDate(0, 0, -1)
				return p
			}(),
			wantErr: apperr.ErrValidation,
		},
		{
			name: "NegativeTotal",
			params: func() invoice.CreateParams {
				p := createParams(clientID)
				p.DiscountAmount = dec("500")
				return p
			}(),
			wantErr: apperr.ErrValidation,
		},
		{
			name: "NoItems",
			params: func() invoice.CreateParams {
				p := createParams(clientID)
				p.Items = nil
				return p
			}(),
			wantErr: apperr.ErrValidation,
		},
		{
			name: "InvalidCurrency",
			params: func() invoice.CreateParams {
				p := createParams(clientID)
				p.Currency = "XYZW"
				return p
			}(),
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := invoice.NewMockRepository(ctrl)
			tx := invoice.NewMockTx(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(t, repo, tx)
			}

			got, err := newService(repo).Create(context.Background(), userID, tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			tt.verify(t, got)
		})
	}
}

func TestService_Update(t *testing.T) {
	userID, clientID, id := uuid.New(), uuid.New(), uuid.New()

	stored := func(status invoice.Status, paid string) *invoice.Invoice {
		inv := newInvoice(status, "220", paid, now.AddDate(0, 0, 10))
		inv.ID = id
		inv.UserID = userID
		inv.ClientID = clientID
		inv.InvoiceNumber = "INV-0001"
		inv.Currency = "INR"
		inv.Template = invoice.TemplateStandard
		inv.Items = invoice.PriceItems([]invoice.LineItem{item("2", "100", "10")})
		inv.Subtotal = dec("200")
		inv.TaxAmount = dec("20")

		return inv
	}

	type testCase struct {
		name      string
		params    invoice.UpdateParams
		setupMock func(t *testing.T, tx *invoice.MockTx)
		wantErr   error
		verify    func(t *testing.T, inv *invoice.Invoice)
	}

	tests := []testCase{
		{
			name:   "RepricesItems",
			params: invoice.UpdateParams{Items: []invoice.LineItem{item("1", "100", "0")}},
			setupMock: func(t *testing.T, tx *invoice.MockTx) {
				tx.EXPECT().LockInvoice(gomock.Any(), userID, id).Return(stored(invoice.StatusSent, "50"), nil)
				tx.EXPECT().SaveInvoice(gomock.Any(), gomock.Any()).Return(nil)
				expectLedger(t, tx, clientID, ledger.Delta{Invoiced: dec("-120"), Outstanding: dec("-120")})
				tx.EXPECT().Commit().Return(nil)
			},
			verify: func(t *testing.T, inv *invoice.Invoice) {
				assert.True(t, dec("100").Equal(inv.TotalAmount))
				assert.True(t, dec("50").Equal(inv.RemainingAmount))
				assert.Equal(t, invoice.StatusSent, inv.Status)
			},
		},
		{
			name:   "NotesOnlyRecomputesRemaining",
			params: invoice.UpdateParams{Notes: ptr("Thanks for your business")},
			setupMock: func(t *testing.T, tx *invoice.MockTx) {
				tx.EXPECT().LockInvoice(gomock.Any(), userID, id).Return(stored(invoice.StatusDraft, "0"), nil)
				tx.EXPECT().SaveInvoice(gomock.Any(), gomock.Any()).Return(nil)
				expectLedger(t, tx, clientID, ledger.Delta{})
				tx.EXPECT().Commit().Return(nil)
			},
			verify: func(t *testing.T, inv *invoice.Invoice) {
				assert.Equal(t, "Thanks for your business", inv.Notes)
				assert.True(t, dec("220").Equal(inv.RemainingAmount))
			},
		},
		{
			name:   "PaidInvoiceIsFrozen",
			params: invoice.UpdateParams{Notes: ptr("edit")},
			setupMock: func(t *testing.T, tx *invoice.MockTx) {
				tx.EXPECT().LockInvoice(gomock.Any(), userID, id).Return(stored(invoice.StatusPaid, "220"), nil)
			},
			wantErr: apperr.ErrInvalidState,
		},
		{
			name:   "InvoiceNumberIsImmutable",
			params: invoice.UpdateParams{InvoiceNumber: ptr("INV-9999")},
			setupMock: func(t *testing.T, tx *invoice.MockTx) {
				tx.EXPECT().LockInvoice(gomock.Any(), userID, id).Return(stored(invoice.StatusDraft, "0"), nil)
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name:   "OwnerIsImmutable",
			params: invoice.UpdateParams{UserID: ptr(uuid.New())},
			setupMock: func(t *testing.T, tx *invoice.MockTx) {
				tx.EXPECT().LockInvoice(gomock.Any(), userID, id).Return(stored(invoice.StatusDraft, "0"), nil)
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name:   "TotalBelowPaid",
			params: invoice.UpdateParams{Items: []invoice.LineItem{item("1", "10", "0")}},
			setupMock: func(t *testing.T, tx *invoice.MockTx) {
				tx.EXPECT().LockInvoice(gomock.Any(), userID, id).Return(stored(invoice.StatusSent, "50"), nil)
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name:   "NotFound",
			params: invoice.UpdateParams{},
			setupMock: func(t *testing.T, tx *invoice.MockTx) {
				tx.EXPECT().LockInvoice(gomock.Any(), userID, id).Return(nil, apperr.NotFound("Invoice"))
			},
			wantErr: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := invoice.NewMockRepository(ctrl)
			tx := invoice.NewMockTx(ctrl)

			repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
			tx.EXPECT().Rollback().Return(nil)
			tt.setupMock(t, tx)

			got, err := newService(repo).Update(context.Background(), userID, id, tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			tt.verify(t, got)
		})
	}
}

func TestService_Delete(t *testing.T) {
	userID, clientID, id := uuid.New(), uuid.New(), uuid.New()

	t.Run("ReversesLedger", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := invoice.NewMockRepository(ctrl)
		tx := invoice.NewMockTx(ctrl)

		inv := newInvoice(invoice.StatusSent, "220", "20", now)
		inv.ID = id
		inv.ClientID = clientID

		repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
		tx.EXPECT().LockInvoice(gomock.Any(), userID, id).Return(inv, nil)
		expectLedger(t, tx, clientID, ledger.InvoiceDeleted(dec("220"), dec("200")))
		tx.EXPECT().DeleteInvoice(gomock.Any(), id).Return(nil)
		tx.EXPECT().Commit().Return(nil)
		tx.EXPECT().Rollback().Return(nil)

		require.NoError(t, newService(repo).Delete(context.Background(), userID, id))
	})

	t.Run("PaidIsRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := invoice.NewMockRepository(ctrl)
		tx := invoice.NewMockTx(ctrl)

		repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
		tx.EXPECT().LockInvoice(gomock.Any(), userID, id).Return(newInvoice(invoice.StatusPaid, "220", "220", now), nil)
		tx.EXPECT().Rollback().Return(nil)

		err := newService(repo).Delete(context.Background(), userID, id)
		assert.ErrorIs(t, err, apperr.ErrInvalidState)
	})
}

func TestService_RecordPayment(t *testing.T) {
	userID, clientID, id := uuid.New(), uuid.New(), uuid.New()

	stored := func() *invoice.Invoice {
		inv := newInvoice(invoice.StatusSent, "220", "0", now.AddDate(0, 0, 10))
		inv.ID = id
		inv.ClientID = clientID

		return inv
	}

	t.Run("FullPaymentMarksPaid", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := invoice.NewMockRepository(ctrl)
		tx := invoice.NewMockTx(ctrl)

		repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
		tx.EXPECT().LockInvoice(gomock.Any(), userID, id).Return(stored(), nil)
		tx.EXPECT().SaveInvoice(gomock.Any(), gomock.Any()).Return(nil)
		expectLedger(t, tx, clientID, ledger.PaymentApplied(dec("220")))
		tx.EXPECT().Commit().Return(nil)
		tx.EXPECT().Rollback().Return(nil)

		inv, err := newService(repo).RecordPayment(context.Background(), userID, id, invoice.PaymentInput{Amount: dec("220")})
		require.NoError(t, err)

		assert.Equal(t, invoice.StatusPaid, inv.Status)
		assert.True(t, dec("220").Equal(inv.PaidAmount))
		assert.True(t, inv.RemainingAmount.IsZero())
		require.NotNil(t, inv.PaidAt)
		require.Len(t, inv.PaymentHistory, 1)
		assert.Equal(t, invoice.MethodCash, inv.PaymentHistory[0].Method)
	})

	t.Run("OverpaymentIsRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := invoice.NewMockRepository(ctrl)
		tx := invoice.NewMockTx(ctrl)

		repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
		tx.EXPECT().LockInvoice(gomock.Any(), userID, id).Return(stored(), nil)
		tx.EXPECT().Rollback().Return(nil)

		_, err := newService(repo).RecordPayment(context.Background(), userID, id, invoice.PaymentInput{Amount: dec("300")})
		assert.ErrorIs(t, err, invoice.ErrExceedsRemaining)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("RetriesConcurrentUpdate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := invoice.NewMockRepository(ctrl)
		tx := invoice.NewMockTx(ctrl)

		repo.EXPECT().Begin(gomock.Any()).Return(tx, nil).Times(2)
		gomock.InOrder(
			tx.EXPECT().LockInvoice(gomock.Any(), userID, id).Return(nil, fmt.Errorf("locking invoice: %w", invoice.ErrConcurrentUpdate)),
			tx.EXPECT().LockInvoice(gomock.Any(), userID, id).Return(stored(), nil),
		)
		tx.EXPECT().SaveInvoice(gomock.Any(), gomock.Any()).Return(nil)
		expectLedger(t, tx, clientID, ledger.PaymentApplied(dec("20")))
		tx.EXPECT().Commit().Return(nil)
		tx.EXPECT().Rollback().Return(nil).Times(2)

		inv, err := newService(repo).RecordPayment(context.Background(), userID, id, invoice.PaymentInput{Amount: dec("20"), Method: "upi"})
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusSent, inv.Status)
		assert.Equal(t, invoice.MethodUPI, inv.PaymentHistory[0].Method)
	})

	t.Run("GivesUpAfterRetries", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := invoice.NewMockRepository(ctrl)
		tx := invoice.NewMockTx(ctrl)

		repo.EXPECT().Begin(gomock.Any()).Return(tx, nil).Times(3)
		tx.EXPECT().LockInvoice(gomock.Any(), userID, id).Return(nil, invoice.ErrConcurrentUpdate).Times(3)
		tx.EXPECT().Rollback().Return(nil).Times(3)

		_, err := newService(repo).RecordPayment(context.Background(), userID, id, invoice.PaymentInput{Amount: dec("20")})
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("BeginFails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := invoice.NewMockRepository(ctrl)
		repo.EXPECT().Begin(gomock.Any()).Return(nil, errors.New("db down"))

		_, err := newService(repo).RecordPayment(context.Background(), userID, id, invoice.PaymentInput{Amount: dec("20")})
		assert.Error(t, err)
	})
}

func TestService_Send(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID, id := uuid.New(), uuid.New()
	repo := invoice.NewMockRepository(ctrl)
	tx := invoice.NewMockTx(ctrl)

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().LockInvoice(gomock.Any(), userID, id).Return(newInvoice(invoice.StatusDraft, "220", "0", now.AddDate(0, 0, 30)), nil)
	tx.EXPECT().SaveInvoice(gomock.Any(), gomock.Any()).Return(nil)
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil)

	inv, err := newService(repo).Send(context.Background(), userID, id, invoice.SendParams{SentTo: "ap@client.test"})
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusSent, inv.Status)
	assert.Len(t, inv.SentHistory, 1)
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	repo := invoice.NewMockRepository(ctrl)

	repo.EXPECT().
		ListInvoices(gomock.Any(), invoice.ListFilter{UserID: userID, Page: 1, Limit: 10}).
		Return([]*invoice.Invoice{{ID: uuid.New()}}, 21, nil)

	page, err := newService(repo).List(context.Background(), invoice.ListFilter{UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, 21, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Len(t, page.Invoices, 1)
}

// ptr returns a pointer to a copy of v.
func ptr[T any](v T) *T { return &v }
