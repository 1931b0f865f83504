package paymentrequest

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/ledger"
)

//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=paymentrequest
type Repository interface {
	ClientInvoice(ctx context.Context, clientID, invoiceID uuid.UUID) (*invoice.Invoice, error)
	CreateRequest(ctx context.Context, r *Request) error
	ListRequests(ctx context.Context, filter ListFilter) ([]*Request, error)

	BeginReview(ctx context.Context) (ReviewTx, error)
}

// ReviewTx reviews a request and applies its payment in one transaction.
type ReviewTx interface {
	SaveInvoice(ctx context.Context, inv *invoice.Invoice) error
	ApplyLedger(ctx context.Context, clientID uuid.UUID, d ledger.Delta) error

	LockRequest(ctx context.Context, businessID, id uuid.UUID) (*Request, error)
	LockInvoice(ctx context.Context, userID, id uuid.UUID) (*invoice.Invoice, error)
	SaveRequest(ctx context.Context, r *Request) error

	Commit() error
	Rollback() error
}
