package invoice

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/ledger"
)

//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=invoice
type Repository interface {
	GetInvoice(ctx context.Context, userID, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, int, error)
	ListForClients(ctx context.Context, userID uuid.UUID, clientIDs []uuid.UUID, statuses []Status) ([]*Invoice, error)
	GetForClients(ctx context.Context, id uuid.UUID, clientIDs []uuid.UUID) (*Invoice, error)
	Overview(ctx context.Context, userID uuid.UUID) (*Overview, error)
	Document(ctx context.Context, userID, id uuid.UUID) (*Document, error)

	Begin(ctx context.Context) (Tx, error)
}

// Tx is a database transaction. Invoices read through LockInvoice stay locked
// until Commit or Rollback.
type Tx interface {
	SaveInvoice(ctx context.Context, inv *Invoice) error
	ApplyLedger(ctx context.Context, clientID uuid.UUID, d ledger.Delta) error

	LockInvoice(ctx context.Context, userID, id uuid.UUID) (*Invoice, error)
	ClientExists(ctx context.Context, userID, clientID uuid.UUID) (bool, error)
	BusinessDefaults(ctx context.Context, userID uuid.UUID) (Defaults, error)
	CountInvoices(ctx context.Context, userID uuid.UUID) (int, error)
	InsertInvoice(ctx context.Context, inv *Invoice) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error

	Commit() error
	Rollback() error
}

// Defaults are the per-business settings applied to new invoices. Empty
// fields fall back to the service settings.
type Defaults struct {
	Prefix       string
	Currency     string
	PaymentTerms string
}
