package business

import (
	"time"

	"github.com/google/uuid"
)

// Business is a tenant: the account that issues invoices.
type Business struct {
	ID            uuid.UUID
	Name          string
	Email         string
	PasswordHash  string
	BusinessName  string
	Address       string
	Phone         string
	TaxID         string
	InvoicePrefix string
	Currency      string
	PaymentTerms  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Info struct {
	BusinessName string
	Address      string
	Phone        string
	TaxID        string
}
