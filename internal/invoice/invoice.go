package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an invoice.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusViewed    Status = "viewed"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusViewed, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}

	return false
}

// Template selects the PDF layout of an invoice.
type Template string

const (
	TemplateStandard  Template = "standard"
	TemplateModern    Template = "modern"
	TemplateMinimal   Template = "minimal"
	TemplateCreative  Template = "creative"
	TemplateCorporate Template = "corporate"
)

func (t Template) Valid() bool {
	switch t {
	case TemplateStandard, TemplateModern, TemplateMinimal, TemplateCreative, TemplateCorporate:
		return true
	}

	return false
}

// LineItem is one billed line. Amount and TaxAmount are always derived from
// Quantity, Rate and TaxRate.
type LineItem struct {
	ProductID   *uuid.UUID      `json:"productId,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	Amount      decimal.Decimal `json:"amount"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
}

// Payment is an entry of the append-only payment history.
type Payment struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"paymentDate"`
	Method        Method          `json:"paymentMethod"`
	TransactionID string          `json:"transactionId,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	RecordedAt    time.Time       `json:"recordedAt"`
}

type SentRecord struct {
	SentDate time.Time `json:"sentDate"`
	SentTo   string    `json:"sentTo,omitempty"`
	Method   string    `json:"method"`
}

type Reminder struct {
	SentDate    time.Time `json:"sentDate"`
	Type        string    `json:"type"`
	DaysOverdue int       `json:"daysOverdue"`
}

// Party is the read-only contact projection of a business or client.
type Party struct {
	ID      uuid.UUID
	Name    string
	Company string
	Email   string
	Phone   string
	Address string
	TaxID   string
}

// Invoice represents a bill issued by a business to one of its clients.
type Invoice struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	ClientID       uuid.UUID
	InvoiceNumber  string
	Status         Status
	IssueDate      time.Time
	DueDate        time.Time
	Items          []LineItem
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	PaidAmount     decimal.Decimal
	// RemainingAmount is always TotalAmount - PaidAmount.
	RemainingAmount decimal.Decimal
	Currency        string
	PaymentTerms    string
	Notes           string
	InternalNotes   string
	Template        Template
	PaymentHistory  []Payment
	SentHistory     []SentRecord
	Reminders       []Reminder
	PaidAt          *time.Time
	ViewedAt        *time.Time
	Client          *Party // Loaded via JOIN
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Document is the read-only projection an invoice is rendered from.
type Document struct {
	Invoice  *Invoice
	Business Party
	Client   Party
}

// Overview aggregates a business's invoices.
type Overview struct {
	TotalInvoices     int
	StatusCounts      map[Status]int
	TotalAmount       decimal.Decimal
	PaidAmount        decimal.Decimal
	OutstandingAmount decimal.Decimal
	OverdueAmount     decimal.Decimal
}
