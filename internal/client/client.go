package client

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Client is a customer of a business. The Total* fields form the client
// ledger; they are maintained by the invoice and payment paths only and are
// never written through this package.
type Client struct {
	ID                     uuid.UUID
	UserID                 uuid.UUID
	Name                   string
	Email                  string
	Phone                  string
	Company                string
	Address                string
	PaymentTerms           string
	PreferredPaymentMethod string
	TaxID                  *string
	Notes                  string
	Status                 Status
	IsApproved             bool
	PasswordHash           *string
	ApprovalToken          *string
	LastLogin              *time.Time
	TotalInvoiced          decimal.Decimal
	TotalPaid              decimal.Decimal
	TotalOutstanding       decimal.Decimal
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// ClearCredentials revokes portal access.
func (c *Client) ClearCredentials() {
	c.IsApproved = false
	c.PasswordHash = nil
	c.ApprovalToken = nil
}

// PortalEnabled reports whether the client may hold a portal session.
func (c *Client) PortalEnabled() bool {
	return c.IsApproved && c.Status == StatusActive && c.PasswordHash != nil
}

var taxIDPattern = regexp.MustCompile(`^[0-9A-Z]{15}$`)

// NormalizeTaxID strips whitespace and upper-cases raw. An empty value
// clears the tax id.
func NormalizeTaxID(raw string) (*string, error) {
	id := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	if id == "" {
		return nil, nil
	}

	if !taxIDPattern.MatchString(id) {
		return nil, apperr.Validation("GST / Tax ID must be 15 alphanumeric characters")
	}

	return &id, nil
}
