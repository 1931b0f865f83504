package client

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/client"
	"github.com/MrJamesThe3rd/invoicer/internal/ledger"
)

type clientResponse struct {
	ID                     uuid.UUID       `json:"id"`
	Name                   string          `json:"name"`
	Email                  string          `json:"email"`
	Phone                  string          `json:"phone"`
	Company                string          `json:"company"`
	Address                string          `json:"address"`
	PaymentTerms           string          `json:"paymentTerms"`
	PreferredPaymentMethod string          `json:"preferredPaymentMethod"`
	TaxID                  *string         `json:"taxId"`
	Notes                  string          `json:"notes"`
	Status                 client.Status   `json:"status"`
	IsApproved             bool            `json:"isApproved"`
	HasCredentials         bool            `json:"hasCredentials"`
	LastLogin              *time.Time      `json:"lastLogin,omitempty"`
	TotalInvoiced          decimal.Decimal `json:"totalInvoiced"`
	TotalPaid              decimal.Decimal `json:"totalPaid"`
	TotalOutstanding       decimal.Decimal `json:"totalOutstanding"`
	CreatedAt              time.Time       `json:"createdAt"`
	UpdatedAt              time.Time       `json:"updatedAt"`
}

func toResponse(c *client.Client) clientResponse {
	return clientResponse{
		ID:                     c.ID,
		Name:                   c.Name,
		Email:                  c.Email,
		Phone:                  c.Phone,
		Company:                c.Company,
		Address:                c.Address,
		PaymentTerms:           c.PaymentTerms,
		PreferredPaymentMethod: c.PreferredPaymentMethod,
		TaxID:                  c.TaxID,
		Notes:                  c.Notes,
		Status:                 c.Status,
		IsApproved:             c.IsApproved,
		HasCredentials:         c.PasswordHash != nil,
		LastLogin:              c.LastLogin,
		TotalInvoiced:          c.TotalInvoiced,
		TotalPaid:              c.TotalPaid,
		TotalOutstanding:       c.TotalOutstanding,
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	}
}

type createdResponse struct {
	Client  clientResponse `json:"client"`
	Revived bool           `json:"revived"`
	// Password is returned once when one was generated for the client.
	Password string `json:"generatedPassword,omitempty"`
}

func toCreatedResponse(c *client.Created) createdResponse {
	return createdResponse{
		Client:   toResponse(c.Client),
		Revived:  c.Revived,
		Password: c.Password,
	}
}

type pageResponse struct {
	Clients     []clientResponse `json:"clients"`
	Total       int              `json:"total"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
}

func toPageResponse(p *client.Page) pageResponse {
	resp := pageResponse{
		Clients:     make([]clientResponse, len(p.Clients)),
		Total:       p.Total,
		TotalPages:  p.TotalPages,
		CurrentPage: p.CurrentPage,
	}

	for i, c := range p.Clients {
		resp.Clients[i] = toResponse(c)
	}

	return resp
}

type totalsResponse struct {
	TotalInvoiced    decimal.Decimal `json:"totalInvoiced"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
}

func toTotals(t ledger.Totals) totalsResponse {
	return totalsResponse{
		TotalInvoiced:    t.Invoiced,
		TotalPaid:        t.Paid,
		TotalOutstanding: t.Outstanding,
	}
}

type reportResponse struct {
	ClientID        uuid.UUID       `json:"clientId"`
	ClientName      string          `json:"clientName"`
	Stored          totalsResponse  `json:"stored"`
	Actual          totalsResponse  `json:"actual"`
	InvoiceCount    int             `json:"invoiceCount"`
	OverdueAmount   decimal.Decimal `json:"overdueAmount"`
	StatusBreakdown map[string]int  `json:"statusBreakdown"`
	Drift           bool            `json:"drift"`
}

func toReportResponse(r *ledger.Report) reportResponse {
	return reportResponse{
		ClientID:        r.ClientID,
		ClientName:      r.ClientName,
		Stored:          toTotals(r.Stored),
		Actual:          toTotals(r.Actual),
		InvoiceCount:    r.InvoiceCount,
		OverdueAmount:   r.OverdueAmount,
		StatusBreakdown: r.StatusBreakdown,
		Drift:           r.Drift(),
	}
}

type reconcileResponse struct {
	Drifted []reportResponse `json:"drifted"`
}
