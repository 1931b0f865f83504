package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type clientResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Company string    `json:"company,omitempty"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone,omitempty"`
	Address string    `json:"address,omitempty"`
	TaxID   string    `json:"taxId,omitempty"`
}

type invoiceResponse struct {
	ID              uuid.UUID            `json:"id"`
	UserID          uuid.UUID            `json:"userId"`
	ClientID        uuid.UUID            `json:"clientId"`
	Client          *clientResponse      `json:"client,omitempty"`
	InvoiceNumber   string               `json:"invoiceNumber"`
	Status          invoice.Status       `json:"status"`
	IssueDate       time.Time            `json:"issueDate"`
	DueDate         time.Time            `json:"dueDate"`
	Items           []invoice.LineItem   `json:"items"`
	Subtotal        decimal.Decimal      `json:"subtotal"`
	TaxAmount       decimal.Decimal      `json:"taxAmount"`
	DiscountAmount  decimal.Decimal      `json:"discountAmount"`
	TotalAmount     decimal.Decimal      `json:"totalAmount"`
	PaidAmount      decimal.Decimal      `json:"paidAmount"`
	RemainingAmount decimal.Decimal      `json:"remainingAmount"`
	Currency        string               `json:"currency"`
	PaymentTerms    string               `json:"paymentTerms"`
	Notes           string               `json:"notes"`
	InternalNotes   string               `json:"internalNotes,omitempty"`
	Template        invoice.Template     `json:"template"`
	PaymentHistory  []invoice.Payment    `json:"paymentHistory"`
	SentHistory     []invoice.SentRecord `json:"sentHistory"`
	Reminders       []invoice.Reminder   `json:"reminders"`
	PaidAt          *time.Time           `json:"paidAt,omitempty"`
	ViewedAt        *time.Time           `json:"viewedAt,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	resp := invoiceResponse{
		ID:              inv.ID,
		UserID:          inv.UserID,
		ClientID:        inv.ClientID,
		InvoiceNumber:   inv.InvoiceNumber,
		Status:          inv.Status,
		IssueDate:       inv.IssueDate,
		DueDate:         inv.DueDate,
		Items:           nonNil(inv.Items),
		Subtotal:        inv.Subtotal,
		TaxAmount:       inv.TaxAmount,
		DiscountAmount:  inv.DiscountAmount,
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
		RemainingAmount: inv.RemainingAmount,
		Currency:        inv.Currency,
		PaymentTerms:    inv.PaymentTerms,
		Notes:           inv.Notes,
		InternalNotes:   inv.InternalNotes,
		Template:        inv.Template,
		PaymentHistory:  nonNil(inv.PaymentHistory),
		SentHistory:     nonNil(inv.SentHistory),
		Reminders:       nonNil(inv.Reminders),
		PaidAt:          inv.PaidAt,
		ViewedAt:        inv.ViewedAt,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}

	if c := inv.Client; c != nil {
		resp.Client = &clientResponse{
			ID:      c.ID,
			Name:    c.Name,
			Company: c.Company,
			Email:   c.Email,
			Phone:   c.Phone,
			Address: c.Address,
			TaxID:   c.TaxID,
		}
	}

	return resp
}

// nonNil keeps empty histories as [] rather than null in JSON.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}

type pageResponse struct {
	Invoices    []invoiceResponse `json:"invoices"`
	Total       int               `json:"total"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
}

func toPageResponse(p *invoice.Page) pageResponse {
	resp := pageResponse{
		Invoices:    make([]invoiceResponse, len(p.Invoices)),
		Total:       p.Total,
		TotalPages:  p.TotalPages,
		CurrentPage: p.CurrentPage,
	}

	for i, inv := range p.Invoices {
		resp.Invoices[i] = toResponse(inv)
	}

	return resp
}

type overviewResponse struct {
	TotalInvoices     int                    `json:"totalInvoices"`
	StatusCounts      map[invoice.Status]int `json:"statusCounts"`
	TotalAmount       decimal.Decimal        `json:"totalAmount"`
	PaidAmount        decimal.Decimal        `json:"paidAmount"`
	OutstandingAmount decimal.Decimal        `json:"outstandingAmount"`
	OverdueAmount     decimal.Decimal        `json:"overdueAmount"`
}

func toOverviewResponse(o *invoice.Overview) overviewResponse {
	return overviewResponse{
		TotalInvoices:     o.TotalInvoices,
		StatusCounts:      o.StatusCounts,
		TotalAmount:       o.TotalAmount,
		PaidAmount:        o.PaidAmount,
		OutstandingAmount: o.OutstandingAmount,
		OverdueAmount:     o.OverdueAmount,
	}
}
