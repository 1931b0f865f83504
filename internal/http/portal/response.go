package portal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/client"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/paymentrequest"
)

type inviteResponse struct {
	Message      string `json:"message"`
	ApprovalLink string `json:"approvalLink"`
}

type clientResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Company   string     `json:"company"`
	Phone     string     `json:"phone"`
	Address   string     `json:"address"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func toClientResponse(c *client.Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Company:   c.Company,
		Phone:     c.Phone,
		Address:   c.Address,
		LastLogin: c.LastLogin,
	}
}

type sessionResponse struct {
	Token  string         `json:"token"`
	Client clientResponse `json:"client"`
}

// invoiceResponse is the client's view of an invoice; internal notes stay
// with the business.
type invoiceResponse struct {
	ID              uuid.UUID          `json:"id"`
	InvoiceNumber   string             `json:"invoiceNumber"`
	Status          invoice.Status     `json:"status"`
	IssueDate       time.Time          `json:"issueDate"`
	DueDate         time.Time          `json:"dueDate"`
	Items           []invoice.LineItem `json:"items"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	TaxAmount       decimal.Decimal    `json:"taxAmount"`
	DiscountAmount  decimal.Decimal    `json:"discountAmount"`
	TotalAmount     decimal.Decimal    `json:"totalAmount"`
	PaidAmount      decimal.Decimal    `json:"paidAmount"`
	RemainingAmount decimal.Decimal    `json:"remainingAmount"`
	Currency        string             `json:"currency"`
	PaymentTerms    string             `json:"paymentTerms"`
	Notes           string             `json:"notes"`
	PaymentHistory  []invoice.Payment  `json:"paymentHistory"`
	PaidAt          *time.Time         `json:"paidAt,omitempty"`
	ViewedAt        *time.Time         `json:"viewedAt,omitempty"`
}

func toInvoiceResponse(inv *invoice.Invoice) invoiceResponse {
	resp := invoiceResponse{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		Status:          inv.Status,
		IssueDate:       inv.IssueDate,
		DueDate:         inv.DueDate,
		Items:           inv.Items,
		Subtotal:        inv.Subtotal,
		TaxAmount:       inv.TaxAmount,
		DiscountAmount:  inv.DiscountAmount,
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
		RemainingAmount: inv.RemainingAmount,
		Currency:        inv.Currency,
		PaymentTerms:    inv.PaymentTerms,
		Notes:           inv.Notes,
		PaymentHistory:  inv.PaymentHistory,
		PaidAt:          inv.PaidAt,
		ViewedAt:        inv.ViewedAt,
	}

	if resp.Items == nil {
		resp.Items = []invoice.LineItem{}
	}

	if resp.PaymentHistory == nil {
		resp.PaymentHistory = []invoice.Payment{}
	}

	return resp
}

func toInvoiceResponseList(invoices []*invoice.Invoice) []invoiceResponse {
	resp := make([]invoiceResponse, len(invoices))
	for i, inv := range invoices {
		resp[i] = toInvoiceResponse(inv)
	}

	return resp
}

type requestInvoice struct {
	InvoiceNumber   string          `json:"invoiceNumber"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	Status          invoice.Status  `json:"status"`
}

type requestClient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type requestResponse struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceID     uuid.UUID             `json:"invoiceId"`
	ClientID      uuid.UUID             `json:"clientId"`
	Amount        decimal.Decimal       `json:"amount"`
	PaymentDate   time.Time             `json:"paymentDate"`
	PaymentMethod invoice.Method        `json:"paymentMethod"`
	TransactionID string                `json:"transactionId,omitempty"`
	Notes         string                `json:"notes,omitempty"`
	Status        paymentrequest.Status `json:"status"`
	ReviewedAt    *time.Time            `json:"reviewedAt,omitempty"`
	ReviewedBy    *uuid.UUID            `json:"reviewedBy,omitempty"`
	Invoice       *requestInvoice       `json:"invoice,omitempty"`
	Client        *requestClient        `json:"client,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
}

func toRequestResponse(pr *paymentrequest.Request) requestResponse {
	resp := requestResponse{
		ID:            pr.ID,
		InvoiceID:     pr.InvoiceID,
		ClientID:      pr.ClientID,
		Amount:        pr.Amount,
		PaymentDate:   pr.Date,
		PaymentMethod: pr.Method,
		TransactionID: pr.TransactionID,
		Notes:         pr.Notes,
		Status:        pr.Status,
		ReviewedAt:    pr.ReviewedAt,
		ReviewedBy:    pr.ReviewedBy,
		CreatedAt:     pr.CreatedAt,
	}

	if s := pr.Invoice; s != nil {
		resp.Invoice = &requestInvoice{
			InvoiceNumber:   s.InvoiceNumber,
			TotalAmount:     s.TotalAmount,
			RemainingAmount: s.RemainingAmount,
			Status:          s.Status,
		}
	}

	if s := pr.Client; s != nil {
		resp.Client = &requestClient{Name: s.Name, Email: s.Email}
	}

	return resp
}

type approvalResponse struct {
	Message string          `json:"message"`
	Request requestResponse `json:"request"`
	Invoice invoiceResponse `json:"invoice"`
}
