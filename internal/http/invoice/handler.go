package invoice

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/http/web"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// Renderer turns an invoice document into a PDF.
type Renderer interface {
	Render(doc *invoice.Document) ([]byte, error)
}

type Handler struct {
	svc *invoice.Service
	pdf Renderer
}

func NewHandler(svc *invoice.Service, pdf Renderer) *Handler {
	return &Handler{svc: svc, pdf: pdf}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/stats/overview", h.overview)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/send", h.send)
	r.Post("/{id}/payment", h.recordPayment)
	r.Post("/{id}/cancel", h.cancel)
	r.Post("/{id}/remind", h.remind)
	r.Get("/{id}/download", h.download)
}

type createInvoiceRequest struct {
	ClientID       uuid.UUID          `json:"clientId" validate:"required"`
	InvoiceNumber  string             `json:"invoiceNumber"`
	IssueDate      web.Date           `json:"issueDate"`
	DueDate        web.Date           `json:"dueDate"`
	Items          []invoice.LineItem `json:"items"`
	DiscountAmount decimal.Decimal    `json:"discountAmount"`
	Currency       string             `json:"currency"`
	PaymentTerms   string             `json:"paymentTerms"`
	Notes          string             `json:"notes"`
	InternalNotes  string             `json:"internalNotes"`
	Template       invoice.Template   `json:"template"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, err := web.BusinessID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	var req createInvoiceRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, err)
		return
	}

	inv, err := h.svc.Create(r.Context(), userID, invoice.CreateParams{
		ClientID:       req.ClientID,
		InvoiceNumber:  req.InvoiceNumber,
		IssueDate:      req.IssueDate.Time,
		DueDate:        req.DueDate.Time,
		Items:          req.Items,
		DiscountAmount: req.DiscountAmount,
		Currency:       req.Currency,
		PaymentTerms:   req.PaymentTerms,
		Notes:          req.Notes,
		InternalNotes:  req.InternalNotes,
		Template:       req.Template,
	})
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusCreated, toResponse(inv))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := web.BusinessID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	q := r.URL.Query()
	filter := invoice.ListFilter{
		UserID:   userID,
		Search:   q.Get("search"),
		SortBy:   q.Get("sortBy"),
		SortDesc: !strings.EqualFold(q.Get("sortOrder"), "asc"),
	}
	filter.Page, filter.Limit = web.Page(r)

	if s := q.Get("status"); s != "" {
		status := invoice.Status(s)
		filter.Status = &status
	}

	if s := q.Get("clientId"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			web.Error(w, apperr.Validation("Invalid clientId"))
			return
		}

		filter.ClientID = &id
	}

	page, err := h.svc.List(r.Context(), filter)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toPageResponse(page))
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	userID, err := web.BusinessID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	o, err := h.svc.Overview(r.Context(), userID)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toOverviewResponse(o))
}

// target resolves the business and the {id} of an invoice route.
func target(r *http.Request) (userID, id uuid.UUID, err error) {
	if userID, err = web.BusinessID(r); err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	if id, err = web.PathID(r); err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	return userID, id, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, id, err := target(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	inv, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toResponse(inv))
}

type updateInvoiceRequest struct {
	InvoiceNumber  *string            `json:"invoiceNumber"`
	UserID         *uuid.UUID         `json:"userId"`
	ClientID       *uuid.UUID         `json:"clientId"`
	IssueDate      *web.Date          `json:"issueDate"`
	DueDate        *web.Date          `json:"dueDate"`
	Items          []invoice.LineItem `json:"items"`
	DiscountAmount *decimal.Decimal   `json:"discountAmount"`
	Currency       *string            `json:"currency"`
	PaymentTerms   *string            `json:"paymentTerms"`
	Notes          *string            `json:"notes"`
	InternalNotes  *string            `json:"internalNotes"`
	Template       *invoice.Template  `json:"template"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, id, err := target(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	var req updateInvoiceRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, err)
		return
	}

	inv, err := h.svc.Update(r.Context(), userID, id, invoice.UpdateParams{
		InvoiceNumber:  req.InvoiceNumber,
		UserID:         req.UserID,
		ClientID:       req.ClientID,
		IssueDate:      req.IssueDate.Ptr(),
		DueDate:        req.DueDate.Ptr(),
		Items:          req.Items,
		DiscountAmount: req.DiscountAmount,
		Currency:       req.Currency,
		PaymentTerms:   req.PaymentTerms,
		Notes:          req.Notes,
		InternalNotes:  req.InternalNotes,
		Template:       req.Template,
	})
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	userID, id, err := target(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		web.Error(w, err)
		return
	}

	web.Message(w, http.StatusOK, "Invoice deleted successfully")
}

type sendRequest struct {
	SentTo string `json:"sentTo" validate:"omitempty,email"`
	Method string `json:"method"`
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	userID, id, err := target(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	var req sendRequest
	if r.ContentLength != 0 {
		if err := web.Decode(r, &req); err != nil {
			web.Error(w, err)
			return
		}
	}

	inv, err := h.svc.Send(r.Context(), userID, id, invoice.SendParams{SentTo: req.SentTo, Method: req.Method})
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toResponse(inv))
}

type paymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   *web.Date       `json:"paymentDate"`
	PaymentMethod string          `json:"paymentMethod"`
	TransactionID string          `json:"transactionId"`
	Notes         string          `json:"notes" validate:"max=1000"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	userID, id, err := target(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	var req paymentRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, err)
		return
	}

	inv, err := h.svc.RecordPayment(r.Context(), userID, id, invoice.PaymentInput{
		Amount:        req.Amount,
		PaymentDate:   req.PaymentDate.Ptr(),
		Method:        req.PaymentMethod,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
	})
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	userID, id, err := target(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	inv, err := h.svc.Cancel(r.Context(), userID, id)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toResponse(inv))
}

type remindRequest struct {
	Type string `json:"type"`
}

func (h *Handler) remind(w http.ResponseWriter, r *http.Request) {
	userID, id, err := target(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	var req remindRequest
	if r.ContentLength != 0 {
		if err := web.Decode(r, &req); err != nil {
			web.Error(w, err)
			return
		}
	}

	inv, err := h.svc.Remind(r.Context(), userID, id, req.Type)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	userID, id, err := target(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	doc, err := h.svc.Document(r.Context(), userID, id)
	if err != nil {
		web.Error(w, err)
		return
	}

	data, err := h.pdf.Render(doc)
	if err != nil {
		web.Error(w, fmt.Errorf("rendering invoice %s: %w", doc.Invoice.InvoiceNumber, err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, doc.Invoice.InvoiceNumber))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
