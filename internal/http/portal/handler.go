// Package portal serves the client-facing side of the application and the
// business endpoints that manage it: invitations and the review of payment
// requests submitted by clients.
package portal

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/client"
	"github.com/MrJamesThe3rd/invoicer/internal/http/web"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/paymentrequest"
)

type sessionKey struct{}

type Handler struct {
	clients  *client.Service
	invoices *invoice.Service
	requests *paymentrequest.Service
	tokens   *auth.Issuer
}

func NewHandler(
	clients *client.Service,
	invoices *invoice.Service,
	requests *paymentrequest.Service,
	tokens *auth.Issuer,
) *Handler {
	return &Handler{
		clients:  clients,
		invoices: invoices,
		requests: requests,
		tokens:   tokens,
	}
}

func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/approve", h.approveInvite)
	r.Post("/login", h.login)
}

// BusinessRoutes must be mounted behind business authentication.
func (h *Handler) BusinessRoutes(r chi.Router) {
	r.Post("/invite", h.invite)
	r.Get("/admin/payment-requests", h.listRequests)
	r.Post("/admin/payment-requests/{id}/approve", h.approveRequest)
	r.Post("/admin/payment-requests/{id}/reject", h.rejectRequest)
}

// ClientRoutes must be mounted behind client authentication using Verify.
func (h *Handler) ClientRoutes(r chi.Router) {
	r.Get("/me", h.me)
	r.Get("/invoices", h.listInvoices)
	r.Get("/invoices/{id}", h.getInvoice)
	r.Post("/invoices/{id}/payment-request", h.submitRequest)
}

// Verify admits client tokens whose client may still use the portal and keeps
// the client on the context for the portal handlers.
func (h *Handler) Verify(ctx context.Context, id uuid.UUID) (context.Context, error) {
	c, err := h.clients.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx = auth.WithClient(ctx, c.ID)

	return context.WithValue(ctx, sessionKey{}, c), nil
}

func session(r *http.Request) (*client.Client, error) {
	c, ok := r.Context().Value(sessionKey{}).(*client.Client)
	if !ok {
		return nil, client.ErrInvalidSession
	}

	return c, nil
}

type inviteRequest struct {
	ClientID uuid.UUID `json:"clientId" validate:"required"`
}

func (h *Handler) invite(w http.ResponseWriter, r *http.Request) {
	userID, err := web.BusinessID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	var req inviteRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, err)
		return
	}

	link, err := h.clients.Invite(r.Context(), userID, req.ClientID)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, inviteResponse{Message: "Approval link generated", ApprovalLink: link})
}

type approveInviteRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *Handler) approveInvite(w http.ResponseWriter, r *http.Request) {
	var req approveInviteRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, err)
		return
	}

	if err := h.clients.Activate(r.Context(), req.Token, req.Password); err != nil {
		web.Error(w, err)
		return
	}

	web.Message(w, http.StatusOK, "Account activated, you can now log in")
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, err)
		return
	}

	c, err := h.clients.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		web.Error(w, err)
		return
	}

	token, err := h.tokens.Issue(c.ID)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, sessionResponse{Token: token, Client: toClientResponse(c)})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	c, err := session(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toClientResponse(c))
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	c, err := session(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	peers, err := h.clients.Peers(r.Context(), c)
	if err != nil {
		web.Error(w, err)
		return
	}

	invoices, err := h.invoices.ListForClients(r.Context(), c.UserID, peers)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toInvoiceResponseList(invoices))
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	c, err := session(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	id, err := web.PathID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	peers, err := h.clients.Peers(r.Context(), c)
	if err != nil {
		web.Error(w, err)
		return
	}

	inv, err := h.invoices.OpenForClient(r.Context(), id, peers)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toInvoiceResponse(inv))
}

type submitRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Date          *web.Date       `json:"date"`
	Method        string          `json:"method"`
	TransactionID string          `json:"transactionId"`
	Notes         string          `json:"notes" validate:"max=1000"`
}

func (h *Handler) submitRequest(w http.ResponseWriter, r *http.Request) {
	c, err := session(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	id, err := web.PathID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	var req submitRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, err)
		return
	}

	pr, err := h.requests.Submit(r.Context(), c.ID, id, paymentrequest.SubmitParams{
		Amount:        req.Amount,
		Date:          req.Date.Ptr(),
		Method:        req.Method,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
	})
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusCreated, toRequestResponse(pr))
}

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := web.BusinessID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	requests, err := h.requests.List(r.Context(), paymentrequest.ListFilter{
		BusinessID: userID,
		Status:     paymentrequest.Status(r.URL.Query().Get("status")),
	})
	if err != nil {
		web.Error(w, err)
		return
	}

	resp := make([]requestResponse, len(requests))
	for i, pr := range requests {
		resp[i] = toRequestResponse(pr)
	}

	web.JSON(w, http.StatusOK, resp)
}

func (h *Handler) approveRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := web.BusinessID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	id, err := web.PathID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	pr, inv, err := h.requests.Approve(r.Context(), userID, id)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, approvalResponse{
		Message: "Payment request approved",
		Request: toRequestResponse(pr),
		Invoice: toInvoiceResponse(inv),
	})
}

func (h *Handler) rejectRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := web.BusinessID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	id, err := web.PathID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	pr, err := h.requests.Reject(r.Context(), userID, id)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toRequestResponse(pr))
}
