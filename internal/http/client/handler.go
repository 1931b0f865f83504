package client

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/invoicer/internal/client"
	"github.com/MrJamesThe3rd/invoicer/internal/http/web"
	"github.com/MrJamesThe3rd/invoicer/internal/ledger"
)

type Handler struct {
	svc    *client.Service
	ledger *ledger.Service
}

func NewHandler(svc *client.Service, ledger *ledger.Service) *Handler {
	return &Handler{svc: svc, ledger: ledger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/ledger/reconcile", h.reconcile)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/stats", h.stats)
	r.Delete("/{id}/credentials", h.removeCredentials)
}

type createClientRequest struct {
	Name                   string `json:"name" validate:"required"`
	Email                  string `json:"email" validate:"required,email"`
	Phone                  string `json:"phone"`
	Company                string `json:"company"`
	Address                string `json:"address"`
	PaymentTerms           string `json:"paymentTerms"`
	PreferredPaymentMethod string `json:"preferredPaymentMethod"`
	TaxID                  string `json:"taxId"`
	Notes                  string `json:"notes"`
	CreateCredentials      bool   `json:"createCredentials"`
	Password               string `json:"password" validate:"omitempty,min=6"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, err := web.BusinessID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	var req createClientRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, err)
		return
	}

	created, err := h.svc.Create(r.Context(), userID, client.CreateParams{
		Name:                   req.Name,
		Email:                  req.Email,
		Phone:                  req.Phone,
		Company:                req.Company,
		Address:                req.Address,
		PaymentTerms:           req.PaymentTerms,
		PreferredPaymentMethod: req.PreferredPaymentMethod,
		TaxID:                  req.TaxID,
		Notes:                  req.Notes,
		CreateCredentials:      req.CreateCredentials,
		Password:               req.Password,
	})
	if err != nil {
		web.Error(w, err)
		return
	}

	status := http.StatusCreated
	if created.Revived {
		status = http.StatusOK
	}

	web.JSON(w, status, toCreatedResponse(created))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := web.BusinessID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	filter := client.ListFilter{
		UserID: userID,
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
	}
	filter.Page, filter.Limit = web.Page(r)

	page, err := h.svc.List(r.Context(), filter)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toPageResponse(page))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
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

	c, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toResponse(c))
}

type updateClientRequest struct {
	Name                   *string `json:"name" validate:"omitempty,min=1"`
	Email                  *string `json:"email" validate:"omitempty,email"`
	Phone                  *string `json:"phone"`
	Company                *string `json:"company"`
	Address                *string `json:"address"`
	PaymentTerms           *string `json:"paymentTerms"`
	Status                 *string `json:"status" validate:"omitempty,oneof=active inactive"`
	Notes                  *string `json:"notes"`
	PreferredPaymentMethod *string `json:"preferredPaymentMethod"`
	TaxID                  *string `json:"taxId"`
	CreateCredentials      bool    `json:"createCredentials"`
	Password               string  `json:"password" validate:"omitempty,min=6"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
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

	var req updateClientRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, err)
		return
	}

	c, err := h.svc.Update(r.Context(), userID, id, client.UpdateParams{
		Name:                   req.Name,
		Email:                  req.Email,
		Phone:                  req.Phone,
		Company:                req.Company,
		Address:                req.Address,
		PaymentTerms:           req.PaymentTerms,
		Status:                 req.Status,
		Notes:                  req.Notes,
		PreferredPaymentMethod: req.PreferredPaymentMethod,
		TaxID:                  req.TaxID,
		CreateCredentials:      req.CreateCredentials,
		Password:               req.Password,
	})
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
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

	deleted, err := h.svc.Archive(r.Context(), userID, id)
	if err != nil {
		web.Error(w, err)
		return
	}

	if deleted {
		web.Message(w, http.StatusOK, "Client deleted successfully")
		return
	}

	web.Message(w, http.StatusOK, "Client has invoices and was deactivated instead")
}

func (h *Handler) removeCredentials(w http.ResponseWriter, r *http.Request) {
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

	c, err := h.svc.RemoveCredentials(r.Context(), userID, id)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
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

	report, err := h.ledger.Check(r.Context(), userID, id)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toReportResponse(report))
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	userID, err := web.BusinessID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	drifted, err := h.ledger.Reconcile(r.Context(), userID)
	if err != nil {
		web.Error(w, err)
		return
	}

	resp := reconcileResponse{Drifted: make([]reportResponse, len(drifted))}
	for i, report := range drifted {
		resp.Drifted[i] = toReportResponse(report)
	}

	web.JSON(w, http.StatusOK, resp)
}
