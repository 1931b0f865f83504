package account

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/business"
	"github.com/MrJamesThe3rd/invoicer/internal/http/web"
)

type Handler struct {
	svc    *business.Service
	tokens *auth.Issuer
}

func NewHandler(svc *business.Service, tokens *auth.Issuer) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// PublicRoutes mounts the unauthenticated /auth endpoints.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/me", h.me)
}

func (h *Handler) SettingsRoutes(r chi.Router) {
	r.Put("/settings", h.updateSettings)
}

// Verify admits tokens whose business still exists.
func (h *Handler) Verify(ctx context.Context, id uuid.UUID) (context.Context, error) {
	if _, err := h.svc.Get(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, auth.ErrInvalidToken
		}

		return nil, err
	}

	return auth.WithBusiness(ctx, id), nil
}

type businessInfo struct {
	BusinessName string `json:"businessName"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	TaxID        string `json:"taxId"`
}

type registerRequest struct {
	Name         string       `json:"name" validate:"required"`
	Email        string       `json:"email" validate:"required,email"`
	Password     string       `json:"password" validate:"required,min=6"`
	BusinessInfo businessInfo `json:"businessInfo"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, err)
		return
	}

	b, err := h.svc.Register(r.Context(), business.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Info: business.Info{
			BusinessName: req.BusinessInfo.BusinessName,
			Address:      req.BusinessInfo.Address,
			Phone:        req.BusinessInfo.Phone,
			TaxID:        req.BusinessInfo.TaxID,
		},
	})
	if err != nil {
		web.Error(w, err)
		return
	}

	h.respondWithToken(w, http.StatusCreated, b)
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

	b, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		web.Error(w, err)
		return
	}

	h.respondWithToken(w, http.StatusOK, b)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, status int, b *business.Business) {
	token, err := h.tokens.Issue(b.ID)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, status, sessionResponse{Token: token, User: toResponse(b)})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id, err := web.BusinessID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toResponse(b))
}

type settingsRequest struct {
	InvoicePrefix *string `json:"invoicePrefix" validate:"omitempty,max=20"`
	Currency      *string `json:"currency"`
	PaymentTerms  *string `json:"paymentTerms"`
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	id, err := web.BusinessID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	var req settingsRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, err)
		return
	}

	b, err := h.svc.UpdateSettings(r.Context(), id, business.SettingsParams{
		InvoicePrefix: req.InvoicePrefix,
		Currency:      req.Currency,
		PaymentTerms:  req.PaymentTerms,
	})
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toResponse(b))
}
