package product

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/http/web"
	"github.com/MrJamesThe3rd/invoicer/internal/product"
)

const maxUploadSize = 10 << 20

type Handler struct {
	svc *product.Service
}

func NewHandler(svc *product.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/import", h.importCSV)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	SKU         string          `json:"sku"`
	Description string          `json:"description"`
	Rate        decimal.Decimal `json:"rate"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	Unit        string          `json:"unit"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, err := web.BusinessID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	var req createProductRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, err)
		return
	}

	p, err := h.svc.Create(r.Context(), userID, product.CreateParams{
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		Rate:        req.Rate,
		TaxRate:     req.TaxRate,
		Unit:        req.Unit,
	})
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := web.BusinessID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	filter := product.ListFilter{UserID: userID, Search: r.URL.Query().Get("search")}
	filter.Page, filter.Limit = web.Page(r)

	if s := r.URL.Query().Get("active"); s != "" {
		active, err := strconv.ParseBool(s)
		if err != nil {
			web.Error(w, apperr.Validation("Invalid active filter %q", s))
			return
		}

		filter.Active = &active
	}

	page, err := h.svc.List(r.Context(), filter)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toPageResponse(page))
}

type updateProductRequest struct {
	Name        *string          `json:"name"`
	SKU         *string          `json:"sku"`
	Description *string          `json:"description"`
	Rate        *decimal.Decimal `json:"rate"`
	TaxRate     *decimal.Decimal `json:"taxRate"`
	Unit        *string          `json:"unit"`
	IsActive    *bool            `json:"isActive"`
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

	var req updateProductRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, err)
		return
	}

	p, err := h.svc.Update(r.Context(), userID, id, product.UpdateParams(req))
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toResponse(p))
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

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		web.Error(w, err)
		return
	}

	web.Message(w, http.StatusOK, "Product deleted successfully")
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	userID, err := web.BusinessID(r)
	if err != nil {
		web.Error(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		web.Error(w, apperr.Validation("Failed to parse form: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		web.Error(w, apperr.Validation("File field is required"))
		return
	}
	defer file.Close()

	result, err := h.svc.Import(r.Context(), userID, file)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, toImportResponse(result))
}
