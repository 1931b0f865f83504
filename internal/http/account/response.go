package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/business"
)

type businessResponse struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	BusinessInfo  businessInfo `json:"businessInfo"`
	InvoicePrefix string       `json:"invoicePrefix"`
	Currency      string       `json:"currency"`
	PaymentTerms  string       `json:"paymentTerms"`
	CreatedAt     time.Time    `json:"createdAt"`
}

type sessionResponse struct {
	Token string           `json:"token"`
	User  businessResponse `json:"user"`
}

func toResponse(b *business.Business) businessResponse {
	return businessResponse{
		ID:    b.ID,
		Name:  b.Name,
		Email: b.Email,
		BusinessInfo: businessInfo{
			BusinessName: b.BusinessName,
			Address:      b.Address,
			Phone:        b.Phone,
			TaxID:        b.TaxID,
		},
		InvoicePrefix: b.InvoicePrefix,
		Currency:      b.Currency,
		PaymentTerms:  b.PaymentTerms,
		CreatedAt:     b.CreatedAt,
	}
}
