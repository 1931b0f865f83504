package product

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
)

const DefaultUnit = "unit"

// Product is a catalogue entry that invoice line items can be priced from.
type Product struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	SKU         string
	Description string
	Rate        decimal.Decimal
	TaxRate     decimal.Decimal
	Unit        string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var skuPattern = regexp.MustCompile(`^\d+$`)

func (p *Product) normalize() error {
	p.Name = strings.TrimSpace(p.Name)
	p.SKU = strings.TrimSpace(p.SKU)
	p.Unit = strings.TrimSpace(p.Unit)

	if p.Name == "" {
		return apperr.Validation("Name is required")
	}

	if p.SKU != "" && !skuPattern.MatchString(p.SKU) {
		return apperr.Validation("SKU must contain only digits")
	}

	if p.Rate.IsNegative() {
		return apperr.Validation("Rate must be >= 0")
	}

	if p.TaxRate.IsNegative() {
		return apperr.Validation("Tax rate must be >= 0")
	}

	if p.Unit == "" {
		p.Unit = DefaultUnit
	}

	return nil
}
