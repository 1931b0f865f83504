package invoice_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(qty, rate, tax string) invoice.LineItem {
	return invoice.LineItem{
		Description: "Consulting",
		Quantity:    dec(qty),
		Rate:        dec(rate),
		TaxRate:     dec(tax),
	}
}

func TestCalculate(t *testing.T) {
	type testCase struct {
		name      string
		items     []invoice.LineItem
		discount  string
		wantSub   string
		wantTax   string
		wantTotal string
	}

	tests := []testCase{
		{
			name:      "SingleLineWithTax",
			items:     []invoice.LineItem{item("2", "100", "10")},
			discount:  "0",
			wantSub:   "200",
			wantTax:   "20",
			wantTotal: "220",
		},
		{
			name:      "MultipleLinesAndDiscount",
			items:     []invoice.LineItem{item("3", "19.99", "18"), item("1", "250", "0")},
			discount:  "10",
			wantSub:   "309.97",
			wantTax:   "10.7946",
			wantTotal: "310.7646",
		},
		{
			name:      "FractionalQuantityIsNotRounded",
			items:     []invoice.LineItem{item("0.333", "10", "5")},
			discount:  "0",
			wantSub:   "3.33",
			wantTax:   "0.1665",
			wantTotal: "3.4965",
		},
		{
			name:      "DiscountLargerThanTotal",
			items:     []invoice.LineItem{item("1", "50", "0")},
			discount:  "80",
			wantSub:   "50",
			wantTax:   "0",
			wantTotal: "-30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := invoice.Calculate(tt.items, dec(tt.discount))

			assert.True(t, dec(tt.wantSub).Equal(got.Subtotal), "subtotal: %s", got.Subtotal)
			assert.True(t, dec(tt.wantTax).Equal(got.TaxAmount), "tax: %s", got.TaxAmount)
			assert.True(t, dec(tt.wantTotal).Equal(got.TotalAmount), "total: %s", got.TotalAmount)
		})
	}
}

func TestPriceItems_IgnoresCallerAmounts(t *testing.T) {
	in := item("2", "100", "10")
	in.Amount = dec("999")
	in.TaxAmount = dec("999")

	got := invoice.PriceItems([]invoice.LineItem{in})

	require.Len(t, got, 1)
	assert.True(t, dec("200").Equal(got[0].Amount))
	assert.True(t, dec("20").Equal(got[0].TaxAmount))
	assert.True(t, dec("999").Equal(in.Amount), "input must not be modified")
}

func TestValidateItems(t *testing.T) {
	noDescription := item("1", "1", "0")
	noDescription.Description = ""

	tests := []struct {
		name    string
		items   []invoice.LineItem
		wantErr bool
	}{
		{"Valid", []invoice.LineItem{item("1", "0", "0")}, false},
		{"Empty", nil, true},
		{"MissingDescription", []invoice.LineItem{noDescription}, true},
		{"ZeroQuantity", []invoice.LineItem{item("0", "10", "0")}, true},
		{"NegativeRate", []invoice.LineItem{item("1", "-1", "0")}, true},
		{"TaxAbove100", []invoice.LineItem{item("1", "10", "100.01")}, true},
		{"NegativeTax", []invoice.LineItem{item("1", "10", "-1")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := invoice.ValidateItems(tt.items)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrValidation)
				return
			}

			assert.NoError(t, err)
		})
	}
}
