package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
)

var hundred = decimal.NewFromInt(100)

// Totals are the monetary figures derived from an invoice's lines.
type Totals struct {
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
}

// LineAmounts returns quantity × rate and the tax on it. Nothing is rounded.
func LineAmounts(quantity, rate, taxRate decimal.Decimal) (amount, tax decimal.Decimal) {
	amount = quantity.Mul(rate)
	tax = amount.Mul(taxRate).Shift(-2)

	return amount, tax
}

// Calculate sums the lines and subtracts the discount. The total may come out
// negative; rejecting that is up to the caller.
func Calculate(items []LineItem, discount decimal.Decimal) Totals {
	var t Totals

	for _, it := range items {
		amount, tax := LineAmounts(it.Quantity, it.Rate, it.TaxRate)
		t.Subtotal = t.Subtotal.Add(amount)
		t.TaxAmount = t.TaxAmount.Add(tax)
	}

	t.TotalAmount = t.Subtotal.Add(t.TaxAmount).Sub(discount)

	return t
}

// PriceItems returns a copy of items with Amount and TaxAmount recomputed,
// ignoring whatever the caller put there.
func PriceItems(items []LineItem) []LineItem {
	priced := make([]LineItem, len(items))

	for i, it := range items {
		it.Amount, it.TaxAmount = LineAmounts(it.Quantity, it.Rate, it.TaxRate)
		priced[i] = it
	}

	return priced
}

// ValidateItems checks the caller-supplied part of every line.
func ValidateItems(items []LineItem) error {
	if len(items) == 0 {
		return apperr.Validation("At least one item is required")
	}

	for i, it := range items {
		switch {
		case it.Description == "":
			return apperr.Validation("Item %d: description is required", i+1)
		case !it.Quantity.IsPositive():
			return apperr.Validation("Item %d: quantity must be greater than 0", i+1)
		case it.Rate.IsNegative():
			return apperr.Validation("Item %d: rate cannot be negative", i+1)
		case it.TaxRate.IsNegative() || it.TaxRate.GreaterThan(hundred):
			return apperr.Validation("Item %d: tax rate must be between 0 and 100", i+1)
		}
	}

	return nil
}

// reprice replaces the lines and discount of inv and recomputes its totals.
func (inv *Invoice) reprice(items []LineItem, discount decimal.Decimal) error {
	if err := ValidateItems(items); err != nil {
		return err
	}

	if discount.IsNegative() {
		return apperr.Validation("Discount cannot be negative")
	}

	totals := Calculate(items, discount)
	if totals.TotalAmount.IsNegative() {
		return apperr.Validation("Total amount cannot be negative")
	}

	inv.Items = PriceItems(items)
	inv.DiscountAmount = discount
	inv.Subtotal = totals.Subtotal
	inv.TaxAmount = totals.TaxAmount
	inv.TotalAmount = totals.TotalAmount

	return nil
}
