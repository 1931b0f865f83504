// Package pdf renders invoices as PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type rgb struct{ r, g, b int }

var accents = map[invoice.Template]rgb{
	invoice.TemplateStandard:  {37, 99, 235},
	invoice.TemplateModern:    {124, 58, 237},
	invoice.TemplateMinimal:   {64, 64, 64},
	invoice.TemplateCreative:  {219, 39, 119},
	invoice.TemplateCorporate: {15, 82, 87},
}

const (
	pageWidth = 190.0
	lineH     = 6.0
)

type Renderer struct {
	printer *message.Printer
}

// NewRenderer returns a renderer formatting numbers for lang.
func NewRenderer(lang language.Tag) *Renderer {
	return &Renderer{printer: message.NewPrinter(lang)}
}

func (r *Renderer) amount(d decimal.Decimal) string {
	return r.printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

func (r *Renderer) money(currency string, d decimal.Decimal) string {
	return currency + " " + r.amount(d)
}

func (r *Renderer) qty(d decimal.Decimal) string {
	return r.printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2)))
}

// Render draws doc and returns the PDF bytes.
func (r *Renderer) Render(doc *invoice.Document) ([]byte, error) {
	inv := doc.Invoice

	accent, ok := accents[inv.Template]
	if !ok {
		accent = accents[invoice.TemplateStandard]
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+inv.InvoiceNumber, true)
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(accent.r, accent.g, accent.b)
	pdf.CellFormat(pageWidth/2, 12, "INVOICE", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(pageWidth/2, 6, tr("No. "+inv.InvoiceNumber), "", 2, "R", false, 0, "")
	pdf.CellFormat(pageWidth/2, 6, "Status: "+strings.ToUpper(string(inv.Status)), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	top := pdf.GetY()
	party(pdf, tr, 10, top, "From", doc.Business)
	party(pdf, tr, 10+pageWidth/2, top, "Bill to", doc.Client)

	pdf.SetY(top + 40)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(pageWidth/3, lineH, "Issue date: "+inv.IssueDate.Format("02 Jan 2006"), "", 0, "L", false, 0, "")
	pdf.CellFormat(pageWidth/3, lineH, "Due date: "+inv.DueDate.Format("02 Jan 2006"), "", 0, "L", false, 0, "")
	pdf.CellFormat(pageWidth/3, lineH, tr("Terms: "+inv.PaymentTerms), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{80, 20, 30, 20, 40}
	headers := []string{"Description", "Qty", "Rate", "Tax %", "Amount"}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(accent.r, accent.g, accent.b)
	pdf.SetTextColor(255, 255, 255)

	for i, h := range headers {
		align := "R"
		if i == 0 {
			align = "L"
		}

		pdf.CellFormat(widths[i], 8, h, "", 0, align, true, 0, "")
	}

	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)

	for _, item := range inv.Items {
		pdf.CellFormat(widths[0], 7, tr(item.Description), "B", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, r.qty(item.Quantity), "B", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, r.amount(item.Rate), "B", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, r.qty(item.TaxRate), "B", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, r.amount(item.Amount.Add(item.TaxAmount)), "B", 1, "R", false, 0, "")
	}

	pdf.Ln(4)

	totals := []struct {
		label string
		value decimal.Decimal
		bold  bool
	}{
		{"Subtotal", inv.Subtotal, false},
		{"Tax", inv.TaxAmount, false},
		{"Discount", inv.DiscountAmount.Neg(), false},
		{"Total", inv.TotalAmount, true},
		{"Paid", inv.PaidAmount, false},
		{"Balance due", inv.RemainingAmount, true},
	}

	for _, t := range totals {
		style := ""
		if t.bold {
			style = "B"
		}

		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(pageWidth-70, lineH, "", "", 0, "", false, 0, "")
		pdf.CellFormat(30, lineH, t.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, lineH, r.money(inv.Currency, t.value), "", 1, "R", false, 0, "")
	}

	if inv.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(pageWidth, lineH, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(pageWidth, 5, tr(inv.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering invoice %s: %w", inv.InvoiceNumber, err)
	}

	return buf.Bytes(), nil
}

func party(pdf *gofpdf.Fpdf, tr func(string) string, x, y float64, title string, p invoice.Party) {
	pdf.SetXY(x, y)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(pageWidth/2, lineH, title, "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)

	lines := []string{p.Name, p.Company, p.Address, p.Email, p.Phone}
	if p.TaxID != "" {
		lines = append(lines, "GST: "+p.TaxID)
	}

	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			pdf.CellFormat(pageWidth/2, 5, tr(l), "", 2, "L", false, 0, "")
		}
	}
}
