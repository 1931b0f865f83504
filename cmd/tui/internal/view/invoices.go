package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type invoicesState int

const (
	invoicesStateBrowse invoicesState = iota
	invoicesStatePayment
)

var unpaidStatuses = []invoice.Status{invoice.StatusOverdue, invoice.StatusSent, invoice.StatusViewed}

// InvoicesModel browses unpaid invoices and records payments received
// outside the portal.
type InvoicesModel struct {
	svc        *invoice.Service
	businessID uuid.UUID

	state     invoicesState
	statusIdx int
	table     table.Model
	form      *huh.Form
	spinner   spinner.Model
	invoices  []*invoice.Invoice
	target    *invoice.Invoice

	busy   bool
	status string
	err    error
}

func NewInvoicesModel(svc *invoice.Service, businessID uuid.UUID) InvoicesModel {
	return InvoicesModel{
		svc:        svc,
		businessID: businessID,
		spinner:    newSpinner(),
		busy:       true,
		table: newTable([]table.Column{
			{Title: "Number", Width: 14},
			{Title: "Client", Width: 24},
			{Title: "Due", Width: 12},
			{Title: "Total", Width: 16},
			{Title: "Remaining", Width: 16},
			{Title: "Status", Width: 10},
		}),
	}
}

func (m InvoicesModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case invoicesLoadedMsg:
		m.busy = false
		m.err = msg.err
		m.invoices = msg.invoices
		m.refreshTable()

		return m, nil

	case paymentResultMsg:
		m.busy = false
		m.state = invoicesStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = errorStyle.Render(apperr.Message(msg.err, msg.err.Error()))
			return m, nil
		}

		m.status = okStyle.Render(fmt.Sprintf("Payment recorded: %s is now %s", msg.invoice.InvoiceNumber, msg.invoice.Status))
		m.busy = true

		return m, m.loadCmd()
	}

	if m.busy {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	if m.state == invoicesStatePayment {
		return m.updatePayment(msg)
	}

	return m.updateBrowse(msg)
}

func (m InvoicesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "s":
			m.statusIdx = (m.statusIdx + 1) % len(unpaidStatuses)
			m.busy = true
			m.status = ""

			return m, tea.Batch(m.spinner.Tick, m.loadCmd())
		case "p":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.invoices) {
				return m, nil
			}

			m.target = m.invoices[idx]
			m.form = buildPaymentForm(m.target)
			m.state = invoicesStatePayment
			m.table.Blur()

			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InvoicesModel) updatePayment(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = invoicesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	amount, _ := decimal.NewFromString(m.form.GetString("amount"))
	in := invoice.PaymentInput{
		Amount:        amount,
		Method:        m.form.GetString("method"),
		TransactionID: m.form.GetString("reference"),
		Notes:         m.form.GetString("notes"),
	}
	m.busy = true

	return m, tea.Batch(m.spinner.Tick, m.payCmd(m.target.ID, in))
}

func buildPaymentForm(inv *invoice.Invoice) *huh.Form {
	methods := []invoice.Method{
		invoice.MethodBankTransfer, invoice.MethodUPI, invoice.MethodCash,
		invoice.MethodCheck, invoice.MethodPayPal, invoice.MethodStripe, invoice.MethodOther,
	}

	options := make([]huh.Option[string], len(methods))
	for i, method := range methods {
		options[i] = huh.NewOption(string(method), string(method))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Description("Remaining: "+FormatMoney(inv.Currency, inv.RemainingAmount)).
				Placeholder(inv.RemainingAmount.StringFixed(2)).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(s)
					if err != nil {
						return fmt.Errorf("enter a number")
					}

					return inv.ValidateAmount(d)
				}),
			huh.NewSelect[string]().
				Key("method").
				Title("Method").
				Options(options...),
			huh.NewInput().
				Key("reference").
				Title("Transaction ID"),
			huh.NewInput().
				Key("notes").
				Title("Notes"),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m *InvoicesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.invoices))

	for _, inv := range m.invoices {
		var client string
		if inv.Client != nil {
			client = inv.Client.Name
		}

		rows = append(rows, table.Row{
			inv.InvoiceNumber,
			client,
			FormatDate(inv.DueDate),
			FormatMoney(inv.Currency, inv.TotalAmount),
			FormatMoney(inv.Currency, inv.RemainingAmount),
			string(inv.Status),
		})
	}

	m.table.SetRows(rows)
}

func (m InvoicesModel) View() string {
	if m.state == invoicesStatePayment && m.form != nil {
		header := titleStyle.Render("Record payment for " + m.target.InvoiceNumber)
		return padded.Render(header + "\n\n" + m.form.View() + "\n\n" + helpStyle.Render("Esc: cancel"))
	}

	body := titleStyle.Render(fmt.Sprintf("Invoices (%s)", unpaidStatuses[m.statusIdx])) + "\n\n"

	switch {
	case m.busy:
		body += m.spinner.View() + " Working..."
	case m.err != nil:
		body += errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case len(m.invoices) == 0:
		body += "Nothing here."
	default:
		body += m.table.View()
	}

	if m.status != "" {
		body += "\n\n" + m.status
	}

	body += "\n\n" + helpStyle.Render("p: record payment | s: next status | Esc: back")

	return padded.Render(body)
}

type invoicesLoadedMsg struct {
	invoices []*invoice.Invoice
	err      error
}

func (m InvoicesModel) loadCmd() tea.Cmd {
	status := unpaidStatuses[m.statusIdx]

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		page, err := m.svc.List(ctx, invoice.ListFilter{
			UserID:   m.businessID,
			Status:   &status,
			SortBy:   "dueDate",
			SortDesc: false,
			Limit:    100,
		})
		if err != nil {
			return invoicesLoadedMsg{err: err}
		}

		return invoicesLoadedMsg{invoices: page.Invoices}
	}
}

type paymentResultMsg struct {
	invoice *invoice.Invoice
	err     error
}

func (m InvoicesModel) payCmd(id uuid.UUID, in invoice.PaymentInput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		inv, err := m.svc.RecordPayment(ctx, m.businessID, id, in)

		return paymentResultMsg{invoice: inv, err: err}
	}
}
