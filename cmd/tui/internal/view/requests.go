package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/paymentrequest"
)

// RequestsModel lists pending payment requests and lets the operator approve
// or reject the selected one.
type RequestsModel struct {
	svc        *paymentrequest.Service
	businessID uuid.UUID
	currency   string

	table    table.Model
	spinner  spinner.Model
	requests []*paymentrequest.Request

	busy   bool
	status string
	err    error
}

func NewRequestsModel(svc *paymentrequest.Service, businessID uuid.UUID, currency string) RequestsModel {
	return RequestsModel{
		svc:        svc,
		businessID: businessID,
		currency:   currency,
		spinner:    newSpinner(),
		busy:       true,
		table: newTable([]table.Column{
			{Title: "Submitted", Width: 12},
			{Title: "Client", Width: 24},
			{Title: "Invoice", Width: 14},
			{Title: "Amount", Width: 14},
			{Title: "Remaining", Width: 14},
			{Title: "Method", Width: 14},
			{Title: "Reference", Width: 20},
		}),
	}
}

func (m RequestsModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m RequestsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case requestsLoadedMsg:
		m.busy = false
		m.err = msg.err
		m.requests = msg.requests
		m.refreshTable()

		return m, nil

	case reviewResultMsg:
		m.busy = false

		if msg.err != nil {
			m.status = errorStyle.Render(apperr.Message(msg.err, msg.err.Error()))
			return m, nil
		}

		m.status = okStyle.Render(msg.summary)
		m.busy = true

		return m, m.loadCmd()

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.busy = true
			m.status = ""

			return m, tea.Batch(m.spinner.Tick, m.loadCmd())
		case "a", "x":
			r := m.selected()
			if r == nil {
				return m, nil
			}

			m.busy = true

			return m, tea.Batch(m.spinner.Tick, m.reviewCmd(r, msg.String() == "a"))
		}
	}

	if m.busy {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m RequestsModel) selected() *paymentrequest.Request {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.requests) {
		return nil
	}

	return m.requests[idx]
}

func (m *RequestsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.requests))

	for _, r := range m.requests {
		var client, number, remaining string

		if r.Client != nil {
			client = r.Client.Name
		}

		if r.Invoice != nil {
			number = r.Invoice.InvoiceNumber
			remaining = FormatMoney(m.currency, r.Invoice.RemainingAmount)
		}

		rows = append(rows, table.Row{
			FormatDate(r.CreatedAt),
			client,
			number,
			FormatMoney(m.currency, r.Amount),
			remaining,
			string(r.Method),
			r.TransactionID,
		})
	}

	m.table.SetRows(rows)
}

func (m RequestsModel) View() string {
	body := titleStyle.Render("Pending payment requests") + "\n\n"

	switch {
	case m.busy:
		body += m.spinner.View() + " Working..."
	case m.err != nil:
		body += errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case len(m.requests) == 0:
		body += "No pending requests."
	default:
		body += m.table.View()
	}

	if m.status != "" {
		body += "\n\n" + m.status
	}

	body += "\n\n" + helpStyle.Render("a: approve | x: reject | r: refresh | Esc: back")

	return padded.Render(body)
}

type requestsLoadedMsg struct {
	requests []*paymentrequest.Request
	err      error
}

func (m RequestsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		requests, err := m.svc.List(ctx, paymentrequest.ListFilter{BusinessID: m.businessID})

		return requestsLoadedMsg{requests: requests, err: err}
	}
}

type reviewResultMsg struct {
	summary string
	err     error
}

func (m RequestsModel) reviewCmd(r *paymentrequest.Request, approve bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if !approve {
			_, err := m.svc.Reject(ctx, m.businessID, r.ID)
			return reviewResultMsg{summary: "Request rejected", err: err}
		}

		_, inv, err := m.svc.Approve(ctx, m.businessID, r.ID)
		if err != nil {
			return reviewResultMsg{err: err}
		}

		return reviewResultMsg{summary: fmt.Sprintf("Approved: %s is now %s, %s remaining",
			inv.InvoiceNumber, inv.Status, FormatMoney(m.currency, inv.RemainingAmount))}
	}
}
