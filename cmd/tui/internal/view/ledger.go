package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/ledger"
)

// LedgerModel runs a reconciliation and lists the clients whose stored totals
// disagree with their invoices.
type LedgerModel struct {
	svc        *ledger.Service
	businessID uuid.UUID
	currency   string

	table   table.Model
	spinner spinner.Model
	reports []*ledger.Report

	busy bool
	err  error
}

func NewLedgerModel(svc *ledger.Service, businessID uuid.UUID, currency string) LedgerModel {
	return LedgerModel{
		svc:        svc,
		businessID: businessID,
		currency:   currency,
		spinner:    newSpinner(),
		busy:       true,
		table: newTable([]table.Column{
			{Title: "Client", Width: 24},
			{Title: "Invoiced (stored)", Width: 18},
			{Title: "Invoiced (actual)", Width: 18},
			{Title: "Outstanding (stored)", Width: 20},
			{Title: "Outstanding (actual)", Width: 20},
		}),
	}
}

func (m LedgerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.reconcileCmd())
}

func (m LedgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reconcileResultMsg:
		m.busy = false
		m.err = msg.err
		m.reports = msg.reports
		m.refreshTable()

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			if !m.busy {
				m.busy = true
				return m, tea.Batch(m.spinner.Tick, m.reconcileCmd())
			}
		}
	}

	var cmd tea.Cmd
	if m.busy {
		m.spinner, cmd = m.spinner.Update(msg)
	} else {
		m.table, cmd = m.table.Update(msg)
	}

	return m, cmd
}

func (m *LedgerModel) refreshTable() {
	rows := make([]table.Row, len(m.reports))

	for i, r := range m.reports {
		rows[i] = table.Row{
			r.ClientName,
			FormatMoney(m.currency, r.Stored.Invoiced),
			FormatMoney(m.currency, r.Actual.Invoiced),
			FormatMoney(m.currency, r.Stored.Outstanding),
			FormatMoney(m.currency, r.Actual.Outstanding),
		}
	}

	m.table.SetRows(rows)
}

func (m LedgerModel) View() string {
	body := titleStyle.Render("Client ledger reconciliation") + "\n\n"

	switch {
	case m.busy:
		body += m.spinner.View() + " Recomputing client totals..."
	case m.err != nil:
		body += errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case len(m.reports) == 0:
		body += okStyle.Render("Every client ledger matches its invoices.")
	default:
		body += fmt.Sprintf("%d client(s) drifted:\n\n", len(m.reports)) + m.table.View()
	}

	body += "\n\n" + helpStyle.Render("r: run again | Esc: back")

	return padded.Render(body)
}

type reconcileResultMsg struct {
	reports []*ledger.Report
	err     error
}

func (m LedgerModel) reconcileCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		reports, err := m.svc.Reconcile(ctx, m.businessID)

		return reconcileResultMsg{reports: reports, err: err}
	}
}
