package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/invoicer/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/invoicer/internal/business"
	businessStore "github.com/MrJamesThe3rd/invoicer/internal/business/store"
	"github.com/MrJamesThe3rd/invoicer/internal/config"
	"github.com/MrJamesThe3rd/invoicer/internal/database"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/invoicer/internal/invoice/store"
	"github.com/MrJamesThe3rd/invoicer/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/invoicer/internal/ledger/store"
	"github.com/MrJamesThe3rd/invoicer/internal/paymentrequest"
	paymentRequestStore "github.com/MrJamesThe3rd/invoicer/internal/paymentrequest/store"
)

type View int

const (
	ViewLogin View = iota
	ViewMenu
	ViewRequests
	ViewInvoices
	ViewLedger
)

type model struct {
	businessService       *business.Service
	invoiceService        *invoice.Service
	paymentRequestService *paymentrequest.Service
	ledgerService         *ledger.Service

	business    *business.Business
	currentView View

	loginView    view.LoginModel
	requestsView view.RequestsModel
	invoicesView view.InvoicesModel
	ledgerView   view.LedgerModel
}

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	invoices := invoiceStore.New(db)
	businessSvc := business.NewService(businessStore.New(db), business.Defaults{
		Prefix:       cfg.Invoice.Prefix,
		Currency:     cfg.Invoice.Currency,
		PaymentTerms: cfg.Invoice.PaymentTerms,
	})

	return model{
		businessService: businessSvc,
		invoiceService: invoice.NewService(invoices, invoice.Settings{
			Prefix:         cfg.Invoice.Prefix,
			Currency:       cfg.Invoice.Currency,
			PaymentTerms:   cfg.Invoice.PaymentTerms,
			PaymentRetries: cfg.Invoice.PaymentRetries,
		}),
		paymentRequestService: paymentrequest.NewService(paymentRequestStore.New(db, invoices), cfg.Invoice.PaymentRetries),
		ledgerService:         ledger.NewService(ledgerStore.New(db)),
		currentView:           ViewLogin,
		loginView:             view.NewLoginModel(businessSvc),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewRequests
				m.requestsView = view.NewRequestsModel(m.paymentRequestService, m.business.ID, m.business.Currency)

				return m, m.requestsView.Init()
			case "2":
				m.currentView = ViewInvoices
				m.invoicesView = view.NewInvoicesModel(m.invoiceService, m.business.ID)

				return m, m.invoicesView.Init()
			case "3":
				m.currentView = ViewLedger
				m.ledgerView = view.NewLedgerModel(m.ledgerService, m.business.ID, m.business.Currency)

				return m, m.ledgerView.Init()
			}
		}
	case view.LoggedInMsg:
		m.business = msg.Business
		m.currentView = ViewMenu

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewRequests:
		var newModel tea.Model
		newModel, cmd = m.requestsView.Update(msg)
		m.requestsView = newModel.(view.RequestsModel)
	case ViewInvoices:
		var newModel tea.Model
		newModel, cmd = m.invoicesView.Update(msg)
		m.invoicesView = newModel.(view.InvoicesModel)
	case ViewLedger:
		var newModel tea.Model
		newModel, cmd = m.ledgerView.Update(msg)
		m.ledgerView = newModel.(view.LedgerModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return fmt.Sprintf("\n  Invoicer - %s\n\n"+
			"  1. Review Payment Requests\n"+
			"  2. Record Payments\n"+
			"  3. Reconcile Client Ledgers\n\n"+
			"  q. Quit\n", m.business.BusinessName)
	case ViewRequests:
		return m.requestsView.View()
	case ViewInvoices:
		return m.invoicesView.View()
	case ViewLedger:
		return m.ledgerView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
