package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/business"
)

// LoggedInMsg carries the business the operator signed in as.
type LoggedInMsg struct {
	Business *business.Business
}

type LoginModel struct {
	svc *business.Service

	form    *huh.Form
	spinner spinner.Model
	busy    bool
	err     error
}

func NewLoginModel(svc *business.Service) LoginModel {
	return LoginModel{svc: svc, form: buildLoginForm(), spinner: newSpinner()}
}

func buildLoginForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return fmt.Errorf("enter a valid email")
					}
					return nil
				}),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(loginResultMsg); ok {
		m.busy = false

		if result.err != nil {
			m.err = result.err
			m.form = buildLoginForm()

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return LoggedInMsg{Business: result.business} }
	}

	if m.busy {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		return m, tea.Quit
	case huh.StateCompleted:
		m.busy = true
		m.err = nil

		return m, tea.Batch(m.spinner.Tick, m.authenticateCmd(m.form.GetString("email"), m.form.GetString("password")))
	}

	return m, cmd
}

func (m LoginModel) View() string {
	if m.busy {
		return padded.Render(m.spinner.View() + " Signing in...")
	}

	body := titleStyle.Render("Invoicer - sign in") + "\n\n" + m.form.View()
	if m.err != nil {
		body += "\n" + errorStyle.Render(apperr.Message(m.err, m.err.Error()))
	}

	return padded.Render(body)
}

type loginResultMsg struct {
	business *business.Business
	err      error
}

func (m LoginModel) authenticateCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		b, err := m.svc.Authenticate(ctx, email, password)

		return loginResultMsg{business: b, err: err}
	}
}
