package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/pharmabill/internal/app"
	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/format"
)

type invoiceMode int

const (
	invoiceModeList invoiceMode = iota
	invoiceModeDetail
	invoiceModeCompose
	invoiceModePayment
	invoiceModeSearch
	invoiceModeConfirmDelete
)

// InvoicesModel lists invoices, records payments and drives their lifecycle
type InvoicesModel struct {
	app       *app.App
	invoices  []*domain.Invoice
	showUnit  bool
	cursor    int
	loading   bool
	err       error
	statusMsg string

	mode     invoiceMode
	composer *composer
	search   textinput.Model

	// Payment form
	amount  textinput.Model
	modeIdx int
}

type invoicesDataMsg struct {
	invoices []*domain.Invoice
	showUnit bool
	err      error
}

// NewInvoicesModel creates a new invoices screen model
func NewInvoicesModel(a *app.App) tea.Model {
	search := textinput.New()
	search.Placeholder = "number or client"
	search.CharLimit = 60
	search.Width = 30

	return &InvoicesModel{
		app:     a,
		loading: true,
		search:  search,
	}
}

// IsCapturingInput returns true while a form or prompt is active
func (m *InvoicesModel) IsCapturingInput() bool {
	switch m.mode {
	case invoiceModeCompose, invoiceModePayment, invoiceModeSearch, invoiceModeConfirmDelete:
		return true
	}
	return false
}

func (m *InvoicesModel) Init() tea.Cmd {
	return m.loadInvoices()
}

func (m *InvoicesModel) loadInvoices() tea.Cmd {
	term := m.search.Value()
	return func() tea.Msg {
		ctx := context.Background()
		invoices, err := m.app.DocumentService.ListInvoices(ctx, term)
		if err != nil {
			return invoicesDataMsg{err: err}
		}
		settings, err := m.app.SettingsService.GetSettings(ctx)
		if err != nil {
			return invoicesDataMsg{err: err}
		}
		return invoicesDataMsg{invoices: invoices, showUnit: settings.ShowUnitColumn}
	}
}

func (m *InvoicesModel) selected() *domain.Invoice {
	if m.cursor < len(m.invoices) {
		return m.invoices[m.cursor]
	}
	return nil
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == invoiceModeCompose {
		return m.updateCompose(msg)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadInvoices()

	case invoicesDataMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.invoices = msg.invoices
			m.showUnit = msg.showUnit
			m.cursor = clampCursor(m.cursor, len(m.invoices))
		}
		if m.mode == invoiceModeDetail && m.selected() == nil {
			m.mode = invoiceModeList
		}
		return m, nil

	case actionDoneMsg:
		m.err = msg.err
		m.statusMsg = msg.status
		if msg.err == nil && m.mode == invoiceModePayment {
			m.mode = invoiceModeDetail
		}
		m.loading = true
		return m, m.loadInvoices()

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch m.mode {
		case invoiceModePayment:
			return m.updatePayment(msg)
		case invoiceModeSearch:
			return m.updateSearch(msg)
		case invoiceModeConfirmDelete:
			return m.updateConfirmDelete(msg)
		}

		m.statusMsg = ""
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Back):
			m.mode = invoiceModeList
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.mode == invoiceModeList && m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.mode == invoiceModeList && m.cursor < len(m.invoices)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.Select):
			if m.selected() != nil {
				m.mode = invoiceModeDetail
			}
		case msg.String() == "/":
			m.mode = invoiceModeSearch
			return m, m.search.Focus()
		case key.Matches(msg, DefaultKeyMap.New):
			return m, m.openComposer(nil)
		case msg.String() == "e":
			if inv := m.selected(); inv != nil {
				if !inv.CanEdit() {
					m.err = domain.ErrDocumentLocked
					return m, nil
				}
				return m, m.openComposer(inv)
			}
		case msg.String() == "p":
			if inv := m.selected(); inv != nil {
				if inv.IsPaid() || inv.Status == domain.StatusCancelled {
					m.err = fmt.Errorf("%s has no open balance", inv.Number)
					return m, nil
				}
				return m, m.openPayment(inv)
			}
		case key.Matches(msg, DefaultKeyMap.Cancel):
			if inv := m.selected(); inv != nil {
				return m, perform(fmt.Sprintf("Cancelled %s", inv.Number), func() error {
					_, err := m.app.DocumentService.CancelInvoice(context.Background(), inv.ID)
					return err
				})
			}
		case key.Matches(msg, DefaultKeyMap.Delete):
			if m.selected() != nil {
				m.mode = invoiceModeConfirmDelete
			}
		}
	}

	return m, nil
}

func (m *InvoicesModel) openComposer(editing *domain.Invoice) tea.Cmd {
	var rec domain.Record
	if editing != nil {
		rec = editing
	}
	m.composer = newComposer(m.app, domain.KindInvoice, rec)
	m.mode = invoiceModeCompose
	return m.composer.init()
}

func (m *InvoicesModel) updateCompose(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.composer.update(msg)
	if !m.composer.done {
		return m, cmd
	}

	m.mode = invoiceModeList
	m.err = m.composer.err
	if saved := m.composer.saved; saved != nil {
		m.statusMsg = fmt.Sprintf("Saved %s", saved.Base().Number)
	}
	m.composer = nil
	m.loading = true
	return m, m.loadInvoices()
}

func (m *InvoicesModel) openPayment(inv *domain.Invoice) tea.Cmd {
	m.amount = textinput.New()
	m.amount.Placeholder = "0"
	m.amount.CharLimit = 15
	m.amount.Width = 15
	m.amount.SetValue(fmt.Sprintf("%d", inv.Balance))
	m.amount.CursorEnd()
	m.modeIdx = 0
	m.mode = invoiceModePayment
	return m.amount.Focus()
}

func (m *InvoicesModel) updatePayment(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch msg.String() {
	case "esc":
		m.mode = invoiceModeDetail
		return m, nil
	case "tab", "right":
		m.modeIdx = (m.modeIdx + 1) % len(domain.PaymentModes)
		return m, nil
	case "shift+tab", "left":
		m.modeIdx = (m.modeIdx - 1 + len(domain.PaymentModes)) % len(domain.PaymentModes)
		return m, nil
	case "enter", "ctrl+s":
		inv := m.selected()
		if inv == nil {
			m.mode = invoiceModeList
			return m, nil
		}
		amount, err := format.ParseAmount(m.amount.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		mode := domain.PaymentModes[m.modeIdx]
		return m, perform(fmt.Sprintf("Recorded %s on %s", format.Currency(amount), inv.Number), func() error {
			_, _, err := m.app.PaymentService.Apply(context.Background(), inv.ID, amount, mode)
			return err
		})
	}

	var cmd tea.Cmd
	m.amount, cmd = m.amount.Update(msg)
	return m, cmd
}

func (m *InvoicesModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		fallthrough
	case "enter":
		m.search.Blur()
		m.mode = invoiceModeList
		m.cursor = 0
		m.loading = true
		return m, m.loadInvoices()
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *InvoicesModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	inv := m.selected()
	m.mode = invoiceModeList
	if msg.String() != "y" || inv == nil {
		return m, nil
	}
	return m, perform(fmt.Sprintf("Deleted %s", inv.Number), func() error {
		return m.app.DocumentService.Delete(context.Background(), domain.KindInvoice, inv.ID)
	})
}

func (m *InvoicesModel) View() string {
	if m.mode == invoiceModeCompose {
		return m.composer.view()
	}

	if m.loading {
		return "Loading invoices..."
	}

	switch m.mode {
	case invoiceModeDetail:
		if inv := m.selected(); inv != nil {
			s := renderDocument(inv, m.showUnit) + "\n" + m.viewFeedback()
			return s + helpStyle.Render("  p: record payment  x: cancel  e: edit  d: delete  esc: back")
		}
	case invoiceModePayment:
		if inv := m.selected(); inv != nil {
			return m.viewPayment(inv)
		}
	}

	var s string
	s += titleStyle.Render("Invoices")
	if m.mode == invoiceModeSearch {
		s += "  / " + m.search.View()
	} else if term := m.search.Value(); term != "" {
		s += subtitleStyle.Render(fmt.Sprintf("  (matching %q)", term))
	}
	s += "\n\n" + m.viewFeedback()

	if len(m.invoices) == 0 {
		s += subtitleStyle.Render("  No invoices. Press 'n' to create one.") + "\n"
	}

	for i, inv := range m.invoices {
		line := fmt.Sprintf("%s%-16s %-10s %-24s %18s %18s  ",
			cursorPrefix(i == m.cursor),
			inv.Number,
			format.Date(inv.Date),
			truncateStr(inv.ClientName, 24),
			format.Currency(inv.Total),
			format.Currency(inv.Balance),
		)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		s += line + statusBadge(inv.Status) + "\n"
	}

	if m.mode == invoiceModeConfirmDelete {
		if inv := m.selected(); inv != nil {
			s += "\n" + errStyle.Render(fmt.Sprintf("  Delete %s? (y/n)", inv.Number)) + "\n"
		}
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: view  n: new  e: edit  p: pay  x: cancel  d: delete  /: search")
	return s
}

func (m *InvoicesModel) viewPayment(inv *domain.Invoice) string {
	s := titleStyle.Render("Record Payment - "+inv.Number) + "\n\n"
	s += fmt.Sprintf("  %-12s %s\n  %-12s %s\n  %-12s %s\n\n",
		"Total:", format.Currency(inv.Total),
		"Paid:", format.Currency(inv.PaidAmount),
		"Balance:", amountStyle.Render(format.Currency(inv.Balance)))

	s += "  Amount (Frcs CFA):\n  " + m.amount.View() + "\n\n"

	modes := make([]string, len(domain.PaymentModes))
	for i, mode := range domain.PaymentModes {
		if i == m.modeIdx {
			modes[i] = selectedStyle.Render(" " + string(mode) + " ")
		} else {
			modes[i] = subtitleStyle.Render(" " + string(mode) + " ")
		}
	}
	s += "  Mode:\n  " + lipgloss.JoinHorizontal(lipgloss.Top, modes...) + "\n\n"

	if amount, err := format.ParseAmount(m.amount.Value()); err == nil && amount > 0 && amount <= inv.Balance {
		s += subtitleStyle.Render("  "+format.AmountInWords(amount)+" Francs CFA") + "\n\n"
	}

	s += m.viewFeedback()
	s += helpStyle.Render("  tab/←/→: payment mode  enter: record  esc: back")
	return s
}

func (m *InvoicesModel) viewFeedback() string {
	var s string
	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += errStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}
	return s
}
