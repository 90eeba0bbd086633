package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/pharmabill/internal/app"
	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/format"
	"github.com/andy/pharmabill/internal/service"
)

const recentInvoiceLimit = 8

// DashboardModel represents the dashboard home screen
type DashboardModel struct {
	app *app.App

	stats   *service.Stats
	recent  []*domain.Invoice
	company *domain.CompanyInfo

	loading bool
	err     error
}

type dashboardDataMsg struct {
	stats   *service.Stats
	recent  []*domain.Invoice
	company *domain.CompanyInfo
	err     error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(a *app.App) tea.Model {
	return &DashboardModel{
		app:     a,
		loading: true,
	}
}

func (m *DashboardModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *DashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		stats, err := m.app.ReportService.Stats(ctx, time.Now())
		if err != nil {
			return dashboardDataMsg{err: fmt.Errorf("stats: %w", err)}
		}
		recent, err := m.app.ReportService.RecentInvoices(ctx, recentInvoiceLimit)
		if err != nil {
			return dashboardDataMsg{err: fmt.Errorf("recent invoices: %w", err)}
		}
		company, _ := m.app.SettingsService.GetCompany(ctx)

		return dashboardDataMsg{stats: stats, recent: recent, company: company}
	}
}

func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.stats = msg.stats
			m.recent = msg.recent
			m.company = msg.company
		}
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()
	}

	return m, nil
}

func (m *DashboardModel) View() string {
	if m.loading {
		return "Loading dashboard..."
	}

	if m.err != nil {
		return errStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	var s string

	if m.company != nil {
		s += titleStyle.Render(m.company.Name) + "\n"
		if m.company.Slogan != "" {
			s += subtitleStyle.Render(m.company.Slogan) + "\n"
		}
		s += "\n"
	}

	s += lipgloss.JoinHorizontal(lipgloss.Top,
		statBox("Today", m.stats.DailyTurnover),
		statBox("This month", m.stats.MonthlyTurnover),
		statBox("Collected", m.stats.TotalCollected),
		statBox("Outstanding", m.stats.TotalRemaining),
	) + "\n"

	s += subtitleStyle.Render(fmt.Sprintf("  %d invoices  |  %d pending proformas",
		m.stats.InvoiceCount, m.stats.PendingProformas)) + "\n\n"

	s += m.renderRecentInvoices()

	return s
}

func statBox(label string, amount int64) string {
	return boxStyle.Render(subtitleStyle.Render(label) + "\n" + amountStyle.Render(format.Currency(amount)))
}

func (m *DashboardModel) renderRecentInvoices() string {
	header := "  Recent Invoices\n"
	if len(m.recent) == 0 {
		return header + subtitleStyle.Render("  No invoices yet") + "\n"
	}

	s := header
	for _, inv := range m.recent {
		s += fmt.Sprintf("  %-16s %-10s %-24s %18s  %s\n",
			inv.Number,
			format.Date(inv.Date),
			truncateStr(inv.ClientName, 24),
			format.Currency(inv.Total),
			statusBadge(inv.Status),
		)
	}
	return s
}
