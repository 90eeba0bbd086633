package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/pharmabill/internal/app"
	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/format"
	"github.com/andy/pharmabill/internal/service"
)

type proformaMode int

const (
	proformaModeList proformaMode = iota
	proformaModeDetail
	proformaModeCompose
	proformaModeConfirmDelete
)

// ProformasModel lists pending and archived proformas and drives their lifecycle
type ProformasModel struct {
	app       *app.App
	proformas []*domain.Proforma
	filter    service.ProformaFilter
	showUnit  bool
	cursor    int
	loading   bool
	err       error
	statusMsg string

	mode     proformaMode
	composer *composer
}

type proformasDataMsg struct {
	proformas []*domain.Proforma
	showUnit  bool
	err       error
}

// NewProformasModel creates a new proformas screen model
func NewProformasModel(a *app.App) tea.Model {
	return &ProformasModel{
		app:     a,
		filter:  service.ProformasPending,
		loading: true,
	}
}

// IsCapturingInput returns true while a document is being composed or a delete confirmed
func (m *ProformasModel) IsCapturingInput() bool {
	return m.mode == proformaModeCompose || m.mode == proformaModeConfirmDelete
}

func (m *ProformasModel) Init() tea.Cmd {
	return m.loadProformas()
}

func (m *ProformasModel) loadProformas() tea.Cmd {
	filter := m.filter
	return func() tea.Msg {
		ctx := context.Background()
		proformas, err := m.app.DocumentService.ListProformas(ctx, filter, "")
		if err != nil {
			return proformasDataMsg{err: err}
		}
		settings, err := m.app.SettingsService.GetSettings(ctx)
		if err != nil {
			return proformasDataMsg{err: err}
		}
		return proformasDataMsg{proformas: proformas, showUnit: settings.ShowUnitColumn}
	}
}

func (m *ProformasModel) selected() *domain.Proforma {
	if m.cursor < len(m.proformas) {
		return m.proformas[m.cursor]
	}
	return nil
}

func (m *ProformasModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == proformaModeCompose {
		return m.updateCompose(msg)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadProformas()

	case proformasDataMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.proformas = msg.proformas
			m.showUnit = msg.showUnit
			m.cursor = clampCursor(m.cursor, len(m.proformas))
		}
		if m.mode == proformaModeDetail && m.selected() == nil {
			m.mode = proformaModeList
		}
		return m, nil

	case actionDoneMsg:
		m.err = msg.err
		m.statusMsg = msg.status
		m.loading = true
		return m, m.loadProformas()

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		if m.mode == proformaModeConfirmDelete {
			return m.updateConfirmDelete(msg)
		}

		m.statusMsg = ""
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Back):
			m.mode = proformaModeList
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.mode == proformaModeList && m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.mode == proformaModeList && m.cursor < len(m.proformas)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.Select):
			if m.selected() != nil {
				m.mode = proformaModeDetail
			}
		case msg.String() == "tab":
			m.filter = nextProformaFilter(m.filter)
			m.cursor = 0
			m.mode = proformaModeList
			m.loading = true
			return m, m.loadProformas()
		case key.Matches(msg, DefaultKeyMap.New):
			return m, m.openComposer(nil)
		case msg.String() == "e":
			if p := m.selected(); p != nil {
				if !p.CanEdit() {
					m.err = domain.ErrDocumentLocked
					return m, nil
				}
				return m, m.openComposer(p)
			}
		case msg.String() == "v":
			return m, m.act(func(ctx context.Context, p *domain.Proforma) (string, error) {
				inv, _, err := m.app.DocumentService.ConvertToInvoice(ctx, p.ID)
				if inv == nil {
					return "", err
				}
				return fmt.Sprintf("Converted %s to %s", p.Number, inv.Number), err
			})
		case msg.String() == "m":
			return m, m.act(func(ctx context.Context, p *domain.Proforma) (string, error) {
				_, err := m.app.DocumentService.MarkProformaPaid(ctx, p.ID)
				return fmt.Sprintf("Marked %s paid", p.Number), err
			})
		case key.Matches(msg, DefaultKeyMap.Cancel):
			return m, m.act(func(ctx context.Context, p *domain.Proforma) (string, error) {
				_, err := m.app.DocumentService.CancelProforma(ctx, p.ID)
				return fmt.Sprintf("Cancelled %s", p.Number), err
			})
		case key.Matches(msg, DefaultKeyMap.Delete):
			if m.selected() != nil {
				m.mode = proformaModeConfirmDelete
			}
		}
	}

	return m, nil
}

func nextProformaFilter(f service.ProformaFilter) service.ProformaFilter {
	switch f {
	case service.ProformasPending:
		return service.ProformasArchived
	case service.ProformasArchived:
		return service.ProformasAll
	default:
		return service.ProformasPending
	}
}

// act runs a lifecycle action on the selected proforma
func (m *ProformasModel) act(fn func(context.Context, *domain.Proforma) (string, error)) tea.Cmd {
	p := m.selected()
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		status, err := fn(context.Background(), p)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: status}
	}
}

func (m *ProformasModel) openComposer(editing *domain.Proforma) tea.Cmd {
	var rec domain.Record
	if editing != nil {
		rec = editing
	}
	m.composer = newComposer(m.app, domain.KindProforma, rec)
	m.mode = proformaModeCompose
	return m.composer.init()
}

func (m *ProformasModel) updateCompose(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.composer.update(msg)
	if !m.composer.done {
		return m, cmd
	}

	m.mode = proformaModeList
	m.err = m.composer.err
	if saved := m.composer.saved; saved != nil {
		m.statusMsg = fmt.Sprintf("Saved %s", saved.Base().Number)
	}
	m.composer = nil
	m.loading = true
	return m, m.loadProformas()
}

func (m *ProformasModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.selected()
	m.mode = proformaModeList
	if msg.String() != "y" || p == nil {
		return m, nil
	}
	return m, perform(fmt.Sprintf("Deleted %s", p.Number), func() error {
		return m.app.DocumentService.Delete(context.Background(), domain.KindProforma, p.ID)
	})
}

func (m *ProformasModel) View() string {
	if m.mode == proformaModeCompose {
		return m.composer.view()
	}

	if m.loading {
		return "Loading proformas..."
	}

	if m.mode == proformaModeDetail {
		if p := m.selected(); p != nil {
			s := renderDocument(p, m.showUnit) + m.viewFeedback()
			return s + "\n" + helpStyle.Render("  v: convert  m: mark paid  x: cancel  e: edit  d: delete  esc: back")
		}
	}

	var s string
	s += titleStyle.Render("Proformas") + subtitleStyle.Render(fmt.Sprintf("  (%s)", m.filter)) + "\n\n"
	s += m.viewFeedback()

	if len(m.proformas) == 0 {
		s += subtitleStyle.Render("  No proformas here. Press 'n' to create one.") + "\n"
	}

	for i, p := range m.proformas {
		line := fmt.Sprintf("%s%-16s %-10s %-24s %18s  ",
			cursorPrefix(i == m.cursor),
			p.Number,
			format.Date(p.Date),
			truncateStr(p.ClientName, 24),
			format.Currency(p.Total),
		)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		s += line + statusBadge(p.Status) + "\n"
	}

	if m.mode == proformaModeConfirmDelete {
		if p := m.selected(); p != nil {
			s += "\n" + errStyle.Render(fmt.Sprintf("  Delete %s? (y/n)", p.Number)) + "\n"
		}
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: view  n: new  e: edit  v: convert  m: mark paid  x: cancel  d: delete  tab: filter")
	return s
}

func (m *ProformasModel) viewFeedback() string {
	var s string
	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += errStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}
	return s
}
