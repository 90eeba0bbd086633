package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/pharmabill/internal/app"
	"github.com/andy/pharmabill/internal/domain"
)

// clientMode represents the current screen mode
type clientMode int

const (
	clientModeList clientMode = iota
	clientModeNew
	clientModeEdit
	clientModeConfirmDelete
)

// form field indices
const (
	fieldName = iota
	fieldPhone
	fieldEmail
	fieldAddress
	fieldCount
)

// ClientsModel displays a navigable list of clients with create/edit forms
type ClientsModel struct {
	app       *app.App
	clients   []*domain.Client
	cursor    int
	loading   bool
	err       error
	statusMsg string

	// Form state
	mode          clientMode
	fields        []textinput.Model
	fieldFocus    int
	editingID     string // empty for new client
	autoNewClient bool   // open new client form after data loads
}

type clientsDataMsg struct {
	clients []*domain.Client
	err     error
}

type clientSavedMsg struct {
	name string
	err  error
}

// NewClientsModel creates a new clients screen model
func NewClientsModel(a *app.App) tea.Model {
	return &ClientsModel{
		app:     a,
		loading: true,
	}
}

// IsCapturingInput returns true when the form or delete prompt is active
func (m *ClientsModel) IsCapturingInput() bool {
	return m.mode != clientModeList
}

func (m *ClientsModel) Init() tea.Cmd {
	return m.loadClients()
}

func (m *ClientsModel) loadClients() tea.Cmd {
	return func() tea.Msg {
		clients, err := m.app.CatalogService.ListClients(context.Background(), "")
		return clientsDataMsg{clients: clients, err: err}
	}
}

func (m *ClientsModel) initForm(editing *domain.Client) {
	m.fields = make([]textinput.Model, fieldCount)

	m.fields[fieldName] = textinput.New()
	m.fields[fieldName].Placeholder = "Client name"
	m.fields[fieldName].CharLimit = 100
	m.fields[fieldName].Width = 40

	m.fields[fieldPhone] = textinput.New()
	m.fields[fieldPhone].Placeholder = "+225 07 00 00 00"
	m.fields[fieldPhone].CharLimit = 20
	m.fields[fieldPhone].Width = 20

	m.fields[fieldEmail] = textinput.New()
	m.fields[fieldEmail].Placeholder = "email@example.com"
	m.fields[fieldEmail].CharLimit = 100
	m.fields[fieldEmail].Width = 40

	m.fields[fieldAddress] = textinput.New()
	m.fields[fieldAddress].Placeholder = "Optional address"
	m.fields[fieldAddress].CharLimit = 200
	m.fields[fieldAddress].Width = 50

	// Pre-fill for editing
	if editing != nil {
		m.fields[fieldName].SetValue(editing.Name)
		m.fields[fieldPhone].SetValue(editing.Phone)
		m.fields[fieldEmail].SetValue(editing.Email)
		m.fields[fieldAddress].SetValue(editing.Address)
		m.editingID = editing.ID
	} else {
		m.editingID = ""
	}

	m.fieldFocus = fieldName
	m.fields[fieldName].Focus()
}

func (m *ClientsModel) saveClient() tea.Cmd {
	name := strings.TrimSpace(m.fields[fieldName].Value())
	phone := strings.TrimSpace(m.fields[fieldPhone].Value())
	email := strings.TrimSpace(m.fields[fieldEmail].Value())
	address := strings.TrimSpace(m.fields[fieldAddress].Value())
	editingID := m.editingID

	return func() tea.Msg {
		ctx := context.Background()

		if editingID != "" {
			client, err := m.app.CatalogService.GetClient(ctx, editingID)
			if err != nil {
				return clientSavedMsg{err: err}
			}
			client.Name = name
			client.Phone = phone
			client.Email = email
			client.Address = address

			if _, err := m.app.CatalogService.UpdateClient(ctx, client); err != nil {
				return clientSavedMsg{err: err}
			}
			return clientSavedMsg{name: name}
		}

		client := domain.NewClient(name, phone)
		client.Email = email
		client.Address = address

		if _, err := m.app.CatalogService.CreateClient(ctx, client); err != nil {
			return clientSavedMsg{err: err}
		}
		return clientSavedMsg{name: name}
	}
}

func (m *ClientsModel) openForm(mode clientMode, editing *domain.Client) tea.Cmd {
	m.mode = mode
	m.err = nil
	m.initForm(editing)
	return m.fields[fieldName].Focus()
}

func (m *ClientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle OpenNewClientFormMsg at the top so it works regardless of mode
	if _, ok := msg.(OpenNewClientFormMsg); ok {
		if m.loading {
			m.autoNewClient = true
			return m, nil
		}
		return m, m.openForm(clientModeNew, nil)
	}

	if m.mode == clientModeNew || m.mode == clientModeEdit {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadClients()

	case clientsDataMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.clients = msg.clients
			m.cursor = clampCursor(m.cursor, len(m.clients))
		}
		// Auto-open new client form on first run
		if m.autoNewClient {
			m.autoNewClient = false
			return m, m.openForm(clientModeNew, nil)
		}
		return m, nil

	case actionDoneMsg:
		m.err = msg.err
		m.statusMsg = msg.status
		m.loading = true
		return m, m.loadClients()

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		if m.mode == clientModeConfirmDelete {
			m.mode = clientModeList
			if msg.String() == "y" && m.cursor < len(m.clients) {
				client := m.clients[m.cursor]
				return m, perform(fmt.Sprintf("Deleted: %s", client.Name), func() error {
					return m.app.CatalogService.DeleteClient(context.Background(), client.ID)
				})
			}
			return m, nil
		}

		m.statusMsg = ""
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.clients)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.New):
			return m, m.openForm(clientModeNew, nil)
		case key.Matches(msg, DefaultKeyMap.Select):
			if m.cursor < len(m.clients) {
				return m, m.openForm(clientModeEdit, m.clients[m.cursor])
			}
		case key.Matches(msg, DefaultKeyMap.Delete):
			if m.cursor < len(m.clients) {
				m.mode = clientModeConfirmDelete
			}
		}
	}

	return m, nil
}

func (m *ClientsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clientSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = clientModeList
		m.statusMsg = fmt.Sprintf("Saved: %s", msg.name)
		m.loading = true
		return m, m.loadClients()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.mode = clientModeList
			m.err = nil
			return m, nil

		case "tab", "down":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus + 1) % fieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "shift+tab", "up":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus - 1 + fieldCount) % fieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "enter":
			if m.fieldFocus == fieldCount-1 {
				return m, m.saveClient()
			}
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus++
			return m, m.fields[m.fieldFocus].Focus()

		case "ctrl+s":
			return m, m.saveClient()
		}
	}

	// Update the focused text input
	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *ClientsModel) View() string {
	if m.mode == clientModeNew || m.mode == clientModeEdit {
		return m.viewForm()
	}
	return m.viewList()
}

func (m *ClientsModel) viewForm() string {
	var s string

	if m.mode == clientModeNew {
		if len(m.clients) == 0 {
			s += titleStyle.Render("Welcome to pharmabill!") + "\n"
			s += subtitleStyle.Render("  Register your first client to start billing.") + "\n\n"
		} else {
			s += titleStyle.Render("New Client") + "\n\n"
		}
	} else {
		s += titleStyle.Render("Edit Client") + "\n\n"
	}

	labels := []string{"Name:", "Phone:", "Email:", "Address:"}
	for i, label := range labels {
		labelStyle := subtitleStyle
		if i == m.fieldFocus {
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", cursorPrefix(i == m.fieldFocus), labelStyle.Render(label), m.fields[i].View())
	}

	if m.err != nil {
		s += errStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	s += helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel")

	return s
}

func (m *ClientsModel) viewList() string {
	if m.loading {
		return "Loading clients..."
	}

	var s string
	s += titleStyle.Render("Clients") + "\n\n"

	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += errStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	if len(m.clients) == 0 {
		s += subtitleStyle.Render("  No clients yet. Press 'n' to add one.") + "\n"
		return s
	}

	for i, client := range m.clients {
		s += m.renderClient(i, client) + "\n"
	}

	if m.mode == clientModeConfirmDelete && m.cursor < len(m.clients) {
		s += "\n" + errStyle.Render(fmt.Sprintf("  Delete %s? Existing documents keep their copy of the name. (y/n)", m.clients[m.cursor].Name)) + "\n"
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: new  enter: edit  d: delete")

	return s
}

func (m *ClientsModel) renderClient(index int, client *domain.Client) string {
	selected := index == m.cursor

	line1 := cursorPrefix(selected) + client.Name
	line2 := "    " + client.Phone
	if client.Email != "" {
		line2 += "  |  " + client.Email
	}
	var line3 string
	if client.Address != "" {
		line3 = "    " + truncateStr(client.Address, 60)
	}

	nameStyle := lipgloss.NewStyle()
	if selected {
		nameStyle = nameStyle.Bold(true).Foreground(primaryColor)
	}

	result := nameStyle.Render(line1) + "\n" + subtitleStyle.Render(line2)
	if line3 != "" {
		result += "\n" + subtitleStyle.Render(line3)
	}
	return result
}
