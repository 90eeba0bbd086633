package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/pharmabill/internal/app"
	"github.com/andy/pharmabill/internal/domain"
)

type settingsMode int

const (
	settingsModeView settingsMode = iota
	settingsModeCompany
	settingsModeNumbering
	settingsModeConfirmReset
)

// company form field indices
const (
	companyFieldName = iota
	companyFieldSlogan
	companyFieldAddress
	companyFieldPhone
	companyFieldEmail
	companyFieldRCCM
	companyFieldLogo
	companyFieldCount
)

// numbering form field indices
const (
	numberingFieldProforma = iota
	numberingFieldInvoice
	numberingFieldExportDir
	numberingFieldCount
)

type settingsDataMsg struct {
	settings *domain.Settings
	company  *domain.CompanyInfo
	err      error
}

type settingsSavedMsg struct {
	status string
	err    error
}

// SettingsModel manages preferences, company identity and backups
type SettingsModel struct {
	app        *app.App
	settings   *domain.Settings
	company    *domain.CompanyInfo
	loading    bool
	mode       settingsMode
	fields     []textinput.Model
	fieldFocus int
	err        error
	statusMsg  string
}

// NewSettingsModel creates a new settings screen
func NewSettingsModel(a *app.App) tea.Model {
	return &SettingsModel{
		app:     a,
		mode:    settingsModeView,
		loading: true,
	}
}

// IsCapturingInput returns true when a form or the reset prompt is active
func (m *SettingsModel) IsCapturingInput() bool {
	return m.mode != settingsModeView
}

func (m *SettingsModel) Init() tea.Cmd {
	return m.loadSettings()
}

func (m *SettingsModel) loadSettings() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		settings, err := m.app.SettingsService.GetSettings(ctx)
		if err != nil {
			return settingsDataMsg{err: err}
		}
		company, err := m.app.SettingsService.GetCompany(ctx)
		if err != nil {
			return settingsDataMsg{err: err}
		}
		return settingsDataMsg{settings: settings, company: company}
	}
}

func newField(placeholder, value string, limit, width int) textinput.Model {
	f := textinput.New()
	f.Placeholder = placeholder
	f.CharLimit = limit
	f.Width = width
	f.SetValue(value)
	return f
}

func (m *SettingsModel) initCompanyForm() tea.Cmd {
	c := m.company
	m.fields = []textinput.Model{
		companyFieldName:    newField("Pharmacie", c.Name, 100, 40),
		companyFieldSlogan:  newField("Optional slogan", c.Slogan, 100, 50),
		companyFieldAddress: newField("Address", c.Address, 200, 50),
		companyFieldPhone:   newField("+225 21 00 00 00", c.Phone, 20, 20),
		companyFieldEmail:   newField("contact@example.com", c.Email, 100, 40),
		companyFieldRCCM:    newField("CI-ABJ-2024-B-0000", c.RCCM, 40, 30),
		companyFieldLogo:    newField("Path or URL to logo", c.Logo, 256, 50),
	}
	return m.openForm(settingsModeCompany)
}

func (m *SettingsModel) initNumberingForm() tea.Cmd {
	cfg := m.app.Config.Documents
	m.fields = []textinput.Model{
		numberingFieldProforma:  newField(domain.KindProforma.DefaultPrefix(), cfg.ProformaPrefix, 10, 10),
		numberingFieldInvoice:   newField(domain.KindInvoice.DefaultPrefix(), cfg.InvoicePrefix, 10, 10),
		numberingFieldExportDir: newField("/path/to/backups", cfg.ExportDir, 256, 60),
	}
	return m.openForm(settingsModeNumbering)
}

func (m *SettingsModel) openForm(mode settingsMode) tea.Cmd {
	m.mode = mode
	m.err = nil
	m.statusMsg = ""
	m.fieldFocus = 0
	return m.fields[0].Focus()
}

func (m *SettingsModel) value(i int) string {
	return strings.TrimSpace(m.fields[i].Value())
}

func (m *SettingsModel) saveCompany() tea.Cmd {
	company := &domain.CompanyInfo{
		Name:    m.value(companyFieldName),
		Slogan:  m.value(companyFieldSlogan),
		Address: m.value(companyFieldAddress),
		Phone:   m.value(companyFieldPhone),
		Email:   m.value(companyFieldEmail),
		RCCM:    m.value(companyFieldRCCM),
		Logo:    m.value(companyFieldLogo),
	}
	return func() tea.Msg {
		if err := m.app.SettingsService.SaveCompany(context.Background(), company); err != nil {
			return settingsSavedMsg{err: err}
		}
		return settingsSavedMsg{status: "Company details saved"}
	}
}

func (m *SettingsModel) saveNumbering() tea.Cmd {
	proforma := strings.ToUpper(m.value(numberingFieldProforma))
	invoice := strings.ToUpper(m.value(numberingFieldInvoice))
	exportDir := m.value(numberingFieldExportDir)

	return func() tea.Msg {
		if proforma == "" || invoice == "" {
			return settingsSavedMsg{err: fmt.Errorf("number prefixes are required")}
		}
		if exportDir == "" {
			return settingsSavedMsg{err: fmt.Errorf("export directory is required")}
		}

		m.app.Config.Documents.ProformaPrefix = proforma
		m.app.Config.Documents.InvoicePrefix = invoice
		m.app.Config.Documents.ExportDir = exportDir

		if err := m.app.SaveConfig(); err != nil {
			return settingsSavedMsg{err: fmt.Errorf("failed to save config: %w", err)}
		}
		return settingsSavedMsg{status: "Configuration saved, new prefixes apply after restart"}
	}
}

func (m *SettingsModel) toggle(apply func(*domain.Settings), status string) tea.Cmd {
	if m.settings == nil {
		return nil
	}
	next := *m.settings
	apply(&next)
	return func() tea.Msg {
		if err := m.app.SettingsService.SaveSettings(context.Background(), &next); err != nil {
			return settingsSavedMsg{err: err}
		}
		return settingsSavedMsg{status: status}
	}
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadSettings()

	case settingsDataMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.settings = msg.settings
		m.company = msg.company
		return m, nil

	case settingsSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = settingsModeView
		m.statusMsg = msg.status
		m.loading = true
		return m, m.loadSettings()

	case tea.KeyMsg:
		switch m.mode {
		case settingsModeCompany:
			return m.updateForm(msg, companyFieldCount, m.saveCompany)
		case settingsModeNumbering:
			return m.updateForm(msg, numberingFieldCount, m.saveNumbering)
		case settingsModeConfirmReset:
			m.mode = settingsModeView
			if msg.String() != "y" {
				return m, nil
			}
			return m, func() tea.Msg {
				if err := m.app.SettingsService.Reset(context.Background()); err != nil {
					return settingsSavedMsg{err: err}
				}
				return settingsSavedMsg{status: "All data erased"}
			}
		}

		if m.loading {
			return m, nil
		}
		m.err = nil
		m.statusMsg = ""

		switch msg.String() {
		case "u":
			return m, m.toggle(func(s *domain.Settings) { s.ShowUnitColumn = !s.ShowUnitColumn }, "Unit column preference saved")
		case "m":
			return m, m.toggle(func(s *domain.Settings) { s.ManualInvoiceNumbering = !s.ManualInvoiceNumbering }, "Numbering preference saved")
		case "e":
			if m.company != nil {
				return m, m.initCompanyForm()
			}
		case "c":
			return m, m.initNumberingForm()
		case "x":
			return m, func() tea.Msg {
				path, err := m.app.WriteBackup(context.Background(), "")
				if err != nil {
					return settingsSavedMsg{err: err}
				}
				return settingsSavedMsg{status: "Backup written to " + path}
			}
		case "R":
			m.mode = settingsModeConfirmReset
		}
	}

	return m, nil
}

func (m *SettingsModel) updateForm(msg tea.KeyMsg, count int, save func() tea.Cmd) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = settingsModeView
		m.err = nil
		return m, nil

	case "tab", "down":
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus = (m.fieldFocus + 1) % count
		return m, m.fields[m.fieldFocus].Focus()

	case "shift+tab", "up":
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus = (m.fieldFocus - 1 + count) % count
		return m, m.fields[m.fieldFocus].Focus()

	case "enter":
		if m.fieldFocus == count-1 {
			return m, save()
		}
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus++
		return m, m.fields[m.fieldFocus].Focus()

	case "ctrl+s":
		return m, save()
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *SettingsModel) View() string {
	switch m.mode {
	case settingsModeCompany:
		return m.viewForm("Edit Company", []string{"Name:", "Slogan:", "Address:", "Phone:", "Email:", "RCCM:", "Logo:"})
	case settingsModeNumbering:
		return m.viewForm("Edit Configuration", []string{"Proforma prefix:", "Invoice prefix:", "Export directory:"})
	}
	return m.viewSettings()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m *SettingsModel) viewSettings() string {
	if m.loading {
		return "Loading settings..."
	}

	var s string
	s += titleStyle.Render("Settings") + "\n\n"

	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += errStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}
	if m.settings == nil || m.company == nil {
		return s
	}

	labelStyle := lipgloss.NewStyle().Bold(true).Width(22)
	valueStyle := lipgloss.NewStyle().Foreground(primaryColor)
	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s\n", labelStyle.Render(label), valueStyle.Render(value))
	}

	s += subtitleStyle.Render("  Preferences") + "\n\n"
	s += row("Unit column:", onOff(m.settings.ShowUnitColumn))
	s += row("Manual numbering:", onOff(m.settings.ManualInvoiceNumbering))

	s += "\n" + subtitleStyle.Render("  Company") + "\n\n"
	c := m.company
	s += row("Name:", c.Name)
	if c.Slogan != "" {
		s += row("Slogan:", c.Slogan)
	}
	s += row("Address:", c.Address)
	s += row("Phone:", c.Phone)
	if c.Email != "" {
		s += row("Email:", c.Email)
	}
	if c.RCCM != "" {
		s += row("RCCM:", c.RCCM)
	}

	cfg := m.app.Config
	s += "\n" + subtitleStyle.Render("  Configuration") + "\n\n"
	s += row("Proforma prefix:", cfg.Documents.ProformaPrefix)
	s += row("Invoice prefix:", cfg.Documents.InvoicePrefix)
	s += row("Export directory:", cfg.Documents.ExportDir)
	s += row("Database:", cfg.Database.Path)

	if m.mode == settingsModeConfirmReset {
		s += "\n" + errStyle.Render("  Erase ALL products, clients, proformas and invoices? (y/n)") + "\n"
	}

	s += "\n" + helpStyle.Render("  u: unit column  m: manual numbering  e: edit company  c: configuration  x: export backup  R: reset")
	return s
}

func (m *SettingsModel) viewForm(title string, labels []string) string {
	var s string
	s += titleStyle.Render(title) + "\n\n"

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
