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
	"github.com/andy/pharmabill/internal/format"
)

type productMode int

const (
	productModeList productMode = iota
	productModeForm
	productModeConfirmDelete
)

const (
	productFieldName = iota
	productFieldCategory
	productFieldUnit
	productFieldPrice
	productFieldDescription
	productFieldCount
)

// ProductsModel manages the catalog
type ProductsModel struct {
	app       *app.App
	products  []*domain.Product
	cursor    int
	loading   bool
	err       error
	statusMsg string

	mode       productMode
	fields     []textinput.Model
	fieldFocus int
	editingID  string
}

type productsDataMsg struct {
	products []*domain.Product
	err      error
}

// NewProductsModel creates a new products screen model
func NewProductsModel(a *app.App) tea.Model {
	return &ProductsModel{
		app:     a,
		loading: true,
	}
}

func (m *ProductsModel) IsCapturingInput() bool {
	return m.mode != productModeList
}

func (m *ProductsModel) Init() tea.Cmd {
	return m.loadProducts()
}

func (m *ProductsModel) loadProducts() tea.Cmd {
	return func() tea.Msg {
		products, err := m.app.CatalogService.ListProducts(context.Background(), true, "")
		return productsDataMsg{products: products, err: err}
	}
}

func (m *ProductsModel) selected() *domain.Product {
	if m.cursor < len(m.products) {
		return m.products[m.cursor]
	}
	return nil
}

func (m *ProductsModel) initForm(editing *domain.Product) tea.Cmd {
	m.fields = make([]textinput.Model, productFieldCount)
	specs := []struct {
		placeholder string
		limit       int
		width       int
	}{
		productFieldName:        {"Paracétamol 500mg", 100, 40},
		productFieldCategory:    {domain.DefaultCategory, 50, 30},
		productFieldUnit:        {"Boîte", 20, 15},
		productFieldPrice:       {"1500", 15, 15},
		productFieldDescription: {"Optional description", 200, 50},
	}
	for i, spec := range specs {
		m.fields[i] = textinput.New()
		m.fields[i].Placeholder = spec.placeholder
		m.fields[i].CharLimit = spec.limit
		m.fields[i].Width = spec.width
	}

	m.editingID = ""
	if editing != nil {
		m.fields[productFieldName].SetValue(editing.Name)
		m.fields[productFieldCategory].SetValue(editing.Category)
		m.fields[productFieldUnit].SetValue(editing.Unit)
		m.fields[productFieldPrice].SetValue(fmt.Sprintf("%d", editing.UnitPrice))
		m.fields[productFieldDescription].SetValue(editing.Description)
		m.editingID = editing.ID
	}

	m.mode = productModeForm
	m.err = nil
	m.fieldFocus = productFieldName
	return m.fields[productFieldName].Focus()
}

func (m *ProductsModel) saveProduct() tea.Cmd {
	price, err := format.ParseAmount(m.fields[productFieldPrice].Value())
	if err != nil {
		m.err = err
		return nil
	}
	name := strings.TrimSpace(m.fields[productFieldName].Value())
	category := m.fields[productFieldCategory].Value()
	unit := strings.TrimSpace(m.fields[productFieldUnit].Value())
	description := strings.TrimSpace(m.fields[productFieldDescription].Value())
	editingID := m.editingID

	return func() tea.Msg {
		ctx := context.Background()
		if editingID != "" {
			product, err := m.app.CatalogService.GetProduct(ctx, editingID)
			if err != nil {
				return actionDoneMsg{err: err}
			}
			product.Name = name
			product.Category = strings.TrimSpace(category)
			product.Unit = unit
			product.UnitPrice = price
			product.Description = description
			if _, err := m.app.CatalogService.UpdateProduct(ctx, product); err != nil {
				return actionDoneMsg{err: err}
			}
			return actionDoneMsg{status: "Saved: " + name}
		}

		product := domain.NewProduct(name, category, price)
		product.Unit = unit
		product.Description = description
		if _, err := m.app.CatalogService.CreateProduct(ctx, product); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "Saved: " + name}
	}
}

func (m *ProductsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadProducts()

	case productsDataMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.products = msg.products
			m.cursor = clampCursor(m.cursor, len(m.products))
		}
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = productModeList
		m.statusMsg = msg.status
		m.loading = true
		return m, m.loadProducts()

	case tea.KeyMsg:
		switch m.mode {
		case productModeForm:
			return m.updateForm(msg)
		case productModeConfirmDelete:
			m.mode = productModeList
			if p := m.selected(); p != nil && msg.String() == "y" {
				return m, perform("Deleted: "+p.Name, func() error {
					return m.app.CatalogService.DeleteProduct(context.Background(), p.ID)
				})
			}
			return m, nil
		}

		if m.loading {
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
			if m.cursor < len(m.products)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.New):
			return m, m.initForm(nil)
		case key.Matches(msg, DefaultKeyMap.Select):
			if p := m.selected(); p != nil {
				return m, m.initForm(p)
			}
		case msg.String() == "a":
			if p := m.selected(); p != nil {
				verb := "Deactivated"
				if !p.IsActive {
					verb = "Activated"
				}
				return m, perform(fmt.Sprintf("%s: %s", verb, p.Name), func() error {
					_, err := m.app.CatalogService.SetProductActive(context.Background(), p.ID, !p.IsActive)
					return err
				})
			}
		case key.Matches(msg, DefaultKeyMap.Delete):
			if m.selected() != nil {
				m.mode = productModeConfirmDelete
			}
		}
	}

	return m, nil
}

func (m *ProductsModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = productModeList
		m.err = nil
		return m, nil
	case "tab", "down":
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus = (m.fieldFocus + 1) % productFieldCount
		return m, m.fields[m.fieldFocus].Focus()
	case "shift+tab", "up":
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus = (m.fieldFocus - 1 + productFieldCount) % productFieldCount
		return m, m.fields[m.fieldFocus].Focus()
	case "enter":
		if m.fieldFocus == productFieldCount-1 {
			return m, m.saveProduct()
		}
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus++
		return m, m.fields[m.fieldFocus].Focus()
	case "ctrl+s":
		return m, m.saveProduct()
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *ProductsModel) View() string {
	if m.mode == productModeForm {
		return m.viewForm()
	}

	if m.loading {
		return "Loading products..."
	}

	var s string
	s += titleStyle.Render("Products") + "\n\n"
	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += errStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	if len(m.products) == 0 {
		s += subtitleStyle.Render("  Catalog is empty. Press 'n' to add a product.") + "\n"
	}

	for i, p := range m.products {
		line := fmt.Sprintf("%s%-28s %-16s %-8s %16s",
			cursorPrefix(i == m.cursor),
			truncateStr(p.Name, 28),
			truncateStr(p.Category, 16),
			truncateStr(p.Unit, 8),
			format.Currency(p.UnitPrice),
		)
		switch {
		case i == m.cursor:
			line = selectedStyle.Render(line)
		case !p.IsActive:
			line = subtitleStyle.Render(line + "  (inactive)")
		}
		s += line + "\n"
	}

	if m.mode == productModeConfirmDelete {
		if p := m.selected(); p != nil {
			s += "\n" + errStyle.Render(fmt.Sprintf("  Delete %s? (y/n)", p.Name)) + "\n"
		}
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: new  enter: edit  a: activate/deactivate  d: delete")
	return s
}

func (m *ProductsModel) viewForm() string {
	title := "New Product"
	if m.editingID != "" {
		title = "Edit Product"
	}
	s := titleStyle.Render(title) + "\n\n"

	labels := []string{"Name:", "Category:", "Unit:", "Unit price (Frcs CFA):", "Description:"}
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
