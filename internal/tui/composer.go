package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/pharmabill/internal/app"
	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/format"
	"github.com/andy/pharmabill/internal/service"
)

type composerStage int

const (
	stagePickClient composerStage = iota
	stageLines
	stageDetails
)

// details form field indices
const (
	detailDiscount = iota
	detailDate
	detailNumber
)

type composerDataMsg struct {
	clients  []*domain.Client
	products []*domain.Product
	manual   bool
	err      error
}

type composerSavedMsg struct {
	rec domain.Record
	err error
}

// composer walks the operator through client, lines and details to create
// or edit a proforma or invoice
type composer struct {
	app     *app.App
	kind    domain.Kind
	editing domain.Record
	stage   composerStage
	loading bool
	done    bool
	saved   domain.Record
	err     error

	clients  []*domain.Client
	products []*domain.Product
	manual   bool

	search        textinput.Model
	clientCursor  int
	productCursor int

	draft  service.Draft
	client *domain.Client

	fields     []textinput.Model
	fieldFocus int
}

func newComposer(a *app.App, kind domain.Kind, editing domain.Record) *composer {
	search := textinput.New()
	search.Placeholder = "Search client"
	search.CharLimit = 60
	search.Width = 40
	search.Focus()

	c := &composer{
		app:     a,
		kind:    kind,
		editing: editing,
		loading: true,
		search:  search,
	}
	if editing != nil {
		base := editing.Base()
		c.draft = service.Draft{
			ClientID: base.ClientID,
			Date:     base.Date,
			Items:    base.Items.Clone(),
			Discount: base.Discount,
			Number:   base.Number,
		}
		c.stage = stageLines
	}
	return c
}

func (c *composer) init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		clients, err := c.app.CatalogService.ListClients(ctx, "")
		if err != nil {
			return composerDataMsg{err: err}
		}
		products, err := c.app.CatalogService.ListProducts(ctx, false, "")
		if err != nil {
			return composerDataMsg{err: err}
		}
		settings, err := c.app.SettingsService.GetSettings(ctx)
		if err != nil {
			return composerDataMsg{err: err}
		}
		return composerDataMsg{clients: clients, products: products, manual: settings.ManualInvoiceNumbering}
	}
}

func (c *composer) filteredClients() []*domain.Client {
	term := c.search.Value()
	var out []*domain.Client
	for _, cl := range c.clients {
		if cl.Matches(term) {
			out = append(out, cl)
		}
	}
	return out
}

func (c *composer) numberField() bool {
	return c.kind == domain.KindInvoice && c.manual && c.editing == nil
}

func (c *composer) initDetails() {
	count := detailNumber
	if c.numberField() {
		count++
	}
	c.fields = make([]textinput.Model, count)

	c.fields[detailDiscount] = textinput.New()
	c.fields[detailDiscount].Placeholder = "0"
	c.fields[detailDiscount].CharLimit = 15
	c.fields[detailDiscount].Width = 15
	if c.draft.Discount > 0 {
		c.fields[detailDiscount].SetValue(fmt.Sprintf("%d", c.draft.Discount))
	}

	c.fields[detailDate] = textinput.New()
	c.fields[detailDate].Placeholder = "DD/MM/YYYY"
	c.fields[detailDate].CharLimit = 10
	c.fields[detailDate].Width = 12
	date := c.draft.Date
	if date == "" {
		date = domain.Today(time.Now())
	}
	c.fields[detailDate].SetValue(format.Date(date))

	if c.numberField() {
		c.fields[detailNumber] = textinput.New()
		c.fields[detailNumber].Placeholder = "INV-2024-00001"
		c.fields[detailNumber].CharLimit = 30
		c.fields[detailNumber].Width = 20
		c.fields[detailNumber].SetValue(c.draft.Number)
	}

	c.fieldFocus = detailDiscount
	c.fields[detailDiscount].Focus()
}

func (c *composer) discount() (int64, error) {
	v := strings.TrimSpace(c.fields[detailDiscount].Value())
	if v == "" {
		return 0, nil
	}
	return format.ParseAmount(v)
}

func (c *composer) save() tea.Cmd {
	discount, err := c.discount()
	if err != nil {
		c.err = err
		return nil
	}
	date, err := parseDateInput(c.fields[detailDate].Value())
	if err != nil {
		c.err = err
		return nil
	}

	draft := c.draft
	draft.Items = c.draft.Items.Clone()
	draft.Discount = discount
	draft.Date = date
	if c.numberField() {
		draft.Number = strings.TrimSpace(c.fields[detailNumber].Value())
	}

	editing := c.editing
	return func() tea.Msg {
		ctx := context.Background()
		if editing != nil {
			rec, err := c.app.DocumentService.Edit(ctx, c.kind, editing.Base().ID, draft)
			return composerSavedMsg{rec: rec, err: err}
		}
		rec, err := c.app.DocumentService.Create(ctx, c.kind, draft)
		return composerSavedMsg{rec: rec, err: err}
	}
}

// parseDateInput accepts DD/MM/YYYY or YYYY-MM-DD
func parseDateInput(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"02/01/2006", domain.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.Today(t), nil
		}
	}
	return "", fmt.Errorf("invalid date %q, use DD/MM/YYYY", s)
}

func (c *composer) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case composerDataMsg:
		c.loading = false
		if msg.err != nil {
			c.err = msg.err
			return nil
		}
		c.clients = msg.clients
		c.products = msg.products
		c.manual = msg.manual
		if c.draft.ClientID != "" {
			for _, cl := range c.clients {
				if cl.ID == c.draft.ClientID {
					c.client = cl
				}
			}
		}
		return nil

	case composerSavedMsg:
		if msg.err != nil && msg.rec == nil {
			c.err = msg.err
			return nil
		}
		c.saved = msg.rec
		c.err = msg.err
		c.done = true
		return nil

	case tea.KeyMsg:
		if c.loading {
			if msg.String() == "esc" {
				c.done = true
			}
			return nil
		}
		c.err = nil
		switch c.stage {
		case stagePickClient:
			return c.updatePickClient(msg)
		case stageLines:
			return c.updateLines(msg)
		case stageDetails:
			return c.updateDetails(msg)
		}
	}
	return nil
}

func (c *composer) updatePickClient(msg tea.KeyMsg) tea.Cmd {
	clients := c.filteredClients()
	switch msg.String() {
	case "esc":
		c.done = true
		return nil
	case "up":
		if c.clientCursor > 0 {
			c.clientCursor--
		}
		return nil
	case "down":
		if c.clientCursor < len(clients)-1 {
			c.clientCursor++
		}
		return nil
	case "enter":
		if len(clients) == 0 {
			c.err = fmt.Errorf("no matching client")
			return nil
		}
		c.client = clients[clampCursor(c.clientCursor, len(clients))]
		c.draft.ClientID = c.client.ID
		c.stage = stageLines
		return nil
	}

	var cmd tea.Cmd
	c.search, cmd = c.search.Update(msg)
	c.clientCursor = clampCursor(c.clientCursor, len(c.filteredClients()))
	return cmd
}

func (c *composer) updateLines(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.String() == "esc" || msg.String() == "shift+tab":
		if c.editing != nil && msg.String() == "esc" {
			c.done = true
			return nil
		}
		c.stage = stagePickClient
		return c.search.Focus()
	case key.Matches(msg, DefaultKeyMap.Up):
		if c.productCursor > 0 {
			c.productCursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if c.productCursor < len(c.products)-1 {
			c.productCursor++
		}
	case msg.String() == "enter" || msg.String() == "+":
		if len(c.products) == 0 {
			return nil
		}
		product := c.products[c.productCursor]
		if _, err := c.app.DocumentService.AddToDraft(context.Background(), &c.draft, product.ID); err != nil {
			c.err = err
		}
	case msg.String() == "-":
		if len(c.products) == 0 {
			return nil
		}
		c.decrement(c.products[c.productCursor].ID)
	case msg.String() == "tab":
		if len(c.draft.Items) == 0 {
			c.err = fmt.Errorf("add at least one product")
			return nil
		}
		c.stage = stageDetails
		c.initDetails()
		return c.fields[c.fieldFocus].Focus()
	}
	return nil
}

func (c *composer) decrement(productID string) {
	for _, item := range c.draft.Items {
		if item.ProductID != productID {
			continue
		}
		if item.Quantity <= 1 {
			_ = c.draft.Items.Remove(item.ID)
			return
		}
		_, _ = c.draft.Items.Update(item.ID, domain.FieldQuantity, item.Quantity-1)
		return
	}
}

func (c *composer) updateDetails(msg tea.KeyMsg) tea.Cmd {
	count := len(c.fields)
	switch msg.String() {
	case "esc":
		c.stage = stageLines
		return nil
	case "tab", "down":
		c.fields[c.fieldFocus].Blur()
		c.fieldFocus = (c.fieldFocus + 1) % count
		return c.fields[c.fieldFocus].Focus()
	case "shift+tab", "up":
		c.fields[c.fieldFocus].Blur()
		c.fieldFocus = (c.fieldFocus - 1 + count) % count
		return c.fields[c.fieldFocus].Focus()
	case "enter":
		if c.fieldFocus == count-1 {
			return c.save()
		}
		c.fields[c.fieldFocus].Blur()
		c.fieldFocus++
		return c.fields[c.fieldFocus].Focus()
	case "ctrl+s":
		return c.save()
	}

	var cmd tea.Cmd
	c.fields[c.fieldFocus], cmd = c.fields[c.fieldFocus].Update(msg)
	return cmd
}

func (c *composer) view() string {
	verb := "New"
	if c.editing != nil {
		verb = "Edit " + c.editing.Base().Number + " -"
	}
	s := titleStyle.Render(fmt.Sprintf("%s %s", verb, c.kind)) + "\n\n"

	if c.loading {
		return s + "Loading catalog..."
	}

	switch c.stage {
	case stagePickClient:
		s += c.viewPickClient()
	case stageLines:
		s += c.viewLines()
	case stageDetails:
		s += c.viewDetails()
	}

	if c.err != nil {
		s += "\n" + errStyle.Render(fmt.Sprintf("  Error: %v", c.err)) + "\n"
	}
	return s
}

func (c *composer) viewPickClient() string {
	s := "  Client: " + c.search.View() + "\n\n"
	clients := c.filteredClients()
	if len(c.clients) == 0 {
		s += subtitleStyle.Render("  No clients yet. Add one on the Clients screen first.") + "\n"
	}
	for i, cl := range clients {
		line := fmt.Sprintf("%s%-30s %s", cursorPrefix(i == c.clientCursor), truncateStr(cl.Name, 30), cl.Phone)
		if i == c.clientCursor {
			line = selectedStyle.Render(line)
		}
		s += line + "\n"
	}
	s += "\n" + helpStyle.Render("  type to search  ↑/↓: navigate  enter: select  esc: cancel")
	return s
}

func (c *composer) viewLines() string {
	clientName := ""
	if c.client != nil {
		clientName = c.client.Name
	}
	s := subtitleStyle.Render("  Client: "+clientName) + "\n\n"

	var catalog string
	for i, p := range c.products {
		line := fmt.Sprintf("%s%-26s %14s", cursorPrefix(i == c.productCursor), truncateStr(p.Name, 26), format.Currency(p.UnitPrice))
		if i == c.productCursor {
			line = selectedStyle.Render(line)
		}
		catalog += line + "\n"
	}
	if catalog == "" {
		catalog = subtitleStyle.Render("  No active products") + "\n"
	}

	var lines string
	for _, item := range c.draft.Items {
		lines += fmt.Sprintf("%3d x %-22s %14s\n", item.Quantity, truncateStr(item.ProductName, 22), format.Currency(item.Total))
	}
	if lines == "" {
		lines = subtitleStyle.Render("No lines yet") + "\n"
	}
	lines += "\n" + amountStyle.Render("Subtotal: "+format.Currency(c.draft.Items.Subtotal()))

	s += lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(titleStyle.Render("Catalog")+"\n"+catalog),
		boxStyle.Render(titleStyle.Render("Lines")+"\n"+lines),
	) + "\n"

	s += "\n" + helpStyle.Render("  j/k: navigate  enter/+: add  -: remove one  tab: details  shift+tab: client  esc: back")
	return s
}

func (c *composer) viewDetails() string {
	subtotal := c.draft.Items.Subtotal()
	s := subtitleStyle.Render(fmt.Sprintf("  %d lines  |  Subtotal %s", len(c.draft.Items), format.Currency(subtotal))) + "\n\n"

	labels := []string{"Discount (Frcs CFA):", "Date:", "Invoice number:"}
	for i := range c.fields {
		labelStyle := subtitleStyle
		if i == c.fieldFocus {
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", cursorPrefix(i == c.fieldFocus), labelStyle.Render(labels[i]), c.fields[i].View())
	}

	if d, err := c.discount(); err == nil && d <= subtotal {
		s += amountStyle.Render("  Total: "+format.Currency(subtotal-d)) + "\n\n"
	}

	s += helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: back")
	return s
}
