package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/pharmabill/internal/app"
	"github.com/andy/pharmabill/internal/config"
	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/repository"
	"github.com/andy/pharmabill/internal/service"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Documents.ExportDir = t.TempDir()
	a, err := app.NewWithKV(context.Background(), cfg, repository.NewMemoryKV())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

func seedClient(t *testing.T, a *app.App) *domain.Client {
	t.Helper()
	c, err := a.CatalogService.CreateClient(context.Background(), domain.NewClient("Clinique du Plateau", "+225 07 00 00 00"))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return c
}

func seedDocument(t *testing.T, a *app.App, kind domain.Kind, clientID string) domain.Record {
	t.Helper()
	ctx := context.Background()
	draft := service.Draft{ClientID: clientID}
	if _, err := a.DocumentService.AddToDraft(ctx, &draft, "1"); err != nil {
		t.Fatalf("add to draft: %v", err)
	}
	rec, err := a.DocumentService.Create(ctx, kind, draft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return rec
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_FirstRunOpensClientForm(t *testing.T) {
	a := newTestApp(t)
	m := New(a)

	updated, cmd := m.Update(firstRunCheckMsg{hasClients: false})
	root := updated.(Model)
	if root.currentScreen != ScreenClients {
		t.Fatalf("expected clients screen, got %s", root.currentScreen)
	}
	if cmd == nil {
		t.Fatal("expected init and form commands")
	}

	clients := root.screens[ScreenClients].(*ClientsModel)
	clients.Update(OpenNewClientFormMsg{})
	if !clients.autoNewClient {
		t.Fatal("expected form to open once clients load")
	}
	clients.Update(clients.loadClients()())
	if clients.mode != clientModeNew || !clients.IsCapturingInput() {
		t.Fatalf("expected new client form, got mode %d", clients.mode)
	}
}

func TestModel_NumberKeysSwitchScreens(t *testing.T) {
	a := newTestApp(t)
	var m tea.Model = New(a)

	m, _ = m.Update(runes("5"))
	if got := m.(Model).currentScreen; got != ScreenProducts {
		t.Fatalf("expected products screen, got %s", got)
	}
	if m.(Model).screens[ScreenProducts] == nil {
		t.Fatal("expected products screen initialized")
	}
}

func TestComposer_CreatesInvoice(t *testing.T) {
	a := newTestApp(t)
	client := seedClient(t, a)

	c := newComposer(a, domain.KindInvoice, nil)
	c.update(c.init()())
	if c.loading || len(c.products) == 0 {
		t.Fatalf("expected catalog loaded, err=%v", c.err)
	}

	c.update(tea.KeyMsg{Type: tea.KeyEnter})
	if c.stage != stageLines || c.draft.ClientID != client.ID {
		t.Fatalf("expected client picked, stage %d", c.stage)
	}

	c.update(tea.KeyMsg{Type: tea.KeyTab})
	if c.stage != stageLines || c.err == nil {
		t.Fatal("expected details blocked without lines")
	}

	c.update(tea.KeyMsg{Type: tea.KeyEnter})
	c.update(runes("+"))
	c.update(runes("+"))
	c.update(runes("-"))
	if len(c.draft.Items) != 1 || c.draft.Items[0].Quantity != 2 {
		t.Fatalf("expected one line of quantity 2, got %+v", c.draft.Items)
	}

	c.update(tea.KeyMsg{Type: tea.KeyTab})
	if c.stage != stageDetails {
		t.Fatalf("expected details stage, got %d", c.stage)
	}

	cmd := c.update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatalf("expected save command, err=%v", c.err)
	}
	c.update(cmd())
	if !c.done || c.saved == nil {
		t.Fatalf("expected saved invoice, err=%v", c.err)
	}

	want := c.products[0].UnitPrice * 2
	if got := c.saved.Base().Total; got != want {
		t.Fatalf("expected total %d, got %d", want, got)
	}
	if !strings.HasPrefix(c.saved.Base().Number, "INV-") {
		t.Fatalf("unexpected number %s", c.saved.Base().Number)
	}
}

func TestComposer_RejectsDiscountAboveSubtotal(t *testing.T) {
	a := newTestApp(t)
	client := seedClient(t, a)

	c := newComposer(a, domain.KindProforma, nil)
	c.update(c.init()())
	c.draft.ClientID = client.ID
	c.stage = stageLines
	c.update(tea.KeyMsg{Type: tea.KeyEnter})
	c.update(tea.KeyMsg{Type: tea.KeyTab})

	c.fields[detailDiscount].SetValue("999999")
	cmd := c.update(tea.KeyMsg{Type: tea.KeyCtrlS})
	c.update(cmd())
	if c.done {
		t.Fatal("expected composer to stay open")
	}
	if c.err == nil {
		t.Fatal("expected validation error")
	}
}

func TestParseDateInput(t *testing.T) {
	tests := map[string]string{
		"15/03/2024": "2024-03-15",
		"2024-03-15": "2024-03-15",
	}
	for in, want := range tests {
		got, err := parseDateInput(in)
		if err != nil || got != want {
			t.Errorf("parseDateInput(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := parseDateInput("March 15"); err == nil {
		t.Error("expected error for free-form date")
	}
}

func TestInvoicesModel_RecordsPayment(t *testing.T) {
	a := newTestApp(t)
	client := seedClient(t, a)
	rec := seedDocument(t, a, domain.KindInvoice, client.ID)

	m := NewInvoicesModel(a).(*InvoicesModel)
	m.Update(m.loadInvoices()())
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != invoiceModeDetail {
		t.Fatalf("expected detail mode, got %d", m.mode)
	}

	m.Update(runes("p"))
	if m.mode != invoiceModePayment || m.amount.Value() != "1500" {
		t.Fatalf("expected payment form with balance, got mode %d amount %q", m.mode, m.amount.Value())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := cmd()
	if done, ok := msg.(actionDoneMsg); !ok || done.err != nil {
		t.Fatalf("expected payment recorded, got %+v", msg)
	}
	m.Update(msg)
	if m.mode != invoiceModeDetail {
		t.Fatalf("expected back on detail, got %d", m.mode)
	}

	inv, err := a.DocumentService.GetInvoice(context.Background(), rec.Base().ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !inv.IsPaid() || inv.Payments[0].Mode != domain.PaymentBankTransfer {
		t.Fatalf("expected paid by transfer, got %s %+v", inv.Status, inv.Payments)
	}
}

func TestInvoicesModel_OverpaymentShowsError(t *testing.T) {
	a := newTestApp(t)
	client := seedClient(t, a)
	seedDocument(t, a, domain.KindInvoice, client.ID)

	m := NewInvoicesModel(a).(*InvoicesModel)
	m.Update(m.loadInvoices()())
	m.Update(runes("p"))
	m.amount.SetValue("2000")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(cmd())
	m.Update(m.loadInvoices()())
	if m.err == nil || m.mode != invoiceModePayment {
		t.Fatalf("expected error kept on payment form, mode %d err %v", m.mode, m.err)
	}
}

func TestProformasModel_Convert(t *testing.T) {
	a := newTestApp(t)
	client := seedClient(t, a)
	seedDocument(t, a, domain.KindProforma, client.ID)

	m := NewProformasModel(a).(*ProformasModel)
	m.Update(m.loadProformas()())
	if len(m.proformas) != 1 {
		t.Fatalf("expected one pending proforma, got %d", len(m.proformas))
	}

	_, cmd := m.Update(runes("v"))
	msg := cmd()
	done, ok := msg.(actionDoneMsg)
	if !ok || done.err != nil || !strings.Contains(done.status, "INV-") {
		t.Fatalf("unexpected conversion result %+v", msg)
	}

	m.Update(msg)
	m.Update(m.loadProformas()())
	if len(m.proformas) != 0 {
		t.Fatalf("expected proforma archived, %d still pending", len(m.proformas))
	}

	invoices, _ := a.DocumentService.ListInvoices(context.Background(), "")
	if len(invoices) != 1 || invoices[0].Status != domain.StatusPartial || invoices[0].ProformaID == "" {
		t.Fatalf("expected one open invoice linked to the proforma")
	}
}

func TestRenderDocument(t *testing.T) {
	a := newTestApp(t)
	client := seedClient(t, a)
	rec := seedDocument(t, a, domain.KindInvoice, client.ID)

	out := renderDocument(rec, true)
	for _, want := range []string{rec.Base().Number, "Clinique du Plateau", "Boîte", "Mille cinq cents Francs CFA", "Balance:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in rendered document:\n%s", want, out)
		}
	}
	if strings.Contains(renderDocument(rec, false), "Boîte") {
		t.Error("expected unit column hidden")
	}
}

func TestSettingsModel_ToggleAndExport(t *testing.T) {
	a := newTestApp(t)
	m := NewSettingsModel(a).(*SettingsModel)
	m.Update(m.loadSettings()())

	_, cmd := m.Update(runes("m"))
	m.Update(cmd())
	m.Update(m.loadSettings()())
	if !m.settings.ManualInvoiceNumbering {
		t.Fatal("expected manual numbering enabled")
	}

	_, cmd = m.Update(runes("x"))
	msg := cmd().(settingsSavedMsg)
	if msg.err != nil || !strings.Contains(msg.status, "SAUVEGARDE_PHARMACIE_") {
		t.Fatalf("unexpected export result %+v", msg)
	}
}
