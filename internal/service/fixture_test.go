package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/repository"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// fixture wires the services over an in-memory store seeded with the
// factory catalog (products "1" at 1500 and "2" at 3500) and one client
type fixture struct {
	kv        *repository.MemoryKV
	store     *repository.Store
	products  *repository.Collection[domain.Product]
	clients   *repository.Collection[domain.Client]
	proformas *repository.Collection[domain.Proforma]
	invoices  *repository.Collection[domain.Invoice]
	settings  *repository.Object[domain.Settings]
	company   *repository.Object[domain.CompanyInfo]

	docs     *documentService
	payments *paymentService
	catalog  *catalogService
	reports  *reportService
	prefs    *settingsService

	client *domain.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	kv := repository.NewMemoryKV()
	store := repository.NewStore(kv)
	if _, err := store.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	f := &fixture{
		kv:        kv,
		store:     store,
		products:  repository.NewProductRepo(store),
		clients:   repository.NewClientRepo(store),
		proformas: repository.NewProformaRepo(store),
		invoices:  repository.NewInvoiceRepo(store),
		settings:  repository.NewSettingsRepo(store),
		company:   repository.NewCompanyRepo(store),
		client:    &domain.Client{ID: "c1", Name: "Clinique du Plateau", Phone: "+225 07 00 00 00"},
	}
	if err := f.clients.Replace(ctx, []*domain.Client{f.client}); err != nil {
		t.Fatalf("seed client: %v", err)
	}

	f.docs = &documentService{
		store:     store,
		products:  f.products,
		clients:   f.clients,
		proformas: f.proformas,
		invoices:  f.invoices,
		settings:  f.settings,
		now:       clock,
		log:       zerolog.Nop(),
	}
	f.payments = &paymentService{invoices: f.invoices, now: clock, log: zerolog.Nop()}
	f.catalog = &catalogService{products: f.products, clients: f.clients, log: zerolog.Nop()}
	f.reports = &reportService{invoices: f.invoices, proformas: f.proformas}
	f.prefs = &settingsService{store: store, settings: f.settings, company: f.company, now: clock, log: zerolog.Nop()}
	return f
}

// draft builds a draft for the fixture client with one unit per product id
func (f *fixture) draft(t *testing.T, productIDs ...string) Draft {
	t.Helper()
	d := Draft{ClientID: f.client.ID}
	for _, id := range productIDs {
		if _, err := f.docs.AddToDraft(context.Background(), &d, id); err != nil {
			t.Fatalf("add %s to draft: %v", id, err)
		}
	}
	return d
}

// proforma10k creates a pending proforma totalling 10000
func (f *fixture) proforma10k(t *testing.T) *domain.Proforma {
	t.Helper()
	rec, err := f.docs.Create(context.Background(), domain.KindProforma, f.draft(t, "1", "1", "2", "2"))
	if err != nil {
		t.Fatalf("create proforma: %v", err)
	}
	p := rec.(*domain.Proforma)
	if p.Total != 10000 {
		t.Fatalf("expected total 10000, got %d", p.Total)
	}
	return p
}

// invoice10k creates an invoice totalling 10000
func (f *fixture) invoice10k(t *testing.T) *domain.Invoice {
	t.Helper()
	rec, err := f.docs.Create(context.Background(), domain.KindInvoice, f.draft(t, "1", "1", "2", "2"))
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	return rec.(*domain.Invoice)
}

func (f *fixture) storedInvoice(t *testing.T, id string) *domain.Invoice {
	t.Helper()
	all, err := f.invoices.List(context.Background())
	if err != nil {
		t.Fatalf("list invoices: %v", err)
	}
	for _, inv := range all {
		if inv.ID == id {
			return inv
		}
	}
	t.Fatalf("invoice %s not stored", id)
	return nil
}

func (f *fixture) storedProforma(t *testing.T, id string) *domain.Proforma {
	t.Helper()
	all, err := f.proformas.List(context.Background())
	if err != nil {
		t.Fatalf("list proformas: %v", err)
	}
	for _, p := range all {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("proforma %s not stored", id)
	return nil
}

func assertTotals(t *testing.T, d *domain.Document) {
	t.Helper()
	var sum int64
	for _, item := range d.Items {
		if item.Total != item.Quantity*item.UnitPrice {
			t.Fatalf("line total %d != %d x %d", item.Total, item.Quantity, item.UnitPrice)
		}
		sum += item.Total
	}
	if d.Subtotal != sum || d.Total != d.Subtotal-d.Discount {
		t.Fatalf("inconsistent totals: subtotal %d (lines %d) discount %d total %d", d.Subtotal, sum, d.Discount, d.Total)
	}
}

func assertLedger(t *testing.T, inv *domain.Invoice) {
	t.Helper()
	assertTotals(t, &inv.Document)
	var paid int64
	for _, p := range inv.Payments {
		paid += p.Amount
	}
	balance := max(inv.Total-paid, 0)
	if inv.PaidAmount != paid || inv.Balance != balance {
		t.Fatalf("inconsistent ledger: paid %d (payments %d) balance %d (want %d)", inv.PaidAmount, paid, inv.Balance, balance)
	}
	if inv.Status != domain.StatusCancelled && len(inv.Payments) > 0 {
		if (inv.Status == domain.StatusPaid) != (balance == 0) {
			t.Fatalf("status %q inconsistent with balance %d", inv.Status, balance)
		}
	}
}
