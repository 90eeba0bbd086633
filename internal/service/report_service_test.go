package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/andy/pharmabill/internal/domain"
)

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	today := f.invoice10k(t)
	if _, _, err := f.payments.Apply(ctx, today.ID, 4000, domain.PaymentCash); err != nil {
		t.Fatalf("apply: %v", err)
	}

	earlier := f.draft(t, "2")
	earlier.Date = "2024-03-02"
	if _, err := f.docs.Create(ctx, domain.KindInvoice, earlier); err != nil {
		t.Fatalf("create: %v", err)
	}

	lastYear := f.draft(t, "1")
	lastYear.Date = "2023-03-15"
	if _, err := f.docs.Create(ctx, domain.KindInvoice, lastYear); err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled := f.invoice10k(t)
	if _, err := f.docs.CancelInvoice(ctx, cancelled.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	f.proforma10k(t)

	stats, err := f.reports.Stats(ctx, fixedNow)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.DailyTurnover != 10000 {
		t.Errorf("expected daily turnover 10000, got %d", stats.DailyTurnover)
	}
	if stats.MonthlyTurnover != 13500 {
		t.Errorf("expected monthly turnover 13500, got %d", stats.MonthlyTurnover)
	}
	if stats.TotalCollected != 4000 {
		t.Errorf("expected collected 4000, got %d", stats.TotalCollected)
	}
	if stats.TotalRemaining != 6000+3500+1500 {
		t.Errorf("expected remaining 11000, got %d", stats.TotalRemaining)
	}
	if stats.InvoiceCount != 4 || stats.PendingProformas != 1 {
		t.Errorf("expected 4 invoices and 1 pending proforma, got %d/%d", stats.InvoiceCount, stats.PendingProformas)
	}
}

func TestRecentInvoices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		f.invoice10k(t)
	}

	recent, err := f.reports.RecentInvoices(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 || recent[0].Number != "INV-2024-00004" || recent[2].Number != "INV-2024-00002" {
		t.Fatalf("unexpected recent invoices")
	}
}

func TestSettingsService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	company, err := f.prefs.GetCompany(ctx)
	if err != nil {
		t.Fatalf("get company: %v", err)
	}
	company.Phone = "123"
	if err := f.prefs.SaveCompany(ctx, company); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for short phone, got %v", err)
	}

	company.Phone = "+225 27 20 00 00"
	company.RCCM = "CI-ABJ-2024-B-1234"
	if err := f.prefs.SaveCompany(ctx, company); err != nil {
		t.Fatalf("save company: %v", err)
	}

	data, name, err := f.prefs.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if name != "SAUVEGARDE_PHARMACIE_2024_03_15.json" {
		t.Fatalf("unexpected backup name %q", name)
	}
	if !strings.Contains(string(data), "CI-ABJ-2024-B-1234") {
		t.Fatalf("expected company identity in backup")
	}

	if err := f.prefs.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if has, _ := f.prefs.HasUserData(ctx); has {
		t.Fatalf("expected no user data after reset")
	}
	if err := f.prefs.Import(ctx, data); err != nil {
		t.Fatalf("import: %v", err)
	}
	restored, _ := f.prefs.GetCompany(ctx)
	if restored.RCCM != "CI-ABJ-2024-B-1234" {
		t.Fatalf("expected company restored, got %+v", restored)
	}
}
