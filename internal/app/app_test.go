package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/andy/pharmabill/internal/config"
	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/repository"
	"github.com/andy/pharmabill/internal/service"
)

func TestNewWithKV_SeedsAndWires(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.Documents.InvoicePrefix = "FAC"

	kv := repository.NewMemoryKV()
	a, err := NewWithKV(ctx, cfg, kv)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	products, err := a.CatalogService.ListProducts(ctx, false, "")
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected factory catalog, got %d products", len(products))
	}

	client, err := a.CatalogService.CreateClient(ctx, domain.NewClient("Clinique Sainte Anne", "0700000000"))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	draft := service.Draft{ClientID: client.ID}
	if _, err := a.DocumentService.AddToDraft(ctx, &draft, "1"); err != nil {
		t.Fatalf("add to draft: %v", err)
	}
	rec, err := a.DocumentService.Create(ctx, domain.KindInvoice, draft)
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if got := rec.Base().Number[:4]; got != "FAC-" {
		t.Fatalf("expected configured prefix, got %s", rec.Base().Number)
	}

	inv, _, err := a.PaymentService.Apply(ctx, rec.Base().ID, 1500, domain.PaymentCash)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !inv.IsPaid() {
		t.Fatalf("expected paid invoice, got %q", inv.Status)
	}

	// a second start on the same store must not reseed
	again, err := NewWithKV(ctx, cfg, kv)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	clients, _ := again.CatalogService.ListClients(ctx, "")
	if len(clients) != 1 {
		t.Fatalf("expected saved client kept across restart, got %d", len(clients))
	}
}

func TestNewWithKV_StorageFailure(t *testing.T) {
	kv := repository.NewMemoryKV()
	kv.FailWrites = true

	_, err := NewWithKV(context.Background(), config.DefaultConfig(), kv)
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestWriteBackup(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.Documents.ExportDir = filepath.Join(t.TempDir(), "backups")

	a, err := NewWithKV(ctx, cfg, repository.NewMemoryKV())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	path, err := a.WriteBackup(ctx, "")
	if err != nil {
		t.Fatalf("write backup: %v", err)
	}
	if filepath.Dir(path) != cfg.Documents.ExportDir {
		t.Fatalf("expected backup in export dir, got %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}

	other, err := NewWithKV(ctx, cfg, repository.NewMemoryKV())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := other.SettingsService.Import(ctx, data); err != nil {
		t.Fatalf("import written backup: %v", err)
	}

	explicit := filepath.Join(t.TempDir(), "copy.json")
	if got, err := a.WriteBackup(ctx, explicit); err != nil || got != explicit {
		t.Fatalf("expected %s, got %s (%v)", explicit, got, err)
	}
}
