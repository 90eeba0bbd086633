package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/andy/pharmabill/internal/domain"
)

func TestInitialize_SeedsOnce(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewStore(kv)

	seeded, err := store.Initialize(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !seeded {
		t.Fatalf("expected first Initialize to seed")
	}

	products, err := NewProductRepo(store).List(ctx)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 2 || products[0].Name != "Paracétamol 500mg" {
		t.Fatalf("expected the two default products, got %d", len(products))
	}

	company, err := NewCompanyRepo(store).Get(ctx)
	if err != nil {
		t.Fatalf("get company: %v", err)
	}
	if company.Name != "Pharmacie Nouvelle" {
		t.Fatalf("expected default company name, got %q", company.Name)
	}

	// the version is stored bare, not as a JSON string
	version, ok, err := kv.Get(ctx, KeyVersion)
	if err != nil || !ok {
		t.Fatalf("version not written: ok=%v err=%v", ok, err)
	}
	if version != DBVersion {
		t.Fatalf("expected stored version %q, got %q", DBVersion, version)
	}

	// user deletes the catalog; a restart must not bring it back
	if err := NewProductRepo(store).Replace(ctx, nil); err != nil {
		t.Fatalf("replace: %v", err)
	}
	seeded, err = store.Initialize(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seeded {
		t.Fatalf("expected second Initialize to be a no-op")
	}
	products, _ = NewProductRepo(store).List(ctx)
	if len(products) != 0 {
		t.Fatalf("expected empty catalog to survive restart, got %d products", len(products))
	}
}

func TestCommit_MarksUserData(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryKV())

	has, _ := store.HasUserData(ctx)
	if has {
		t.Fatalf("expected empty store to report no user data")
	}

	if err := NewClientRepo(store).Replace(ctx, []*domain.Client{domain.NewClient("Awa", "0700000000")}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	has, _ = store.HasUserData(ctx)
	if !has {
		t.Fatalf("expected user data after a save")
	}
}

func TestCommit_StorageError(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewStore(kv)
	kv.FailWrites = true

	err := NewClientRepo(store).Replace(ctx, []*domain.Client{domain.NewClient("Awa", "0700000000")})
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("expected underlying cause to be kept, got %v", err)
	}

	kv.FailWrites = false
	clients, _ := NewClientRepo(store).List(ctx)
	if len(clients) != 0 {
		t.Fatalf("expected nothing written, got %d clients", len(clients))
	}
}

func TestCommit_MultipleCollectionsAtomic(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewStore(kv)

	proformas := NewProformaRepo(store)
	invoices := NewInvoiceRepo(store)

	p := domain.NewProforma("2024-01-01")
	inv := domain.NewInvoice("2024-01-01")

	if err := store.Commit(ctx, proformas.Change([]*domain.Proforma{p}), invoices.Change([]*domain.Invoice{inv})); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if kv.Writes != 1 {
		t.Fatalf("expected a single KV write, got %d", kv.Writes)
	}

	gotP, _ := proformas.List(ctx)
	gotI, _ := invoices.List(ctx)
	if len(gotP) != 1 || len(gotI) != 1 {
		t.Fatalf("expected both collections written, got %d/%d", len(gotP), len(gotI))
	}
}

func TestList_NeverWritten(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryKV())

	invoices, err := NewInvoiceRepo(store).List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if invoices == nil || len(invoices) != 0 {
		t.Fatalf("expected empty non-nil collection")
	}
}

func TestList_CorruptValue(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	kv.data[KeyClients] = "{not json"
	store := NewStore(kv)

	if _, err := NewClientRepo(store).List(ctx); err == nil {
		t.Fatalf("expected decode error for corrupt collection")
	}
}

func TestObject_DefaultsOverlay(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewStore(kv)
	settings := NewSettingsRepo(store)

	got, err := settings.Get(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.ShowUnitColumn || got.ManualInvoiceNumbering {
		t.Fatalf("expected default settings, got %+v", got)
	}

	// older releases stored only the unit column flag
	kv.data[KeySettings] = `{"showUnitColumn":false}`
	got, err = settings.Get(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ShowUnitColumn || got.ManualInvoiceNumbering {
		t.Fatalf("expected stored flag with default numbering, got %+v", got)
	}
}
