package repository

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/andy/pharmabill/internal/domain"
)

func seededStore(t *testing.T) (*Store, *MemoryKV) {
	t.Helper()
	kv := NewMemoryKV()
	store := NewStore(kv)
	if _, err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return store, kv
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, kv := seededStore(t)

	inv := domain.NewInvoice("2024-05-02")
	inv.Number = "INV-2024-00001"
	inv.ClientID = "c1"
	inv.ClientName = "Awa"
	inv.Items.Add(domain.DefaultProducts()[0])
	inv.CalculateTotals()
	if _, err := inv.ApplyPayment(500, domain.PaymentCash, time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)); err != nil {
		t.Fatalf("payment: %v", err)
	}
	if err := NewInvoiceRepo(store).Replace(ctx, []*domain.Invoice{inv}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	before, _ := kv.All(ctx)
	beforeInvoices, _ := NewInvoiceRepo(store).List(ctx)

	payload, err := store.Export(ctx, time.Date(2024, 5, 3, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var backup Backup
	if err := json.Unmarshal(payload, &backup); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if backup.AppName != AppName || backup.DBVersion != DBVersion || backup.Timestamp != "2024-05-03T08:00:00.000Z" {
		t.Fatalf("unexpected header: %+v", backup)
	}
	if len(backup.Data) != len(StorageKeys) {
		t.Fatalf("expected %d keys, got %d", len(StorageKeys), len(backup.Data))
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := store.Import(ctx, payload); err != nil {
		t.Fatalf("import: %v", err)
	}

	after, _ := kv.All(ctx)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("store differs after round trip:\nbefore %v\nafter  %v", before, after)
	}
	afterInvoices, _ := NewInvoiceRepo(store).List(ctx)
	if !reflect.DeepEqual(beforeInvoices, afterInvoices) {
		t.Fatalf("invoices differ after round trip")
	}
}

func TestImport_LegacyBareForm(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryKV())

	payload := `{
		"pn_products_v2": "[{\"id\":\"9\",\"name\":\"Ibuprofène\",\"category\":\"Antalgiques\",\"unitPrice\":900,\"isActive\":true}]",
		"pn_clients_v2": null
	}`
	if err := store.Import(ctx, []byte(payload)); err != nil {
		t.Fatalf("import: %v", err)
	}

	products, _ := NewProductRepo(store).List(ctx)
	if len(products) != 1 || products[0].Name != "Ibuprofène" || products[0].UnitPrice != 900 {
		t.Fatalf("unexpected products after import: %+v", products)
	}
	has, _ := store.HasUserData(ctx)
	if !has {
		t.Fatalf("expected import to mark user data")
	}
}

func TestImport_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{"data": `},
		{"array", `[1,2,3]`},
		{"data not object", `{"data": "oops"}`},
		{"value not string", `{"data": {"pn_products_v2": [1]}}`},
		{"wrong shape", `{"data": {"pn_products_v2": "{\"id\":1}"}}`},
		{"nothing recognized", `{"appName": "x", "data": {"other": "1"}}`},
		{"empty", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store, kv := seededStore(t)
			before, _ := kv.All(ctx)
			writes := kv.Writes

			err := store.Import(ctx, []byte(tt.payload))
			if !errors.Is(err, domain.ErrImportFormat) {
				t.Fatalf("expected ErrImportFormat, got %v", err)
			}
			after, _ := kv.All(ctx)
			if kv.Writes != writes || !reflect.DeepEqual(before, after) {
				t.Fatalf("store changed after rejected import")
			}
		})
	}
}

func TestImport_StorageFailure(t *testing.T) {
	ctx := context.Background()
	store, kv := seededStore(t)
	payload, err := store.Export(ctx, time.Now())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	kv.FailWrites = true
	if err := store.Import(ctx, payload); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestReset_ReseedsOnNextInitialize(t *testing.T) {
	ctx := context.Background()
	store, kv := seededStore(t)

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	all, _ := kv.All(ctx)
	if len(all) != 0 {
		t.Fatalf("expected empty store after reset, got %d keys", len(all))
	}

	seeded, err := store.Initialize(ctx)
	if err != nil || !seeded {
		t.Fatalf("expected defaults to be seeded again, got %v %v", seeded, err)
	}
}

func TestBackupFileName(t *testing.T) {
	got := BackupFileName(time.Date(2024, 2, 9, 15, 0, 0, 0, time.UTC))
	if got != "SAUVEGARDE_PHARMACIE_2024_02_09.json" {
		t.Fatalf("unexpected file name %q", got)
	}
}
