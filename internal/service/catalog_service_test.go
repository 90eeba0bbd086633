package service

import (
	"context"
	"errors"
	"testing"

	"github.com/andy/pharmabill/internal/domain"
)

func TestCatalog_Products(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.catalog.CreateProduct(ctx, &domain.Product{Name: "  Ibuprofène 400mg ", UnitPrice: 1200, IsActive: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" || p.Name != "Ibuprofène 400mg" || p.Category != domain.DefaultCategory {
		t.Fatalf("unexpected product: %+v", p)
	}

	if _, err := f.catalog.CreateProduct(ctx, &domain.Product{Name: "", UnitPrice: 10}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty name, got %v", err)
	}
	if _, err := f.catalog.CreateProduct(ctx, &domain.Product{Name: "X", UnitPrice: -1}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for negative price, got %v", err)
	}

	if _, err := f.catalog.SetProductActive(ctx, p.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	active, _ := f.catalog.ListProducts(ctx, false, "")
	all, _ := f.catalog.ListProducts(ctx, true, "")
	if len(active) != 2 || len(all) != 3 {
		t.Fatalf("expected 2 active of 3 products, got %d/%d", len(active), len(all))
	}

	found, _ := f.catalog.ListProducts(ctx, true, "antibio")
	if len(found) != 1 || found[0].ID != "2" {
		t.Fatalf("expected category search to find product 2")
	}

	if err := f.catalog.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.catalog.GetProduct(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := f.catalog.UpdateProduct(ctx, p); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating deleted product, got %v", err)
	}
}

func TestCatalog_Clients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.catalog.CreateClient(ctx, &domain.Client{Name: "Pharmacie du Port", Phone: "0102030405"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.catalog.CreateClient(ctx, &domain.Client{Name: "Sans téléphone"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing phone, got %v", err)
	}

	found, _ := f.catalog.ListClients(ctx, "port")
	if len(found) != 1 || found[0].ID != c.ID {
		t.Fatalf("expected search to find the new client")
	}
	found, _ = f.catalog.ListClients(ctx, "0102")
	if len(found) != 1 {
		t.Fatalf("expected phone search to find the new client")
	}

	if err := f.catalog.DeleteClient(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all, _ := f.catalog.ListClients(ctx, "")
	if len(all) != 1 {
		t.Fatalf("expected only the fixture client left, got %d", len(all))
	}
}
