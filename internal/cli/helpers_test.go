package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/andy/pharmabill/internal/domain"
)

func TestParseItemSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    itemSpec
		wantErr bool
	}{
		{"1", itemSpec{"1", 1}, false},
		{"2:3", itemSpec{"2", 3}, false},
		{" abc : 12 ", itemSpec{"abc", 12}, false},
		{"", itemSpec{}, true},
		{":4", itemSpec{}, true},
		{"1:0", itemSpec{}, true},
		{"1:-2", itemSpec{}, true},
		{"1:x", itemSpec{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseItemSpec(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseItemSpec(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("parseItemSpec(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"today", "2024-03-01", false},
		{"yesterday", "2024-02-29", false},
		{"2024-01-31", "2024-01-31", false},
		{"31/01/2024", "2024-01-31", false},
		{"2024/01/31", "", true},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.in, now)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseDate(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestPrintDocument_Invoice(t *testing.T) {
	inv := domain.NewInvoice("2024-03-15")
	inv.Number = "INV-2024-00001"
	inv.ClientName = "Clinique du Plateau"
	inv.ClientID = "c1"
	inv.Items.Add(&domain.Product{ID: "1", Name: "Paracétamol 500mg", Unit: "Boîte", UnitPrice: 1500})
	inv.CalculateTotals()
	if _, err := inv.ApplyPayment(500, domain.PaymentCash, time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("apply: %v", err)
	}

	var buf bytes.Buffer
	printDocument(&buf, inv, true)
	out := buf.String()

	for _, want := range []string{"INVOICE INV-2024-00001", "15/03/2024", "Boîte", "Mille cinq cents Francs CFA", "Payments:", "Espèces"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}
