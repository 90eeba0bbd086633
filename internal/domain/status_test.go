package domain

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		kind Kind
		from Status
		to   Status
		want bool
	}{
		{KindProforma, StatusDraft, StatusPending, true},
		{KindProforma, StatusPending, StatusPaid, true},
		{KindProforma, StatusPending, StatusCancelled, true},
		{KindProforma, StatusPaid, StatusPending, false},
		{KindProforma, StatusCancelled, StatusPending, false},
		{KindProforma, StatusPending, StatusPartial, false},
		{KindInvoice, StatusPartial, StatusPaid, true},
		{KindInvoice, StatusPartial, StatusPartial, true},
		{KindInvoice, StatusPartial, StatusCancelled, true},
		{KindInvoice, StatusPaid, StatusPartial, false},
		{KindInvoice, StatusCancelled, StatusPartial, false},
		{KindInvoice, StatusPending, StatusPaid, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.kind, tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %q, %q) = %v, want %v", tt.kind, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestProformaArchivalPaths(t *testing.T) {
	converted := NewProforma("2024-01-05")
	if err := converted.MarkConverted("inv-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if converted.Status != StatusPaid || converted.ConvertedToInvoiceID != "inv-1" {
		t.Fatalf("expected converted proforma to be Paid and linked, got %q/%q", converted.Status, converted.ConvertedToInvoiceID)
	}
	if !converted.IsArchived() {
		t.Fatalf("expected converted proforma to be archived")
	}

	direct := NewProforma("2024-01-05")
	if err := direct.MarkPaid(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if direct.Status != StatusPaid || direct.IsConverted() {
		t.Fatalf("expected directly paid proforma without invoice link")
	}

	// neither path can be reverted or repeated
	if err := direct.MarkConverted("inv-2"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := converted.Cancel(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCompanyInfoValidate(t *testing.T) {
	tests := []struct {
		phone string
		ok    bool
	}{
		{"+225 21 00 00 00", true},
		{"07-08-09-10", true},
		{"1234567", false},
		{"+225 21 00 00 00 00 00 00", false},
		{"abc12345678", false},
		{"", false},
	}
	for _, tt := range tests {
		c := DefaultCompanyInfo()
		c.Phone = tt.phone
		err := c.Validate()
		if (err == nil) != tt.ok {
			t.Errorf("phone %q: got err %v, want ok=%v", tt.phone, err, tt.ok)
		}
	}

	c := DefaultCompanyInfo()
	c.Name = "  "
	if err := c.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty name, got %v", err)
	}
}
