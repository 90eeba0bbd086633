package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/format"
)

// itemSpec is one "productID[:quantity]" argument
type itemSpec struct {
	ProductID string
	Quantity  int64
}

// parseItemSpec parses "productID" or "productID:quantity"
func parseItemSpec(s string) (itemSpec, error) {
	id, qty, hasQty := strings.Cut(strings.TrimSpace(s), ":")
	id = strings.TrimSpace(id)
	if id == "" {
		return itemSpec{}, fmt.Errorf("invalid item %q: missing product id", s)
	}
	spec := itemSpec{ProductID: id, Quantity: 1}
	if hasQty {
		n, err := strconv.ParseInt(strings.TrimSpace(qty), 10, 64)
		if err != nil || n < 1 {
			return itemSpec{}, fmt.Errorf("invalid item %q: quantity must be a positive integer", s)
		}
		spec.Quantity = n
	}
	return spec, nil
}

// parseDate accepts YYYY-MM-DD, DD/MM/YYYY, "today" and "yesterday".
// Empty input yields an empty string.
func parseDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "today":
		return domain.Today(now), nil
	case "yesterday":
		return domain.Today(now.AddDate(0, 0, -1)), nil
	}
	for _, layout := range []string{domain.DateLayout, "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(domain.DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q (use YYYY-MM-DD or DD/MM/YYYY)", s)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// printDocument writes the detail view shared by proformas and invoices
func printDocument(w io.Writer, rec domain.Record, showUnit bool) {
	doc := rec.Base()
	fmt.Fprintf(w, "%s %s\n", strings.ToUpper(string(rec.Kind())), doc.Number)
	fmt.Fprintf(w, "  Client: %s\n", doc.ClientName)
	fmt.Fprintf(w, "  Date:   %s\n", format.Date(doc.Date))
	fmt.Fprintf(w, "  Status: %s\n", doc.Status)
	fmt.Fprintln(w)

	if showUnit {
		fmt.Fprintf(w, "  %-10s %-30s %-8s %6s %16s %18s\n", "Line", "Product", "Unit", "Qty", "Unit price", "Total")
	} else {
		fmt.Fprintf(w, "  %-10s %-30s %6s %16s %18s\n", "Line", "Product", "Qty", "Unit price", "Total")
	}
	for _, item := range doc.Items {
		if showUnit {
			fmt.Fprintf(w, "  %-10s %-30s %-8s %6d %16s %18s\n",
				truncate(item.ID, 10), truncate(item.ProductName, 30), truncate(item.ProductUnit, 8),
				item.Quantity, format.Currency(item.UnitPrice), format.Currency(item.Total))
		} else {
			fmt.Fprintf(w, "  %-10s %-30s %6d %16s %18s\n",
				truncate(item.ID, 10), truncate(item.ProductName, 30),
				item.Quantity, format.Currency(item.UnitPrice), format.Currency(item.Total))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Subtotal: %s\n", format.Currency(doc.Subtotal))
	if doc.Discount > 0 {
		fmt.Fprintf(w, "  Discount: %s\n", format.Currency(doc.Discount))
	}
	fmt.Fprintf(w, "  Total:    %s\n", format.Currency(doc.Total))
	fmt.Fprintf(w, "  %s Francs CFA\n", format.AmountInWords(doc.Total))

	inv, ok := rec.(*domain.Invoice)
	if !ok {
		if p := rec.(*domain.Proforma); p.IsConverted() {
			fmt.Fprintf(w, "\n  Converted to invoice %s\n", p.ConvertedToInvoiceID)
		}
		return
	}
	fmt.Fprintf(w, "  Paid:     %s\n", format.Currency(inv.PaidAmount))
	fmt.Fprintf(w, "  Balance:  %s\n", format.Currency(inv.Balance))
	if len(inv.Payments) > 0 {
		fmt.Fprintln(w, "\n  Payments:")
		printPayments(w, inv.Payments)
	}
}

func printPayments(w io.Writer, payments []*domain.Payment) {
	for _, p := range payments {
		fmt.Fprintf(w, "    %s  %-18s %16s\n", p.Date.Local().Format("02/01/2006 15:04"), p.Mode, format.Currency(p.Amount))
	}
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}
