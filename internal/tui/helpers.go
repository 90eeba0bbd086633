package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/format"
)

// truncateStr truncates a string to the specified length with ellipsis
func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// statusBadge renders the status label in its color
func statusBadge(s domain.Status) string {
	label := fmt.Sprintf("%-9s", s.Label())
	if style, ok := badgeStyles[s]; ok {
		return style.Render(label)
	}
	return label
}

// cursorPrefix returns the row indicator for list rendering
func cursorPrefix(selected bool) string {
	if selected {
		return "> "
	}
	return "  "
}

// clampCursor keeps a cursor inside a list of n rows
func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// perform wraps a blocking action into a command reporting actionDoneMsg
func perform(status string, action func() error) tea.Cmd {
	return func() tea.Msg {
		if err := action(); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: status}
	}
}

// renderDocument renders the lines, totals and payments of a document
func renderDocument(rec domain.Record, showUnit bool) string {
	doc := rec.Base()
	s := titleStyle.Render(fmt.Sprintf("%s %s", strings.ToUpper(string(rec.Kind())), doc.Number)) +
		"  " + statusBadge(doc.Status) + "\n"
	s += subtitleStyle.Render(fmt.Sprintf("  %s  |  %s", format.Date(doc.Date), doc.ClientName)) + "\n\n"

	for i, item := range doc.Items {
		name := truncateStr(item.ProductName, 28)
		unit := ""
		if showUnit {
			unit = truncateStr(item.ProductUnit, 8)
		}
		s += fmt.Sprintf("  %2d. %-28s %-8s %4d x %14s = %16s\n",
			i+1, name, unit, item.Quantity, format.Currency(item.UnitPrice), format.Currency(item.Total))
	}

	s += "\n" + fmt.Sprintf("  %-20s %s\n", "Subtotal:", format.Currency(doc.Subtotal))
	if doc.Discount > 0 {
		s += fmt.Sprintf("  %-20s -%s\n", "Discount:", format.Currency(doc.Discount))
	}
	s += "  " + amountStyle.Render(fmt.Sprintf("%-20s %s", "Total:", format.Currency(doc.Total))) + "\n"
	s += subtitleStyle.Render("  "+format.AmountInWords(doc.Total)+" Francs CFA") + "\n"

	switch d := rec.(type) {
	case *domain.Invoice:
		s += fmt.Sprintf("\n  %-20s %s\n  %-20s %s\n",
			"Paid:", format.Currency(d.PaidAmount), "Balance:", format.Currency(d.Balance))
		if len(d.Payments) > 0 {
			s += "\n  Payments\n"
			for _, p := range d.Payments {
				s += fmt.Sprintf("    %s  %-18s %16s\n",
					p.Date.Local().Format("02/01/2006 15:04"), p.Mode, format.Currency(p.Amount))
			}
		}
		if d.ProformaID != "" {
			s += subtitleStyle.Render("\n  Converted from a proforma") + "\n"
		}
	case *domain.Proforma:
		if d.IsConverted() {
			s += subtitleStyle.Render("\n  Converted to an invoice") + "\n"
		}
	}
	return s
}
