// Package format renders amounts, dates and document numbers for display.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
)

// CurrencySuffix is appended to every formatted amount
const CurrencySuffix = "Frcs CFA"

// narrow no-break space, as used by the French locale for digit grouping
const thousandsSeparator = "\u202f"

var cfa = money.NewFormatter(0, ",", thousandsSeparator, CurrencySuffix, "1 $")

// Currency renders an amount with French digit grouping, e.g. "1 500 Frcs CFA"
func Currency(amount int64) string {
	return cfa.Format(amount)
}

var amountSeparators = strings.NewReplacer(" ", "", "\u00a0", "", thousandsSeparator, "", ".", "")

// ParseAmount reads whole Francs CFA typed by a user. Spaces and dots are
// accepted as digit grouping, and a trailing currency label is ignored.
func ParseAmount(s string) (int64, error) {
	clean := strings.TrimSpace(s)
	for _, suffix := range []string{CurrencySuffix, "FCFA", "CFA"} {
		clean = strings.TrimSuffix(clean, suffix)
	}
	clean = amountSeparators.Replace(clean)
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return n, nil
}

// DocumentNumber builds PREFIX-YYYY-NNNNN from the number of documents
// already in the collection; the sequence is index+1.
func DocumentNumber(prefix string, index int, at time.Time) string {
	return fmt.Sprintf("%s-%04d-%05d", prefix, at.Year(), index+1)
}

// Date renders a stored YYYY-MM-DD date as DD/MM/YYYY. Unparseable input
// is returned unchanged.
func Date(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}
