package service

import (
	"fmt"
	"strings"

	"github.com/andy/pharmabill/internal/domain"
)

// findIndex returns the position of the first item matching, or -1
func findIndex[T any](items []*T, match func(*T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

// byRef matches a document by id or by number, ignoring case
func byRef(ref string) func(d *domain.Document) bool {
	ref = strings.TrimSpace(ref)
	return func(d *domain.Document) bool {
		return d.ID == ref || strings.EqualFold(d.Number, ref)
	}
}

func notFound(what, ref string) error {
	return fmt.Errorf("%w: %s %q", domain.ErrNotFound, what, ref)
}

// normalizeNumber trims and uppercases a manual document number
func normalizeNumber(n string) string {
	return strings.ToUpper(strings.TrimSpace(n))
}
