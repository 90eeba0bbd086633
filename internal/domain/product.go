package domain

import (
	"strings"

	"github.com/google/uuid"
)

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Unit        string `json:"unit,omitempty"`
	UnitPrice   int64  `json:"unitPrice"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// DefaultCategory is used when a product is saved without one
const DefaultCategory = "Général"

// NewID returns a fresh record identifier
func NewID() string {
	return uuid.NewString()
}

// NewProduct creates an active product
func NewProduct(name, category string, unitPrice int64) *Product {
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultCategory
	}
	return &Product{
		ID:        NewID(),
		Name:      strings.TrimSpace(name),
		Category:  category,
		UnitPrice: unitPrice,
		IsActive:  true,
	}
}

// Validate returns an error if the product is invalid
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("product name", "is required")
	}
	if p.UnitPrice < 0 {
		return NewValidationError("unit price", "cannot be negative")
	}
	return nil
}

// Matches reports whether the product name or category contains the search term
func (p *Product) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Category), term)
}
