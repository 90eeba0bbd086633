package domain

import (
	"regexp"
	"strings"
)

// Settings holds the operator preferences
type Settings struct {
	ShowUnitColumn         bool `json:"showUnitColumn"`
	ManualInvoiceNumbering bool `json:"manualInvoiceNumbering"`
}

// DefaultSettings returns the factory preferences
func DefaultSettings() *Settings {
	return &Settings{ShowUnitColumn: true}
}

// CompanyInfo is the identity printed on every document
type CompanyInfo struct {
	Name    string `json:"name"`
	Slogan  string `json:"slogan,omitempty"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	RCCM    string `json:"rccm,omitempty"`
	Logo    string `json:"logo,omitempty"`
}

var phonePattern = regexp.MustCompile(`^\+?[0-9\s\-]{8,20}$`)

// DefaultCompanyInfo returns the identity seeded on first start
func DefaultCompanyInfo() *CompanyInfo {
	return &CompanyInfo{
		Name:    "Pharmacie Nouvelle",
		Slogan:  "Votre santé, notre priorité.",
		Address: "Abidjan - Plateau, Avenue Jean Paul II",
		Phone:   "+225 21 00 00 00",
	}
}

// Validate returns an error if the company identity is incomplete
func (c *CompanyInfo) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("company name", "is required")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return NewValidationError("company phone", "is required")
	}
	if !phonePattern.MatchString(c.Phone) {
		return NewValidationError("company phone", "must be 8 to 20 digits, spaces or dashes")
	}
	return nil
}

// DefaultProducts returns the catalog seeded on first start
func DefaultProducts() []*Product {
	return []*Product{
		{ID: "1", Name: "Paracétamol 500mg", Category: "Antalgiques", Unit: "Boîte", UnitPrice: 1500, IsActive: true},
		{ID: "2", Name: "Amoxicilline 1g", Category: "Antibiotiques", Unit: "Boîte", UnitPrice: 3500, IsActive: true},
	}
}
