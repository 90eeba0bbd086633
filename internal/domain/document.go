package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format stored on documents
const DateLayout = "2006-01-02"

// LineField selects which line item value UpdateLineItem changes
type LineField string

const (
	FieldQuantity  LineField = "quantity"
	FieldUnitPrice LineField = "unitPrice"
)

// LineItem is one product row on a document. Name, unit and price are
// copied from the product when the line is created and never follow later
// catalog edits.
type LineItem struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	ProductUnit string `json:"productUnit,omitempty"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unitPrice"`
	Total       int64  `json:"total"`
}

// recompute keeps Total equal to Quantity x UnitPrice
func (li *LineItem) recompute() {
	li.Total = li.Quantity * li.UnitPrice
}

// LineItems is the ordered list of rows on a document
type LineItems []*LineItem

// Add puts one unit of the product on the list. An existing line for the
// same product gets its quantity incremented; otherwise a new line is
// appended with a snapshot of the product.
func (l *LineItems) Add(p *Product) *LineItem {
	for _, item := range *l {
		if item.ProductID == p.ID {
			item.Quantity++
			item.recompute()
			return item
		}
	}

	item := &LineItem{
		ID:          NewID(),
		ProductID:   p.ID,
		ProductName: p.Name,
		ProductUnit: p.Unit,
		Quantity:    1,
		UnitPrice:   p.UnitPrice,
	}
	item.recompute()
	*l = append(*l, item)
	return item
}

// Update changes the quantity or unit price of one line. Quantities below
// 1 are clamped to 1 and negative prices to 0.
func (l LineItems) Update(lineID string, field LineField, value int64) (*LineItem, error) {
	item := l.Find(lineID)
	if item == nil {
		return nil, NewValidationError("line item", "not found on document")
	}

	switch field {
	case FieldQuantity:
		if value < 1 {
			value = 1
		}
		item.Quantity = value
	case FieldUnitPrice:
		if value < 0 {
			value = 0
		}
		item.UnitPrice = value
	default:
		return nil, NewValidationError("line field", "must be quantity or unitPrice")
	}

	item.recompute()
	return item, nil
}

// Remove deletes exactly one line
func (l *LineItems) Remove(lineID string) error {
	for i, item := range *l {
		if item.ID == lineID {
			*l = append((*l)[:i], (*l)[i+1:]...)
			return nil
		}
	}
	return NewValidationError("line item", "not found on document")
}

// Find returns the line with the given ID, or nil
func (l LineItems) Find(lineID string) *LineItem {
	for _, item := range l {
		if item.ID == lineID {
			return item
		}
	}
	return nil
}

// Subtotal sums the line totals
func (l LineItems) Subtotal() int64 {
	var sum int64
	for _, item := range l {
		sum += item.Total
	}
	return sum
}

// Clone deep-copies the lines
func (l LineItems) Clone() LineItems {
	out := make(LineItems, len(l))
	for i, item := range l {
		c := *item
		out[i] = &c
	}
	return out
}

// Document holds the fields shared by proformas and invoices
type Document struct {
	ID         string    `json:"id"`
	Number     string    `json:"number"`
	ClientID   string    `json:"clientId"`
	ClientName string    `json:"clientName"`
	Date       string    `json:"date"`
	Items      LineItems `json:"items"`
	Discount   int64     `json:"discount"`
	Subtotal   int64     `json:"subtotal"`
	Total      int64     `json:"total"`
	Status     Status    `json:"status"`
}

// Record is implemented by *Proforma and *Invoice
type Record interface {
	Base() *Document
	Kind() Kind
	CalculateTotals()
	Validate() error
	CanEdit() bool
}

// Base returns the shared document fields
func (d *Document) Base() *Document {
	return d
}

// CalculateTotals recalculates line totals, subtotal and total
func (d *Document) CalculateTotals() {
	for _, item := range d.Items {
		item.recompute()
	}
	d.Subtotal = d.Items.Subtotal()
	d.Total = d.Subtotal - d.Discount
}

// SetClient snapshots the client reference and name onto the document
func (d *Document) SetClient(c *Client) {
	d.ClientID = c.ID
	d.ClientName = c.Name
}

// Validate returns an error if the document cannot be saved
func (d *Document) Validate() error {
	if d.ClientID == "" {
		return NewValidationError("client", "is required")
	}
	if len(d.Items) == 0 {
		return NewValidationError("items", "at least one product is required")
	}
	if _, err := time.Parse(DateLayout, d.Date); err != nil {
		return NewValidationError("date", "must be YYYY-MM-DD")
	}
	for _, item := range d.Items {
		if item.Quantity < 1 {
			return NewValidationError("quantity", "must be at least 1")
		}
		if item.UnitPrice < 0 {
			return NewValidationError("unit price", "cannot be negative")
		}
	}
	if d.Discount < 0 {
		return NewValidationError("discount", "cannot be negative")
	}
	if d.Discount > d.Items.Subtotal() {
		return NewValidationError("discount", "cannot exceed the subtotal")
	}
	return nil
}

// Matches reports whether the number or client name contains the search term
func (d *Document) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(d.Number), term) ||
		strings.Contains(strings.ToLower(d.ClientName), term)
}

// Today returns the calendar date of t in DateLayout
func Today(t time.Time) string {
	return t.Format(DateLayout)
}
