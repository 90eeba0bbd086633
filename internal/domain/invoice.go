package domain

import (
	"time"
)

// PaymentMode is how a payment was settled. Values are the stored labels.
type PaymentMode string

const (
	PaymentCash         PaymentMode = "Espèces"
	PaymentBankTransfer PaymentMode = "Virement bancaire"
	PaymentMobileMoney  PaymentMode = "Mobile Money"
	PaymentCard         PaymentMode = "Carte bancaire"
)

// PaymentModes lists the accepted modes in display order
var PaymentModes = []PaymentMode{PaymentCash, PaymentBankTransfer, PaymentMobileMoney, PaymentCard}

// Valid reports whether m is one of the known modes
func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentCash, PaymentBankTransfer, PaymentMobileMoney, PaymentCard:
		return true
	}
	return false
}

// ParsePaymentMode accepts a stored label or a short English alias
func ParsePaymentMode(s string) (PaymentMode, bool) {
	switch s {
	case "cash", string(PaymentCash):
		return PaymentCash, true
	case "transfer", "bank", string(PaymentBankTransfer):
		return PaymentBankTransfer, true
	case "mobile", "momo", string(PaymentMobileMoney):
		return PaymentMobileMoney, true
	case "card", string(PaymentCard):
		return PaymentCard, true
	}
	return "", false
}

type Payment struct {
	ID        string      `json:"id"`
	Date      time.Time   `json:"date"`
	Amount    int64       `json:"amount"`
	Mode      PaymentMode `json:"mode"`
	InvoiceID string      `json:"invoiceId"`
}

type Invoice struct {
	Document
	PaidAmount int64      `json:"paidAmount"`
	Balance    int64      `json:"balance"`
	Payments   []*Payment `json:"payments"`
	ProformaID string     `json:"proformaId,omitempty"`
}

// NewInvoice creates an unnumbered invoice in its initial status
func NewInvoice(date string) *Invoice {
	return &Invoice{
		Document: Document{
			ID:     NewID(),
			Date:   date,
			Items:  LineItems{},
			Status: KindInvoice.InitialStatus(),
		},
		Payments: []*Payment{},
	}
}

// NewInvoiceFromProforma copies client, date, lines and amounts from p
// into a fresh unpaid invoice. The number is assigned by the caller.
func NewInvoiceFromProforma(p *Proforma, number string) *Invoice {
	inv := NewInvoice(p.Date)
	inv.Number = number
	inv.ClientID = p.ClientID
	inv.ClientName = p.ClientName
	inv.Items = p.Items.Clone()
	inv.Discount = p.Discount
	inv.ProformaID = p.ID
	inv.CalculateTotals()
	return inv
}

// CalculateTotals recalculates lines, totals, paid amount and balance.
// The status follows the balance once at least one payment exists; a
// cancelled invoice keeps its status.
func (i *Invoice) CalculateTotals() {
	i.Document.CalculateTotals()

	var paid int64
	for _, p := range i.Payments {
		paid += p.Amount
	}
	i.PaidAmount = paid

	i.Balance = i.Total - i.PaidAmount
	if i.Balance < 0 {
		i.Balance = 0
	}

	if i.Status == StatusCancelled || len(i.Payments) == 0 {
		return
	}
	if i.Balance == 0 {
		i.Status = StatusPaid
	} else {
		i.Status = StatusPartial
	}
}

func (i *Invoice) Kind() Kind {
	return KindInvoice
}

// IsPaid returns true once the balance has been fully settled
func (i *Invoice) IsPaid() bool {
	return i.Status == StatusPaid
}

// CanEdit returns true if the invoice contents may still change. Paid
// and cancelled invoices are final.
func (i *Invoice) CanEdit() bool {
	return i.Status != StatusCancelled && i.Status != StatusPaid
}

// ApplyPayment records a payment and refreshes balance and status. On
// error the invoice is left untouched.
func (i *Invoice) ApplyPayment(amount int64, mode PaymentMode, at time.Time) (*Payment, error) {
	reject := func(reason string) error {
		return &InvalidPaymentError{Amount: amount, Balance: i.Balance, Reason: reason}
	}

	switch {
	case i.Status == StatusCancelled:
		return nil, reject("invoice is cancelled")
	case amount <= 0:
		return nil, reject("amount must be positive")
	case amount > i.Balance:
		return nil, reject("amount exceeds the remaining balance")
	case !mode.Valid():
		return nil, reject("unknown payment mode")
	}

	next := StatusPartial
	if i.Balance-amount == 0 {
		next = StatusPaid
	}
	if err := Transition(KindInvoice, i.Status, next); err != nil {
		return nil, err
	}

	p := &Payment{
		ID:        NewID(),
		Date:      at,
		Amount:    amount,
		Mode:      mode,
		InvoiceID: i.ID,
	}
	i.Payments = append(i.Payments, p)
	i.CalculateTotals()
	return p, nil
}

// Cancel voids an invoice that has not received any payment
func (i *Invoice) Cancel() error {
	if len(i.Payments) > 0 {
		return NewValidationError("invoice", "cannot cancel an invoice with recorded payments")
	}
	if err := Transition(KindInvoice, i.Status, StatusCancelled); err != nil {
		return err
	}
	i.Status = StatusCancelled
	return nil
}

// Validate returns an error if the invoice is invalid
func (i *Invoice) Validate() error {
	if err := i.Document.Validate(); err != nil {
		return err
	}
	if i.Total < i.PaidAmount {
		return NewValidationError("total", "cannot be below the amount already paid")
	}
	return nil
}
