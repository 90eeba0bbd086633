package domain

type Proforma struct {
	Document
	ConvertedToInvoiceID string `json:"convertedToInvoiceId,omitempty"`
}

// NewProforma creates an unnumbered proforma in its initial status
func NewProforma(date string) *Proforma {
	return &Proforma{
		Document: Document{
			ID:     NewID(),
			Date:   date,
			Items:  LineItems{},
			Status: KindProforma.InitialStatus(),
		},
	}
}

func (p *Proforma) Kind() Kind {
	return KindProforma
}

// CanEdit returns true while the proforma is still in the pending workflow
func (p *Proforma) CanEdit() bool {
	return !p.IsArchived()
}

// IsConverted returns true if an invoice was generated from the proforma
func (p *Proforma) IsConverted() bool {
	return p.ConvertedToInvoiceID != ""
}

// IsArchived returns true if the proforma left the pending workflow,
// either converted, paid directly or cancelled
func (p *Proforma) IsArchived() bool {
	return p.IsConverted() || p.Status == StatusPaid || p.Status == StatusCancelled
}

// MarkConverted links the proforma to its invoice and archives it as Paid.
// Paid here means "settled as a proforma", not that the invoice is paid.
func (p *Proforma) MarkConverted(invoiceID string) error {
	if p.IsConverted() {
		return &TransitionError{Kind: KindProforma, From: p.Status, To: StatusPaid}
	}
	if err := Transition(KindProforma, p.Status, StatusPaid); err != nil {
		return err
	}
	p.ConvertedToInvoiceID = invoiceID
	p.Status = StatusPaid
	return nil
}

// MarkPaid archives the proforma as settled without an invoice
func (p *Proforma) MarkPaid() error {
	if err := Transition(KindProforma, p.Status, StatusPaid); err != nil {
		return err
	}
	p.Status = StatusPaid
	return nil
}

// Cancel archives the proforma without settlement
func (p *Proforma) Cancel() error {
	if err := Transition(KindProforma, p.Status, StatusCancelled); err != nil {
		return err
	}
	p.Status = StatusCancelled
	return nil
}
