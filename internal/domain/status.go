package domain

// Status is the lifecycle state of a document. Values are the labels
// stored by earlier versions of the application, so backups stay readable.
type Status string

const (
	StatusDraft     Status = "Brouillon"
	StatusPending   Status = "En attente"
	StatusPartial   Status = "Partiel"
	StatusPaid      Status = "Payée"
	StatusCancelled Status = "Annulée"
)

// Statuses lists every status in declaration order
var Statuses = []Status{StatusDraft, StatusPending, StatusPartial, StatusPaid, StatusCancelled}

// Label returns a short English label for terminal output
func (s Status) Label() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusPending:
		return "pending"
	case StatusPartial:
		return "partial"
	case StatusPaid:
		return "paid"
	case StatusCancelled:
		return "cancelled"
	default:
		return string(s)
	}
}

// Kind distinguishes the two document collections. Each kind has its own
// number sequence.
type Kind string

const (
	KindProforma Kind = "proforma"
	KindInvoice  Kind = "invoice"
)

// DefaultPrefix returns the number prefix used when none is configured
func (k Kind) DefaultPrefix() string {
	if k == KindInvoice {
		return "INV"
	}
	return "PRO"
}

// InitialStatus is the status a freshly created document starts in.
// Invoices start Partial even when their total is zero.
func (k Kind) InitialStatus() Status {
	if k == KindInvoice {
		return StatusPartial
	}
	return StatusPending
}

// CanTransition reports whether a document of kind k may move from one
// status to another.
//
// Proforma: Draft -> Pending, {Draft, Pending} -> Cancelled, Pending -> Paid.
// Invoice:  Draft -> Partial, Partial -> {Partial, Paid, Cancelled}.
// Paid and Cancelled are terminal for both kinds.
func CanTransition(k Kind, from, to Status) bool {
	switch k {
	case KindProforma:
		switch from {
		case StatusDraft:
			return to == StatusPending || to == StatusCancelled
		case StatusPending:
			return to == StatusPaid || to == StatusCancelled
		case StatusPartial, StatusPaid, StatusCancelled:
			return false
		}
	case KindInvoice:
		switch from {
		case StatusDraft:
			return to == StatusPartial
		case StatusPartial:
			return to == StatusPartial || to == StatusPaid || to == StatusCancelled
		case StatusPending, StatusPaid, StatusCancelled:
			return false
		}
	}
	return false
}

// Transition returns a TransitionError when the move is not allowed
func Transition(k Kind, from, to Status) error {
	if !CanTransition(k, from, to) {
		return &TransitionError{Kind: k, From: from, To: to}
	}
	return nil
}
