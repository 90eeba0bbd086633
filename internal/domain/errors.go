package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is by callers
var (
	// ErrValidation is returned when user input is incomplete or inconsistent.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateNumber is returned when a manual invoice number is already taken.
	ErrDuplicateNumber = errors.New("document number already in use")

	// ErrInvalidPayment is returned when a payment cannot be applied to an invoice.
	ErrInvalidPayment = errors.New("invalid payment")

	// ErrStorage is returned when the durable write of a collection failed.
	ErrStorage = errors.New("storage write failed")

	// ErrImportFormat is returned when a backup file cannot be restored.
	ErrImportFormat = errors.New("invalid backup format")

	// ErrInvalidTransition is returned when a status change is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDocumentLocked is returned when an archived document is edited.
	ErrDocumentLocked = errors.New("document is locked")
)

// ValidationError describes which field of the input was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// DuplicateNumberError reports a manual number collision.
type DuplicateNumberError struct {
	Number string
}

func (e *DuplicateNumberError) Error() string {
	return fmt.Sprintf("document number %q already in use", e.Number)
}

func (e *DuplicateNumberError) Is(target error) bool {
	return target == ErrDuplicateNumber
}

// InvalidPaymentError reports a rejected payment. The invoice is untouched.
type InvalidPaymentError struct {
	Amount  int64
	Balance int64
	Reason  string
}

func (e *InvalidPaymentError) Error() string {
	return fmt.Sprintf("invalid payment of %d (balance %d): %s", e.Amount, e.Balance, e.Reason)
}

func (e *InvalidPaymentError) Is(target error) bool {
	return target == ErrInvalidPayment
}

// StorageError wraps a failed durable write. The in-memory result handed
// back alongside it is still the post-operation state.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// ImportFormatError reports a backup file that cannot be restored.
type ImportFormatError struct {
	Reason string
	Err    error
}

func (e *ImportFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid backup: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid backup: %s", e.Reason)
}

func (e *ImportFormatError) Unwrap() error {
	return e.Err
}

func (e *ImportFormatError) Is(target error) bool {
	return target == ErrImportFormat
}

// TransitionError reports a status change outside the state machine.
type TransitionError struct {
	Kind Kind
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %q to %q", e.Kind, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
