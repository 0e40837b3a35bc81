// Package model holds the domain types and the typed error taxonomy shared
// by the store, the ledger and the HTTP façade.
package model

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable classification carried by every
// domain error the façade can return.
type ErrorKind string

const (
	KindValidation        ErrorKind = "ValidationError"
	KindItemNotFound      ErrorKind = "ItemNotFound"
	KindInsufficientStock ErrorKind = "InsufficientStock"
	KindRecordNotFound    ErrorKind = "RecordNotFound"
	KindStorageIO         ErrorKind = "StorageIOError"
	KindPartialLedger     ErrorKind = "PartialLedgerFailure"
)

// Error is a domain error with a kind and a human-readable message naming
// the offending item or field.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Validationf builds a ValidationError.
func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// ItemNotFound reports a referenced stock item that does not exist.
func ItemNotFound(itemName string) *Error {
	return &Error{Kind: KindItemNotFound, Message: fmt.Sprintf("stock item %q not found", itemName)}
}

// InsufficientStock reports a consumption that exceeds the available
// quantity, naming both figures.
func InsufficientStock(itemName string, requested, available float64) *Error {
	return &Error{
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("not enough %q in stock: requested %g, available %g", itemName, requested, available),
	}
}

// RecordNotFound reports an update or delete against an unknown record id.
func RecordNotFound(collection, id string) *Error {
	return &Error{Kind: KindRecordNotFound, Message: fmt.Sprintf("record %q not found in collection %q", id, collection)}
}

// StorageIO wraps a file-level failure.
func StorageIO(op, collection string, cause error) *Error {
	return &Error{
		Kind:    KindStorageIO,
		Message: fmt.Sprintf("%s on collection %q failed", op, collection),
		cause:   cause,
	}
}

// PartialLedger reports the documented two-phase gap: stock was mutated but
// the event append failed. The intent id lets an operator reconcile.
func PartialLedger(intentID, collection string, cause error) *Error {
	return &Error{
		Kind:    KindPartialLedger,
		Message: fmt.Sprintf("stock updated but event append to %q failed (intent %s); manual reconciliation required", collection, intentID),
		cause:   cause,
	}
}

// KindOf extracts the error kind, defaulting to StorageIOError for
// untyped failures.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStorageIO
}
