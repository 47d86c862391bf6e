package billing

import "errors"

var (
	// ErrReceiptNotFound is returned for operations requiring an issued receipt.
	ErrReceiptNotFound = errors.New("billing: receipt not found")
	// ErrInvalidStatus is returned for statuses outside the workflow set.
	ErrInvalidStatus = errors.New("billing: invalid receipt status")
	// ErrInvalidMonth is returned for month/year values outside the calendar.
	ErrInvalidMonth = errors.New("billing: invalid month")
	// ErrNilReceipt is returned when persisting a nil receipt.
	ErrNilReceipt = errors.New("billing: nil receipt")
	// ErrDuplicateReceipt is returned when a concurrent issue hits the unique
	// (contract, month, year) constraint. Callers retry; the engine does not.
	ErrDuplicateReceipt = errors.New("billing: duplicate receipt for period")
)
