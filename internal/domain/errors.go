package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountArchived    = errors.New("account is archived")
	ErrInvalidAccountKind = errors.New("invalid account kind")
	ErrInvalidOwner       = errors.New("invalid account owner")

	// Transaction errors
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrTransactionNotFound    = errors.New("transaction not found")

	// Transfer errors
	ErrSameAccount      = errors.New("cannot transfer to same account")
	ErrTransferNotFound = errors.New("transfer not found")

	// Payment and invoice errors
	ErrValidationFailed      = errors.New("payment validation failed")
	ErrAllocationSumMismatch = errors.New("allocations do not add up to the payment amount")
	ErrOverAllocation        = errors.New("allocation exceeds invoice remaining balance")
	ErrInvoiceAlreadySettled = errors.New("invoice is already settled")
	ErrInvoiceNotFound       = errors.New("invoice not found")
	ErrDuplicateAllocation   = errors.New("invoice allocated more than once in the same payment")
	ErrPaymentNotFound       = errors.New("payment not found")

	// Unit of work errors
	ErrConcurrencyConflict = errors.New("concurrent update detected, retry the operation")
	ErrOperationFailed     = errors.New("operation failed")
)

// AllocationError reports which invoice rejected an allocation.
type AllocationError struct {
	InvoiceID string
	Requested decimal.Decimal
	Remaining decimal.Decimal
	Err       error
}

func (e *AllocationError) Error() string {
	if errors.Is(e.Err, ErrOverAllocation) {
		return fmt.Sprintf("invoice %s: %v (requested %s, remaining %s)",
			e.InvoiceID, e.Err, e.Requested.String(), e.Remaining.String())
	}
	return fmt.Sprintf("invoice %s: %v", e.InvoiceID, e.Err)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the whole operation may be retried as-is.
// Validation errors are not retryable; storage and concurrency failures are.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict) || errors.Is(err, ErrOperationFailed)
}

// Kind returns the taxonomy name of err, used in API responses.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidAmount):
		return "InvalidAmount"
	case errors.Is(err, ErrAccountNotFound):
		return "AccountNotFound"
	case errors.Is(err, ErrInvoiceNotFound):
		return "InvoiceNotFound"
	case errors.Is(err, ErrSameAccount):
		return "SameAccount"
	case errors.Is(err, ErrOverAllocation):
		return "OverAllocation"
	case errors.Is(err, ErrInvoiceAlreadySettled):
		return "InvoiceAlreadySettled"
	case errors.Is(err, ErrAllocationSumMismatch):
		return "AllocationSumMismatch"
	case errors.Is(err, ErrDuplicateAllocation), errors.Is(err, ErrValidationFailed):
		return "ValidationFailed"
	case errors.Is(err, ErrConcurrencyConflict):
		return "ConcurrencyConflict"
	case errors.Is(err, ErrAccountArchived):
		return "AccountArchived"
	case errors.Is(err, ErrInvalidTransactionType), errors.Is(err, ErrInvalidAccountKind), errors.Is(err, ErrInvalidOwner):
		return "ValidationFailed"
	case errors.Is(err, ErrTransactionNotFound), errors.Is(err, ErrPaymentNotFound), errors.Is(err, ErrTransferNotFound):
		return "NotFound"
	default:
		return "OperationFailed"
	}
}
