package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentDirection says whether the payment leaves or enters the account.
type PaymentDirection string

const (
	// PaymentDirectionOutflow is a supplier payment; it records an EGRESO.
	PaymentDirectionOutflow PaymentDirection = "OUTFLOW"
	// PaymentDirectionInflow is a customer receipt; it records an INGRESO.
	PaymentDirectionInflow PaymentDirection = "INFLOW"
)

// ParsePaymentDirection defaults to OUTFLOW when s is empty.
func ParsePaymentDirection(s string) (PaymentDirection, error) {
	switch d := PaymentDirection(strings.ToUpper(strings.TrimSpace(s))); d {
	case "":
		return PaymentDirectionOutflow, nil
	case PaymentDirectionOutflow, PaymentDirectionInflow:
		return d, nil
	}
	return "", fmt.Errorf("%w: unknown payment direction %q", ErrValidationFailed, s)
}

// TransactionType returns the ledger type recorded for this direction.
func (d PaymentDirection) TransactionType() TransactionType {
	if d == PaymentDirectionInflow {
		return TransactionTypeIngreso
	}
	return TransactionTypeEgreso
}

// Allocation is the portion of a payment applied to one invoice.
type Allocation struct {
	InvoiceID     string
	AmountApplied decimal.Decimal
	// Filled in once the allocation is applied.
	BalanceRemaining decimal.Decimal
	Status           PaymentStatus
}

// Payment is a single disbursement or receipt split across invoices.
// Allocations keep the order the caller supplied.
type Payment struct {
	ID            string
	AccountID     string
	Direction     PaymentDirection
	Amount        decimal.Decimal
	Description   string
	Allocations   []Allocation
	TransactionID string
	CreatedAt     time.Time
}

// Validate checks everything that does not need stored state: a positive
// amount, at least one allocation, positive distinct allocations and an
// exact sum.
func (p *Payment) Validate() error {
	if err := ValidateAmount(p.Amount); err != nil {
		return err
	}

	if len(p.Allocations) == 0 {
		return fmt.Errorf("%w: at least one allocation is required", ErrValidationFailed)
	}

	if len(p.Allocations) > MaxAllocations {
		return fmt.Errorf("%w: at most %d allocations", ErrValidationFailed, MaxAllocations)
	}

	seen := make(map[string]struct{}, len(p.Allocations))
	sum := decimal.Zero

	for i, a := range p.Allocations {
		if strings.TrimSpace(a.InvoiceID) == "" {
			return fmt.Errorf("%w: allocation %d has no invoice", ErrValidationFailed, i)
		}

		if _, dup := seen[a.InvoiceID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateAllocation, a.InvoiceID)
		}
		seen[a.InvoiceID] = struct{}{}

		if err := ValidateAmount(a.AmountApplied); err != nil {
			return &AllocationError{InvoiceID: a.InvoiceID, Requested: a.AmountApplied, Err: err}
		}

		sum = sum.Add(a.AmountApplied)
	}

	if !sum.Equal(p.Amount) {
		return fmt.Errorf("%w: allocations sum to %s, payment is %s", ErrAllocationSumMismatch, sum.String(), p.Amount.String())
	}

	return ValidateDescription(p.Description)
}

// InvoiceIDs returns the allocated invoice ids in caller order.
func (p *Payment) InvoiceIDs() []string {
	ids := make([]string, len(p.Allocations))
	for i, a := range p.Allocations {
		ids[i] = a.InvoiceID
	}
	return ids
}
