package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the settlement state of an invoice.
type PaymentStatus string

const (
	PaymentStatusPendiente PaymentStatus = "PENDIENTE"
	PaymentStatusParcial   PaymentStatus = "PARCIAL"
	PaymentStatusPagado    PaymentStatus = "PAGADO"
)

// Invoice is a supplier or customer invoice that payments are allocated to.
type Invoice struct {
	ID           string
	Number       string
	Counterparty string
	Total        decimal.Decimal
	AmountPaid   decimal.Decimal
	Status       PaymentStatus
	Version      int64
	IssuedAt     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewInvoice creates an unpaid invoice.
func NewInvoice(id, number, counterparty string, total decimal.Decimal, issuedAt, now time.Time) (*Invoice, error) {
	if err := ValidateAmount(total); err != nil {
		return nil, err
	}

	if issuedAt.IsZero() {
		issuedAt = now
	}

	return &Invoice{
		ID:           id,
		Number:       number,
		Counterparty: counterparty,
		Total:        total,
		AmountPaid:   decimal.Zero,
		Status:       PaymentStatusPendiente,
		IssuedAt:     issuedAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// BalanceRemaining is the total minus everything allocated so far.
func (i *Invoice) BalanceRemaining() decimal.Decimal {
	return i.Total.Sub(i.AmountPaid)
}

// CheckAllocation verifies amount can be applied without over-settling.
func (i *Invoice) CheckAllocation(amount decimal.Decimal) error {
	if i.Status == PaymentStatusPagado {
		return &AllocationError{InvoiceID: i.ID, Requested: amount, Remaining: i.BalanceRemaining(), Err: ErrInvoiceAlreadySettled}
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return &AllocationError{InvoiceID: i.ID, Requested: amount, Remaining: i.BalanceRemaining(), Err: ErrInvalidAmount}
	}

	if amount.GreaterThan(i.BalanceRemaining()) {
		return &AllocationError{InvoiceID: i.ID, Requested: amount, Remaining: i.BalanceRemaining(), Err: ErrOverAllocation}
	}

	return nil
}

// ApplyAllocation reduces the remaining balance by amount and moves the
// status to PARCIAL or PAGADO.
func (i *Invoice) ApplyAllocation(amount decimal.Decimal, now time.Time) error {
	if err := i.CheckAllocation(amount); err != nil {
		return err
	}

	i.AmountPaid = i.AmountPaid.Add(amount)
	i.Status = statusFor(i.BalanceRemaining())
	i.UpdatedAt = now

	return nil
}

func statusFor(remaining decimal.Decimal) PaymentStatus {
	if remaining.IsZero() {
		return PaymentStatusPagado
	}
	return PaymentStatusParcial
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	Status       PaymentStatus
	Counterparty string
	Limit        int
	Offset       int
}

// ParsePaymentStatus parses an optional status filter.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case "", PaymentStatusPendiente, PaymentStatusParcial, PaymentStatusPagado:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown payment status %q", ErrValidationFailed, s)
}
