package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType carries the direction of a movement. Amounts are always
// stored positive.
type TransactionType string

const (
	TransactionTypeIngreso       TransactionType = "INGRESO"
	TransactionTypeEgreso        TransactionType = "EGRESO"
	TransactionTypeTransferencia TransactionType = "TRANSFERENCIA"
)

// IsValid checks if the type is a known TransactionType.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIngreso, TransactionTypeEgreso, TransactionTypeTransferencia:
		return true
	}
	return false
}

// ParseTransactionType parses a type case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionType, s)
	}
	return t, nil
}

// SignedAmount is the single place where a transaction's direction becomes a
// sign. INGRESO adds to the balance; EGRESO and the outflow leg of a transfer
// subtract from it.
func SignedAmount(t TransactionType, amount decimal.Decimal) decimal.Decimal {
	if t == TransactionTypeIngreso {
		return amount
	}
	return amount.Neg()
}

// Transaction is an immutable monetary movement against one account.
// Corrections are recorded as new offsetting transactions.
type Transaction struct {
	ID                string
	AccountID         string
	Type              TransactionType
	Amount            decimal.Decimal
	Description       string
	Category          string
	TransactionNumber string
	RelatedTransferID *string
	PaymentID         *string
	// BalanceAfter caches the account balance right after this transaction.
	BalanceAfter decimal.Decimal
	Sequence     int64
	OccurredAt   time.Time
	CreatedAt    time.Time
}

// Signed returns the amount with the sign implied by the type.
func (t *Transaction) Signed() decimal.Decimal {
	return SignedAmount(t.Type, t.Amount)
}

// Validate checks the transaction before it is persisted.
func (t *Transaction) Validate() error {
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTransactionType, t.Type)
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	return ValidateDescription(t.Description)
}

// TransactionFilter narrows a listing to a date range. Zero times are open ends.
type TransactionFilter struct {
	From time.Time
	To   time.Time
}

// Contains reports whether at falls inside the filter, From inclusive, To exclusive.
func (f TransactionFilter) Contains(at time.Time) bool {
	if !f.From.IsZero() && at.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !at.Before(f.To) {
		return false
	}
	return true
}
