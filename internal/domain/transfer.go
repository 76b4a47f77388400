package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer moves funds between two accounts as one logical operation.
// It is persisted as an EGRESO leg on the source and an INGRESO leg on the
// destination, both carrying the transfer id as RelatedTransferID.
type Transfer struct {
	ID            string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Description   string
	OutTxn        *Transaction
	InTxn         *Transaction
	CreatedAt     time.Time
}

// Validate validates transfer request.
func (t *Transfer) Validate() error {
	if t.FromAccountID == t.ToAccountID {
		return ErrSameAccount
	}

	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}

	return ValidateDescription(t.Description)
}

// Legs builds the two transactions of the transfer. Sequencing and balances
// are filled in by the ledger when the legs are posted.
func (t *Transfer) Legs(outID, inID string, at time.Time) (*Transaction, *Transaction) {
	transferID := t.ID
	out := &Transaction{
		ID:                outID,
		AccountID:         t.FromAccountID,
		Type:              TransactionTypeEgreso,
		Amount:            t.Amount,
		Description:       t.Description,
		Category:          CategoryTransfer,
		RelatedTransferID: &transferID,
		OccurredAt:        at,
		CreatedAt:         at,
	}
	in := &Transaction{
		ID:                inID,
		AccountID:         t.ToAccountID,
		Type:              TransactionTypeIngreso,
		Amount:            t.Amount,
		Description:       t.Description,
		Category:          CategoryTransfer,
		RelatedTransferID: &transferID,
		OccurredAt:        at,
		CreatedAt:         at,
	}
	return out, in
}

// Transaction categories assigned by the service itself.
const (
	CategoryTransfer = "transferencia"
	CategoryPayment  = "pago"
)
