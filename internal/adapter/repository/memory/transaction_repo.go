package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// Create stages a transaction insert.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if _, ok := t.held["account:"+txn.AccountID]; !ok {
		return fmt.Errorf("%w: account %s is not locked", domain.ErrOperationFailed, txn.AccountID)
	}

	t.transactions = append(t.transactions, copyTransaction(txn))
	return nil
}

// GetByID retrieves a committed transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	txn, ok := r.store.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return copyTransaction(txn), nil
}

// ListPage returns committed transactions in (OccurredAt, Sequence) order.
func (r *TransactionRepository) ListPage(ctx context.Context, accountID string, filter domain.TransactionFilter, cursor *usecase.Cursor, limit int) ([]*domain.Transaction, error) {
	matched := r.matching(accountID, filter)

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].OccurredAt.Equal(matched[j].OccurredAt) {
			return matched[i].OccurredAt.Before(matched[j].OccurredAt)
		}
		return matched[i].Sequence < matched[j].Sequence
	})

	if cursor != nil {
		start := sort.Search(len(matched), func(i int) bool {
			t := matched[i]
			return t.OccurredAt.After(cursor.OccurredAt) ||
				(t.OccurredAt.Equal(cursor.OccurredAt) && t.Sequence > cursor.Sequence)
		})
		matched = matched[start:]
	}

	return page(matched, limit, 0), nil
}

// ListByTransfer returns both legs of a transfer.
func (r *TransactionRepository) ListByTransfer(ctx context.Context, transferID string) ([]*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var legs []*domain.Transaction
	for _, txn := range r.store.transactions {
		if txn.RelatedTransferID != nil && *txn.RelatedTransferID == transferID {
			legs = append(legs, copyTransaction(txn))
		}
	}

	sort.Slice(legs, func(i, j int) bool { return legs[i].ID < legs[j].ID })
	return legs, nil
}

// Totals sums committed transactions in the window.
func (r *TransactionRepository) Totals(ctx context.Context, accountID string, filter domain.TransactionFilter) (domain.PeriodTotals, error) {
	var totals domain.PeriodTotals
	for _, txn := range r.matching(accountID, filter) {
		totals.Add(txn)
	}
	return totals, nil
}

func (r *TransactionRepository) matching(accountID string, filter domain.TransactionFilter) []*domain.Transaction {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := r.store.byAccount[accountID]
	out := make([]*domain.Transaction, 0, len(ids))
	for _, id := range ids {
		txn := r.store.transactions[id]
		if filter.Contains(txn.OccurredAt) {
			out = append(out, copyTransaction(txn))
		}
	}
	return out
}
