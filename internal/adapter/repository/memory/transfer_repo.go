package memory

import (
	"context"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	store *Store
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(store *Store) *TransferRepository {
	return &TransferRepository{store: store}
}

// Create stages a transfer header. Legs are stored as transactions.
func (r *TransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	cp := *transfer
	cp.OutTxn, cp.InTxn = nil, nil
	t.transfers = append(t.transfers, &cp)

	return nil
}

// GetByID retrieves a transfer header by ID.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	tr, ok := r.store.transfers[id]
	if !ok {
		return nil, domain.ErrTransferNotFound
	}
	cp := *tr
	return &cp, nil
}
