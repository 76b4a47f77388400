package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

// TxManager implements usecase.TransactionManager on a Store.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrOperationFailed, err)
	}

	return &Tx{
		store:    m.store,
		held:     make(map[string]struct{}),
		accounts: make(map[string]*domain.Account),
		invoices: make(map[string]*domain.Invoice),
	}, nil
}

// Tx buffers writes until Commit. A Tx is used by one goroutine.
type Tx struct {
	store *Store
	held  map[string]struct{}
	order []string

	// staged rows, keyed by id
	accounts map[string]*domain.Account
	invoices map[string]*domain.Invoice

	newAccounts  []*domain.Account
	transactions []*domain.Transaction
	transfers    []*domain.Transfer
	payments     []*domain.Payment
	events       []*domain.OutboxEvent

	done bool
}

func (t *Tx) lock(ctx context.Context, key string) error {
	if _, ok := t.held[key]; ok {
		return nil
	}

	if err := t.store.locks.acquire(ctx, key); err != nil {
		return err
	}

	t.held[key] = struct{}{}
	t.order = append(t.order, key)

	return nil
}

func (t *Tx) unlockAll() {
	for i := len(t.order) - 1; i >= 0; i-- {
		t.store.locks.release(t.order[i])
	}
	t.held = nil
	t.order = nil
}

// account returns the staged row or a copy of the committed one.
// Callers hold t.store.mu.
func (t *Tx) account(id string) (*domain.Account, bool) {
	if a, ok := t.accounts[id]; ok {
		return a, true
	}
	if a, ok := t.store.accounts[id]; ok {
		return copyAccount(a), true
	}
	return nil, false
}

func (t *Tx) invoice(id string) (*domain.Invoice, bool) {
	if inv, ok := t.invoices[id]; ok {
		return inv, true
	}
	if inv, ok := t.store.invoices[id]; ok {
		return copyInvoice(inv), true
	}
	return nil, false
}

func (t *Tx) applyDelta(id string, signed decimal.Decimal, updatedAt time.Time) (*domain.Account, error) {
	t.store.mu.RLock()
	acc, ok := t.account(id)
	t.store.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	acc.Balance = acc.Balance.Add(signed)
	acc.Version++
	acc.TxnSeq++
	acc.UpdatedAt = updatedAt
	t.accounts[id] = acc

	return copyAccount(acc), nil
}

// Commit publishes every buffered write at once and releases the locks.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return fmt.Errorf("%w: transaction already finished", domain.ErrOperationFailed)
	}
	t.done = true
	defer t.unlockAll()

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range t.newAccounts {
		s.owners[ownerKey(a.Kind, a.OwnerRef)] = a.ID
	}
	for id, a := range t.accounts {
		s.accounts[id] = a
	}
	for id, inv := range t.invoices {
		s.invoices[id] = inv
	}
	for _, txn := range t.transactions {
		s.transactions[txn.ID] = txn
		s.byAccount[txn.AccountID] = append(s.byAccount[txn.AccountID], txn.ID)
	}
	for _, tr := range t.transfers {
		s.transfers[tr.ID] = tr
	}
	for _, p := range t.payments {
		s.payments[p.ID] = p
	}
	for _, e := range t.events {
		s.outbox[e.ID] = e
	}

	return nil
}

// Rollback discards buffered writes. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.unlockAll()

	return nil
}
