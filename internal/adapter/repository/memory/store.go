// Package memory keeps the whole ledger in process. Writes made through a Tx
// are buffered and become visible to other readers only on Commit, and every
// row touched for update stays locked until the Tx ends.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

// Store holds committed state shared by all repositories.
type Store struct {
	mu sync.RWMutex

	accounts     map[string]*domain.Account
	owners       map[string]string
	transactions map[string]*domain.Transaction
	byAccount    map[string][]string
	transfers    map[string]*domain.Transfer
	invoices     map[string]*domain.Invoice
	payments     map[string]*domain.Payment
	outbox       map[string]*domain.OutboxEvent

	locks *lockTable
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]*domain.Account),
		owners:       make(map[string]string),
		transactions: make(map[string]*domain.Transaction),
		byAccount:    make(map[string][]string),
		transfers:    make(map[string]*domain.Transfer),
		invoices:     make(map[string]*domain.Invoice),
		payments:     make(map[string]*domain.Payment),
		outbox:       make(map[string]*domain.OutboxEvent),
		locks:        newLockTable(),
	}
}

func ownerKey(kind domain.AccountKind, ref string) string {
	return string(kind) + "|" + ref
}

// lockTable hands out one single-slot channel per key. Holding the slot is
// holding the lock; waiting on it honours context cancellation.
type lockTable struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{slots: make(map[string]chan struct{})}
}

func (l *lockTable) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *lockTable) acquire(ctx context.Context, key string) error {
	select {
	case l.slot(key) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: waiting for %s: %w", domain.ErrConcurrencyConflict, key, ctx.Err())
	}
}

func (l *lockTable) release(key string) {
	<-l.slot(key)
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected transaction type %T", domain.ErrOperationFailed, tx)
	}
	if t.done {
		return nil, fmt.Errorf("%w: transaction already finished", domain.ErrOperationFailed)
	}
	return t, nil
}

func copyAccount(a *domain.Account) *domain.Account {
	cp := *a
	return &cp
}

func copyTransaction(t *domain.Transaction) *domain.Transaction {
	cp := *t
	return &cp
}

func copyInvoice(i *domain.Invoice) *domain.Invoice {
	cp := *i
	return &cp
}

func copyPayment(p *domain.Payment) *domain.Payment {
	cp := *p
	cp.Allocations = append([]domain.Allocation(nil), p.Allocations...)
	return &cp
}

func copyEvent(e *domain.OutboxEvent) *domain.OutboxEvent {
	cp := *e
	if e.PublishedAt != nil {
		at := *e.PublishedAt
		cp.PublishedAt = &at
	}
	return &cp
}
