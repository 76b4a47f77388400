package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// GetOrCreate serializes first use of an owner on the owner key, so
// concurrent callers converge on one account.
func (r *AccountRepository) GetOrCreate(ctx context.Context, tx usecase.Transaction, account *domain.Account) (*domain.Account, bool, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, false, err
	}

	key := ownerKey(account.Kind, account.OwnerRef)
	if err := t.lock(ctx, "owner:"+key); err != nil {
		return nil, false, err
	}

	r.store.mu.RLock()
	id, exists := r.store.owners[key]
	var existing *domain.Account
	if exists {
		existing, exists = t.account(id)
	}
	r.store.mu.RUnlock()

	if exists {
		return copyAccount(existing), false, nil
	}

	for _, a := range t.newAccounts {
		if a.Kind == account.Kind && a.OwnerRef == account.OwnerRef {
			return copyAccount(a), false, nil
		}
	}

	created := copyAccount(account)
	t.newAccounts = append(t.newAccounts, created)
	t.accounts[created.ID] = created

	return copyAccount(created), true, nil
}

// GetByID retrieves a committed account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return copyAccount(a), nil
}

// GetByIDsForUpdate locks the accounts in the order given and returns the
// ones that exist.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		if err := t.lock(ctx, "account:"+id); err != nil {
			return nil, err
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		if a, ok := t.account(id); ok {
			accounts = append(accounts, copyAccount(a))
		}
	}
	return accounts, nil
}

// ApplyDelta stages a balance change on a locked account.
func (r *AccountRepository) ApplyDelta(ctx context.Context, tx usecase.Transaction, id string, signed decimal.Decimal, updatedAt time.Time) (*domain.Account, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if err := t.lock(ctx, "account:"+id); err != nil {
		return nil, err
	}

	return t.applyDelta(id, signed, updatedAt)
}

// SetArchived stages the archived flag on an account.
func (r *AccountRepository) SetArchived(ctx context.Context, tx usecase.Transaction, id string, archived bool, updatedAt time.Time) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if err := t.lock(ctx, "account:"+id); err != nil {
		return err
	}

	r.store.mu.RLock()
	acc, ok := t.account(id)
	r.store.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	acc.Archived = archived
	acc.Version++
	acc.UpdatedAt = updatedAt
	t.accounts[id] = acc

	return nil
}

// List lists committed accounts oldest first.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	r.store.mu.RLock()
	accounts := make([]*domain.Account, 0, len(r.store.accounts))
	for _, a := range r.store.accounts {
		accounts = append(accounts, copyAccount(a))
	}
	r.store.mu.RUnlock()

	sort.Slice(accounts, func(i, j int) bool {
		if !accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
		}
		return accounts[i].ID < accounts[j].ID
	})

	return page(accounts, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
