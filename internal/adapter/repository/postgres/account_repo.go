package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/postgres/generated"
	"github.com/iho/cashbook/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return newAccountRepository(pool)
}

func newAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// GetOrCreate relies on the (kind, owner_ref) unique key: the insert is a
// no-op when another caller got there first, and the existing row is read
// back in the same transaction.
func (r *AccountRepository) GetOrCreate(ctx context.Context, tx usecase.Transaction, account *domain.Account) (*domain.Account, bool, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, false, err
	}

	row, err := queries.InsertAccountIfAbsent(ctx, generated.InsertAccountIfAbsentParams{
		ID:            account.ID,
		Kind:          string(account.Kind),
		BranchID:      account.Owner.BranchID,
		Institution:   account.Owner.Institution,
		AccountNumber: account.Owner.AccountNumber,
		AccountType:   account.Owner.AccountType,
		OwnerRef:      account.OwnerRef,
		CreatedAt:     timeToPgTimestamptz(account.CreatedAt),
	})
	if err == nil {
		return rowToAccount(row), true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, mapError(err, nil)
	}

	row, err = queries.GetAccountByOwner(ctx, generated.GetAccountByOwnerParams{
		Kind:     string(account.Kind),
		OwnerRef: account.OwnerRef,
	})
	if err != nil {
		return nil, false, mapError(err, domain.ErrAccountNotFound)
	}

	return rowToAccount(row), false, nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		return nil, mapError(err, domain.ErrAccountNotFound)
	}

	return rowToAccount(row), nil
}

// GetByIDsForUpdate retrieves multiple accounts by IDs with FOR UPDATE locks.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.GetAccountsByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, mapError(err, nil)
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

// ApplyDelta adds signed to the balance in a single UPDATE, so the new
// balance never depends on a value read earlier.
func (r *AccountRepository) ApplyDelta(ctx context.Context, tx usecase.Transaction, id string, signed decimal.Decimal, updatedAt time.Time) (*domain.Account, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.ApplyAccountDelta(ctx, generated.ApplyAccountDeltaParams{
		Delta:     decimalToNumeric(signed),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
		ID:        id,
	})
	if err != nil {
		return nil, mapError(err, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id))
	}

	return rowToAccount(row), nil
}

// SetArchived sets the archived flag.
func (r *AccountRepository) SetArchived(ctx context.Context, tx usecase.Transaction, id string, archived bool, updatedAt time.Time) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := queries.SetAccountArchived(ctx, generated.SetAccountArchivedParams{
		ID:        id,
		Archived:  archived,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return mapError(err, nil)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	return nil
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, mapError(err, nil)
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:   row.ID,
		Kind: domain.AccountKind(row.Kind),
		Owner: domain.Owner{
			BranchID:      row.BranchID,
			Institution:   row.Institution,
			AccountNumber: row.AccountNumber,
			AccountType:   row.AccountType,
		},
		OwnerRef:  row.OwnerRef,
		Balance:   numericToDecimal(row.Balance),
		Version:   row.Version,
		TxnSeq:    row.TxnSeq,
		Archived:  row.Archived,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
