package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
	"github.com/iho/cashbook/internal/usecase/mocks"
)

func (f *fixture) account(owners usecase.OwnerResolver) *usecase.AccountUseCase {
	return usecase.NewAccountUseCase(f.uow, f.accounts, f.outbox, owners, f.idGen, f.metrics)
}

func TestAccountUseCase_GetOrCreateAccount_Idempotent(t *testing.T) {
	f := newFixture(t)
	uc := f.account(nil)
	ctx := context.Background()

	input := usecase.GetOrCreateAccountInput{
		Kind:  domain.AccountKindBank,
		Owner: domain.Owner{BranchID: "suc-1", Institution: "bbva", AccountNumber: "0012", AccountType: "corriente"},
	}

	first, created, err := uc.GetOrCreateAccount(ctx, input)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, first.Balance.IsZero())

	second, created, err := uc.GetOrCreateAccount(ctx, input)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	events := f.outbox.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeAccountCreated, events[0].EventType)
}

func TestAccountUseCase_GetOrCreateAccount_KindsAreSeparate(t *testing.T) {
	f := newFixture(t)
	uc := f.account(nil)
	ctx := context.Background()

	owner := domain.Owner{BranchID: "suc-1", Institution: "bbva", AccountNumber: "0012", AccountType: "corriente"}

	cash, _, err := uc.GetOrCreateAccount(ctx, usecase.GetOrCreateAccountInput{Kind: domain.AccountKindCash, Owner: owner})
	require.NoError(t, err)

	bank, _, err := uc.GetOrCreateAccount(ctx, usecase.GetOrCreateAccountInput{Kind: domain.AccountKindBank, Owner: owner})
	require.NoError(t, err)

	assert.NotEqual(t, cash.ID, bank.ID)
}

func TestAccountUseCase_GetOrCreateAccount_ResolvesBranch(t *testing.T) {
	ctrl := gomock.NewController(t)
	owners := mocks.NewMockOwnerResolver(ctrl)
	owners.EXPECT().ResolveBranch(gomock.Any()).Return("suc-9", nil)

	f := newFixture(t)
	acc, created, err := f.account(owners).GetOrCreateAccount(context.Background(), usecase.GetOrCreateAccountInput{
		Kind: domain.AccountKindCash,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "suc-9", acc.Owner.BranchID)
	assert.Equal(t, "branch:suc-9", acc.OwnerRef)
}

func TestAccountUseCase_GetOrCreateAccount_ResolverFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	owners := mocks.NewMockOwnerResolver(ctrl)
	resolveErr := errors.New("no branch claim")
	owners.EXPECT().ResolveBranch(gomock.Any()).Return("", resolveErr)

	f := newFixture(t)
	_, _, err := f.account(owners).GetOrCreateAccount(context.Background(), usecase.GetOrCreateAccountInput{
		Kind: domain.AccountKindCash,
	})
	assert.ErrorIs(t, err, resolveErr)
	assert.Zero(t, f.txMgr.Begun)
}

func TestAccountUseCase_GetOrCreateAccount_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.GetOrCreateAccountInput
		expectError error
	}{
		{
			name:        "unknown kind",
			input:       usecase.GetOrCreateAccountInput{Kind: "WALLET", Owner: domain.Owner{BranchID: "suc-1"}},
			expectError: domain.ErrInvalidAccountKind,
		},
		{
			name:        "cash without branch",
			input:       usecase.GetOrCreateAccountInput{Kind: domain.AccountKindCash},
			expectError: domain.ErrInvalidOwner,
		},
		{
			name:        "bank without account number",
			input:       usecase.GetOrCreateAccountInput{Kind: domain.AccountKindBank, Owner: domain.Owner{BranchID: "suc-1", Institution: "bbva"}},
			expectError: domain.ErrInvalidOwner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, _, err := f.account(nil).GetOrCreateAccount(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.expectError)
			assert.Zero(t, f.txMgr.Begun)
		})
	}
}

func TestAccountUseCase_ArchiveAccount(t *testing.T) {
	f := newFixture(t)
	f.seedAccount("caja", 250)
	uc := f.account(nil)
	ctx := context.Background()

	acc, err := uc.ArchiveAccount(ctx, "caja")
	require.NoError(t, err)
	assert.True(t, acc.Archived)
	assert.True(t, acc.Balance.Equal(dec(250)))

	again, err := uc.ArchiveAccount(ctx, "caja")
	require.NoError(t, err)
	assert.True(t, again.Archived)
	assert.Len(t, f.outbox.Events(), 1)

	_, err = f.ledger().RecordTransaction(ctx, usecase.RecordTransactionInput{
		AccountID: "caja", Type: domain.TransactionTypeIngreso, Amount: dec(10),
	})
	assert.ErrorIs(t, err, domain.ErrAccountArchived)

	_, err = uc.ArchiveAccount(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountUseCase_ListAccounts_ClampsLimit(t *testing.T) {
	f := newFixture(t)

	var gotLimit int
	f.accounts.ListFunc = func(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
		gotLimit = limit
		return nil, nil
	}

	uc := f.account(nil)

	_, err := uc.ListAccounts(context.Background(), usecase.ListAccountsInput{})
	require.NoError(t, err)
	assert.Equal(t, 20, gotLimit)

	_, err = uc.ListAccounts(context.Background(), usecase.ListAccountsInput{Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, 100, gotLimit)
}
