package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

func TestLedgerUseCase_RecordTransaction_IngresoThenEgreso(t *testing.T) {
	f := newFixture(t)
	f.seedAccount("caja", 1000)
	uc := f.ledger()
	ctx := context.Background()

	in, err := uc.RecordTransaction(ctx, usecase.RecordTransactionInput{
		AccountID: "caja", Type: domain.TransactionTypeIngreso, Amount: dec(500), Description: "venta",
	})
	require.NoError(t, err)
	assert.True(t, in.BalanceAfter.Equal(dec(1500)))
	assert.Equal(t, "CASH-000001", in.TransactionNumber)

	out, err := uc.RecordTransaction(ctx, usecase.RecordTransactionInput{
		AccountID: "caja", Type: domain.TransactionTypeEgreso, Amount: dec(200), Category: "insumos",
	})
	require.NoError(t, err)
	assert.True(t, out.BalanceAfter.Equal(dec(1300)))
	assert.Equal(t, int64(2), out.Sequence)

	acc, err := f.accounts.GetByID(ctx, "caja")
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(dec(1300)))
	assert.Len(t, f.txns.All(), 2)
	assert.Len(t, f.outbox.Events(), 2)
	assert.Equal(t, domain.EventTypeTransactionRecorded, f.outbox.Events()[0].EventType)
}

func TestLedgerUseCase_RecordTransaction_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.RecordTransactionInput
		archived    bool
		expectError error
		expectBegin bool
	}{
		{
			name:        "zero amount",
			input:       usecase.RecordTransactionInput{AccountID: "caja", Type: domain.TransactionTypeIngreso, Amount: decimal.Zero},
			expectError: domain.ErrInvalidAmount,
		},
		{
			name:        "negative amount",
			input:       usecase.RecordTransactionInput{AccountID: "caja", Type: domain.TransactionTypeEgreso, Amount: dec(-5)},
			expectError: domain.ErrInvalidAmount,
		},
		{
			name:        "unknown type",
			input:       usecase.RecordTransactionInput{AccountID: "caja", Type: "AJUSTE", Amount: dec(5)},
			expectError: domain.ErrInvalidTransactionType,
		},
		{
			name:        "single transfer leg",
			input:       usecase.RecordTransactionInput{AccountID: "caja", Type: domain.TransactionTypeTransferencia, Amount: dec(5)},
			expectError: domain.ErrInvalidTransactionType,
		},
		{
			name:        "missing account",
			input:       usecase.RecordTransactionInput{AccountID: "nope", Type: domain.TransactionTypeIngreso, Amount: dec(5)},
			expectError: domain.ErrAccountNotFound,
			expectBegin: true,
		},
		{
			name:        "archived account",
			input:       usecase.RecordTransactionInput{AccountID: "caja", Type: domain.TransactionTypeIngreso, Amount: dec(5)},
			archived:    true,
			expectError: domain.ErrAccountArchived,
			expectBegin: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.accounts.Seed(&domain.Account{ID: "caja", Kind: domain.AccountKindCash, Balance: dec(100), Archived: tt.archived})

			_, err := f.ledger().RecordTransaction(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expectError), "got %v", err)

			assert.Equal(t, tt.expectBegin, f.txMgr.Begun > 0)
			assert.Zero(t, f.txMgr.Committed)
			assert.Empty(t, f.txns.All())

			acc, _ := f.accounts.GetByID(context.Background(), "caja")
			assert.True(t, acc.Balance.Equal(dec(100)))
		})
	}
}

func TestLedgerUseCase_RecordTransaction_StorageFailureDoesNotCommit(t *testing.T) {
	f := newFixture(t)
	f.seedAccount("caja", 100)
	f.txns.CreateFunc = func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
		return fmt.Errorf("insert transaction: %w: %w", domain.ErrOperationFailed, errors.New("disk full"))
	}

	_, err := f.ledger().RecordTransaction(context.Background(), usecase.RecordTransactionInput{
		AccountID: "caja", Type: domain.TransactionTypeIngreso, Amount: dec(10),
	})

	require.Error(t, err)
	assert.True(t, domain.IsRetryable(err))
	assert.Equal(t, "OperationFailed", domain.Kind(err))
	assert.Zero(t, f.txMgr.Committed)
}

func TestLedgerUseCase_ListTransactions_OrderedAndRestartable(t *testing.T) {
	f := newFixture(t)
	f.seedAccount("banco", 0)
	uc := f.ledger()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	// Recorded out of date order; three share the same timestamp.
	dates := []time.Time{base.Add(48 * time.Hour), base, base.Add(24 * time.Hour), base, base}
	for i, d := range dates {
		at := d
		_, err := uc.RecordTransaction(ctx, usecase.RecordTransactionInput{
			OccurredAt: &at, AccountID: "banco", Type: domain.TransactionTypeIngreso, Amount: dec(int64(i + 1)),
		})
		require.NoError(t, err)
	}

	seq := uc.ListTransactions(ctx, "banco", domain.TransactionFilter{})

	var first []string
	for txn, err := range seq {
		require.NoError(t, err)
		first = append(first, txn.Amount.String())
	}
	assert.Equal(t, []string{"2", "4", "5", "3", "1"}, first)

	var second []string
	for txn, err := range seq {
		require.NoError(t, err)
		second = append(second, txn.Amount.String())
	}
	assert.Equal(t, first, second)
}

func TestLedgerUseCase_ListTransactions_PagesLazily(t *testing.T) {
	f := newFixture(t)
	calls := 0
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	f.txns.ListPageFunc = func(ctx context.Context, accountID string, filter domain.TransactionFilter, cursor *usecase.Cursor, limit int) ([]*domain.Transaction, error) {
		calls++
		start := int64(0)
		if cursor != nil {
			start = cursor.Sequence
		}
		var page []*domain.Transaction
		for i := start + 1; i <= start+int64(limit) && i <= 450; i++ {
			page = append(page, &domain.Transaction{Sequence: i, OccurredAt: base, Type: domain.TransactionTypeIngreso, Amount: dec(1)})
		}
		return page, nil
	}

	seq := f.ledger().ListTransactions(context.Background(), "acc", domain.TransactionFilter{})

	n := 0
	for _, err := range seq {
		require.NoError(t, err)
		n++
		if n == 10 {
			break
		}
	}
	assert.Equal(t, 1, calls, "stopping early must not fetch more pages")

	calls = 0
	all, err := f.ledger().CollectTransactions(context.Background(), "missing", domain.TransactionFilter{})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.Nil(t, all)

	n = 0
	for _, err := range seq {
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 450, n)
	assert.Equal(t, 3, calls)
}

func TestLedgerUseCase_ListTransactions_PropagatesErrors(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("boom")
	f.txns.ListPageFunc = func(ctx context.Context, accountID string, filter domain.TransactionFilter, cursor *usecase.Cursor, limit int) ([]*domain.Transaction, error) {
		return nil, boom
	}

	for txn, err := range f.ledger().ListTransactions(context.Background(), "acc", domain.TransactionFilter{}) {
		assert.Nil(t, txn)
		assert.ErrorIs(t, err, boom)
	}
}
