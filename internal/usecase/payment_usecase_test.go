package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

func TestPaymentUseCase_PartialThenFull(t *testing.T) {
	f := newFixture(t)
	f.seedAccount("banco", 5000)
	f.seedInvoice("inv-1", 1000)
	uc := f.payment()
	ctx := context.Background()

	p1, err := uc.RegisterPayment(ctx, usecase.RegisterPaymentInput{
		AccountID: "banco", Amount: dec(400),
		Allocations: []usecase.AllocationInput{{InvoiceID: "inv-1", AmountApplied: dec(400)}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusParcial, p1.Allocations[0].Status)
	assert.True(t, p1.Allocations[0].BalanceRemaining.Equal(dec(600)))

	inv, _ := f.invoices.GetByID(ctx, "inv-1")
	assert.Equal(t, domain.PaymentStatusParcial, inv.Status)
	assert.True(t, inv.BalanceRemaining().Equal(dec(600)))

	_, err = uc.RegisterPayment(ctx, usecase.RegisterPaymentInput{
		AccountID: "banco", Amount: dec(600),
		Allocations: []usecase.AllocationInput{{InvoiceID: "inv-1", AmountApplied: dec(600)}},
	})
	require.NoError(t, err)

	inv, _ = f.invoices.GetByID(ctx, "inv-1")
	assert.Equal(t, domain.PaymentStatusPagado, inv.Status)
	assert.True(t, inv.BalanceRemaining().IsZero())

	acc, _ := f.accounts.GetByID(ctx, "banco")
	assert.True(t, acc.Balance.Equal(dec(4000)))

	txns := f.txns.All()
	require.Len(t, txns, 2)
	for _, txn := range txns {
		assert.Equal(t, domain.TransactionTypeEgreso, txn.Type)
		require.NotNil(t, txn.PaymentID)
	}

	stored, err := uc.GetPayment(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, p1.TransactionID, stored.TransactionID)
}

func TestPaymentUseCase_InflowRecordsIngreso(t *testing.T) {
	f := newFixture(t)
	f.seedAccount("caja", 0)
	f.seedInvoice("inv-1", 300)

	p, err := f.payment().RegisterPayment(context.Background(), usecase.RegisterPaymentInput{
		AccountID: "caja", Direction: domain.PaymentDirectionInflow, Amount: dec(300),
		Allocations: []usecase.AllocationInput{{InvoiceID: "inv-1", AmountApplied: dec(300)}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPagado, p.Allocations[0].Status)

	acc, _ := f.accounts.GetByID(context.Background(), "caja")
	assert.True(t, acc.Balance.Equal(dec(300)))
}

func TestPaymentUseCase_KeepsCallerAllocationOrder(t *testing.T) {
	f := newFixture(t)
	f.seedAccount("banco", 0)
	f.seedInvoice("inv-b", 100)
	f.seedInvoice("inv-a", 100)

	p, err := f.payment().RegisterPayment(context.Background(), usecase.RegisterPaymentInput{
		AccountID: "banco", Amount: dec(150),
		Allocations: []usecase.AllocationInput{
			{InvoiceID: "inv-b", AmountApplied: dec(100)},
			{InvoiceID: "inv-a", AmountApplied: dec(50)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"inv-b", "inv-a"}, p.InvoiceIDs())
	assert.Equal(t, domain.PaymentStatusPagado, p.Allocations[0].Status)
	assert.Equal(t, domain.PaymentStatusParcial, p.Allocations[1].Status)
}

func TestPaymentUseCase_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.RegisterPaymentInput
		prepare     func(f *fixture)
		expectError error
		invoiceID   string
	}{
		{
			name: "allocations do not add up",
			input: usecase.RegisterPaymentInput{AccountID: "banco", Amount: dec(500), Allocations: []usecase.AllocationInput{
				{InvoiceID: "inv-1", AmountApplied: dec(450)},
			}},
			expectError: domain.ErrAllocationSumMismatch,
		},
		{
			name:        "no allocations",
			input:       usecase.RegisterPaymentInput{AccountID: "banco", Amount: dec(10)},
			expectError: domain.ErrValidationFailed,
		},
		{
			name: "non positive amount",
			input: usecase.RegisterPaymentInput{AccountID: "banco", Amount: dec(0), Allocations: []usecase.AllocationInput{
				{InvoiceID: "inv-1", AmountApplied: dec(0)},
			}},
			expectError: domain.ErrInvalidAmount,
		},
		{
			name: "over allocation on second invoice",
			input: usecase.RegisterPaymentInput{AccountID: "banco", Amount: dec(1500), Allocations: []usecase.AllocationInput{
				{InvoiceID: "inv-1", AmountApplied: dec(900)},
				{InvoiceID: "inv-2", AmountApplied: dec(600)},
			}},
			expectError: domain.ErrOverAllocation,
			invoiceID:   "inv-2",
		},
		{
			name: "settled invoice",
			input: usecase.RegisterPaymentInput{AccountID: "banco", Amount: dec(10), Allocations: []usecase.AllocationInput{
				{InvoiceID: "inv-1", AmountApplied: dec(10)},
			}},
			prepare: func(f *fixture) {
				inv, _ := f.invoices.GetByID(context.Background(), "inv-1")
				inv.AmountPaid = inv.Total
				inv.Status = domain.PaymentStatusPagado
				f.invoices.Seed(inv)
			},
			expectError: domain.ErrInvoiceAlreadySettled,
			invoiceID:   "inv-1",
		},
		{
			name: "unknown invoice",
			input: usecase.RegisterPaymentInput{AccountID: "banco", Amount: dec(10), Allocations: []usecase.AllocationInput{
				{InvoiceID: "inv-404", AmountApplied: dec(10)},
			}},
			expectError: domain.ErrInvoiceNotFound,
			invoiceID:   "inv-404",
		},
		{
			name: "unknown account",
			input: usecase.RegisterPaymentInput{AccountID: "nope", Amount: dec(10), Allocations: []usecase.AllocationInput{
				{InvoiceID: "inv-1", AmountApplied: dec(10)},
			}},
			expectError: domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seedAccount("banco", 1000)
			f.seedInvoice("inv-1", 1000)
			f.seedInvoice("inv-2", 500)
			if tt.prepare != nil {
				tt.prepare(f)
			}

			_, err := f.payment().RegisterPayment(context.Background(), tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expectError)

			if tt.invoiceID != "" {
				var allocErr *domain.AllocationError
				require.True(t, errors.As(err, &allocErr))
				assert.Equal(t, tt.invoiceID, allocErr.InvoiceID)
			}

			assert.Zero(t, f.txMgr.Committed)
			assert.Empty(t, f.txns.All())

			acc, _ := f.accounts.GetByID(context.Background(), "banco")
			assert.True(t, acc.Balance.Equal(dec(1000)))

			inv, _ := f.invoices.GetByID(context.Background(), "inv-2")
			assert.Equal(t, domain.PaymentStatusPendiente, inv.Status)
		})
	}
}

func TestPaymentUseCase_InvoiceVersionConflict(t *testing.T) {
	f := newFixture(t)
	f.seedAccount("banco", 1000)
	f.seedInvoice("inv-1", 1000)
	f.invoices.UpdateFunc = func(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
		return domain.ErrConcurrencyConflict
	}

	_, err := f.payment().RegisterPayment(context.Background(), usecase.RegisterPaymentInput{
		AccountID: "banco", Amount: dec(100),
		Allocations: []usecase.AllocationInput{{InvoiceID: "inv-1", AmountApplied: dec(100)}},
	})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.True(t, domain.IsRetryable(err))
	assert.Zero(t, f.txMgr.Committed)
}
