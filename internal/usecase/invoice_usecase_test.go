package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

func TestInvoiceUseCase_RegisterInvoice(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewInvoiceUseCase(f.uow, f.invoices, f.outbox, f.idGen)
	ctx := context.Background()

	inv, err := uc.RegisterInvoice(ctx, usecase.RegisterInvoiceInput{Number: "F-100", Counterparty: "Acme", Total: dec(1200)})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPendiente, inv.Status)
	assert.True(t, inv.BalanceRemaining().Equal(dec(1200)))

	got, err := uc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "F-100", got.Number)

	events := f.outbox.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeInvoiceRegistered, events[0].EventType)

	pending, err := uc.ListInvoices(ctx, domain.InvoiceFilter{Status: domain.PaymentStatusPendiente})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	paid, err := uc.ListInvoices(ctx, domain.InvoiceFilter{Status: domain.PaymentStatusPagado})
	require.NoError(t, err)
	assert.Empty(t, paid)
}

func TestInvoiceUseCase_RegisterInvoice_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.RegisterInvoiceInput
		expectError error
	}{
		{"missing number", usecase.RegisterInvoiceInput{Total: dec(10)}, domain.ErrValidationFailed},
		{"zero total", usecase.RegisterInvoiceInput{Number: "F-1", Total: dec(0)}, domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			uc := usecase.NewInvoiceUseCase(f.uow, f.invoices, f.outbox, f.idGen)

			_, err := uc.RegisterInvoice(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.expectError)
			assert.Zero(t, f.txMgr.Begun)
		})
	}
}
