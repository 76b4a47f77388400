package usecase_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/metrics"
	"github.com/iho/cashbook/internal/usecase"
	"github.com/iho/cashbook/internal/usecase/mocks"
)

type fixture struct {
	accounts  *mocks.MockAccountRepository
	txns      *mocks.MockTransactionRepository
	transfers *mocks.MockTransferRepository
	invoices  *mocks.MockInvoiceRepository
	payments  *mocks.MockPaymentRepository
	outbox    *mocks.MockOutboxRepository
	txMgr     *mocks.MockTransactionManager
	idGen     *mocks.MockIDGenerator
	metrics   *metrics.Metrics
	uow       *usecase.UnitOfWork
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		accounts:  mocks.NewMockAccountRepository(),
		txns:      mocks.NewMockTransactionRepository(),
		transfers: mocks.NewMockTransferRepository(),
		invoices:  mocks.NewMockInvoiceRepository(),
		payments:  mocks.NewMockPaymentRepository(),
		outbox:    mocks.NewMockOutboxRepository(),
		txMgr:     mocks.NewMockTransactionManager(),
		idGen:     mocks.NewMockIDGenerator(),
		metrics:   metrics.NewWithRegisterer(prometheus.NewRegistry()),
	}
	f.uow = usecase.NewUnitOfWork(f.txMgr, nil, time.Second, f.metrics)

	return f
}

func (f *fixture) ledger() *usecase.LedgerUseCase {
	return usecase.NewLedgerUseCase(f.uow, f.accounts, f.txns, f.outbox, f.idGen, f.metrics)
}

func (f *fixture) transfer() *usecase.TransferUseCase {
	return usecase.NewTransferUseCase(f.uow, f.accounts, f.txns, f.transfers, f.outbox, f.idGen, f.metrics)
}

func (f *fixture) payment() *usecase.PaymentUseCase {
	return usecase.NewPaymentUseCase(f.uow, f.accounts, f.txns, f.invoices, f.payments, f.outbox, f.idGen, f.metrics)
}

func (f *fixture) seedAccount(id string, balance int64) {
	f.accounts.Seed(&domain.Account{
		ID:       id,
		Kind:     domain.AccountKindCash,
		OwnerRef: "branch:" + id,
		Balance:  decimal.NewFromInt(balance),
	})
}

func (f *fixture) seedInvoice(id string, total int64) {
	inv, _ := domain.NewInvoice(id, "F-"+id, "Proveedor", decimal.NewFromInt(total), time.Time{}, time.Now().UTC())
	f.invoices.Seed(inv)
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
