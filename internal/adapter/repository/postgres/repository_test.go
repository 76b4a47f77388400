package postgres

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
)

var accountColumns = []string{
	"id", "kind", "branch_id", "institution", "account_number", "account_type",
	"owner_ref", "balance", "version", "txn_seq", "archived", "created_at", "updated_at",
}

var invoiceColumns = []string{
	"id", "number", "counterparty", "total", "amount_paid", "status",
	"version", "issued_at", "created_at", "updated_at",
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func numeric(s string) pgtype.Numeric {
	return decimalToNumeric(decimal.RequireFromString(s))
}

func accountRow(rows *pgxmock.Rows, id, balance string, version, seq int64) *pgxmock.Rows {
	ts := timeToPgTimestamptz(testNow)
	return rows.AddRow(id, "CASH", "sucursal-centro", "", "", "", "sucursal-centro",
		numeric(balance), version, seq, false, ts, ts)
}

func beginTx(t *testing.T, mock pgxmock.PgxPoolIface) *Tx {
	t.Helper()
	mock.ExpectBegin()
	tx, err := newTxManagerWithPool(mock).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return tx.(*Tx)
}

func TestAccountGetOrCreateInserts(t *testing.T) {
	mock := newMockPool(t)
	tx := beginTx(t, mock)

	mock.ExpectQuery("INSERT INTO accounts").
		WillReturnRows(accountRow(pgxmock.NewRows(accountColumns), "acc-1", "0", 0, 0))

	repo := newAccountRepository(mock)
	account, created, err := repo.GetOrCreate(context.Background(), tx, &domain.Account{
		ID:        "acc-1",
		Kind:      domain.AccountKindCash,
		Owner:     domain.Owner{BranchID: "sucursal-centro"},
		OwnerRef:  "sucursal-centro",
		CreatedAt: testNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created || account.ID != "acc-1" {
		t.Fatalf("expected new account acc-1, got %+v created=%v", account, created)
	}

	assertExpectations(t, mock)
}

func TestAccountGetOrCreateReturnsExisting(t *testing.T) {
	mock := newMockPool(t)
	tx := beginTx(t, mock)

	mock.ExpectQuery("INSERT INTO accounts").WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT (.+) FROM accounts WHERE kind").
		WithArgs("CASH", "sucursal-centro").
		WillReturnRows(accountRow(pgxmock.NewRows(accountColumns), "acc-existing", "250.5", 4, 3))

	repo := newAccountRepository(mock)
	account, created, err := repo.GetOrCreate(context.Background(), tx, &domain.Account{
		ID:        "acc-new",
		Kind:      domain.AccountKindCash,
		Owner:     domain.Owner{BranchID: "sucursal-centro"},
		OwnerRef:  "sucursal-centro",
		CreatedAt: testNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatalf("expected existing account")
	}
	if account.ID != "acc-existing" || !account.Balance.Equal(decimal.RequireFromString("250.5")) {
		t.Fatalf("unexpected account: %+v", account)
	}

	assertExpectations(t, mock)
}

func TestAccountApplyDeltaMissingAccount(t *testing.T) {
	mock := newMockPool(t)
	tx := beginTx(t, mock)

	mock.ExpectQuery("UPDATE accounts").WillReturnError(pgx.ErrNoRows)

	repo := newAccountRepository(mock)
	_, err := repo.ApplyDelta(context.Background(), tx, "missing", decimal.NewFromInt(10), testNow)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountApplyDeltaReturnsUpdatedRow(t *testing.T) {
	mock := newMockPool(t)
	tx := beginTx(t, mock)

	mock.ExpectQuery("UPDATE accounts").
		WillReturnRows(accountRow(pgxmock.NewRows(accountColumns), "acc-1", "-40", 7, 7))

	repo := newAccountRepository(mock)
	account, err := repo.ApplyDelta(context.Background(), tx, "acc-1", decimal.NewFromInt(-50), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !account.Balance.Equal(decimal.NewFromInt(-40)) || account.TxnSeq != 7 {
		t.Fatalf("unexpected account: %+v", account)
	}
}

func TestAccountSetArchivedNotFound(t *testing.T) {
	mock := newMockPool(t)
	tx := beginTx(t, mock)

	mock.ExpectExec("UPDATE accounts SET archived").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := newAccountRepository(mock)
	err := repo.SetArchived(context.Background(), tx, "missing", true, testNow)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestInvoiceUpdateVersionGuard(t *testing.T) {
	tests := []struct {
		name        string
		rows        int64
		wantErr     error
		wantVersion int64
	}{
		{name: "current version", rows: 1, wantVersion: 3},
		{name: "stale version", rows: 0, wantErr: domain.ErrConcurrencyConflict, wantVersion: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			tx := beginTx(t, mock)

			mock.ExpectExec("UPDATE invoices").
				WithArgs(pgxmock.AnyArg(), "PARCIAL", pgxmock.AnyArg(), "inv-1", int64(2)).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.rows))

			invoice := &domain.Invoice{
				ID:         "inv-1",
				Total:      decimal.NewFromInt(1000),
				AmountPaid: decimal.NewFromInt(400),
				Status:     domain.PaymentStatusParcial,
				Version:    2,
				UpdatedAt:  testNow,
			}

			err := newInvoiceRepository(mock).Update(context.Background(), tx, invoice)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if invoice.Version != tt.wantVersion {
				t.Fatalf("expected version %d, got %d", tt.wantVersion, invoice.Version)
			}
		})
	}
}

func TestInvoiceGetByIDNotFound(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery("SELECT (.+) FROM invoices WHERE id").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(invoiceColumns))

	_, err := newInvoiceRepository(mock).GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrInvoiceNotFound) {
		t.Fatalf("expected ErrInvoiceNotFound, got %v", err)
	}
}

func TestInvoiceCreateDuplicateNumber(t *testing.T) {
	mock := newMockPool(t)
	tx := beginTx(t, mock)

	mock.ExpectExec("INSERT INTO invoices").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "invoices_number_key"})

	invoice, err := domain.NewInvoice("inv-1", "F-001", "Proveedor", decimal.NewFromInt(100), testNow, testNow)
	if err != nil {
		t.Fatalf("new invoice: %v", err)
	}

	err = newInvoiceRepository(mock).Create(context.Background(), tx, invoice)
	if !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
}

func TestPaymentCreateKeepsAllocationOrder(t *testing.T) {
	mock := newMockPool(t)
	tx := beginTx(t, mock)

	mock.ExpectExec("INSERT INTO payments").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO payment_allocations").
		WithArgs("pay-1", int32(0), "inv-b", pgxmock.AnyArg(), pgxmock.AnyArg(), "PAGADO").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO payment_allocations").
		WithArgs("pay-1", int32(1), "inv-a", pgxmock.AnyArg(), pgxmock.AnyArg(), "PARCIAL").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	payment := &domain.Payment{
		ID:            "pay-1",
		AccountID:     "acc-1",
		Direction:     domain.PaymentDirectionOutflow,
		Amount:        decimal.NewFromInt(700),
		TransactionID: "txn-1",
		CreatedAt:     testNow,
		Allocations: []domain.Allocation{
			{InvoiceID: "inv-b", AmountApplied: decimal.NewFromInt(500), Status: domain.PaymentStatusPagado},
			{InvoiceID: "inv-a", AmountApplied: decimal.NewFromInt(200), BalanceRemaining: decimal.NewFromInt(800), Status: domain.PaymentStatusParcial},
		},
	}

	if err := newPaymentRepository(mock).Create(context.Background(), tx, payment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, mock)
}

func TestTransactionListPageWithoutCursor(t *testing.T) {
	mock := newMockPool(t)

	mock.ExpectQuery("SELECT (.+) FROM transactions").
		WithArgs("acc-1", pgtype.Timestamptz{}, pgtype.Timestamptz{}, pgtype.Timestamptz{}, int64(0), int32(200)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "account_id", "type", "amount", "description", "category", "transaction_number",
			"related_transfer_id", "payment_id", "balance_after", "sequence", "occurred_at", "created_at",
		}).AddRow("txn-1", "acc-1", "INGRESO", numeric("100"), "venta", "ventas", "CASH-000001",
			(*string)(nil), (*string)(nil), numeric("100"), int64(1),
			timeToPgTimestamptz(testNow), timeToPgTimestamptz(testNow)))

	txns, err := newTransactionRepository(mock).ListPage(context.Background(), "acc-1", domain.TransactionFilter{}, nil, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 || txns[0].TransactionNumber != "CASH-000001" || txns[0].Sequence != 1 {
		t.Fatalf("unexpected transactions: %+v", txns)
	}

	assertExpectations(t, mock)
}

func TestMapError(t *testing.T) {
	notFound := errors.New("thing not found")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "no rows", err: pgx.ErrNoRows, want: notFound},
		{name: "deadlock", err: &pgconn.PgError{Code: pgErrDeadlock}, want: domain.ErrConcurrencyConflict},
		{name: "serialization", err: &pgconn.PgError{Code: pgErrSerializationFailure}, want: domain.ErrConcurrencyConflict},
		{name: "lock not available", err: &pgconn.PgError{Code: pgErrLockNotAvailable}, want: domain.ErrConcurrencyConflict},
		{name: "check violation", err: &pgconn.PgError{Code: pgErrCheckViolation}, want: domain.ErrValidationFailed},
		{name: "foreign key", err: &pgconn.PgError{Code: pgErrForeignKeyViolation}, want: domain.ErrValidationFailed},
		{name: "other", err: errors.New("connection reset"), want: domain.ErrOperationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, notFound)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDecimalNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1500", "-20.25", "0.0001", "12345678901234.5678"} {
		d := decimal.RequireFromString(s)
		if got := numericToDecimal(decimalToNumeric(d)); !got.Equal(d) {
			t.Fatalf("%s: got %s", s, got)
		}
	}

	if got := numericToDecimal(pgtype.Numeric{Int: big.NewInt(5), Exp: 2, Valid: true}); !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected 500, got %s", got)
	}
}

func TestQueriesForRejectsForeignTransaction(t *testing.T) {
	if _, err := queriesFor(foreignTx{}); !errors.Is(err, domain.ErrOperationFailed) {
		t.Fatalf("expected ErrOperationFailed, got %v", err)
	}
}

type foreignTx struct{}

func (foreignTx) Commit(context.Context) error   { return nil }
func (foreignTx) Rollback(context.Context) error { return nil }
