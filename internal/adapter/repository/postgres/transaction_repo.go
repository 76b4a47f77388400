package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/postgres/generated"
	"github.com/iho/cashbook/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return newTransactionRepository(pool)
}

func newTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Create inserts a transaction within tx.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	err = queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:                txn.ID,
		AccountID:         txn.AccountID,
		Type:              string(txn.Type),
		Amount:            decimalToNumeric(txn.Amount),
		Description:       txn.Description,
		Category:          txn.Category,
		TransactionNumber: txn.TransactionNumber,
		RelatedTransferID: txn.RelatedTransferID,
		PaymentID:         txn.PaymentID,
		BalanceAfter:      decimalToNumeric(txn.BalanceAfter),
		Sequence:          txn.Sequence,
		OccurredAt:        timeToPgTimestamptz(txn.OccurredAt),
		CreatedAt:         timeToPgTimestamptz(txn.CreatedAt),
	})

	return mapError(err, nil)
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, mapError(err, domain.ErrTransactionNotFound)
	}

	return rowToTransaction(row), nil
}

// ListPage returns one keyset page in (occurred_at, sequence) order.
func (r *TransactionRepository) ListPage(ctx context.Context, accountID string, filter domain.TransactionFilter, cursor *usecase.Cursor, limit int) ([]*domain.Transaction, error) {
	params := generated.ListTransactionsPageParams{
		AccountID: accountID,
		FromAt:    optionalTimestamptz(filter.From),
		ToAt:      optionalTimestamptz(filter.To),
		PageSize:  int32(limit),
	}
	if cursor != nil {
		params.AfterAt = timeToPgTimestamptz(cursor.OccurredAt)
		params.AfterSeq = cursor.Sequence
	}

	rows, err := r.queries.ListTransactionsPage(ctx, params)
	if err != nil {
		return nil, mapError(err, nil)
	}

	return rowsToTransactions(rows), nil
}

// ListByTransfer returns both legs of a transfer.
func (r *TransactionRepository) ListByTransfer(ctx context.Context, transferID string) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByTransfer(ctx, &transferID)
	if err != nil {
		return nil, mapError(err, nil)
	}

	return rowsToTransactions(rows), nil
}

// Totals sums inflows and outflows in the window.
func (r *TransactionRepository) Totals(ctx context.Context, accountID string, filter domain.TransactionFilter) (domain.PeriodTotals, error) {
	row, err := r.queries.SumTransactions(ctx, generated.SumTransactionsParams{
		AccountID: accountID,
		FromAt:    optionalTimestamptz(filter.From),
		ToAt:      optionalTimestamptz(filter.To),
	})
	if err != nil {
		return domain.PeriodTotals{}, mapError(err, nil)
	}

	return domain.PeriodTotals{
		Inflows:  numericToDecimal(row.Inflows),
		Outflows: numericToDecimal(row.Outflows),
		Count:    int(row.Count),
	}, nil
}

func rowsToTransactions(rows []generated.Transaction) []*domain.Transaction {
	out := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToTransaction(row))
	}
	return out
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:                row.ID,
		AccountID:         row.AccountID,
		Type:              domain.TransactionType(row.Type),
		Amount:            numericToDecimal(row.Amount),
		Description:       row.Description,
		Category:          row.Category,
		TransactionNumber: row.TransactionNumber,
		RelatedTransferID: row.RelatedTransferID,
		PaymentID:         row.PaymentID,
		BalanceAfter:      numericToDecimal(row.BalanceAfter),
		Sequence:          row.Sequence,
		OccurredAt:        timestamp(row.OccurredAt),
		CreatedAt:         timestamp(row.CreatedAt),
	}
}

func timestamp(ts pgtype.Timestamptz) time.Time {
	return ts.Time.UTC()
}
