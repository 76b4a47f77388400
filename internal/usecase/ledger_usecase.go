package usecase

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/metrics"
)

// LedgerUseCase records transactions against a single account and lists them.
type LedgerUseCase struct {
	uow         *UnitOfWork
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	uow *UnitOfWork,
	accountRepo AccountRepository,
	txnRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		uow:         uow,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		metrics:     m,
	}
}

// RecordTransactionInput represents input for recording a transaction.
type RecordTransactionInput struct {
	OccurredAt  *time.Time
	AccountID   string
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Description string
	Category    string
}

// RecordTransaction applies one INGRESO or EGRESO to an account. The balance
// change and the transaction row are written in the same unit of work.
func (uc *LedgerUseCase) RecordTransaction(ctx context.Context, input RecordTransactionInput) (*domain.Transaction, error) {
	start := time.Now()

	// Transfer legs are only created in pairs by TransferUseCase.
	if input.Type == domain.TransactionTypeTransferencia {
		return nil, uc.fail("record_transaction", fmt.Errorf("%w: transfers must be recorded through the transfer endpoint", domain.ErrInvalidTransactionType))
	}

	now := time.Now().UTC()
	occurredAt := now
	if input.OccurredAt != nil {
		occurredAt = input.OccurredAt.UTC()
	}

	txn := &domain.Transaction{
		ID:          uc.idGen.Generate(),
		AccountID:   input.AccountID,
		Type:        input.Type,
		Amount:      input.Amount,
		Description: input.Description,
		Category:    input.Category,
		OccurredAt:  occurredAt,
		CreatedAt:   now,
	}

	if err := txn.Validate(); err != nil {
		return nil, uc.fail("record_transaction", err)
	}

	if err := domain.ValidateCategory(txn.Category); err != nil {
		return nil, uc.fail("record_transaction", err)
	}

	err := uc.uow.Do(ctx, func(ctx context.Context, tx Transaction) error {
		account, err := lockAccount(ctx, tx, uc.accountRepo, input.AccountID)
		if err != nil {
			return err
		}

		if err := postTransaction(ctx, tx, uc.accountRepo, uc.txnRepo, account, txn); err != nil {
			return err
		}

		return emitTransactionRecorded(ctx, tx, uc.outboxRepo, uc.idGen, txn)
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("account_id", input.AccountID).
			Str("type", string(input.Type)).
			Msg("record transaction rolled back")

		return nil, uc.fail("record_transaction", err)
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsRecorded.WithLabelValues(string(txn.Type)).Inc()
		uc.metrics.TransactionAmount.WithLabelValues(string(txn.Type)).Observe(txn.Amount.InexactFloat64())
		uc.metrics.OperationDuration.WithLabelValues("record_transaction").Observe(time.Since(start).Seconds())
	}

	zerolog.Ctx(ctx).Info().
		Str("transaction_id", txn.ID).
		Str("account_id", txn.AccountID).
		Str("type", string(txn.Type)).
		Str("amount", txn.Amount.String()).
		Str("balance_after", txn.BalanceAfter.String()).
		Msg("transaction recorded")

	return txn, nil
}

// GetTransaction retrieves a transaction by ID.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txnRepo.GetByID(ctx, id)
}

// ListTransactions streams an account's transactions in date order, ties
// broken by insertion order. Pages are fetched lazily as the caller ranges
// over the sequence; ranging again starts over from the beginning.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, accountID string, filter domain.TransactionFilter) iter.Seq2[*domain.Transaction, error] {
	return streamTransactions(ctx, uc.txnRepo, accountID, filter)
}

// CollectTransactions drains ListTransactions into a slice.
func (uc *LedgerUseCase) CollectTransactions(ctx context.Context, accountID string, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	return collect(uc.ListTransactions(ctx, accountID, filter))
}

func (uc *LedgerUseCase) fail(op string, err error) error {
	if uc.metrics != nil {
		uc.metrics.OperationErrors.WithLabelValues(op, domain.Kind(err)).Inc()
	}
	return err
}

func streamTransactions(ctx context.Context, repo TransactionRepository, accountID string, filter domain.TransactionFilter) iter.Seq2[*domain.Transaction, error] {
	return func(yield func(*domain.Transaction, error) bool) {
		var cursor *Cursor

		for {
			page, err := repo.ListPage(ctx, accountID, filter, cursor, transactionPageSize)
			if err != nil {
				yield(nil, err)
				return
			}

			for _, t := range page {
				if !yield(t, nil) {
					return
				}
			}

			if len(page) < transactionPageSize {
				return
			}

			last := page[len(page)-1]
			cursor = &Cursor{OccurredAt: last.OccurredAt, Sequence: last.Sequence}
		}
	}
}

func collect(seq iter.Seq2[*domain.Transaction, error]) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for t, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// collectDescending returns the sequence most recent first.
func collectDescending(seq iter.Seq2[*domain.Transaction, error]) ([]*domain.Transaction, error) {
	out, err := collect(seq)
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

// lockAccount locks a single account for the rest of the unit of work and
// checks it accepts new transactions.
func lockAccount(ctx context.Context, tx Transaction, repo AccountRepository, id string) (*domain.Account, error) {
	accounts, err := repo.GetByIDsForUpdate(ctx, tx, []string{id})
	if err != nil {
		return nil, err
	}

	if len(accounts) != 1 {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	if err := accounts[0].CanPost(); err != nil {
		return nil, err
	}

	return accounts[0], nil
}

// postTransaction is the only path that changes a balance: it applies the
// signed amount to the locked account and inserts the transaction with the
// resulting balance and sequence.
func postTransaction(ctx context.Context, tx Transaction, accounts AccountRepository, txns TransactionRepository, account *domain.Account, txn *domain.Transaction) error {
	updated, err := accounts.ApplyDelta(ctx, tx, account.ID, txn.Signed(), txn.CreatedAt)
	if err != nil {
		return err
	}

	txn.Sequence = updated.TxnSeq
	txn.TransactionNumber = domain.FormatTransactionNumber(updated.Kind, updated.TxnSeq)
	txn.BalanceAfter = updated.Balance

	if err := txns.Create(ctx, tx, txn); err != nil {
		return err
	}

	*account = *updated

	return nil
}

func emitTransactionRecorded(ctx context.Context, tx Transaction, outbox OutboxRepository, idGen IDGenerator, txn *domain.Transaction) error {
	event := domain.NewOutboxEvent(
		idGen.Generate(),
		domain.AggregateTypeTransaction,
		txn.ID,
		domain.EventTypeTransactionRecorded,
		domain.EventPayload(domain.TransactionRecordedEvent{
			TransactionID:     txn.ID,
			AccountID:         txn.AccountID,
			Type:              string(txn.Type),
			Amount:            txn.Amount.String(),
			BalanceAfter:      txn.BalanceAfter.String(),
			TransactionNumber: txn.TransactionNumber,
		}),
		txn.CreatedAt,
	)

	return outbox.Create(ctx, tx, event)
}
