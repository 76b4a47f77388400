package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/metrics"
)

// TransferUseCase handles transfer business logic.
type TransferUseCase struct {
	uow          *UnitOfWork
	accountRepo  AccountRepository
	txnRepo      TransactionRepository
	transferRepo TransferRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	metrics      *metrics.Metrics
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	uow *UnitOfWork,
	accountRepo AccountRepository,
	txnRepo TransactionRepository,
	transferRepo TransferRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *TransferUseCase {
	return &TransferUseCase{
		uow:          uow,
		accountRepo:  accountRepo,
		txnRepo:      txnRepo,
		transferRepo: transferRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		metrics:      m,
	}
}

// CreateTransferInput represents input for creating a transfer.
type CreateTransferInput struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Description   string
}

// CreateTransfer moves funds between two accounts. Both legs are committed
// together or not at all. Balances may go negative.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*domain.Transfer, error) {
	start := time.Now()
	now := start.UTC()

	transfer := &domain.Transfer{
		ID:            uc.idGen.Generate(),
		FromAccountID: input.FromAccountID,
		ToAccountID:   input.ToAccountID,
		Amount:        input.Amount,
		Description:   input.Description,
		CreatedAt:     now,
	}

	// Validate before starting the unit of work
	if err := transfer.Validate(); err != nil {
		return nil, uc.fail(err)
	}

	outTxn, inTxn := transfer.Legs(uc.idGen.Generate(), uc.idGen.Generate(), now)
	transfer.OutTxn, transfer.InTxn = outTxn, inTxn

	// Lock in sorted order (DEADLOCK PREVENTION)
	accountIDs := []string{input.FromAccountID, input.ToAccountID}
	sort.Strings(accountIDs)

	err := uc.uow.Do(ctx, func(ctx context.Context, tx Transaction) error {
		accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, accountIDs)
		if err != nil {
			return err
		}

		byID := make(map[string]*domain.Account, len(accounts))
		for _, a := range accounts {
			byID[a.ID] = a
		}

		from, to := byID[input.FromAccountID], byID[input.ToAccountID]
		if from == nil {
			return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, input.FromAccountID)
		}

		if to == nil {
			return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, input.ToAccountID)
		}

		if err := from.CanPost(); err != nil {
			return err
		}

		if err := to.CanPost(); err != nil {
			return err
		}

		if err := uc.transferRepo.Create(ctx, tx, transfer); err != nil {
			return err
		}

		if err := postTransaction(ctx, tx, uc.accountRepo, uc.txnRepo, from, outTxn); err != nil {
			return err
		}

		if err := postTransaction(ctx, tx, uc.accountRepo, uc.txnRepo, to, inTxn); err != nil {
			return err
		}

		event := domain.NewOutboxEvent(
			uc.idGen.Generate(),
			domain.AggregateTypeTransfer,
			transfer.ID,
			domain.EventTypeTransferCompleted,
			domain.EventPayload(domain.TransferCompletedEvent{
				TransferID:    transfer.ID,
				FromAccountID: transfer.FromAccountID,
				ToAccountID:   transfer.ToAccountID,
				Amount:        transfer.Amount.String(),
			}),
			now,
		)

		return uc.outboxRepo.Create(ctx, tx, event)
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("from_account_id", input.FromAccountID).
			Str("to_account_id", input.ToAccountID).
			Msg("transfer rolled back")

		return nil, uc.fail(err)
	}

	if uc.metrics != nil {
		uc.metrics.TransfersCompleted.Inc()
		uc.metrics.OperationDuration.WithLabelValues("transfer").Observe(time.Since(start).Seconds())
	}

	zerolog.Ctx(ctx).Info().
		Str("transfer_id", transfer.ID).
		Str("from_account_id", transfer.FromAccountID).
		Str("to_account_id", transfer.ToAccountID).
		Str("amount", transfer.Amount.String()).
		Msg("transfer completed")

	return transfer, nil
}

// GetTransfer retrieves a transfer by ID together with both legs.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	transfer, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	legs, err := uc.txnRepo.ListByTransfer(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, leg := range legs {
		switch leg.AccountID {
		case transfer.FromAccountID:
			transfer.OutTxn = leg
		case transfer.ToAccountID:
			transfer.InTxn = leg
		}
	}

	return transfer, nil
}

func (uc *TransferUseCase) fail(err error) error {
	if uc.metrics != nil {
		uc.metrics.OperationErrors.WithLabelValues("transfer", domain.Kind(err)).Inc()
	}
	return err
}
