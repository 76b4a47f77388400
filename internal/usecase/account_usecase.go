package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	uow         *UnitOfWork
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	owners      OwnerResolver
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase. owners may be nil, in
// which case every request must name its branch.
func NewAccountUseCase(
	uow *UnitOfWork,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	owners OwnerResolver,
	idGen IDGenerator,
	m *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		uow:         uow,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		owners:      owners,
		idGen:       idGen,
		metrics:     m,
	}
}

// GetOrCreateAccountInput represents input for resolving an account.
type GetOrCreateAccountInput struct {
	Kind  domain.AccountKind
	Owner domain.Owner
}

// GetOrCreateAccount returns the account for (owner, kind), creating it with
// a zero balance on first use. Concurrent first calls converge on one account.
// Archived accounts are returned as they are.
func (uc *AccountUseCase) GetOrCreateAccount(ctx context.Context, input GetOrCreateAccountInput) (*domain.Account, bool, error) {
	if !input.Kind.IsValid() {
		return nil, false, fmt.Errorf("%w: %q", domain.ErrInvalidAccountKind, input.Kind)
	}

	owner := input.Owner
	if owner.BranchID == "" && uc.owners != nil {
		branch, err := uc.owners.ResolveBranch(ctx)
		if err != nil {
			return nil, false, err
		}
		owner.BranchID = branch
	}

	if err := owner.Validate(input.Kind); err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	candidate := &domain.Account{
		ID:        uc.idGen.Generate(),
		Kind:      input.Kind,
		Owner:     owner,
		OwnerRef:  owner.Ref(input.Kind),
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var (
		account *domain.Account
		created bool
	)

	err := uc.uow.Do(ctx, func(ctx context.Context, tx Transaction) error {
		var err error
		account, created, err = uc.accountRepo.GetOrCreate(ctx, tx, candidate)
		if err != nil || !created {
			return err
		}

		event := domain.NewOutboxEvent(
			uc.idGen.Generate(),
			domain.AggregateTypeAccount,
			account.ID,
			domain.EventTypeAccountCreated,
			domain.EventPayload(domain.AccountCreatedEvent{
				AccountID: account.ID,
				Kind:      string(account.Kind),
				OwnerRef:  account.OwnerRef,
			}),
			now,
		)

		return uc.outboxRepo.Create(ctx, tx, event)
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		if uc.metrics != nil {
			uc.metrics.AccountsCreated.WithLabelValues(string(account.Kind)).Inc()
		}

		zerolog.Ctx(ctx).Info().
			Str("account_id", account.ID).
			Str("kind", string(account.Kind)).
			Str("owner_ref", account.OwnerRef).
			Msg("account created")
	}

	return account, created, nil
}

// ArchiveAccount marks an account as archived. Archived accounts keep their
// history and balance but reject new transactions.
func (uc *AccountUseCase) ArchiveAccount(ctx context.Context, id string) (*domain.Account, error) {
	now := time.Now().UTC()

	var account *domain.Account

	err := uc.uow.Do(ctx, func(ctx context.Context, tx Transaction) error {
		accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, []string{id})
		if err != nil {
			return err
		}

		if len(accounts) != 1 {
			return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
		}

		account = accounts[0]
		if account.Archived {
			return nil
		}

		if err := uc.accountRepo.SetArchived(ctx, tx, id, true, now); err != nil {
			return err
		}

		account.Archived = true
		account.UpdatedAt = now

		event := domain.NewOutboxEvent(
			uc.idGen.Generate(),
			domain.AggregateTypeAccount,
			account.ID,
			domain.EventTypeAccountArchived,
			map[string]any{"account_id": account.ID, "balance": account.Balance.String()},
			now,
		)

		return uc.outboxRepo.Create(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.accountRepo.List(ctx, input.Limit, input.Offset)
}
