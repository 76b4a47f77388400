package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/metrics"
)

// ReconciliationUseCase checks that every stored balance equals the sum of
// its account's signed transaction amounts.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	metrics     *metrics.Metrics
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(accountRepo AccountRepository, txnRepo TransactionRepository, m *metrics.Metrics) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		metrics:     m,
	}
}

// ReconcileAccount compares one account's balance with its history.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*domain.Reconciliation, error) {
	for attempt := 0; attempt < consistentReadAttempts; attempt++ {
		account, err := uc.accountRepo.GetByID(ctx, accountID)
		if err != nil {
			return nil, err
		}

		totals, err := uc.txnRepo.Totals(ctx, accountID, domain.TransactionFilter{})
		if err != nil {
			return nil, err
		}

		current, err := uc.accountRepo.GetByID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if current.Version != account.Version {
			continue
		}

		computed := totals.Net()
		return &domain.Reconciliation{
			AccountID:        accountID,
			StoredBalance:    account.Balance,
			ComputedBalance:  computed,
			TransactionCount: totals.Count,
			Balanced:         account.Balance.Equal(computed),
			CheckedAt:        time.Now().UTC(),
		}, nil
	}

	return nil, fmt.Errorf("%w: account %s kept changing during reconciliation", domain.ErrConcurrencyConflict, accountID)
}

// ReconcileAll reconciles every account and reports the unbalanced ones.
func (uc *ReconciliationUseCase) ReconcileAll(ctx context.Context) (*ReconciliationReport, error) {
	const pageSize = 100

	report := &ReconciliationReport{CheckedAt: time.Now().UTC()}

	for offset := 0; ; offset += pageSize {
		accounts, err := uc.accountRepo.List(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, account := range accounts {
			result, err := uc.ReconcileAccount(ctx, account.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
			}

			report.TotalAccounts++
			if !result.Balanced {
				report.Unbalanced = append(report.Unbalanced, result)
				zerolog.Ctx(ctx).Error().
					Str("account_id", result.AccountID).
					Str("stored", result.StoredBalance.String()).
					Str("computed", result.ComputedBalance.String()).
					Msg("account balance diverges from its transactions")
			}
		}

		if len(accounts) < pageSize {
			break
		}
	}

	if uc.metrics != nil {
		uc.metrics.ReconciliationOff.Set(float64(len(report.Unbalanced)))
	}

	return report, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts int
	Unbalanced    []*domain.Reconciliation
	CheckedAt     time.Time
}

// Balanced reports whether every account reconciled.
func (r *ReconciliationReport) Balanced() bool {
	return len(r.Unbalanced) == 0
}
