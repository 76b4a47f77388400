package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/metrics"
)

// StatementUseCase builds account statements for reporting and export.
type StatementUseCase struct {
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	cache       Cache
	cacheTTL    time.Duration
	metrics     *metrics.Metrics
}

// NewStatementUseCase creates a new StatementUseCase. cache may be nil.
func NewStatementUseCase(accountRepo AccountRepository, txnRepo TransactionRepository, cache Cache, cacheTTL time.Duration, m *metrics.Metrics) *StatementUseCase {
	if cacheTTL <= 0 {
		cacheTTL = DefaultStatementCacheTTL
	}

	return &StatementUseCase{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		metrics:     m,
	}
}

// BuildStatement returns the statement of an account over filter. Lines are
// most recent first; their running balances are anchored at the balance at
// the end of the window, so they are exact even for a narrow window.
func (uc *StatementUseCase) BuildStatement(ctx context.Context, accountID string, filter domain.TransactionFilter) (*domain.Statement, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return nil, fmt.Errorf("%w: from must be before to", domain.ErrValidationFailed)
	}

	for attempt := 0; attempt < consistentReadAttempts; attempt++ {
		account, err := uc.accountRepo.GetByID(ctx, accountID)
		if err != nil {
			return nil, err
		}

		key := statementCacheKey(account, filter)
		if st := uc.fromCache(ctx, key); st != nil {
			return st, nil
		}

		window, err := collectDescending(streamTransactions(ctx, uc.txnRepo, accountID, filter))
		if err != nil {
			return nil, err
		}

		laterNet := decimal.Zero
		if !filter.To.IsZero() {
			later, err := uc.txnRepo.Totals(ctx, accountID, domain.TransactionFilter{From: filter.To})
			if err != nil {
				return nil, err
			}
			laterNet = later.Net()
		}

		// Discard the reads if a transaction was posted while they ran
		current, err := uc.accountRepo.GetByID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if current.Version != account.Version {
			continue
		}

		st := domain.BuildStatement(account, filter, window, laterNet, time.Now().UTC())
		uc.toCache(ctx, key, st)

		return st, nil
	}

	return nil, fmt.Errorf("%w: account %s kept changing while building its statement", domain.ErrConcurrencyConflict, accountID)
}

// RunningBalance reconstructs before/after balances for transactions that
// end at the account's current balance, most recent first.
func (uc *StatementUseCase) RunningBalance(ctx context.Context, accountID string, since time.Time) ([]domain.StatementLine, error) {
	st, err := uc.BuildStatement(ctx, accountID, domain.TransactionFilter{From: since})
	if err != nil {
		return nil, err
	}
	return st.Lines, nil
}

func statementCacheKey(account *domain.Account, filter domain.TransactionFilter) string {
	return fmt.Sprintf("statement:%s:v%d:%d:%d", account.ID, account.Version, unixOrZero(filter.From), unixOrZero(filter.To))
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func (uc *StatementUseCase) fromCache(ctx context.Context, key string) *domain.Statement {
	if uc.cache == nil {
		return nil
	}

	raw, err := uc.cache.Get(ctx, key)
	if err != nil || raw == nil {
		if uc.metrics != nil {
			uc.metrics.StatementCacheMisses.Inc()
		}
		return nil
	}

	var st domain.Statement
	if err := json.Unmarshal(raw, &st); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("discarding unreadable cached statement")
		_ = uc.cache.Delete(ctx, key)
		return nil
	}

	if uc.metrics != nil {
		uc.metrics.StatementCacheHits.Inc()
	}

	return &st
}

func (uc *StatementUseCase) toCache(ctx context.Context, key string, st *domain.Statement) {
	if uc.cache == nil {
		return
	}

	raw, err := json.Marshal(st)
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, key, raw, uc.cacheTTL); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to cache statement")
	}
}
