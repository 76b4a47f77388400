package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cashbook/internal/infrastructure/metrics"
)

// UnitOfWork runs a function inside one storage transaction. The transaction
// commits only if the function returns nil; any error rolls back every write
// made through tx. When a Retrier is configured the whole function is re-run
// on retryable failures.
type UnitOfWork struct {
	txManager TransactionManager
	retrier   Retrier
	timeout   time.Duration
	metrics   *metrics.Metrics
}

// NewUnitOfWork creates a UnitOfWork. retrier and m may be nil.
func NewUnitOfWork(txManager TransactionManager, retrier Retrier, timeout time.Duration, m *metrics.Metrics) *UnitOfWork {
	if timeout <= 0 {
		timeout = DefaultTransactionTimeout
	}

	return &UnitOfWork{
		txManager: txManager,
		retrier:   retrier,
		timeout:   timeout,
		metrics:   m,
	}
}

// Do executes fn atomically.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	if u.retrier == nil {
		return u.attempt(ctx, fn)
	}

	attempts := 0

	return u.retrier.Retry(ctx, func() error {
		attempts++
		if attempts > 1 {
			zerolog.Ctx(ctx).Debug().Int("attempt", attempts).Msg("retrying unit of work")

			if u.metrics != nil {
				u.metrics.UnitOfWorkRetries.Inc()
			}
		}

		return u.attempt(ctx, fn)
	})
}

func (u *UnitOfWork) attempt(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	txCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	tx, err := u.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := fn(txCtx, tx); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}
