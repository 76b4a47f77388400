package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a storage transaction
	// This prevents long-running transactions from blocking rows
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultStatementCacheTTL bounds how long a cached statement is served.
	DefaultStatementCacheTTL = 5 * time.Minute

	// transactionPageSize is the keyset page size used when streaming transactions.
	transactionPageSize = 200

	// consistentReadAttempts bounds how often a read is repeated when the
	// account changed underneath it.
	consistentReadAttempts = 3
)
