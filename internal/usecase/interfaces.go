package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	// GetOrCreate inserts account unless one already exists for its
	// (Kind, OwnerRef). It returns the stored account and whether it was created.
	GetOrCreate(ctx context.Context, tx Transaction, account *domain.Account) (*domain.Account, bool, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	// ApplyDelta adds signed to the stored balance, bumps the version and the
	// transaction sequence, and returns the updated account.
	ApplyDelta(ctx context.Context, tx Transaction, id string, signed decimal.Decimal, updatedAt time.Time) (*domain.Account, error)
	SetArchived(ctx context.Context, tx Transaction, id string, archived bool, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	// ListPage returns up to limit transactions in (OccurredAt, Sequence)
	// ascending order, strictly after cursor when cursor is non-nil.
	ListPage(ctx context.Context, accountID string, filter domain.TransactionFilter, cursor *Cursor, limit int) ([]*domain.Transaction, error)
	ListByTransfer(ctx context.Context, transferID string) ([]*domain.Transaction, error)
	Totals(ctx context.Context, accountID string, filter domain.TransactionFilter) (domain.PeriodTotals, error)
}

// Cursor is a keyset position in a transaction listing.
type Cursor struct {
	OccurredAt time.Time
	Sequence   int64
}

// TransferRepository defines data access for transfers.
type TransferRepository interface {
	Create(ctx context.Context, tx Transaction, transfer *domain.Transfer) error
	GetByID(ctx context.Context, id string) (*domain.Transfer, error)
}

// InvoiceRepository defines data access for invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, tx Transaction, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Invoice, error)
	// Update persists amount paid and status if the stored version still
	// matches invoice.Version, then increments it.
	Update(ctx context.Context, tx Transaction, invoice *domain.Invoice) error
	List(ctx context.Context, filter domain.InvoiceFilter) ([]*domain.Invoice, error)
}

// PaymentRepository defines data access for payments.
type PaymentRepository interface {
	Create(ctx context.Context, tx Transaction, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a storage transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs a whole unit of work when it fails with a retryable error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// OwnerResolver resolves the branch the caller acts for.
type OwnerResolver interface {
	ResolveBranch(ctx context.Context) (string, error)
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request failed so it can be retried.
	Release(ctx context.Context, key string) error
}
