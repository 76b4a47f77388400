package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/postgres/generated"
	"github.com/iho/cashbook/internal/usecase"
)

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	queries *generated.Queries
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return newPaymentRepository(pool)
}

func newPaymentRepository(db generated.DBTX) *PaymentRepository {
	return &PaymentRepository{queries: generated.New(db)}
}

// Create stores the payment and its allocations, keeping their order.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	err = queries.CreatePayment(ctx, generated.CreatePaymentParams{
		ID:            payment.ID,
		AccountID:     payment.AccountID,
		Direction:     string(payment.Direction),
		Amount:        decimalToNumeric(payment.Amount),
		Description:   payment.Description,
		TransactionID: payment.TransactionID,
		CreatedAt:     timeToPgTimestamptz(payment.CreatedAt),
	})
	if err != nil {
		return mapError(err, nil)
	}

	for i, a := range payment.Allocations {
		err := queries.CreatePaymentAllocation(ctx, generated.CreatePaymentAllocationParams{
			PaymentID:        payment.ID,
			Position:         int32(i),
			InvoiceID:        a.InvoiceID,
			AmountApplied:    decimalToNumeric(a.AmountApplied),
			BalanceRemaining: decimalToNumeric(a.BalanceRemaining),
			Status:           string(a.Status),
		})
		if err != nil {
			return mapError(err, nil)
		}
	}

	return nil
}

// GetByID retrieves a payment with its allocations.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	row, err := r.queries.GetPaymentByID(ctx, id)
	if err != nil {
		return nil, mapError(err, domain.ErrPaymentNotFound)
	}

	allocations, err := r.queries.GetPaymentAllocations(ctx, id)
	if err != nil {
		return nil, mapError(err, nil)
	}

	payment := &domain.Payment{
		ID:            row.ID,
		AccountID:     row.AccountID,
		Direction:     domain.PaymentDirection(row.Direction),
		Amount:        numericToDecimal(row.Amount),
		Description:   row.Description,
		TransactionID: row.TransactionID,
		CreatedAt:     timestamp(row.CreatedAt),
		Allocations:   make([]domain.Allocation, 0, len(allocations)),
	}
	for _, a := range allocations {
		payment.Allocations = append(payment.Allocations, domain.Allocation{
			InvoiceID:        a.InvoiceID,
			AmountApplied:    numericToDecimal(a.AmountApplied),
			BalanceRemaining: numericToDecimal(a.BalanceRemaining),
			Status:           domain.PaymentStatus(a.Status),
		})
	}

	return payment, nil
}
