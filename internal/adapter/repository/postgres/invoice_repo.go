package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/postgres/generated"
	"github.com/iho/cashbook/internal/usecase"
)

// InvoiceRepository implements usecase.InvoiceRepository.
type InvoiceRepository struct {
	queries *generated.Queries
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return newInvoiceRepository(pool)
}

func newInvoiceRepository(db generated.DBTX) *InvoiceRepository {
	return &InvoiceRepository{queries: generated.New(db)}
}

// Create inserts an invoice. A duplicate number fails validation.
func (r *InvoiceRepository) Create(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	err = queries.CreateInvoice(ctx, generated.CreateInvoiceParams{
		ID:           invoice.ID,
		Number:       invoice.Number,
		Counterparty: invoice.Counterparty,
		Total:        decimalToNumeric(invoice.Total),
		AmountPaid:   decimalToNumeric(invoice.AmountPaid),
		Status:       string(invoice.Status),
		Version:      invoice.Version,
		IssuedAt:     timeToPgTimestamptz(invoice.IssuedAt),
		CreatedAt:    timeToPgTimestamptz(invoice.CreatedAt),
		UpdatedAt:    timeToPgTimestamptz(invoice.UpdatedAt),
	})

	return mapError(err, nil)
}

// GetByID retrieves an invoice by ID.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	row, err := r.queries.GetInvoiceByID(ctx, id)
	if err != nil {
		return nil, mapError(err, domain.ErrInvoiceNotFound)
	}

	return rowToInvoice(row), nil
}

// GetByIDsForUpdate locks the given invoices in id order.
func (r *InvoiceRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Invoice, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.GetInvoicesByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, mapError(err, nil)
	}

	return rowsToInvoices(rows), nil
}

// Update writes the paid amount and status guarded by the version the
// invoice was read at. The caller's copy gets the new version.
func (r *InvoiceRepository) Update(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := queries.UpdateInvoicePayment(ctx, generated.UpdateInvoicePaymentParams{
		AmountPaid: decimalToNumeric(invoice.AmountPaid),
		Status:     string(invoice.Status),
		UpdatedAt:  timeToPgTimestamptz(invoice.UpdatedAt),
		ID:         invoice.ID,
		Version:    invoice.Version,
	})
	if err != nil {
		return mapError(err, nil)
	}
	if n == 0 {
		return fmt.Errorf("%w: invoice %s changed since it was read", domain.ErrConcurrencyConflict, invoice.ID)
	}

	invoice.Version++

	return nil
}

// List filters invoices by status and counterparty.
func (r *InvoiceRepository) List(ctx context.Context, filter domain.InvoiceFilter) ([]*domain.Invoice, error) {
	rows, err := r.queries.ListInvoices(ctx, generated.ListInvoicesParams{
		Status:       optionalString(string(filter.Status)),
		Counterparty: optionalString(filter.Counterparty),
		PageLimit:    int32(filter.Limit),
		PageOffset:   int32(filter.Offset),
	})
	if err != nil {
		return nil, mapError(err, nil)
	}

	return rowsToInvoices(rows), nil
}

func rowsToInvoices(rows []generated.Invoice) []*domain.Invoice {
	out := make([]*domain.Invoice, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToInvoice(row))
	}
	return out
}

func rowToInvoice(row generated.Invoice) *domain.Invoice {
	return &domain.Invoice{
		ID:           row.ID,
		Number:       row.Number,
		Counterparty: row.Counterparty,
		Total:        numericToDecimal(row.Total),
		AmountPaid:   numericToDecimal(row.AmountPaid),
		Status:       domain.PaymentStatus(row.Status),
		Version:      row.Version,
		IssuedAt:     timestamp(row.IssuedAt),
		CreatedAt:    timestamp(row.CreatedAt),
		UpdatedAt:    timestamp(row.UpdatedAt),
	}
}
