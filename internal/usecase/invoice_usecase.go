package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
)

// InvoiceUseCase is the invoice store used by the payment allocator.
// Invoices only change through RegisterPayment.
type InvoiceUseCase struct {
	uow         *UnitOfWork
	invoiceRepo InvoiceRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
}

// NewInvoiceUseCase creates a new InvoiceUseCase.
func NewInvoiceUseCase(uow *UnitOfWork, invoiceRepo InvoiceRepository, outboxRepo OutboxRepository, idGen IDGenerator) *InvoiceUseCase {
	return &InvoiceUseCase{
		uow:         uow,
		invoiceRepo: invoiceRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
	}
}

// RegisterInvoiceInput represents input for registering an invoice.
type RegisterInvoiceInput struct {
	IssuedAt     *time.Time
	Number       string
	Counterparty string
	Total        decimal.Decimal
}

// RegisterInvoice stores a new unpaid invoice.
func (uc *InvoiceUseCase) RegisterInvoice(ctx context.Context, input RegisterInvoiceInput) (*domain.Invoice, error) {
	if strings.TrimSpace(input.Number) == "" {
		return nil, fmt.Errorf("%w: invoice number is required", domain.ErrValidationFailed)
	}

	now := time.Now().UTC()

	var issuedAt time.Time
	if input.IssuedAt != nil {
		issuedAt = input.IssuedAt.UTC()
	}

	invoice, err := domain.NewInvoice(uc.idGen.Generate(), input.Number, input.Counterparty, input.Total, issuedAt, now)
	if err != nil {
		return nil, err
	}

	err = uc.uow.Do(ctx, func(ctx context.Context, tx Transaction) error {
		if err := uc.invoiceRepo.Create(ctx, tx, invoice); err != nil {
			return err
		}

		event := domain.NewOutboxEvent(
			uc.idGen.Generate(),
			domain.AggregateTypeInvoice,
			invoice.ID,
			domain.EventTypeInvoiceRegistered,
			map[string]any{
				"invoice_id":   invoice.ID,
				"number":       invoice.Number,
				"counterparty": invoice.Counterparty,
				"total":        invoice.Total.String(),
			},
			now,
		)

		return uc.outboxRepo.Create(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	return invoice, nil
}

// GetInvoice retrieves an invoice by ID.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	return uc.invoiceRepo.GetByID(ctx, id)
}

// ListInvoices lists invoices, optionally filtered by status or counterparty.
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]*domain.Invoice, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.invoiceRepo.List(ctx, filter)
}
