package usecase

import (
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/metrics"
)

// PaymentUseCase allocates a payment across caller-selected invoices.
type PaymentUseCase struct {
	uow         *UnitOfWork
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	invoiceRepo InvoiceRepository
	paymentRepo PaymentRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	uow *UnitOfWork,
	accountRepo AccountRepository,
	txnRepo TransactionRepository,
	invoiceRepo InvoiceRepository,
	paymentRepo PaymentRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *PaymentUseCase {
	return &PaymentUseCase{
		uow:         uow,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		metrics:     m,
	}
}

// AllocationInput is one caller-chosen split of a payment.
type AllocationInput struct {
	InvoiceID     string
	AmountApplied decimal.Decimal
}

// RegisterPaymentInput represents input for registering a payment.
type RegisterPaymentInput struct {
	AccountID   string
	Direction   domain.PaymentDirection
	Amount      decimal.Decimal
	Description string
	Allocations []AllocationInput
}

// RegisterPayment records one transaction for the full amount on the account
// and applies every allocation to its invoice, all in one unit of work.
// Allocations are applied exactly as given, in the given order.
func (uc *PaymentUseCase) RegisterPayment(ctx context.Context, input RegisterPaymentInput) (*domain.Payment, error) {
	start := time.Now()
	now := start.UTC()

	direction := input.Direction
	if direction == "" {
		direction = domain.PaymentDirectionOutflow
	}

	payment := &domain.Payment{
		ID:          uc.idGen.Generate(),
		AccountID:   input.AccountID,
		Direction:   direction,
		Amount:      input.Amount,
		Description: input.Description,
		Allocations: make([]domain.Allocation, len(input.Allocations)),
		CreatedAt:   now,
	}
	for i, a := range input.Allocations {
		payment.Allocations[i] = domain.Allocation{InvoiceID: a.InvoiceID, AmountApplied: a.AmountApplied}
	}

	// Amount, sum and shape checks need no stored state
	if err := payment.Validate(); err != nil {
		return nil, uc.fail(err)
	}

	paymentID := payment.ID
	txn := &domain.Transaction{
		ID:          uc.idGen.Generate(),
		AccountID:   payment.AccountID,
		Type:        direction.TransactionType(),
		Amount:      payment.Amount,
		Description: payment.Description,
		Category:    domain.CategoryPayment,
		PaymentID:   &paymentID,
		OccurredAt:  now,
		CreatedAt:   now,
	}
	payment.TransactionID = txn.ID

	invoiceIDs := payment.InvoiceIDs()
	slices.Sort(invoiceIDs)

	err := uc.uow.Do(ctx, func(ctx context.Context, tx Transaction) error {
		// Account first, then invoices in sorted order (DEADLOCK PREVENTION)
		account, err := lockAccount(ctx, tx, uc.accountRepo, payment.AccountID)
		if err != nil {
			return err
		}

		locked, err := uc.invoiceRepo.GetByIDsForUpdate(ctx, tx, invoiceIDs)
		if err != nil {
			return err
		}

		invoices := make(map[string]*domain.Invoice, len(locked))
		for _, inv := range locked {
			invoices[inv.ID] = inv
		}

		// Check every allocation before mutating anything
		for _, a := range payment.Allocations {
			inv, ok := invoices[a.InvoiceID]
			if !ok {
				return &domain.AllocationError{InvoiceID: a.InvoiceID, Requested: a.AmountApplied, Err: domain.ErrInvoiceNotFound}
			}

			if err := inv.CheckAllocation(a.AmountApplied); err != nil {
				return err
			}
		}

		if err := postTransaction(ctx, tx, uc.accountRepo, uc.txnRepo, account, txn); err != nil {
			return err
		}

		for i := range payment.Allocations {
			a := &payment.Allocations[i]
			inv := invoices[a.InvoiceID]

			if err := inv.ApplyAllocation(a.AmountApplied, now); err != nil {
				return err
			}

			if err := uc.invoiceRepo.Update(ctx, tx, inv); err != nil {
				return err
			}

			a.BalanceRemaining = inv.BalanceRemaining()
			a.Status = inv.Status
		}

		if err := uc.paymentRepo.Create(ctx, tx, payment); err != nil {
			return err
		}

		if err := emitTransactionRecorded(ctx, tx, uc.outboxRepo, uc.idGen, txn); err != nil {
			return err
		}

		return uc.outboxRepo.Create(ctx, tx, paymentEvent(uc.idGen.Generate(), payment))
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("account_id", input.AccountID).
			Strs("invoice_ids", invoiceIDs).
			Msg("payment rolled back")

		return nil, uc.fail(err)
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsRegistered.WithLabelValues(string(payment.Direction)).Inc()
		for _, a := range payment.Allocations {
			uc.metrics.AllocationsApplied.WithLabelValues(string(a.Status)).Inc()
		}
		uc.metrics.OperationDuration.WithLabelValues("register_payment").Observe(time.Since(start).Seconds())
	}

	zerolog.Ctx(ctx).Info().
		Str("payment_id", payment.ID).
		Str("account_id", payment.AccountID).
		Str("amount", payment.Amount.String()).
		Int("allocations", len(payment.Allocations)).
		Msg("payment registered")

	return payment, nil
}

// GetPayment retrieves a payment by ID.
func (uc *PaymentUseCase) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return uc.paymentRepo.GetByID(ctx, id)
}

func (uc *PaymentUseCase) fail(err error) error {
	if uc.metrics != nil {
		uc.metrics.OperationErrors.WithLabelValues("register_payment", domain.Kind(err)).Inc()
	}
	return err
}

func paymentEvent(id string, p *domain.Payment) *domain.OutboxEvent {
	records := make([]domain.AllocationRecord, len(p.Allocations))
	for i, a := range p.Allocations {
		records[i] = domain.AllocationRecord{
			InvoiceID:        a.InvoiceID,
			AmountApplied:    a.AmountApplied.String(),
			BalanceRemaining: a.BalanceRemaining.String(),
			Status:           string(a.Status),
		}
	}

	return domain.NewOutboxEvent(
		id,
		domain.AggregateTypePayment,
		p.ID,
		domain.EventTypePaymentRegistered,
		domain.EventPayload(domain.PaymentRegisteredEvent{
			PaymentID:   p.ID,
			AccountID:   p.AccountID,
			Direction:   string(p.Direction),
			Amount:      p.Amount.String(),
			Allocations: records,
		}),
		p.CreatedAt,
	)
}
