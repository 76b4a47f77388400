package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

// InvoiceRepository implements usecase.InvoiceRepository.
type InvoiceRepository struct {
	store *Store
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(store *Store) *InvoiceRepository {
	return &InvoiceRepository{store: store}
}

// Create stages a new invoice.
func (r *InvoiceRepository) Create(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if err := t.lock(ctx, "invoice:"+invoice.ID); err != nil {
		return err
	}

	r.store.mu.RLock()
	_, exists := t.invoice(invoice.ID)
	r.store.mu.RUnlock()
	if exists {
		return fmt.Errorf("%w: invoice %s already exists", domain.ErrValidationFailed, invoice.ID)
	}

	t.invoices[invoice.ID] = copyInvoice(invoice)
	return nil
}

// GetByID retrieves a committed invoice by ID.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	inv, ok := r.store.invoices[id]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	return copyInvoice(inv), nil
}

// GetByIDsForUpdate locks the invoices in the order given and returns the
// ones that exist.
func (r *InvoiceRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Invoice, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		if err := t.lock(ctx, "invoice:"+id); err != nil {
			return nil, err
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*domain.Invoice, 0, len(ids))
	for _, id := range ids {
		if inv, ok := t.invoice(id); ok {
			out = append(out, copyInvoice(inv))
		}
	}
	return out, nil
}

// Update stages new payment state if the version still matches.
func (r *InvoiceRepository) Update(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if err := t.lock(ctx, "invoice:"+invoice.ID); err != nil {
		return err
	}

	r.store.mu.RLock()
	current, ok := t.invoice(invoice.ID)
	r.store.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrInvoiceNotFound, invoice.ID)
	}

	if current.Version != invoice.Version {
		return fmt.Errorf("invoice %s: %w", invoice.ID, domain.ErrConcurrencyConflict)
	}

	invoice.Version++
	t.invoices[invoice.ID] = copyInvoice(invoice)

	return nil
}

// List lists committed invoices, oldest issue date first.
func (r *InvoiceRepository) List(ctx context.Context, filter domain.InvoiceFilter) ([]*domain.Invoice, error) {
	r.store.mu.RLock()
	out := make([]*domain.Invoice, 0, len(r.store.invoices))
	for _, inv := range r.store.invoices {
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if filter.Counterparty != "" && !strings.EqualFold(inv.Counterparty, filter.Counterparty) {
			continue
		}
		out = append(out, copyInvoice(inv))
	}
	r.store.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].IssuedAt.Equal(out[j].IssuedAt) {
			return out[i].IssuedAt.Before(out[j].IssuedAt)
		}
		return out[i].ID < out[j].ID
	})

	return page(out, filter.Limit, filter.Offset), nil
}
