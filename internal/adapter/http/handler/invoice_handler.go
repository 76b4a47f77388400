package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashbook/internal/adapter/http/dto"
	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

// InvoiceService defines the behavior needed by InvoiceHandler.
type InvoiceService interface {
	RegisterInvoice(ctx context.Context, input usecase.RegisterInvoiceInput) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]*domain.Invoice, error)
}

// InvoiceHandler handles invoice-related HTTP requests.
type InvoiceHandler struct {
	invoiceUC InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceUC InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceUC: invoiceUC}
}

// Create registers an unpaid invoice.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterInvoiceRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	invoice, err := h.invoiceUC.RegisterInvoice(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.InvoiceFromDomain(invoice))
}

// Get retrieves an invoice by ID.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoiceUC.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.InvoiceFromDomain(invoice))
}

// List lists invoices, optionally by status and counterparty.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.InvoiceFilter{Counterparty: r.URL.Query().Get("counterparty")}

	if s := r.URL.Query().Get("status"); s != "" {
		status, err := domain.ParsePaymentStatus(s)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		filter.Status = status
	}

	filter.Limit, filter.Offset = domain.ValidatePagination(parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))

	invoices, err := h.invoiceUC.ListInvoices(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListInvoicesResponse{
		Invoices: dto.InvoicesFromDomain(invoices),
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}
