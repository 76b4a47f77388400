package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashbook/internal/adapter/http/dto"
	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

// StatementService defines the behavior needed by StatementHandler.
type StatementService interface {
	BuildStatement(ctx context.Context, accountID string, filter domain.TransactionFilter) (*domain.Statement, error)
}

// ReconciliationService defines the balance checks exposed over HTTP.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, accountID string) (*domain.Reconciliation, error)
	ReconcileAll(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// StatementHandler serves statements and reconciliation checks.
type StatementHandler struct {
	statementUC      StatementService
	reconciliationUC ReconciliationService
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementUC StatementService, reconciliationUC ReconciliationService) *StatementHandler {
	return &StatementHandler{
		statementUC:      statementUC,
		reconciliationUC: reconciliationUC,
	}
}

// Statement returns the account's lines in the window with opening, closing
// and current balances.
func (h *StatementHandler) Statement(w http.ResponseWriter, r *http.Request) {
	filter, err := parseWindow(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	st, err := h.statementUC.BuildStatement(r.Context(), chi.URLParam(r, "id"), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromDomain(st))
}

// ReconcileAccount compares one stored balance with its transactions.
func (h *StatementHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciliationUC.ReconcileAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromDomain(result))
}

// ReconcileAll checks every account.
func (h *StatementHandler) ReconcileAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.ReconcileAll(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}
