package dto

import (
	"time"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

// OwnerRequest identifies who an account belongs to. Bank fields are only
// read for BANK accounts.
type OwnerRequest struct {
	BranchID      string `json:"branch_id" validate:"max=64"`
	Institution   string `json:"institution,omitempty" validate:"max=128"`
	AccountNumber string `json:"account_number,omitempty" validate:"max=64"`
	AccountType   string `json:"account_type,omitempty" validate:"max=32"`
}

// CreateAccountRequest represents a request to resolve or open an account.
type CreateAccountRequest struct {
	Kind  string       `json:"kind" validate:"required"`
	Owner OwnerRequest `json:"owner"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() (usecase.GetOrCreateAccountInput, error) {
	kind, err := domain.ParseAccountKind(r.Kind)
	if err != nil {
		return usecase.GetOrCreateAccountInput{}, err
	}

	return usecase.GetOrCreateAccountInput{
		Kind: kind,
		Owner: domain.Owner{
			BranchID:      r.Owner.BranchID,
			Institution:   r.Owner.Institution,
			AccountNumber: r.Owner.AccountNumber,
			AccountType:   r.Owner.AccountType,
		},
	}, nil
}

// RecordTransactionRequest represents a single INGRESO or EGRESO.
type RecordTransactionRequest struct {
	Type        string     `json:"type" validate:"required"`
	Amount      string     `json:"amount" validate:"required,amount"`
	Description string     `json:"description" validate:"max=500"`
	Category    string     `json:"category,omitempty" validate:"max=100"`
	OccurredAt  *time.Time `json:"occurred_at,omitempty"`
}

// ToUseCaseInput converts to use case input for accountID.
func (r *RecordTransactionRequest) ToUseCaseInput(accountID string) (usecase.RecordTransactionInput, error) {
	txnType, err := domain.ParseTransactionType(r.Type)
	if err != nil {
		return usecase.RecordTransactionInput{}, err
	}

	amount, err := domain.ParseAmount(r.Amount)
	if err != nil {
		return usecase.RecordTransactionInput{}, err
	}

	return usecase.RecordTransactionInput{
		OccurredAt:  r.OccurredAt,
		AccountID:   accountID,
		Type:        txnType,
		Amount:      amount,
		Description: r.Description,
		Category:    r.Category,
	}, nil
}

// CreateTransferRequest represents a request to create a transfer.
type CreateTransferRequest struct {
	FromAccountID string `json:"from_account_id" validate:"required"`
	ToAccountID   string `json:"to_account_id" validate:"required"`
	Amount        string `json:"amount" validate:"required,amount"`
	Description   string `json:"description" validate:"max=500"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() (usecase.CreateTransferInput, error) {
	amount, err := domain.ParseAmount(r.Amount)
	if err != nil {
		return usecase.CreateTransferInput{}, err
	}

	return usecase.CreateTransferInput{
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        amount,
		Description:   r.Description,
	}, nil
}

// AllocationRequest is one split of a payment onto an invoice.
type AllocationRequest struct {
	InvoiceID     string `json:"invoice_id" validate:"required"`
	AmountApplied string `json:"amount_applied" validate:"required,amount"`
}

// RegisterPaymentRequest represents a payment split across invoices.
type RegisterPaymentRequest struct {
	AccountID   string              `json:"account_id" validate:"required"`
	Direction   string              `json:"direction,omitempty"`
	Amount      string              `json:"amount" validate:"required,amount"`
	Description string              `json:"description" validate:"max=500"`
	Allocations []AllocationRequest `json:"allocations" validate:"required,min=1,max=200,dive"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterPaymentRequest) ToUseCaseInput() (usecase.RegisterPaymentInput, error) {
	direction, err := domain.ParsePaymentDirection(r.Direction)
	if err != nil {
		return usecase.RegisterPaymentInput{}, err
	}

	amount, err := domain.ParseAmount(r.Amount)
	if err != nil {
		return usecase.RegisterPaymentInput{}, err
	}

	allocations := make([]usecase.AllocationInput, len(r.Allocations))
	for i, a := range r.Allocations {
		applied, err := domain.ParseAmount(a.AmountApplied)
		if err != nil {
			return usecase.RegisterPaymentInput{}, err
		}
		allocations[i] = usecase.AllocationInput{InvoiceID: a.InvoiceID, AmountApplied: applied}
	}

	return usecase.RegisterPaymentInput{
		AccountID:   r.AccountID,
		Direction:   direction,
		Amount:      amount,
		Description: r.Description,
		Allocations: allocations,
	}, nil
}

// RegisterInvoiceRequest represents a new unpaid invoice.
type RegisterInvoiceRequest struct {
	Number       string     `json:"number" validate:"required,max=64"`
	Counterparty string     `json:"counterparty" validate:"required,max=255"`
	Total        string     `json:"total" validate:"required,amount"`
	IssuedAt     *time.Time `json:"issued_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterInvoiceRequest) ToUseCaseInput() (usecase.RegisterInvoiceInput, error) {
	total, err := domain.ParseAmount(r.Total)
	if err != nil {
		return usecase.RegisterInvoiceInput{}, err
	}

	return usecase.RegisterInvoiceInput{
		IssuedAt:     r.IssuedAt,
		Number:       r.Number,
		Counterparty: r.Counterparty,
		Total:        total,
	}, nil
}
