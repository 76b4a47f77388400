package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

// OwnerResponse represents an account owner in API responses.
type OwnerResponse struct {
	BranchID      string `json:"branch_id"`
	Institution   string `json:"institution,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	AccountType   string `json:"account_type,omitempty"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Owner     OwnerResponse   `json:"owner"`
	OwnerRef  string          `json:"owner_ref"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	Archived  bool            `json:"archived"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:   a.ID,
		Kind: string(a.Kind),
		Owner: OwnerResponse{
			BranchID:      a.Owner.BranchID,
			Institution:   a.Owner.Institution,
			AccountNumber: a.Owner.AccountNumber,
			AccountType:   a.Owner.AccountType,
		},
		OwnerRef:  a.OwnerRef,
		Balance:   a.Balance,
		Version:   a.Version,
		Archived:  a.Archived,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID                string          `json:"id"`
	AccountID         string          `json:"account_id"`
	TransactionNumber string          `json:"transaction_number"`
	Type              string          `json:"type"`
	Amount            decimal.Decimal `json:"amount"`
	BalanceAfter      decimal.Decimal `json:"balance_after"`
	Description       string          `json:"description"`
	Category          string          `json:"category,omitempty"`
	RelatedTransferID *string         `json:"related_transfer_id,omitempty"`
	PaymentID         *string         `json:"payment_id,omitempty"`
	OccurredAt        time.Time       `json:"occurred_at"`
	CreatedAt         time.Time       `json:"created_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	if t == nil {
		return nil
	}

	return &TransactionResponse{
		ID:                t.ID,
		AccountID:         t.AccountID,
		TransactionNumber: t.TransactionNumber,
		Type:              string(t.Type),
		Amount:            t.Amount,
		BalanceAfter:      t.BalanceAfter,
		Description:       t.Description,
		Category:          t.Category,
		RelatedTransferID: t.RelatedTransferID,
		PaymentID:         t.PaymentID,
		OccurredAt:        t.OccurredAt,
		CreatedAt:         t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse represents an account's transactions in date order.
type ListTransactionsResponse struct {
	AccountID    string                 `json:"account_id"`
	Transactions []*TransactionResponse `json:"transactions"`
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID            string               `json:"id"`
	FromAccountID string               `json:"from_account_id"`
	ToAccountID   string               `json:"to_account_id"`
	Amount        decimal.Decimal      `json:"amount"`
	Description   string               `json:"description"`
	OutTxn        *TransactionResponse `json:"out_transaction,omitempty"`
	InTxn         *TransactionResponse `json:"in_transaction,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:            t.ID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        t.Amount,
		Description:   t.Description,
		OutTxn:        TransactionFromDomain(t.OutTxn),
		InTxn:         TransactionFromDomain(t.InTxn),
		CreatedAt:     t.CreatedAt,
	}
}

// InvoiceResponse represents an invoice in API responses.
type InvoiceResponse struct {
	ID               string          `json:"id"`
	Number           string          `json:"number"`
	Counterparty     string          `json:"counterparty"`
	Total            decimal.Decimal `json:"total"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	BalanceRemaining decimal.Decimal `json:"balance_remaining"`
	Status           string          `json:"status"`
	Version          int64           `json:"version"`
	IssuedAt         time.Time       `json:"issued_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// InvoiceFromDomain converts domain invoice to response.
func InvoiceFromDomain(inv *domain.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:               inv.ID,
		Number:           inv.Number,
		Counterparty:     inv.Counterparty,
		Total:            inv.Total,
		AmountPaid:       inv.AmountPaid,
		BalanceRemaining: inv.BalanceRemaining(),
		Status:           string(inv.Status),
		Version:          inv.Version,
		IssuedAt:         inv.IssuedAt,
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
	}
}

// InvoicesFromDomain converts domain invoices to responses.
func InvoicesFromDomain(invoices []*domain.Invoice) []*InvoiceResponse {
	result := make([]*InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		result[i] = InvoiceFromDomain(inv)
	}
	return result
}

// ListInvoicesResponse represents a page of invoices.
type ListInvoicesResponse struct {
	Invoices []*InvoiceResponse `json:"invoices"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

// AllocationResponse reports one applied allocation.
type AllocationResponse struct {
	InvoiceID        string          `json:"invoice_id"`
	AmountApplied    decimal.Decimal `json:"amount_applied"`
	BalanceRemaining decimal.Decimal `json:"balance_remaining"`
	Status           string          `json:"status"`
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID            string               `json:"id"`
	AccountID     string               `json:"account_id"`
	Direction     string               `json:"direction"`
	Amount        decimal.Decimal      `json:"amount"`
	Description   string               `json:"description"`
	TransactionID string               `json:"transaction_id"`
	Allocations   []AllocationResponse `json:"allocations"`
	CreatedAt     time.Time            `json:"created_at"`
}

// PaymentFromDomain converts domain payment to response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	allocations := make([]AllocationResponse, len(p.Allocations))
	for i, a := range p.Allocations {
		allocations[i] = AllocationResponse{
			InvoiceID:        a.InvoiceID,
			AmountApplied:    a.AmountApplied,
			BalanceRemaining: a.BalanceRemaining,
			Status:           string(a.Status),
		}
	}

	return &PaymentResponse{
		ID:            p.ID,
		AccountID:     p.AccountID,
		Direction:     string(p.Direction),
		Amount:        p.Amount,
		Description:   p.Description,
		TransactionID: p.TransactionID,
		Allocations:   allocations,
		CreatedAt:     p.CreatedAt,
	}
}

// StatementLineResponse is one transaction with the balance around it.
type StatementLineResponse struct {
	Transaction   *TransactionResponse `json:"transaction"`
	BalanceBefore decimal.Decimal      `json:"balance_before"`
	BalanceAfter  decimal.Decimal      `json:"balance_after"`
}

// StatementResponse represents an account statement.
type StatementResponse struct {
	AccountID      string                  `json:"account_id"`
	AccountKind    string                  `json:"account_kind"`
	From           *time.Time              `json:"from,omitempty"`
	To             *time.Time              `json:"to,omitempty"`
	CurrentBalance decimal.Decimal         `json:"current_balance"`
	OpeningBalance decimal.Decimal         `json:"opening_balance"`
	ClosingBalance decimal.Decimal         `json:"closing_balance"`
	PeriodInflows  decimal.Decimal         `json:"period_inflows"`
	PeriodOutflows decimal.Decimal         `json:"period_outflows"`
	PeriodNet      decimal.Decimal         `json:"period_net"`
	AccountVersion int64                   `json:"account_version"`
	Lines          []StatementLineResponse `json:"lines"`
	GeneratedAt    time.Time               `json:"generated_at"`
}

// StatementFromDomain converts a domain statement to response.
func StatementFromDomain(s *domain.Statement) *StatementResponse {
	lines := make([]StatementLineResponse, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = StatementLineResponse{
			Transaction:   TransactionFromDomain(l.Transaction),
			BalanceBefore: l.BalanceBefore,
			BalanceAfter:  l.BalanceAfter,
		}
	}

	return &StatementResponse{
		AccountID:      s.AccountID,
		AccountKind:    string(s.AccountKind),
		From:           optionalTime(s.From),
		To:             optionalTime(s.To),
		CurrentBalance: s.CurrentBalance,
		OpeningBalance: s.OpeningBalance,
		ClosingBalance: s.ClosingBalance,
		PeriodInflows:  s.PeriodInflows,
		PeriodOutflows: s.PeriodOutflows,
		PeriodNet:      s.PeriodNet,
		AccountVersion: s.AccountVersion,
		Lines:          lines,
		GeneratedAt:    s.GeneratedAt,
	}
}

// ReconciliationResponse reports the balance check of one account.
type ReconciliationResponse struct {
	AccountID        string          `json:"account_id"`
	StoredBalance    decimal.Decimal `json:"stored_balance"`
	ComputedBalance  decimal.Decimal `json:"computed_balance"`
	Difference       decimal.Decimal `json:"difference"`
	TransactionCount int             `json:"transaction_count"`
	Balanced         bool            `json:"balanced"`
	CheckedAt        time.Time       `json:"checked_at"`
}

// ReconciliationFromDomain converts a domain reconciliation to response.
func ReconciliationFromDomain(r *domain.Reconciliation) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:        r.AccountID,
		StoredBalance:    r.StoredBalance,
		ComputedBalance:  r.ComputedBalance,
		Difference:       r.Difference(),
		TransactionCount: r.TransactionCount,
		Balanced:         r.Balanced,
		CheckedAt:        r.CheckedAt,
	}
}

// ReconciliationReportResponse summarizes a check of every account.
type ReconciliationReportResponse struct {
	TotalAccounts int                       `json:"total_accounts"`
	Balanced      bool                      `json:"balanced"`
	Unbalanced    []*ReconciliationResponse `json:"unbalanced"`
	CheckedAt     time.Time                 `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a reconciliation report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	unbalanced := make([]*ReconciliationResponse, len(r.Unbalanced))
	for i, u := range r.Unbalanced {
		unbalanced[i] = ReconciliationFromDomain(u)
	}

	return &ReconciliationReportResponse{
		TotalAccounts: r.TotalAccounts,
		Balanced:      r.Balanced(),
		Unbalanced:    unbalanced,
		CheckedAt:     r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error     string       `json:"error"`
	Message   string       `json:"message,omitempty"`
	InvoiceID string       `json:"invoice_id,omitempty"`
	Fields    []FieldError `json:"fields,omitempty"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
