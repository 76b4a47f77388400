package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind distinguishes cash registers from bank accounts.
type AccountKind string

const (
	AccountKindCash AccountKind = "CASH"
	AccountKindBank AccountKind = "BANK"
)

// IsValid checks if the kind is a known AccountKind.
func (k AccountKind) IsValid() bool {
	return k == AccountKindCash || k == AccountKindBank
}

// ParseAccountKind parses a kind case-insensitively.
func ParseAccountKind(s string) (AccountKind, error) {
	k := AccountKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountKind, s)
	}
	return k, nil
}

// Owner identifies who an account belongs to. Cash registers are owned by a
// branch; bank accounts additionally name the institution and account number.
type Owner struct {
	BranchID      string
	Institution   string
	AccountNumber string
	AccountType   string
}

// Validate checks the owner has the fields required for kind.
func (o Owner) Validate(kind AccountKind) error {
	if strings.TrimSpace(o.BranchID) == "" {
		return fmt.Errorf("%w: branch is required", ErrInvalidOwner)
	}
	if kind == AccountKindBank {
		if strings.TrimSpace(o.Institution) == "" || strings.TrimSpace(o.AccountNumber) == "" {
			return fmt.Errorf("%w: bank accounts need institution and account number", ErrInvalidOwner)
		}
	}
	return nil
}

// Ref returns the canonical key used to enforce one account per owner and kind.
func (o Owner) Ref(kind AccountKind) string {
	branch := strings.TrimSpace(o.BranchID)
	if kind == AccountKindCash {
		return "branch:" + branch
	}
	return strings.Join([]string{
		"branch:" + branch,
		"bank:" + strings.ToUpper(strings.TrimSpace(o.Institution)),
		"number:" + strings.TrimSpace(o.AccountNumber),
		"type:" + strings.ToUpper(strings.TrimSpace(o.AccountType)),
	}, "|")
}

// Account is a balance-bearing cash register or bank account.
// Balance always equals the sum of its transactions' signed amounts.
type Account struct {
	ID        string
	Kind      AccountKind
	Owner     Owner
	OwnerRef  string
	Balance   decimal.Decimal
	Version   int64
	TxnSeq    int64
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanPost reports whether new transactions may be recorded against the account.
func (a *Account) CanPost() error {
	if a.Archived {
		return fmt.Errorf("%w: %s", ErrAccountArchived, a.ID)
	}
	return nil
}

// ApplyDelta returns the balance after adding a signed amount.
func (a *Account) ApplyDelta(signed decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(signed)
}

// FormatTransactionNumber returns the display number of the seq-th
// transaction recorded on an account of the given kind.
func FormatTransactionNumber(kind AccountKind, seq int64) string {
	return fmt.Sprintf("%s-%06d", kind, seq)
}
