package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAccountKind(t *testing.T) {
	tests := []struct {
		input       string
		expected    AccountKind
		expectError bool
	}{
		{input: "CASH", expected: AccountKindCash},
		{input: "bank", expected: AccountKindBank},
		{input: " Cash ", expected: AccountKindCash},
		{input: "savings", expectError: true},
		{input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseAccountKind(tt.input)
			if tt.expectError {
				if !errors.Is(err, ErrInvalidAccountKind) {
					t.Errorf("expected ErrInvalidAccountKind, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if kind != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, kind)
			}
		})
	}
}

func TestOwner_Validate(t *testing.T) {
	tests := []struct {
		name        string
		owner       Owner
		kind        AccountKind
		expectError bool
	}{
		{name: "cash with branch", owner: Owner{BranchID: "norte"}, kind: AccountKindCash},
		{name: "cash without branch", owner: Owner{}, kind: AccountKindCash, expectError: true},
		{
			name:  "bank complete",
			owner: Owner{BranchID: "norte", Institution: "Banco Uno", AccountNumber: "001-22", AccountType: "corriente"},
			kind:  AccountKindBank,
		},
		{name: "bank without number", owner: Owner{BranchID: "norte", Institution: "Banco Uno"}, kind: AccountKindBank, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.owner.Validate(tt.kind)
			if tt.expectError && !errors.Is(err, ErrInvalidOwner) {
				t.Errorf("expected ErrInvalidOwner, got %v", err)
			}

			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestOwner_Ref(t *testing.T) {
	cash := Owner{BranchID: " norte "}
	if got := cash.Ref(AccountKindCash); got != "branch:norte" {
		t.Errorf("unexpected cash ref %q", got)
	}

	a := Owner{BranchID: "norte", Institution: "banco uno", AccountNumber: "001", AccountType: "corriente"}
	b := Owner{BranchID: "norte", Institution: "BANCO UNO ", AccountNumber: "001", AccountType: "CORRIENTE"}
	if a.Ref(AccountKindBank) != b.Ref(AccountKindBank) {
		t.Errorf("expected equal refs, got %q and %q", a.Ref(AccountKindBank), b.Ref(AccountKindBank))
	}

	c := Owner{BranchID: "norte", Institution: "banco uno", AccountNumber: "002", AccountType: "corriente"}
	if a.Ref(AccountKindBank) == c.Ref(AccountKindBank) {
		t.Error("different account numbers must not share a ref")
	}
}

func TestAccount_CanPost(t *testing.T) {
	acc := &Account{ID: "acc-1"}
	if err := acc.CanPost(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	acc.Archived = true
	if err := acc.CanPost(); !errors.Is(err, ErrAccountArchived) {
		t.Errorf("expected ErrAccountArchived, got %v", err)
	}
}

func TestAccount_ApplyDelta(t *testing.T) {
	acc := &Account{Balance: decimal.NewFromInt(1000)}

	got := acc.ApplyDelta(SignedAmount(TransactionTypeIngreso, decimal.NewFromInt(500)))
	if !got.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("expected 1500, got %s", got)
	}

	got = acc.ApplyDelta(SignedAmount(TransactionTypeEgreso, decimal.NewFromInt(1200)))
	if !got.Equal(decimal.NewFromInt(-200)) {
		t.Errorf("expected -200, got %s", got)
	}
}

func TestFormatTransactionNumber(t *testing.T) {
	if got := FormatTransactionNumber(AccountKindBank, 42); got != "BANK-000042" {
		t.Errorf("unexpected number %q", got)
	}
}
