package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSignedAmount(t *testing.T) {
	amount := decimal.RequireFromString("250.50")

	tests := []struct {
		txType   TransactionType
		expected decimal.Decimal
	}{
		{TransactionTypeIngreso, amount},
		{TransactionTypeEgreso, amount.Neg()},
		{TransactionTypeTransferencia, amount.Neg()},
	}

	for _, tt := range tests {
		t.Run(string(tt.txType), func(t *testing.T) {
			if got := SignedAmount(tt.txType, amount); !got.Equal(tt.expected) {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestParseTransactionType(t *testing.T) {
	if got, err := ParseTransactionType("egreso"); err != nil || got != TransactionTypeEgreso {
		t.Errorf("expected EGRESO, got %s (%v)", got, err)
	}

	if _, err := ParseTransactionType("REFUND"); !errors.Is(err, ErrInvalidTransactionType) {
		t.Errorf("expected ErrInvalidTransactionType, got %v", err)
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name        string
		txn         Transaction
		expectError error
	}{
		{
			name: "valid inflow",
			txn:  Transaction{Type: TransactionTypeIngreso, Amount: decimal.NewFromInt(10)},
		},
		{
			name:        "zero amount",
			txn:         Transaction{Type: TransactionTypeIngreso, Amount: decimal.Zero},
			expectError: ErrInvalidAmount,
		},
		{
			name:        "negative amount",
			txn:         Transaction{Type: TransactionTypeEgreso, Amount: decimal.NewFromInt(-10)},
			expectError: ErrInvalidAmount,
		},
		{
			name:        "unknown type",
			txn:         Transaction{Type: "OTHER", Amount: decimal.NewFromInt(10)},
			expectError: ErrInvalidTransactionType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.Validate()
			if tt.expectError == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.expectError) {
				t.Errorf("expected %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestTransactionFilter_Contains(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	f := TransactionFilter{From: from, To: to}

	if !f.Contains(from) {
		t.Error("from must be inclusive")
	}

	if f.Contains(to) {
		t.Error("to must be exclusive")
	}

	if f.Contains(from.Add(-time.Second)) {
		t.Error("time before from must be excluded")
	}

	if !(TransactionFilter{}).Contains(to) {
		t.Error("empty filter must contain everything")
	}
}
