package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txn(id string, typ TransactionType, amount int64, at time.Time) *Transaction {
	return &Transaction{ID: id, Type: typ, Amount: decimal.NewFromInt(amount), OccurredAt: at}
}

func day(d int) time.Time {
	return time.Date(2024, 6, d, 12, 0, 0, 0, time.UTC)
}

func TestReconstruct_Empty(t *testing.T) {
	lines := Reconstruct(nil, decimal.NewFromInt(100))
	assert.Empty(t, lines)
	assert.NotNil(t, lines)
}

func TestReconstruct_WalksBackFromCurrentBalance(t *testing.T) {
	// Opening 1000, then +500, -200, -300 transfer leg. Current is 1000.
	desc := []*Transaction{
		txn("t3", TransactionTypeTransferencia, 300, day(3)),
		txn("t2", TransactionTypeEgreso, 200, day(2)),
		txn("t1", TransactionTypeIngreso, 500, day(1)),
	}

	lines := Reconstruct(desc, decimal.NewFromInt(1000))
	require.Len(t, lines, 3)

	expected := []struct{ before, after int64 }{
		{1300, 1000},
		{1500, 1300},
		{1000, 1500},
	}
	for i, e := range expected {
		assert.Equal(t, desc[i].ID, lines[i].Transaction.ID)
		assert.True(t, lines[i].BalanceBefore.Equal(decimal.NewFromInt(e.before)), "line %d before: %s", i, lines[i].BalanceBefore)
		assert.True(t, lines[i].BalanceAfter.Equal(decimal.NewFromInt(e.after)), "line %d after: %s", i, lines[i].BalanceAfter)
	}

	for i := 1; i < len(lines); i++ {
		assert.True(t, lines[i].BalanceAfter.Equal(lines[i-1].BalanceBefore), "lines must chain")
	}
}

func TestReconstruct_OldestBeforeEqualsOpeningBalance(t *testing.T) {
	desc := []*Transaction{
		txn("t4", TransactionTypeIngreso, 75, day(4)),
		txn("t3", TransactionTypeEgreso, 310, day(3)),
		txn("t2", TransactionTypeIngreso, 1200, day(2)),
		txn("t1", TransactionTypeEgreso, 40, day(1)),
	}
	current := decimal.RequireFromString("2425.50")

	lines := Reconstruct(desc, current)

	opening := current.Sub(SumSigned(desc))
	assert.True(t, lines[len(lines)-1].BalanceBefore.Equal(opening))
}

func TestReconstruct_IsPure(t *testing.T) {
	desc := []*Transaction{
		txn("t2", TransactionTypeEgreso, 20, day(2)),
		txn("t1", TransactionTypeIngreso, 50, day(1)),
	}
	snapshot := []Transaction{*desc[0], *desc[1]}

	first := Reconstruct(desc, decimal.NewFromInt(30))
	second := Reconstruct(desc, decimal.NewFromInt(30))

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot[0], *desc[0])
	assert.Equal(t, snapshot[1], *desc[1])
}

func TestBuildStatement(t *testing.T) {
	// History: +1000 (day 1), -200 (day 5), +300 (day 10), -100 (day 20).
	// Window [day 4, day 15) holds -200 and +300.
	account := &Account{ID: "acc", Kind: AccountKindCash, Balance: decimal.NewFromInt(1000), Version: 4}
	filter := TransactionFilter{From: day(4), To: day(15)}
	window := []*Transaction{
		txn("t3", TransactionTypeIngreso, 300, day(10)),
		txn("t2", TransactionTypeEgreso, 200, day(5)),
	}
	laterNet := decimal.NewFromInt(-100)

	st := BuildStatement(account, filter, window, laterNet, day(25))

	assert.True(t, st.CurrentBalance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, st.ClosingBalance.Equal(decimal.NewFromInt(1100)), "closing %s", st.ClosingBalance)
	assert.True(t, st.OpeningBalance.Equal(decimal.NewFromInt(1000)), "opening %s", st.OpeningBalance)
	assert.True(t, st.PeriodInflows.Equal(decimal.NewFromInt(300)))
	assert.True(t, st.PeriodOutflows.Equal(decimal.NewFromInt(200)))
	assert.True(t, st.PeriodNet.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int64(4), st.AccountVersion)

	require.Len(t, st.Lines, 2)
	assert.True(t, st.Lines[0].BalanceAfter.Equal(st.ClosingBalance))
	assert.True(t, st.Lines[1].BalanceBefore.Equal(st.OpeningBalance))
}

func TestReconciliation_Difference(t *testing.T) {
	r := &Reconciliation{StoredBalance: decimal.NewFromInt(100), ComputedBalance: decimal.NewFromInt(90)}
	assert.True(t, r.Difference().Equal(decimal.NewFromInt(10)))
}
