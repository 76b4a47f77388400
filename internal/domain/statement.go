package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementLine is a transaction with the account balance around it.
type StatementLine struct {
	Transaction   *Transaction
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}

// Reconstruct walks transactions from most recent to oldest, starting at
// balance, and returns the balance before and after each one. transactions
// must be ordered by date descending. The output has the same order.
// Neither the input slice nor its transactions are modified.
func Reconstruct(transactions []*Transaction, balance decimal.Decimal) []StatementLine {
	lines := make([]StatementLine, 0, len(transactions))
	after := balance

	for _, t := range transactions {
		before := after.Sub(t.Signed())
		lines = append(lines, StatementLine{
			Transaction:   t,
			BalanceBefore: before,
			BalanceAfter:  after,
		})
		after = before
	}

	return lines
}

// PeriodTotals sums a set of transactions by direction.
type PeriodTotals struct {
	Inflows  decimal.Decimal
	Outflows decimal.Decimal
	Count    int
}

// Net is inflows minus outflows.
func (p PeriodTotals) Net() decimal.Decimal {
	return p.Inflows.Sub(p.Outflows)
}

// Add accumulates one transaction.
func (p *PeriodTotals) Add(t *Transaction) {
	if t.Signed().IsNegative() {
		p.Outflows = p.Outflows.Add(t.Amount)
	} else {
		p.Inflows = p.Inflows.Add(t.Amount)
	}
	p.Count++
}

// SumSigned returns the sum of the signed amounts of transactions.
func SumSigned(transactions []*Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range transactions {
		sum = sum.Add(t.Signed())
	}
	return sum
}

// Statement is the reporting view of an account over a date window.
// OpeningBalance is the balance at From and ClosingBalance the balance at To;
// PeriodNet is the sum of the window's transactions. The two are related by
// ClosingBalance = OpeningBalance + PeriodNet but are reported separately.
type Statement struct {
	AccountID      string
	AccountKind    AccountKind
	From           time.Time
	To             time.Time
	CurrentBalance decimal.Decimal
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	PeriodInflows  decimal.Decimal
	PeriodOutflows decimal.Decimal
	PeriodNet      decimal.Decimal
	AccountVersion int64
	Lines          []StatementLine
	GeneratedAt    time.Time
}

// BuildStatement assembles a statement. window holds the transactions inside
// [From, To) in descending order and laterNet is the signed sum of everything
// recorded at or after To.
func BuildStatement(account *Account, filter TransactionFilter, window []*Transaction, laterNet decimal.Decimal, now time.Time) *Statement {
	closing := account.Balance.Sub(laterNet)

	var totals PeriodTotals
	for _, t := range window {
		totals.Add(t)
	}

	return &Statement{
		AccountID:      account.ID,
		AccountKind:    account.Kind,
		From:           filter.From,
		To:             filter.To,
		CurrentBalance: account.Balance,
		ClosingBalance: closing,
		OpeningBalance: closing.Sub(totals.Net()),
		PeriodInflows:  totals.Inflows,
		PeriodOutflows: totals.Outflows,
		PeriodNet:      totals.Net(),
		AccountVersion: account.Version,
		Lines:          Reconstruct(window, closing),
		GeneratedAt:    now,
	}
}

// Reconciliation compares an account's stored balance with its history.
type Reconciliation struct {
	AccountID        string
	StoredBalance    decimal.Decimal
	ComputedBalance  decimal.Decimal
	TransactionCount int
	Balanced         bool
	CheckedAt        time.Time
}

// Difference is stored minus computed.
func (r *Reconciliation) Difference() decimal.Decimal {
	return r.StoredBalance.Sub(r.ComputedBalance)
}
