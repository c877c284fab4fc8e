package analytics

import (
	"sort"

	"khata/internal/core"
	"khata/internal/ledger"
)

// KPISummary holds the whole-book headline aggregates. An empty ledger
// yields all zeros, never an error: "no data yet" is the expected state
// for a new business.
type KPISummary struct {
	TotalSales      core.Money
	TotalReceivable core.Money
	TotalPayable    core.Money
	CashInHand      core.Money
	NetBalance      core.Money
}

// ComputeKPIs aggregates over the entire ledger, not a filtered view.
// Cash in hand is a point-in-time derived figure: sales minus purchases
// paid out minus operating expenses. Credit receivable/payable do not
// move cash until settled, and settlement is not modelled here.
func ComputeKPIs(snap ledger.Snapshot) KPISummary {
	var sum KPISummary

	var purchases core.Money
	for _, tx := range snap.Transactions {
		switch tx.Kind {
		case core.Sale:
			sum.TotalSales = sum.TotalSales.Add(tx.Amount)
		case core.Purchase:
			purchases = purchases.Add(tx.Amount)
		}
	}

	for _, p := range snap.Parties {
		bal := BalanceOf(snap, p)
		if bal.IsPositive() {
			sum.TotalReceivable = sum.TotalReceivable.Add(bal)
		} else if bal.IsNegative() {
			sum.TotalPayable = sum.TotalPayable.Add(bal.Abs())
		}
	}

	var expenses core.Money
	for _, e := range snap.Expenses {
		expenses = expenses.Add(e.Amount)
	}

	sum.CashInHand = sum.TotalSales.Sub(purchases).Sub(expenses)
	sum.NetBalance = sum.TotalReceivable.Sub(sum.TotalPayable)
	return sum
}

// TodaySales returns the sales total and the number of transactions dated
// today (calendar-date membership, not a rolling 24h window).
func TodaySales(snap ledger.Snapshot, today core.Date) (core.Money, int) {
	var total core.Money
	var count int
	for _, tx := range snap.Transactions {
		if !tx.OccurredOn.SameDay(today) {
			continue
		}
		count++
		if tx.Kind == core.Sale {
			total = total.Add(tx.Amount)
		}
	}
	return total, count
}

// MonthlySalesChange compares the current calendar month's sales to the
// previous month's, wrapping the year at January.
func MonthlySalesChange(snap ledger.Snapshot, today core.Date) float64 {
	curYear, curMonth := today.Year(), today.Month()
	prevYear, prevMonth := curYear, curMonth-1
	if prevMonth < 1 {
		prevMonth = 12
		prevYear--
	}

	var current, previous core.Money
	for _, tx := range snap.Transactions {
		if tx.Kind != core.Sale {
			continue
		}
		y, m := tx.OccurredOn.Year(), tx.OccurredOn.Month()
		if y == curYear && m == curMonth {
			current = current.Add(tx.Amount)
		} else if y == prevYear && m == prevMonth {
			previous = previous.Add(tx.Amount)
		}
	}
	return PctChange(current.Rupees(), previous.Rupees())
}

// RecentTransactions returns the latest n transactions, newest first.
// The snapshot is not mutated.
func RecentTransactions(snap ledger.Snapshot, n int) []core.Transaction {
	sorted := append([]core.Transaction(nil), snap.Transactions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredOn.After(sorted[j].OccurredOn.Time)
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
