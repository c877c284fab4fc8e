package analytics

import (
	"sort"

	"khata/internal/core"
	"khata/internal/ledger"
)

// Insights is the quick-insights panel: grouped-reduction extractions over
// the snapshot. Every field has a defined empty-ledger value.
type Insights struct {
	BestSalesDay       string
	BestSalesAmount    core.Money
	TopExpenseCategory string
	TopExpenseAmount   core.Money
	TopCustomer        string
	TopCustomerAmount  core.Money
	ProfitMargin       float64
	AvgDailyRevenue    core.Money
}

// ComputeInsights derives the panel. Ties on the best sales day resolve to
// the first day encountered; callers must not depend on a specific winner.
func ComputeInsights(snap ledger.Snapshot, kpis KPISummary, today core.Date) Insights {
	ins := Insights{
		TopExpenseCategory: "None",
		TopCustomer:        "No data",
	}

	// Best sales day over the trailing 7 calendar days.
	ins.BestSalesDay = today.AddDays(-6).Format("Monday")
	for i := 0; i < 7; i++ {
		day := today.AddDays(i - 6)
		var total core.Money
		for _, tx := range snap.Transactions {
			if tx.Kind == core.Sale && tx.OccurredOn.SameDay(day) {
				total = total.Add(tx.Amount)
			}
		}
		if total.Cents > ins.BestSalesAmount.Cents {
			ins.BestSalesDay = day.Format("Monday")
			ins.BestSalesAmount = total
		}
	}

	if name, amount, ok := topGroup(groupExpensesByCategory(snap)); ok {
		ins.TopExpenseCategory = name
		ins.TopExpenseAmount = amount
	}

	byParty := make(map[string]core.Money)
	for _, tx := range snap.Transactions {
		if tx.Kind != core.Sale {
			continue
		}
		name := tx.PartyName
		if name == "" {
			name = "Unknown"
		}
		byParty[name] = byParty[name].Add(tx.Amount)
	}
	if name, amount, ok := topGroup(byParty); ok {
		ins.TopCustomer = name
		ins.TopCustomerAmount = amount
	}

	// Total expenses are expense records plus purchase transactions, which
	// is exactly what cash in hand already subtracted from sales.
	if kpis.TotalSales.Cents > 0 {
		ins.ProfitMargin = kpis.CashInHand.Rupees() / kpis.TotalSales.Rupees() * 100
	}
	ins.AvgDailyRevenue = core.Money{Cents: kpis.TotalSales.Cents / 30}

	return ins
}

// CategoryBreakdown lists per-category expense totals, largest first.
func CategoryBreakdown(snap ledger.Snapshot) []core.CategoryAmount {
	grouped := groupExpensesByCategory(snap)
	out := make([]core.CategoryAmount, 0, len(grouped))
	for name, amount := range grouped {
		out = append(out, core.CategoryAmount{Name: name, Amount: amount})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MonthExpenseTotal sums expense records dated in today's calendar
// month. Purchases are deliberately excluded: budget monitoring tracks
// operating spend, not stock bought for resale.
func MonthExpenseTotal(snap ledger.Snapshot, today core.Date) core.Money {
	var total core.Money
	for _, e := range snap.Expenses {
		if e.OccurredOn.Month() == today.Month() && e.OccurredOn.Year() == today.Year() {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// NecessarySplit sums expenses flagged necessary against the rest.
func NecessarySplit(snap ledger.Snapshot) (necessary, unnecessary core.Money) {
	for _, e := range snap.Expenses {
		if e.IsNecessary {
			necessary = necessary.Add(e.Amount)
		} else {
			unnecessary = unnecessary.Add(e.Amount)
		}
	}
	return necessary, unnecessary
}

func groupExpensesByCategory(snap ledger.Snapshot) map[string]core.Money {
	grouped := make(map[string]core.Money)
	for _, e := range snap.Expenses {
		cat := string(e.Category)
		if cat == "" {
			cat = "Other"
		}
		grouped[cat] = grouped[cat].Add(e.Amount)
	}
	return grouped
}

// topGroup picks the largest entry, breaking amount ties by name so the
// result is stable regardless of map iteration order.
func topGroup(grouped map[string]core.Money) (string, core.Money, bool) {
	var bestName string
	var bestAmount core.Money
	found := false
	for name, amount := range grouped {
		if !found || amount.Cents > bestAmount.Cents ||
			(amount.Cents == bestAmount.Cents && name < bestName) {
			bestName, bestAmount, found = name, amount, true
		}
	}
	return bestName, bestAmount, found
}
