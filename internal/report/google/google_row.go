package google

import (
	"khata/internal/core"
	"khata/internal/report"
)

// reportRow flattens a report into the two value ranges Export writes:
// date plus KPI summary plus health status, then one sales figure per
// month of the current year.
func reportRow(r report.Report) (summary, monthly []any) {
	summary = []any{
		r.GeneratedAt.Format("2006-01-02"),
		toUnits(r.KPIs.TotalSales),
		toUnits(r.KPIs.TotalReceivable),
		toUnits(r.KPIs.TotalPayable),
		toUnits(r.KPIs.CashInHand),
		toUnits(r.KPIs.NetBalance),
		string(r.Health.Status),
	}
	monthly = make([]any, len(r.Monthly))
	for i, b := range r.Monthly {
		monthly[i] = toUnits(b.Sales)
	}
	return summary, monthly
}

func toUnits(m core.Money) float64 {
	return float64(m.Cents) / 100.0
}
