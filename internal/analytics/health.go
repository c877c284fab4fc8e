package analytics

import (
	"khata/internal/core"
	"khata/internal/ledger"
)

// HealthStatus classifies the cash-flow position.
type HealthStatus string

const (
	StatusHealthy  HealthStatus = "healthy"
	StatusWarning  HealthStatus = "warning"
	StatusCritical HealthStatus = "critical"
)

// Ratio is a division result with an explicit infinity flag. A business with
// zero payables has infinite coverage; that must stay distinguishable from a
// ratio that merely happens to be large, so no magic number stands in for it.
type Ratio struct {
	Value    float64
	Infinite bool
}

// HealthReport is the business-health panel: the cash-flow ratio with its
// classification plus the outstanding positions on both sides.
type HealthReport struct {
	Status             HealthStatus
	CashFlowRatio      Ratio
	OverdueReceivables core.Money
	PendingPayments    core.Money
}

// ComputeHealth derives the health report from the KPI aggregates and the
// party balances. Classification order is fixed: critical below 1, warning
// below 2, healthy otherwise; an infinite ratio is always healthy.
func ComputeHealth(snap ledger.Snapshot, kpis KPISummary) HealthReport {
	report := HealthReport{Status: StatusHealthy}

	if kpis.TotalPayable.Cents == 0 {
		report.CashFlowRatio = Ratio{Infinite: true}
	} else {
		report.CashFlowRatio = Ratio{Value: kpis.CashInHand.Rupees() / kpis.TotalPayable.Rupees()}
		switch {
		case report.CashFlowRatio.Value < 1:
			report.Status = StatusCritical
		case report.CashFlowRatio.Value < 2:
			report.Status = StatusWarning
		}
	}

	for _, p := range snap.Parties {
		bal := BalanceOf(snap, p)
		switch {
		case p.Kind == core.Customer && bal.IsPositive():
			report.OverdueReceivables = report.OverdueReceivables.Add(bal)
		case p.Kind == core.Supplier && bal.IsNegative():
			report.PendingPayments = report.PendingPayments.Add(bal.Abs())
		}
	}
	return report
}
