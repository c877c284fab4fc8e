// Package report assembles dashboard snapshots for export targets.
package report

import (
	"context"
	"time"

	"khata/internal/analytics"
	"khata/internal/core"
)

// Report is one dashboard snapshot: the KPI aggregates, the health
// classification, and the monthly sales curve for the current year.
type Report struct {
	GeneratedAt time.Time
	KPIs        analytics.KPISummary
	Health      analytics.HealthReport
	Monthly     []core.Bucket
}

// Exporter is the outbound port. Export returns a reference to the
// written row so callers can log where the snapshot landed.
type Exporter interface {
	Export(ctx context.Context, r Report) (rowRef string, err error)
}

// Build assembles a report from the engine's current state.
func Build(engine *analytics.Engine, now time.Time) (Report, error) {
	monthly, err := engine.Buckets(analytics.PeriodYearly)
	if err != nil {
		return Report{}, err
	}
	return Report{
		GeneratedAt: now,
		KPIs:        engine.KPIs(),
		Health:      engine.Health(),
		Monthly:     monthly,
	}, nil
}
