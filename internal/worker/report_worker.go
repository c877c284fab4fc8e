package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"khata/internal/analytics"
	"khata/internal/report"
)

// ReportWorker periodically exports a dashboard snapshot.
type ReportWorker struct {
	engine   *analytics.Engine
	exporter report.Exporter
	interval time.Duration
	now      func() time.Time
}

func NewReportWorker(engine *analytics.Engine, exporter report.Exporter, interval time.Duration) *ReportWorker {
	return &ReportWorker{
		engine:   engine,
		exporter: exporter,
		interval: interval,
		now:      time.Now,
	}
}

// ExportOnce builds and exports a single snapshot.
func (w *ReportWorker) ExportOnce(ctx context.Context) (string, error) {
	r, err := report.Build(w.engine, w.now())
	if err != nil {
		return "", fmt.Errorf("build report: %w", err)
	}
	ref, err := w.exporter.Export(ctx, r)
	if err != nil {
		return "", fmt.Errorf("export report: %w", err)
	}
	return ref, nil
}

// Run exports on every tick until the context ends. Export failures are
// logged and retried on the next tick; a broken export target must not
// take the worker down.
func (w *ReportWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Report worker started", "interval", w.interval.String())

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Report worker stopping")
			return ctx.Err()
		case <-ticker.C:
			ref, err := w.ExportOnce(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "Report export failed", "error", err)
				continue
			}
			slog.InfoContext(ctx, "Report exported", "ref", ref)
		}
	}
}
