package memory

import (
	"context"
	"testing"
	"time"

	"khata/internal/core"
	"khata/internal/report"
)

func TestExportAndReports(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Export(ctx, report.Report{GeneratedAt: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want %q", ref, "mem:1")
	}

	ref, err = s.Export(ctx, report.Report{
		GeneratedAt: time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC),
		Monthly:     []core.Bucket{{Label: "Mar"}},
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if ref != "mem:2" {
		t.Errorf("ref = %q, want %q", ref, "mem:2")
	}

	got := s.Reports()
	if len(got) != 2 {
		t.Fatalf("Reports() length = %d, want 2", len(got))
	}
	if got[1].Monthly[0].Label != "Mar" {
		t.Errorf("second report monthly label = %q, want %q", got[1].Monthly[0].Label, "Mar")
	}

	// The returned slice is a copy.
	got[0].GeneratedAt = time.Time{}
	if s.Reports()[0].GeneratedAt.IsZero() {
		t.Error("mutating the returned slice changed stored state")
	}
}
