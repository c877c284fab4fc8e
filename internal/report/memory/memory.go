// Package memory is an in-process export target, used when no
// spreadsheet is configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"khata/internal/report"
)

type Store struct {
	mu    sync.Mutex
	items []report.Report
}

var _ report.Exporter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Export stores the report and returns a synthetic row reference.
func (s *Store) Export(_ context.Context, r report.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, r)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Reports returns a copy of everything exported so far.
func (s *Store) Reports() []report.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]report.Report(nil), s.items...)
}
