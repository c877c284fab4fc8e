// Package backend assembles the ledger write path for a configured
// data backend.
package backend

import (
	"context"

	"khata/internal/services"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result contains the wired service and an optional cleanup function.
type Result struct {
	Service *services.LedgerService
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// BackendType selects the durable store behind the ledger.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid.
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
