// Package ledger holds the canonical in-memory collections of the book:
// transactions, expenses and parties. It owns identity uniqueness and the
// incremental party-balance index; all derived figures live in analytics.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"khata/internal/core"
)

var (
	ErrDuplicateID  = errors.New("duplicate id")
	ErrUnknownParty = errors.New("unknown party")
	ErrReservedID   = errors.New("reserved id")
)

type balanceEntry struct {
	sum   core.Money
	count int
}

// Store serializes all mutations through one mutex so two near-simultaneous
// appends cannot interleave and lose an update. Reads return copies.
type Store struct {
	mu           sync.RWMutex
	transactions []core.Transaction
	expenses     []core.Expense
	parties      []core.Party

	txIDs    map[string]struct{}
	expIDs   map[string]struct{}
	partyIdx map[string]int
	balances map[string]balanceEntry

	revision uint64
}

func New() *Store {
	s := &Store{}
	s.resetIndexes()
	return s
}

func (s *Store) resetIndexes() {
	s.txIDs = make(map[string]struct{})
	s.expIDs = make(map[string]struct{})
	s.partyIdx = make(map[string]int)
	s.balances = make(map[string]balanceEntry)
}

// AppendTransaction adds one immutable entry to the ledger. Only identity
// uniqueness is checked here; business validation happens upstream. The
// mirror-ID prefix is refused so an external record can never occupy the
// slot a future expense mirror needs.
func (s *Store) AppendTransaction(tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if strings.HasPrefix(tx.ID, core.MirrorIDPrefix) {
		return fmt.Errorf("transaction %s: %w", tx.ID, ErrReservedID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.txIDs[tx.ID]; exists {
		return fmt.Errorf("transaction %s: %w", tx.ID, ErrDuplicateID)
	}
	s.txIDs[tx.ID] = struct{}{}
	s.transactions = append(s.transactions, tx)
	s.applyToBalance(tx)
	s.revision++
	return nil
}

// AppendExpense adds an expense record together with its Expense-kind
// mirror transaction in one step. Both IDs are checked before either
// collection changes, so a collision leaves the store untouched and the
// expense never exists without its mirror.
func (s *Store) AppendExpense(e core.Expense, mirror core.Transaction) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := mirror.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.expIDs[e.ID]; exists {
		return fmt.Errorf("expense %s: %w", e.ID, ErrDuplicateID)
	}
	if _, exists := s.txIDs[mirror.ID]; exists {
		return fmt.Errorf("transaction %s: %w", mirror.ID, ErrDuplicateID)
	}
	s.expIDs[e.ID] = struct{}{}
	s.expenses = append(s.expenses, e)
	s.txIDs[mirror.ID] = struct{}{}
	s.transactions = append(s.transactions, mirror)
	s.applyToBalance(mirror)
	s.revision++
	return nil
}

// UpsertParty inserts or replaces a party. The cached Balance field may be
// edited independently by collaborators, so replacement is wholesale.
func (s *Store) UpsertParty(p core.Party) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, exists := s.partyIdx[p.ID]; exists {
		s.parties[idx] = p
	} else {
		s.partyIdx[p.ID] = len(s.parties)
		s.parties = append(s.parties, p)
	}
	s.revision++
	return nil
}

// Reset replaces all collections wholesale (bulk reload from storage) and
// rebuilds the balance index. The whole batch is validated into fresh
// collections before anything is swapped in, so a bad record leaves the
// store untouched at its current revision. On success the revision still
// advances so memoized aggregates keyed on it are invalidated.
func (s *Store) Reset(txs []core.Transaction, exps []core.Expense, parties []core.Party) error {
	next := &Store{}
	next.resetIndexes()

	for _, p := range parties {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("party %s: %w", p.ID, err)
		}
		if _, exists := next.partyIdx[p.ID]; exists {
			return fmt.Errorf("party %s: %w", p.ID, ErrDuplicateID)
		}
		next.partyIdx[p.ID] = len(next.parties)
		next.parties = append(next.parties, p)
	}
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		if _, exists := next.txIDs[tx.ID]; exists {
			return fmt.Errorf("transaction %s: %w", tx.ID, ErrDuplicateID)
		}
		next.txIDs[tx.ID] = struct{}{}
		next.transactions = append(next.transactions, tx)
		next.applyToBalance(tx)
	}
	for _, e := range exps {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("expense %s: %w", e.ID, err)
		}
		if _, exists := next.expIDs[e.ID]; exists {
			return fmt.Errorf("expense %s: %w", e.ID, ErrDuplicateID)
		}
		next.expIDs[e.ID] = struct{}{}
		next.expenses = append(next.expenses, e)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = next.transactions
	s.expenses = next.expenses
	s.parties = next.parties
	s.txIDs = next.txIDs
	s.expIDs = next.expIDs
	s.partyIdx = next.partyIdx
	s.balances = next.balances
	s.revision++
	return nil
}

// applyToBalance maintains the partyID -> running balance index. Sale adds,
// Purchase subtracts, Expense-kind entries are excluded even when party-linked.
// Callers must hold the write lock.
func (s *Store) applyToBalance(tx core.Transaction) {
	if tx.PartyID == "" {
		return
	}
	entry := s.balances[tx.PartyID]
	switch tx.Kind {
	case core.Sale:
		entry.sum = entry.sum.Add(tx.Amount)
		entry.count++
	case core.Purchase:
		entry.sum = entry.sum.Sub(tx.Amount)
		entry.count++
	}
	s.balances[tx.PartyID] = entry
}

// Revision returns the monotonically increasing mutation counter.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Party returns the party with the given id, if present.
func (s *Store) Party(id string) (core.Party, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.partyIdx[id]
	if !ok {
		return core.Party{}, false
	}
	return s.parties[idx], true
}

// Snapshot captures a point-in-time view of the ledger. Aggregates computed
// from the same snapshot are referentially transparent.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	balances := make(map[string]balanceEntry, len(s.balances))
	for id, entry := range s.balances {
		balances[id] = entry
	}
	return Snapshot{
		Revision:     s.revision,
		Transactions: append([]core.Transaction(nil), s.transactions...),
		Expenses:     append([]core.Expense(nil), s.expenses...),
		Parties:      append([]core.Party(nil), s.parties...),
		balances:     balances,
	}
}

// Snapshot is an immutable view of the ledger at one revision.
type Snapshot struct {
	Revision     uint64
	Transactions []core.Transaction
	Expenses     []core.Expense
	Parties      []core.Party

	balances map[string]balanceEntry
}

// DerivedBalance returns the signed transaction sum for a party and whether
// the party has any matching transactions at all. The zero-history case is
// what triggers the cached-balance fallback upstream.
func (s Snapshot) DerivedBalance(partyID string) (core.Money, bool) {
	entry, ok := s.balances[partyID]
	if !ok || entry.count == 0 {
		return core.Money{}, false
	}
	return entry.sum, true
}
