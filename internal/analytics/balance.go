// Package analytics derives balances, KPIs, time buckets, health and
// insight figures from a ledger snapshot. Everything here is a pure
// function of the snapshot: same snapshot and clock in, same numbers out.
package analytics

import (
	"sort"

	"khata/internal/core"
	"khata/internal/ledger"
)

// BalanceOf resolves a party's financial position. With transaction history
// the signed sum wins (Sale +, Purchase -, Expense excluded); with zero
// matching transactions the cached Party.Balance is used instead, because
// parties may be seeded with an opening balance that predates any history.
func BalanceOf(snap ledger.Snapshot, party core.Party) core.Money {
	if derived, ok := snap.DerivedBalance(party.ID); ok {
		return derived
	}
	return party.Balance
}

// Drift reports a party whose cached balance disagrees with the derived one.
// The dashboard silently prefers the derived value whenever history exists,
// which can mask a stale cache upstream; this surfaces it.
type Drift struct {
	Party   core.Party
	Cached  core.Money
	Derived core.Money
}

// DetectDrift lists parties that have transaction history and a cached
// balance that does not match the derived sum.
func DetectDrift(snap ledger.Snapshot) []Drift {
	var out []Drift
	for _, p := range snap.Parties {
		derived, ok := snap.DerivedBalance(p.ID)
		if !ok {
			continue
		}
		if derived != p.Balance {
			out = append(out, Drift{Party: p, Cached: p.Balance, Derived: derived})
		}
	}
	return out
}

// Statement builds a party's ledger statement: its transactions in
// chronological order with debit/credit columns and a running balance
// seeded from the cached opening balance.
type Statement struct {
	Party          core.Party
	OpeningBalance core.Money
	ClosingBalance core.Money
	TotalDebit     core.Money
	TotalCredit    core.Money
	Entries        []core.LedgerEntry
}

// StatementOf assembles the statement for one party. Sales debit the party
// (they owe more); purchases and expenses credit it.
func StatementOf(snap ledger.Snapshot, party core.Party) Statement {
	var entries []core.Transaction
	for _, tx := range snap.Transactions {
		if tx.PartyID == party.ID {
			entries = append(entries, tx)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OccurredOn.Before(entries[j].OccurredOn.Time)
	})

	st := Statement{
		Party:          party,
		OpeningBalance: party.Balance,
		ClosingBalance: party.Balance,
	}
	running := party.Balance
	for _, tx := range entries {
		var debit, credit core.Money
		switch tx.Kind {
		case core.Sale:
			debit = tx.Amount
		case core.Purchase, core.Spend:
			credit = tx.Amount
		}
		running = running.Add(debit).Sub(credit)
		st.TotalDebit = st.TotalDebit.Add(debit)
		st.TotalCredit = st.TotalCredit.Add(credit)
		st.Entries = append(st.Entries, core.LedgerEntry{
			Transaction: tx,
			Debit:       debit,
			Credit:      credit,
			Balance:     running,
		})
	}
	st.ClosingBalance = running
	return st
}
