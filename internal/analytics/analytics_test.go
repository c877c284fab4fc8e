package analytics

import (
	"testing"
	"time"

	"khata/internal/core"
	"khata/internal/ledger"
)

func date(year, month, day int) core.Date {
	return core.NewDate(year, month, day)
}

func rupees(r int64) core.Money {
	return core.Money{Cents: r * 100}
}

func sale(id string, amount int64, on core.Date) core.Transaction {
	return core.Transaction{ID: id, Kind: core.Sale, Amount: rupees(amount), OccurredOn: on}
}

func saleFor(id string, amount int64, on core.Date, partyID, partyName string) core.Transaction {
	tx := sale(id, amount, on)
	tx.PartyID = partyID
	tx.PartyName = partyName
	return tx
}

func purchase(id string, amount int64, on core.Date) core.Transaction {
	return core.Transaction{ID: id, Kind: core.Purchase, Amount: rupees(amount), OccurredOn: on}
}

func purchaseFrom(id string, amount int64, on core.Date, partyID string) core.Transaction {
	tx := purchase(id, amount, on)
	tx.PartyID = partyID
	return tx
}

func expense(id string, category core.Category, amount int64, on core.Date) core.Expense {
	return core.Expense{ID: id, Category: category, Amount: rupees(amount), OccurredOn: on}
}

func party(id, name string, kind core.PartyKind, balance int64) core.Party {
	return core.Party{ID: id, Name: name, Kind: kind, Balance: rupees(balance)}
}

func mustStore(t *testing.T, txs []core.Transaction, exps []core.Expense, parties []core.Party) *ledger.Store {
	t.Helper()
	s := ledger.New()
	if err := s.Reset(txs, exps, parties); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	return s
}

func snapshotOf(t *testing.T, txs []core.Transaction, exps []core.Expense, parties []core.Party) ledger.Snapshot {
	t.Helper()
	return mustStore(t, txs, exps, parties).Snapshot()
}

func fixedClock(year, month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.Month(month), day, 10, 30, 0, 0, time.UTC)
	}
}
