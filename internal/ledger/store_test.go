package ledger

import (
	"errors"
	"testing"

	"khata/internal/core"
)

func tx(id string, kind core.TransactionKind, cents int64, partyID string) core.Transaction {
	return core.Transaction{
		ID:         id,
		Kind:       kind,
		Amount:     core.Money{Cents: cents},
		OccurredOn: core.NewDate(2025, 6, 1),
		PartyID:    partyID,
	}
}

func TestAppendRejectsDuplicateID(t *testing.T) {
	s := New()
	if err := s.AppendTransaction(tx("t1", core.Sale, 100, "")); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	err := s.AppendTransaction(tx("t1", core.Sale, 200, ""))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestRevisionAdvancesOnEveryMutation(t *testing.T) {
	s := New()
	before := s.Revision()

	e := core.Expense{ID: "e1", Category: "Rent", Amount: core.Money{Cents: 50}, OccurredOn: core.NewDate(2025, 6, 1)}

	_ = s.AppendTransaction(tx("t1", core.Sale, 100, ""))
	_ = s.AppendExpense(e, e.MirrorTransaction())
	_ = s.UpsertParty(core.Party{ID: "p1", Name: "Sita Stores", Kind: core.Customer})

	if got := s.Revision(); got != before+3 {
		t.Fatalf("expected revision %d, got %d", before+3, got)
	}
}

func TestBalanceIndexSignRule(t *testing.T) {
	s := New()
	_ = s.UpsertParty(core.Party{ID: "p1", Name: "Sita Stores", Kind: core.Customer})
	_ = s.AppendTransaction(tx("t1", core.Sale, 500, "p1"))
	_ = s.AppendTransaction(tx("t2", core.Sale, 300, "p1"))
	_ = s.AppendTransaction(tx("t3", core.Purchase, 200, "p1"))
	// Expense-kind entries never move a party balance, even when linked.
	_ = s.AppendTransaction(tx("t4", core.Spend, 999, "p1"))

	snap := s.Snapshot()
	bal, ok := snap.DerivedBalance("p1")
	if !ok {
		t.Fatalf("expected derived balance to exist")
	}
	if bal.Cents != 600 {
		t.Fatalf("expected 600, got %d", bal.Cents)
	}
}

func TestBalanceIsolationBetweenParties(t *testing.T) {
	s := New()
	_ = s.AppendTransaction(tx("t1", core.Sale, 500, "p1"))
	_ = s.AppendTransaction(tx("t2", core.Sale, 900, "p2"))

	snap := s.Snapshot()
	b1, _ := snap.DerivedBalance("p1")
	b2, _ := snap.DerivedBalance("p2")
	if b1.Cents != 500 || b2.Cents != 900 {
		t.Fatalf("balances leaked across parties: %d, %d", b1.Cents, b2.Cents)
	}
}

func TestDerivedBalanceAbsentWithoutHistory(t *testing.T) {
	s := New()
	_ = s.UpsertParty(core.Party{ID: "p1", Name: "Sita Stores", Kind: core.Customer, Balance: core.Money{Cents: 1500}})

	snap := s.Snapshot()
	if _, ok := snap.DerivedBalance("p1"); ok {
		t.Fatalf("expected no derived balance for party without transactions")
	}
}

func TestResetRebuildsIndexAndBumpsRevision(t *testing.T) {
	s := New()
	_ = s.AppendTransaction(tx("t1", core.Sale, 100, "p1"))
	before := s.Revision()

	err := s.Reset(
		[]core.Transaction{tx("t9", core.Purchase, 400, "p2")},
		nil,
		[]core.Party{{ID: "p2", Name: "Hari Suppliers", Kind: core.Supplier}},
	)
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if s.Revision() <= before {
		t.Fatalf("reset must advance revision")
	}

	snap := s.Snapshot()
	if len(snap.Transactions) != 1 || snap.Transactions[0].ID != "t9" {
		t.Fatalf("reset did not replace transactions")
	}
	if _, ok := snap.DerivedBalance("p1"); ok {
		t.Fatalf("stale balance survived reset")
	}
	b2, _ := snap.DerivedBalance("p2")
	if b2.Cents != -400 {
		t.Fatalf("expected -400 after reset, got %d", b2.Cents)
	}
}

func TestAppendRejectsReservedMirrorPrefix(t *testing.T) {
	s := New()
	err := s.AppendTransaction(tx("exp-e1", core.Spend, 100, ""))
	if !errors.Is(err, ErrReservedID) {
		t.Fatalf("expected ErrReservedID, got %v", err)
	}
	if s.Revision() != 0 {
		t.Fatalf("rejected append must not advance revision")
	}
}

func TestAppendExpenseIsAtomic(t *testing.T) {
	s := New()
	e := core.Expense{ID: "e1", Category: "Rent", Amount: core.Money{Cents: 50}, OccurredOn: core.NewDate(2025, 6, 1)}
	if err := s.AppendExpense(e, e.MirrorTransaction()); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	before := s.Revision()

	// Same mirror slot, different expense ID: the pair must be refused
	// without admitting the expense half.
	e2 := e
	e2.ID = "e2"
	err := s.AppendExpense(e2, e.MirrorTransaction())
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Expenses) != 1 || len(snap.Transactions) != 1 {
		t.Fatalf("rejected pair mutated store: %d expenses, %d transactions",
			len(snap.Expenses), len(snap.Transactions))
	}
	if got := s.Revision(); got != before {
		t.Fatalf("rejected pair advanced revision: %d -> %d", before, got)
	}
}

func TestFailedResetLeavesStoreUntouched(t *testing.T) {
	s := New()
	_ = s.AppendTransaction(tx("t1", core.Sale, 100, "p1"))
	before := s.Revision()

	err := s.Reset(
		[]core.Transaction{
			tx("t2", core.Sale, 500, "p2"),
			{ID: "t3"}, // invalid: no kind, no amount, no date
		},
		nil,
		nil,
	)
	if err == nil {
		t.Fatalf("expected reset to fail on invalid record")
	}

	if got := s.Revision(); got != before {
		t.Fatalf("failed reset changed revision: %d -> %d", before, got)
	}
	snap := s.Snapshot()
	if len(snap.Transactions) != 1 || snap.Transactions[0].ID != "t1" {
		t.Fatalf("failed reset replaced transactions: %+v", snap.Transactions)
	}
	bal, ok := snap.DerivedBalance("p1")
	if !ok || bal.Cents != 100 {
		t.Fatalf("failed reset corrupted balance index: %v %v", bal, ok)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := New()
	_ = s.AppendTransaction(tx("t1", core.Sale, 100, ""))
	snap := s.Snapshot()

	_ = s.AppendTransaction(tx("t2", core.Sale, 100, ""))
	if len(snap.Transactions) != 1 {
		t.Fatalf("snapshot observed later mutation")
	}
}

func TestUpsertPartyReplacesWholesale(t *testing.T) {
	s := New()
	_ = s.UpsertParty(core.Party{ID: "p1", Name: "Sita Stores", Kind: core.Customer, Phone: "9800000000"})
	_ = s.UpsertParty(core.Party{ID: "p1", Name: "Sita Stores", Kind: core.Customer, Balance: core.Money{Cents: 700}})

	p, ok := s.Party("p1")
	if !ok {
		t.Fatalf("party missing")
	}
	if p.Phone != "" || p.Balance.Cents != 700 {
		t.Fatalf("upsert did not replace wholesale: %+v", p)
	}
	snap := s.Snapshot()
	if len(snap.Parties) != 1 {
		t.Fatalf("upsert duplicated party")
	}
}
