package core

import (
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:         "t1",
		Kind:       Sale,
		Amount:     Money{Cents: 100},
		OccurredOn: NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{ID: "", Kind: Sale, Amount: Money{Cents: 1}, OccurredOn: NewDate(2025, 1, 1)},
		{ID: "t2", Kind: "refund", Amount: Money{Cents: 1}, OccurredOn: NewDate(2025, 1, 1)},
		{ID: "t3", Kind: Sale, Amount: Money{Cents: -1}, OccurredOn: NewDate(2025, 1, 1)},
		{ID: "t4", Kind: Sale, Amount: Money{Cents: 1}, OccurredOn: Date{Time: time.Time{}}},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		ID:         "e1",
		Category:   "Rent",
		Amount:     Money{Cents: 100},
		OccurredOn: NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.Category = "Groceries"
	if err := bad.Validate(); err != ErrInvalidCategory {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestPartyValidate(t *testing.T) {
	good := Party{ID: "p1", Name: "Ram Traders", Kind: Supplier}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Party{
		{ID: "", Name: "x", Kind: Customer},
		{ID: "p2", Name: "  ", Kind: Customer},
		{ID: "p3", Name: "x", Kind: "vendor"},
	}
	for i, p := range bads {
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateSameDay(t *testing.T) {
	cases := []struct {
		a, b Date
		same bool
	}{
		{NewDate(2025, 3, 10), NewDate(2025, 3, 10), true},
		// 20 hours apart but crossing midnight: different days
		{Date{Time: time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)}, Date{Time: time.Date(2025, 3, 11, 18, 0, 0, 0, time.UTC)}, false},
		{NewDate(2025, 3, 10), NewDate(2024, 3, 10), false},
	}
	for i, tc := range cases {
		if got := tc.a.SameDay(tc.b); got != tc.same {
			t.Fatalf("case %d expected %v, got %v", i, tc.same, got)
		}
	}
}

func TestWeekOfMonth(t *testing.T) {
	cases := []struct {
		day  int
		week int
	}{
		{1, 1}, {7, 1}, {8, 2}, {14, 2}, {15, 3}, {21, 3}, {22, 4}, {28, 4}, {29, 5}, {31, 5},
	}
	for _, tc := range cases {
		d := NewDate(2025, 1, tc.day)
		if got := d.WeekOfMonth(); got != tc.week {
			t.Fatalf("day %d expected week %d, got %d", tc.day, tc.week, got)
		}
	}
}

func TestMirrorTransaction(t *testing.T) {
	e := Expense{
		ID:          "e9",
		Category:    "Food",
		Amount:      Money{Cents: 2500},
		Description: "staff lunch",
		OccurredOn:  NewDate(2025, 6, 2),
	}
	tx := e.MirrorTransaction()
	if tx.Kind != Spend {
		t.Fatalf("expected expense kind, got %s", tx.Kind)
	}
	if tx.Amount != e.Amount {
		t.Fatalf("mirror amount mismatch: %v vs %v", tx.Amount, e.Amount)
	}
	if !tx.OccurredOn.SameDay(e.OccurredOn) {
		t.Fatalf("mirror date mismatch")
	}
	if err := tx.Validate(); err != nil {
		t.Fatalf("mirror should validate, got %v", err)
	}
}
