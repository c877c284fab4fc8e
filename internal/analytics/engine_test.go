package analytics

import (
	"errors"
	"testing"

	"khata/internal/core"
	"khata/internal/ledger"
)

func TestEngineReflectsRevisionChanges(t *testing.T) {
	store := mustStore(t,
		[]core.Transaction{sale("t1", 100, date(2025, 3, 10))},
		nil, nil,
	)
	eng := NewEngine(store, WithClock(fixedClock(2025, 3, 15)))

	if got := eng.KPIs().TotalSales; got != rupees(100) {
		t.Fatalf("TotalSales = %v, want %v", got, rupees(100))
	}
	if eng.Memo().Len() == 0 {
		t.Error("memo is empty after a computed read")
	}

	// A write moves the revision, so the next read must not reuse the
	// memoized result.
	if err := store.AppendTransaction(sale("t2", 50, date(2025, 3, 11))); err != nil {
		t.Fatalf("AppendTransaction() error = %v", err)
	}
	if got := eng.KPIs().TotalSales; got != rupees(150) {
		t.Errorf("TotalSales after append = %v, want %v", got, rupees(150))
	}
}

func TestEngineMemoizesBetweenWrites(t *testing.T) {
	store := mustStore(t,
		[]core.Transaction{sale("t1", 100, date(2025, 3, 10))},
		nil, nil,
	)
	eng := NewEngine(store, WithClock(fixedClock(2025, 3, 15)))

	first := eng.KPIs()
	entries := eng.Memo().Len()
	second := eng.KPIs()

	if first != second {
		t.Errorf("repeated read disagrees: %+v vs %+v", first, second)
	}
	if got := eng.Memo().Len(); got != entries {
		t.Errorf("memo grew from %d to %d entries on a repeated read", entries, got)
	}
}

func TestEngineBucketsUnknownPeriod(t *testing.T) {
	eng := NewEngine(ledger.New(), WithClock(fixedClock(2025, 3, 15)))

	if _, err := eng.Buckets("fortnightly"); !errors.Is(err, ErrUnknownPeriod) {
		t.Errorf("Buckets(fortnightly) error = %v, want ErrUnknownPeriod", err)
	}
}

func TestEngineBucketsAllPeriods(t *testing.T) {
	store := mustStore(t,
		[]core.Transaction{sale("t1", 100, date(2025, 3, 15))},
		nil, nil,
	)
	eng := NewEngine(store, WithClock(fixedClock(2025, 3, 15)))

	wantLen := map[Period]int{
		PeriodWeekly:     7,
		PeriodMonthly:    5,
		PeriodYearly:     12,
		PeriodTrailing12: 12,
		PeriodLast5Years: 5,
	}
	for period, want := range wantLen {
		got, err := eng.Buckets(period)
		if err != nil {
			t.Fatalf("Buckets(%s) error = %v", period, err)
		}
		if len(got) != want {
			t.Errorf("Buckets(%s) returned %d buckets, want %d", period, len(got), want)
		}
	}
}

func TestEngineBalanceUnknownParty(t *testing.T) {
	eng := NewEngine(ledger.New(), WithClock(fixedClock(2025, 3, 15)))

	if _, err := eng.Balance("ghost"); !errors.Is(err, ledger.ErrUnknownParty) {
		t.Errorf("Balance(ghost) error = %v, want ErrUnknownParty", err)
	}
}

func TestEngineStatement(t *testing.T) {
	store := mustStore(t,
		[]core.Transaction{saleFor("t1", 50, date(2025, 3, 5), "p1", "Ravi Traders")},
		nil,
		[]core.Party{party("p1", "Ravi Traders", core.Customer, 100)},
	)
	eng := NewEngine(store, WithClock(fixedClock(2025, 3, 15)))

	st, err := eng.Statement("p1")
	if err != nil {
		t.Fatalf("Statement() error = %v", err)
	}
	if st.ClosingBalance != rupees(150) {
		t.Errorf("ClosingBalance = %v, want %v", st.ClosingBalance, rupees(150))
	}

	if _, err := eng.Statement("ghost"); !errors.Is(err, ledger.ErrUnknownParty) {
		t.Errorf("Statement(ghost) error = %v, want ErrUnknownParty", err)
	}
}

func TestEngineTodaySales(t *testing.T) {
	store := mustStore(t,
		[]core.Transaction{
			sale("t1", 200, date(2025, 3, 15)),
			sale("t2", 900, date(2025, 3, 14)),
		},
		nil, nil,
	)
	eng := NewEngine(store, WithClock(fixedClock(2025, 3, 15)))

	total, count := eng.TodaySales()
	if total != rupees(200) || count != 1 {
		t.Errorf("TodaySales() = (%v, %d), want (%v, 1)", total, count, rupees(200))
	}
}

func TestEngineRecent(t *testing.T) {
	store := mustStore(t,
		[]core.Transaction{
			sale("t1", 100, date(2025, 3, 1)),
			sale("t2", 200, date(2025, 3, 10)),
		},
		nil, nil,
	)
	eng := NewEngine(store, WithClock(fixedClock(2025, 3, 15)))

	got := eng.Recent(1)
	if len(got) != 1 || got[0].ID != "t2" {
		t.Errorf("Recent(1) = %+v, want just t2", got)
	}
}

func TestEngineExpenseViews(t *testing.T) {
	necessary := expense("e1", "Rent", 1000, date(2025, 3, 1))
	necessary.IsNecessary = true
	store := mustStore(t, nil,
		[]core.Expense{necessary, expense("e2", "Food", 250, date(2025, 3, 2))},
		nil,
	)
	eng := NewEngine(store, WithClock(fixedClock(2025, 3, 15)))

	breakdown := eng.ExpenseBreakdown()
	if len(breakdown) != 2 || breakdown[0].Name != "Rent" {
		t.Errorf("ExpenseBreakdown() = %+v, want Rent first", breakdown)
	}

	n, u := eng.ExpenseSplit()
	if n != rupees(1000) || u != rupees(250) {
		t.Errorf("ExpenseSplit() = (%v, %v), want (%v, %v)", n, u, rupees(1000), rupees(250))
	}
}
