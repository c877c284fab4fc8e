package analytics

import (
	"testing"

	"khata/internal/core"
)

func TestPctChange(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     float64
	}{
		{"growth from zero baseline", 1000, 0, 100},
		{"still zero", 0, 0, 0},
		{"fifty percent up", 150, 100, 50},
		{"rounded to one decimal", 100, 150, -33.3},
		{"to zero", 0, 100, -100},
		{"unchanged", 200, 200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PctChange(tt.current, tt.previous); got != tt.want {
				t.Errorf("PctChange(%v, %v) = %v, want %v", tt.current, tt.previous, got, tt.want)
			}
		})
	}
}

func TestBucketsWeeklyWindow(t *testing.T) {
	today := date(2025, 3, 15) // Saturday
	snap := snapshotOf(t,
		[]core.Transaction{
			sale("t1", 100, date(2025, 3, 9)),  // today-6, first bucket
			sale("t2", 999, date(2025, 3, 8)),  // today-7, outside
			sale("t3", 250, today),             // last bucket
			purchase("t4", 40, today),          // expenses column
		},
		[]core.Expense{
			expense("e1", "Food", 60, today),
		},
		nil,
	)

	buckets := BucketsWeekly(snap, today)
	if len(buckets) != 7 {
		t.Fatalf("BucketsWeekly() returned %d buckets, want 7", len(buckets))
	}

	if buckets[0].Label != "Sun" || buckets[6].Label != "Sat" {
		t.Errorf("labels = %s..%s, want Sun..Sat", buckets[0].Label, buckets[6].Label)
	}
	if buckets[0].Sales != rupees(100) {
		t.Errorf("oldest bucket sales = %v, want %v", buckets[0].Sales, rupees(100))
	}
	if buckets[6].Sales != rupees(250) {
		t.Errorf("today bucket sales = %v, want %v", buckets[6].Sales, rupees(250))
	}
	if buckets[6].Expenses != rupees(100) {
		t.Errorf("today bucket expenses = %v, want purchases+expenses %v", buckets[6].Expenses, rupees(100))
	}

	var total core.Money
	for _, b := range buckets {
		total = total.Add(b.Sales)
	}
	if total != rupees(350) {
		t.Errorf("window total = %v, want %v (t2 must be excluded)", total, rupees(350))
	}
}

func TestBucketsMonthlyWeekAssignment(t *testing.T) {
	today := date(2025, 3, 15)
	snap := snapshotOf(t,
		[]core.Transaction{
			sale("t1", 100, date(2025, 3, 1)),  // Week 1
			sale("t2", 200, date(2025, 3, 15)), // Week 3
			sale("t3", 300, date(2025, 3, 31)), // Week 5 absorbs days 29-31
			sale("t4", 999, date(2025, 2, 15)), // previous month, excluded
		},
		[]core.Expense{
			expense("e1", "Rent", 80, date(2025, 3, 8)), // Week 2
		},
		nil,
	)

	buckets := BucketsMonthly(snap, today)
	if len(buckets) != 5 {
		t.Fatalf("BucketsMonthly() returned %d buckets, want 5", len(buckets))
	}

	if buckets[0].Label != "Week 1" || buckets[4].Label != "Week 5" {
		t.Errorf("labels = %s..%s, want Week 1..Week 5", buckets[0].Label, buckets[4].Label)
	}
	if buckets[0].Sales != rupees(100) {
		t.Errorf("week 1 sales = %v, want %v", buckets[0].Sales, rupees(100))
	}
	if buckets[2].Sales != rupees(200) {
		t.Errorf("week 3 sales = %v, want %v", buckets[2].Sales, rupees(200))
	}
	if buckets[4].Sales != rupees(300) {
		t.Errorf("week 5 sales = %v, want %v", buckets[4].Sales, rupees(300))
	}
	if buckets[1].Expenses != rupees(80) {
		t.Errorf("week 2 expenses = %v, want %v", buckets[1].Expenses, rupees(80))
	}
}

func TestBucketsForCurrentYear(t *testing.T) {
	today := date(2025, 3, 15)
	snap := snapshotOf(t,
		[]core.Transaction{
			sale("t1", 500, date(2025, 3, 10)),
			sale("t2", 999, date(2024, 3, 10)), // previous year, excluded
		},
		[]core.Expense{
			expense("e1", "Utilities", 120, date(2025, 6, 1)),
		},
		nil,
	)

	buckets := BucketsForCurrentYear(snap, today)
	if len(buckets) != 12 {
		t.Fatalf("BucketsForCurrentYear() returned %d buckets, want 12", len(buckets))
	}
	if buckets[0].Label != "Jan" || buckets[11].Label != "Dec" {
		t.Errorf("labels = %s..%s, want Jan..Dec", buckets[0].Label, buckets[11].Label)
	}
	if buckets[2].Sales != rupees(500) {
		t.Errorf("march sales = %v, want %v", buckets[2].Sales, rupees(500))
	}
	if buckets[5].Expenses != rupees(120) {
		t.Errorf("june expenses = %v, want %v", buckets[5].Expenses, rupees(120))
	}
}

func TestBucketsTrailing12Months(t *testing.T) {
	today := date(2025, 3, 15)
	snap := snapshotOf(t,
		[]core.Transaction{
			sale("t1", 400, date(2024, 4, 2)),  // oldest month in window
			sale("t2", 700, date(2025, 3, 1)),  // newest month
			sale("t3", 999, date(2024, 3, 20)), // one month too old
		},
		nil, nil,
	)

	buckets := BucketsTrailing12Months(snap, today)
	if len(buckets) != 12 {
		t.Fatalf("BucketsTrailing12Months() returned %d buckets, want 12", len(buckets))
	}
	if buckets[0].Label != "Apr" {
		t.Errorf("oldest label = %s, want Apr", buckets[0].Label)
	}
	if buckets[0].Sales != rupees(400) {
		t.Errorf("oldest bucket sales = %v, want %v", buckets[0].Sales, rupees(400))
	}
	if buckets[11].Sales != rupees(700) {
		t.Errorf("current month sales = %v, want %v", buckets[11].Sales, rupees(700))
	}
}

func TestBucketsLast5Years(t *testing.T) {
	today := date(2025, 3, 15)
	snap := snapshotOf(t,
		[]core.Transaction{
			sale("t1", 100, date(2021, 6, 1)),
			sale("t2", 200, date(2025, 1, 1)),
			sale("t3", 999, date(2019, 1, 1)), // outside the window
		},
		[]core.Expense{
			expense("e1", "Inventory", 50, date(2023, 5, 5)),
		},
		nil,
	)

	buckets := BucketsLast5Years(snap, today)
	if len(buckets) != 5 {
		t.Fatalf("BucketsLast5Years() returned %d buckets, want 5", len(buckets))
	}
	if buckets[0].Label != "2021" || buckets[4].Label != "2025" {
		t.Errorf("labels = %s..%s, want 2021..2025", buckets[0].Label, buckets[4].Label)
	}
	if buckets[0].Sales != rupees(100) {
		t.Errorf("2021 sales = %v, want %v", buckets[0].Sales, rupees(100))
	}
	if buckets[4].Sales != rupees(200) {
		t.Errorf("2025 sales = %v, want %v", buckets[4].Sales, rupees(200))
	}
	if buckets[2].Expenses != rupees(50) {
		t.Errorf("2023 expenses = %v, want %v", buckets[2].Expenses, rupees(50))
	}
}
