package analytics

import (
	"testing"

	"khata/internal/core"
)

func TestComputeInsightsEmptyLedger(t *testing.T) {
	today := date(2025, 3, 15)
	snap := snapshotOf(t, nil, nil, nil)

	got := ComputeInsights(snap, ComputeKPIs(snap), today)

	if got.TopExpenseCategory != "None" || got.TopExpenseAmount != rupees(0) {
		t.Errorf("top expense = (%s, %v), want (None, 0)", got.TopExpenseCategory, got.TopExpenseAmount)
	}
	if got.TopCustomer != "No data" || got.TopCustomerAmount != rupees(0) {
		t.Errorf("top customer = (%s, %v), want (No data, 0)", got.TopCustomer, got.TopCustomerAmount)
	}
	if got.BestSalesDay != "Sunday" || got.BestSalesAmount != rupees(0) {
		t.Errorf("best sales day = (%s, %v), want (Sunday, 0)", got.BestSalesDay, got.BestSalesAmount)
	}
	if got.ProfitMargin != 0 {
		t.Errorf("ProfitMargin = %v, want 0 with no sales", got.ProfitMargin)
	}
	if got.AvgDailyRevenue != rupees(0) {
		t.Errorf("AvgDailyRevenue = %v, want 0", got.AvgDailyRevenue)
	}
}

func TestComputeInsightsBestSalesDay(t *testing.T) {
	today := date(2025, 3, 15)
	snap := snapshotOf(t,
		[]core.Transaction{
			sale("t1", 300, date(2025, 3, 12)), // Wednesday
			sale("t2", 100, date(2025, 3, 12)),
			sale("t3", 350, today),
			sale("t4", 9000, date(2025, 3, 1)), // outside the trailing week
		},
		nil, nil,
	)

	got := ComputeInsights(snap, ComputeKPIs(snap), today)
	if got.BestSalesDay != "Wednesday" {
		t.Errorf("BestSalesDay = %s, want Wednesday", got.BestSalesDay)
	}
	if got.BestSalesAmount != rupees(400) {
		t.Errorf("BestSalesAmount = %v, want %v", got.BestSalesAmount, rupees(400))
	}
}

func TestComputeInsightsTopExpenseCategory(t *testing.T) {
	today := date(2025, 3, 15)
	snap := snapshotOf(t, nil,
		[]core.Expense{
			expense("e1", "Rent", 1000, date(2025, 3, 1)),
			expense("e2", "Rent", 500, date(2025, 3, 2)),
			expense("e3", "Utilities", 800, date(2025, 3, 3)),
		},
		nil,
	)

	got := ComputeInsights(snap, ComputeKPIs(snap), today)
	if got.TopExpenseCategory != "Rent" {
		t.Errorf("TopExpenseCategory = %s, want Rent", got.TopExpenseCategory)
	}
	if got.TopExpenseAmount != rupees(1500) {
		t.Errorf("TopExpenseAmount = %v, want %v", got.TopExpenseAmount, rupees(1500))
	}
}

func TestComputeInsightsTopCustomer(t *testing.T) {
	today := date(2025, 3, 15)
	snap := snapshotOf(t,
		[]core.Transaction{
			saleFor("t1", 300, date(2025, 3, 1), "c1", "Ravi Traders"),
			saleFor("t2", 500, date(2025, 3, 2), "c1", "Ravi Traders"),
			saleFor("t3", 600, date(2025, 3, 3), "c2", "Mehta & Sons"),
			sale("t4", 50, date(2025, 3, 4)), // anonymous walk-in
		},
		nil, nil,
	)

	got := ComputeInsights(snap, ComputeKPIs(snap), today)
	if got.TopCustomer != "Ravi Traders" {
		t.Errorf("TopCustomer = %s, want Ravi Traders", got.TopCustomer)
	}
	if got.TopCustomerAmount != rupees(800) {
		t.Errorf("TopCustomerAmount = %v, want %v", got.TopCustomerAmount, rupees(800))
	}
}

func TestComputeInsightsTopCustomerUnknownFallback(t *testing.T) {
	today := date(2025, 3, 15)
	snap := snapshotOf(t,
		[]core.Transaction{sale("t1", 120, date(2025, 3, 1))},
		nil, nil,
	)

	got := ComputeInsights(snap, ComputeKPIs(snap), today)
	if got.TopCustomer != "Unknown" {
		t.Errorf("TopCustomer = %s, want Unknown", got.TopCustomer)
	}
}

func TestComputeInsightsMarginAndAverage(t *testing.T) {
	today := date(2025, 3, 15)
	snap := snapshotOf(t,
		[]core.Transaction{
			sale("t1", 3000, date(2025, 3, 1)),
			purchase("t2", 400, date(2025, 3, 2)),
		},
		[]core.Expense{
			expense("e1", "Salary", 500, date(2025, 3, 3)),
		},
		nil,
	)

	got := ComputeInsights(snap, ComputeKPIs(snap), today)
	if got.ProfitMargin != 70 {
		t.Errorf("ProfitMargin = %v, want 70", got.ProfitMargin)
	}
	if got.AvgDailyRevenue != rupees(100) {
		t.Errorf("AvgDailyRevenue = %v, want %v", got.AvgDailyRevenue, rupees(100))
	}
}

func TestCategoryBreakdown(t *testing.T) {
	snap := snapshotOf(t, nil,
		[]core.Expense{
			expense("e1", "Transport", 200, date(2025, 3, 1)),
			expense("e2", "Rent", 900, date(2025, 3, 2)),
			expense("e3", "Transport", 100, date(2025, 3, 3)),
		},
		nil,
	)

	got := CategoryBreakdown(snap)
	if len(got) != 2 {
		t.Fatalf("CategoryBreakdown() returned %d categories, want 2", len(got))
	}
	if got[0].Name != "Rent" || got[0].Amount != rupees(900) {
		t.Errorf("largest = (%s, %v), want (Rent, %v)", got[0].Name, got[0].Amount, rupees(900))
	}
	if got[1].Name != "Transport" || got[1].Amount != rupees(300) {
		t.Errorf("second = (%s, %v), want (Transport, %v)", got[1].Name, got[1].Amount, rupees(300))
	}
}

func TestNecessarySplit(t *testing.T) {
	necessary := expense("e1", "Rent", 1000, date(2025, 3, 1))
	necessary.IsNecessary = true
	discretionary := expense("e2", "Food", 250, date(2025, 3, 2))

	snap := snapshotOf(t, nil, []core.Expense{necessary, discretionary}, nil)

	n, u := NecessarySplit(snap)
	if n != rupees(1000) {
		t.Errorf("necessary = %v, want %v", n, rupees(1000))
	}
	if u != rupees(250) {
		t.Errorf("unnecessary = %v, want %v", u, rupees(250))
	}
}

func TestMonthExpenseTotal(t *testing.T) {
	snap := snapshotOf(t,
		[]core.Transaction{purchase("t1", 5000, date(2025, 3, 10))},
		[]core.Expense{
			expense("e1", "Rent", 1000, date(2025, 3, 1)),
			expense("e2", "Transport", 300, date(2025, 3, 20)),
			expense("e3", "Rent", 1000, date(2025, 2, 28)),
			expense("e4", "Utilities", 400, date(2024, 3, 5)),
		},
		nil,
	)

	got := MonthExpenseTotal(snap, date(2025, 3, 15))
	if got != rupees(1300) {
		t.Errorf("MonthExpenseTotal() = %v, want %v", got, rupees(1300))
	}
}
