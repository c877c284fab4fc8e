package analytics

import (
	"math"
	"strconv"
	"time"

	"khata/internal/core"
	"khata/internal/ledger"
)

// Period selects a bucketing scheme for chart series.
type Period string

const (
	PeriodWeekly     Period = "weekly"      // 7 calendar days ending today
	PeriodMonthly    Period = "monthly"     // Week 1..5 of the current month
	PeriodYearly     Period = "yearly"      // Jan..Dec of the current year
	PeriodTrailing12 Period = "trailing12"  // 12 months ending at the current month
	PeriodLast5Years Period = "last5years"  // 5 calendar years ending this year
)

// PctChange computes a percentage change rounded to one decimal. Growth
// from a zero baseline reads as a flat 100, or 0 when still zero.
func PctChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return math.Round((current-previous)/previous*100*10) / 10
}

// BucketsWeekly returns exactly 7 buckets, one per calendar day, spanning
// [today-6, today] inclusive, oldest first. Membership is calendar-date
// equality, not a rolling 24-hour window.
func BucketsWeekly(snap ledger.Snapshot, today core.Date) []core.Bucket {
	buckets := make([]core.Bucket, 7)
	for i := 0; i < 7; i++ {
		day := today.AddDays(i - 6)
		b := core.Bucket{Label: day.Format("Mon")}
		for _, tx := range snap.Transactions {
			if !tx.OccurredOn.SameDay(day) {
				continue
			}
			switch tx.Kind {
			case core.Sale:
				b.Sales = b.Sales.Add(tx.Amount)
			case core.Purchase:
				b.Expenses = b.Expenses.Add(tx.Amount)
			}
		}
		for _, e := range snap.Expenses {
			if e.OccurredOn.SameDay(day) {
				b.Expenses = b.Expenses.Add(e.Amount)
			}
		}
		buckets[i] = b
	}
	return buckets
}

// BucketsMonthly partitions the current calendar month into exactly 5 weekly
// buckets by weekNumber = min(ceil(dayOfMonth/7), 5). Week 5 absorbs days
// 29-31, so it is never strictly seven days wide.
func BucketsMonthly(snap ledger.Snapshot, today core.Date) []core.Bucket {
	buckets := make([]core.Bucket, 5)
	for i := range buckets {
		buckets[i].Label = "Week " + strconv.Itoa(i+1)
	}
	year, month := today.Year(), today.Month()

	inMonth := func(d core.Date) (int, bool) {
		if d.Year() != year || d.Month() != month {
			return 0, false
		}
		return d.WeekOfMonth() - 1, true
	}

	for _, tx := range snap.Transactions {
		idx, ok := inMonth(tx.OccurredOn)
		if !ok {
			continue
		}
		switch tx.Kind {
		case core.Sale:
			buckets[idx].Sales = buckets[idx].Sales.Add(tx.Amount)
		case core.Purchase:
			buckets[idx].Expenses = buckets[idx].Expenses.Add(tx.Amount)
		}
	}
	for _, e := range snap.Expenses {
		if idx, ok := inMonth(e.OccurredOn); ok {
			buckets[idx].Expenses = buckets[idx].Expenses.Add(e.Amount)
		}
	}
	return buckets
}

// BucketsForCurrentYear returns 12 month buckets for the current calendar
// year, January first.
func BucketsForCurrentYear(snap ledger.Snapshot, today core.Date) []core.Bucket {
	year := today.Year()
	months := make([]monthKey, 12)
	for i := 0; i < 12; i++ {
		months[i] = monthKey{year: year, month: i + 1}
	}
	return bucketsByMonth(snap, months)
}

// BucketsTrailing12Months returns 12 month buckets ending at the current
// month, oldest first. This is the "all-time rollup" form of the yearly
// chart; BucketsForCurrentYear is the year-to-date form.
func BucketsTrailing12Months(snap ledger.Snapshot, today core.Date) []core.Bucket {
	months := make([]monthKey, 12)
	anchor := time.Date(today.Year(), time.Month(today.Month()), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		m := anchor.AddDate(0, i-11, 0)
		months[i] = monthKey{year: m.Year(), month: int(m.Month())}
	}
	return bucketsByMonth(snap, months)
}

// BucketsLast5Years buckets the last 5 calendar years by year, oldest first,
// for long-range KPI drill-downs.
func BucketsLast5Years(snap ledger.Snapshot, today core.Date) []core.Bucket {
	buckets := make([]core.Bucket, 5)
	firstYear := today.Year() - 4
	for i := range buckets {
		buckets[i].Label = strconv.Itoa(firstYear + i)
	}

	idxOf := func(d core.Date) (int, bool) {
		i := d.Year() - firstYear
		if i < 0 || i > 4 {
			return 0, false
		}
		return i, true
	}

	for _, tx := range snap.Transactions {
		idx, ok := idxOf(tx.OccurredOn)
		if !ok {
			continue
		}
		switch tx.Kind {
		case core.Sale:
			buckets[idx].Sales = buckets[idx].Sales.Add(tx.Amount)
		case core.Purchase:
			buckets[idx].Expenses = buckets[idx].Expenses.Add(tx.Amount)
		}
	}
	for _, e := range snap.Expenses {
		if idx, ok := idxOf(e.OccurredOn); ok {
			buckets[idx].Expenses = buckets[idx].Expenses.Add(e.Amount)
		}
	}
	return buckets
}

type monthKey struct {
	year  int
	month int
}

func bucketsByMonth(snap ledger.Snapshot, months []monthKey) []core.Bucket {
	index := make(map[monthKey]int, len(months))
	buckets := make([]core.Bucket, len(months))
	for i, mk := range months {
		index[mk] = i
		buckets[i].Label = time.Date(mk.year, time.Month(mk.month), 1, 0, 0, 0, 0, time.UTC).Format("Jan")
	}

	for _, tx := range snap.Transactions {
		idx, ok := index[monthKey{year: tx.OccurredOn.Year(), month: tx.OccurredOn.Month()}]
		if !ok {
			continue
		}
		switch tx.Kind {
		case core.Sale:
			buckets[idx].Sales = buckets[idx].Sales.Add(tx.Amount)
		case core.Purchase:
			buckets[idx].Expenses = buckets[idx].Expenses.Add(tx.Amount)
		}
	}
	for _, e := range snap.Expenses {
		if idx, ok := index[monthKey{year: e.OccurredOn.Year(), month: e.OccurredOn.Month()}]; ok {
			buckets[idx].Expenses = buckets[idx].Expenses.Add(e.Amount)
		}
	}
	return buckets
}
