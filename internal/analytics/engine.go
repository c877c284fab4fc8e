package analytics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"khata/internal/cache"
	"khata/internal/core"
	"khata/internal/ledger"
)

// ErrUnknownPeriod is returned when a bucket period is not one of the
// supported values.
var ErrUnknownPeriod = errors.New("unknown period")

const (
	memoSize = 256
	memoTTL  = 5 * time.Minute
)

// Engine computes derived views over a ledger store. Results are
// memoized keyed by the store revision and the calendar day of the
// clock, so repeated reads between writes never rescan the ledger and
// day-sensitive views roll over at midnight.
type Engine struct {
	store *ledger.Store
	now   func() time.Time
	memo  *cache.LRU[any]
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the engine clock. Tests use a fixed clock so
// day-relative views are deterministic.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine over the given store.
func NewEngine(store *ledger.Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   time.Now,
		memo:  cache.NewLRU[any](memoSize, memoTTL),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Memo exposes the underlying cache so callers can register it with a
// cache janitor.
func (e *Engine) Memo() *cache.LRU[any] {
	return e.memo
}

func (e *Engine) today() core.Date {
	return core.DateOf(e.now())
}

func (e *Engine) key(op string, extra ...string) string {
	k := fmt.Sprintf("%s:%d:%s", op, e.store.Revision(), e.now().Format("2006-01-02"))
	for _, x := range extra {
		k += ":" + x
	}
	return k
}

// memoized returns the cached value for key, computing it from a fresh
// snapshot on a miss. Stale entries are left for TTL expiry since keys
// embed the revision.
func memoized[T any](e *Engine, key string, compute func(ledger.Snapshot) T) T {
	if v, ok := e.memo.Get(key); ok {
		if t, ok := v.(T); ok {
			return t
		}
	}
	result := compute(e.store.Snapshot())
	e.memo.Set(key, result)
	return result
}

// KPIs returns the headline totals for the whole ledger.
func (e *Engine) KPIs() KPISummary {
	return memoized(e, e.key("kpis"), ComputeKPIs)
}

// Balance returns the effective balance of the given party.
func (e *Engine) Balance(partyID string) (core.Money, error) {
	party, ok := e.store.Party(partyID)
	if !ok {
		return core.Money{}, fmt.Errorf("party %s: %w", partyID, ledger.ErrUnknownParty)
	}
	return BalanceOf(e.store.Snapshot(), party), nil
}

// Buckets returns the oldest-first sales/expense series for a period.
func (e *Engine) Buckets(period Period) ([]core.Bucket, error) {
	var build func(ledger.Snapshot, core.Date) []core.Bucket
	switch period {
	case PeriodWeekly:
		build = BucketsWeekly
	case PeriodMonthly:
		build = BucketsMonthly
	case PeriodYearly:
		build = BucketsForCurrentYear
	case PeriodTrailing12:
		build = BucketsTrailing12Months
	case PeriodLast5Years:
		build = BucketsLast5Years
	default:
		return nil, fmt.Errorf("period %q: %w", period, ErrUnknownPeriod)
	}

	return memoized(e, e.key("buckets", string(period)), func(snap ledger.Snapshot) []core.Bucket {
		return build(snap, e.today())
	}), nil
}

// Health returns the business health report.
func (e *Engine) Health() HealthReport {
	return memoized(e, e.key("health"), func(snap ledger.Snapshot) HealthReport {
		return ComputeHealth(snap, ComputeKPIs(snap))
	})
}

// Insights returns the dashboard insight figures.
func (e *Engine) Insights() Insights {
	return memoized(e, e.key("insights"), func(snap ledger.Snapshot) Insights {
		return ComputeInsights(snap, ComputeKPIs(snap), e.today())
	})
}

// Drift reports parties whose cached balance disagrees with their
// transaction history.
func (e *Engine) Drift() []Drift {
	return memoized(e, e.key("drift"), DetectDrift)
}

// Statement returns the chronological account statement for a party.
func (e *Engine) Statement(partyID string) (Statement, error) {
	party, ok := e.store.Party(partyID)
	if !ok {
		return Statement{}, fmt.Errorf("party %s: %w", partyID, ledger.ErrUnknownParty)
	}
	return memoized(e, e.key("statement", partyID), func(snap ledger.Snapshot) Statement {
		return StatementOf(snap, party)
	}), nil
}

// Recent returns the n most recent transactions, newest first.
func (e *Engine) Recent(n int) []core.Transaction {
	return memoized(e, e.key("recent", strconv.Itoa(n)), func(snap ledger.Snapshot) []core.Transaction {
		return RecentTransactions(snap, n)
	})
}

type todayResult struct {
	Total core.Money
	Count int
}

// TodaySales returns the total and count of sales recorded today.
func (e *Engine) TodaySales() (core.Money, int) {
	r := memoized(e, e.key("today-sales"), func(snap ledger.Snapshot) todayResult {
		total, count := TodaySales(snap, e.today())
		return todayResult{Total: total, Count: count}
	})
	return r.Total, r.Count
}

// SalesChange returns the percent change of this month's sales against
// last month's.
func (e *Engine) SalesChange() float64 {
	return memoized(e, e.key("sales-change"), func(snap ledger.Snapshot) float64 {
		return MonthlySalesChange(snap, e.today())
	})
}

// ExpenseBreakdown returns per-category expense totals, largest first.
func (e *Engine) ExpenseBreakdown() []core.CategoryAmount {
	return memoized(e, e.key("expense-breakdown"), CategoryBreakdown)
}

// MonthExpenses returns expense-record spend for the current calendar
// month, the figure budget monitoring compares against.
func (e *Engine) MonthExpenses() core.Money {
	today := e.today()
	return memoized(e, e.key("month-expenses"), func(snap ledger.Snapshot) core.Money {
		return MonthExpenseTotal(snap, today)
	})
}

type splitResult struct {
	Necessary   core.Money
	Unnecessary core.Money
}

// ExpenseSplit returns spending split into necessary and discretionary
// totals.
func (e *Engine) ExpenseSplit() (necessary, unnecessary core.Money) {
	r := memoized(e, e.key("expense-split"), func(snap ledger.Snapshot) splitResult {
		n, u := NecessarySplit(snap)
		return splitResult{Necessary: n, Unnecessary: u}
	})
	return r.Necessary, r.Unnecessary
}
