package http

import (
	"errors"
	"io"
	"math"
	"net/http"

	"khata/internal/analytics"
	"khata/internal/ingest"
	"khata/internal/ledger"
	applog "khata/internal/log"
	"khata/internal/middleware/trace"
)

// maxBodySize caps POST payloads. Ledger records are small; anything
// near this limit is malformed or hostile.
const maxBodySize = 1 << 20

const defaultRecentLimit = 10

type dashboardJSON struct {
	TotalSales      string            `json:"totalSales"`
	TotalReceivable string            `json:"totalReceivable"`
	TotalPayable    string            `json:"totalPayable"`
	CashInHand      string            `json:"cashInHand"`
	NetBalance      string            `json:"netBalance"`
	TodaySales      string            `json:"todaySales"`
	TodayCount      int               `json:"todayCount"`
	SalesChangePct  float64           `json:"salesChangePct"`
	Recent          []transactionJSON `json:"recent"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	limit, err := ingest.ParseLimit(r.URL.Query().Get("limit"), defaultRecentLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	// Collapse a burst of identical reads into one computation. The key
	// omits the revision on purpose: the engine memoizes per revision, so
	// the only work worth deduplicating is the cold computation itself.
	view, _, _ := s.flight.Do(r.URL.RequestURI(), func() (any, error) {
		kpis := s.engine.KPIs()
		todaySales, todayCount := s.engine.TodaySales()
		recent := s.engine.Recent(limit)
		recentJSON := make([]transactionJSON, len(recent))
		for i, tx := range recent {
			recentJSON[i] = toTransactionJSON(tx)
		}
		return dashboardJSON{
			TotalSales:      moneyString(kpis.TotalSales),
			TotalReceivable: moneyString(kpis.TotalReceivable),
			TotalPayable:    moneyString(kpis.TotalPayable),
			CashInHand:      moneyString(kpis.CashInHand),
			NetBalance:      moneyString(kpis.NetBalance),
			TodaySales:      moneyString(todaySales),
			TodayCount:      todayCount,
			SalesChangePct:  s.engine.SalesChange(),
			Recent:          recentJSON,
		}, nil
	})

	writeJSON(w, http.StatusOK, view)
}

type bucketsJSON struct {
	Period  string       `json:"period"`
	Buckets []bucketJSON `json:"buckets"`
}

func (s *Server) handleBuckets(w http.ResponseWriter, r *http.Request) {
	period := analytics.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = analytics.PeriodWeekly
	}

	buckets, err := s.engine.Buckets(period)
	if err != nil {
		if errors.Is(err, analytics.ErrUnknownPeriod) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to compute buckets")
		return
	}

	writeJSON(w, http.StatusOK, bucketsJSON{
		Period:  string(period),
		Buckets: toBucketsJSON(buckets),
	})
}

func (s *Server) handleBusinessHealth(w http.ResponseWriter, r *http.Request) {
	view, _, _ := s.flight.Do(r.URL.Path, func() (any, error) {
		return toHealthJSON(s.engine.Health()), nil
	})
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	view, _, _ := s.flight.Do(r.URL.Path, func() (any, error) {
		return toInsightsJSON(s.engine.Insights()), nil
	})
	writeJSON(w, http.StatusOK, view)
}

type expenseSummaryJSON struct {
	ByCategory    []categoryJSON `json:"byCategory"`
	Necessary     string         `json:"necessary"`
	Unnecessary   string         `json:"unnecessary"`
	MonthTotal    string         `json:"monthTotal"`
	MonthlyBudget string         `json:"monthlyBudget,omitempty"`
	BudgetUsedPct float64        `json:"budgetUsedPct,omitempty"`
}

type categoryJSON struct {
	Name     string  `json:"name"`
	Amount   string  `json:"amount"`
	SharePct float64 `json:"sharePct"`
}

func (s *Server) handleExpenseSummary(w http.ResponseWriter, _ *http.Request) {
	breakdown := s.engine.ExpenseBreakdown()
	necessary, unnecessary := s.engine.ExpenseSplit()
	monthTotal := s.engine.MonthExpenses()

	var totalCents int64
	for _, c := range breakdown {
		totalCents += c.Amount.Cents
	}
	byCategory := make([]categoryJSON, len(breakdown))
	for i, c := range breakdown {
		byCategory[i] = categoryJSON{Name: c.Name, Amount: moneyString(c.Amount)}
		if totalCents > 0 {
			byCategory[i].SharePct = math.Round(float64(c.Amount.Cents)/float64(totalCents)*100*10) / 10
		}
	}

	summary := expenseSummaryJSON{
		ByCategory:  byCategory,
		Necessary:   moneyString(necessary),
		Unnecessary: moneyString(unnecessary),
		MonthTotal:  moneyString(monthTotal),
	}
	if s.monthlyBudget > 0 {
		budgetCents := s.monthlyBudget * 100
		summary.MonthlyBudget = ingest.FormatCents(budgetCents)
		summary.BudgetUsedPct = math.Round(float64(monthTotal.Cents)/float64(budgetCents)*100*10) / 10
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handlePartyStatement(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "party id is required")
		return
	}

	statement, err := s.engine.Statement(id)
	if err != nil {
		if errors.Is(err, ledger.ErrUnknownParty) {
			writeError(w, http.StatusNotFound, "party not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to build statement")
		return
	}

	writeJSON(w, http.StatusOK, toStatementJSON(statement))
}

type driftJSON struct {
	PartyID string `json:"partyId"`
	Name    string `json:"name"`
	Cached  string `json:"cached"`
	Derived string `json:"derived"`
}

func (s *Server) handleDrift(w http.ResponseWriter, _ *http.Request) {
	drifts := s.engine.Drift()
	out := make([]driftJSON, len(drifts))
	for i, d := range drifts {
		out[i] = driftJSON{
			PartyID: d.Party.ID,
			Name:    d.Party.Name,
			Cached:  moneyString(d.Cached),
			Derived: moneyString(d.Derived),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type createdJSON struct {
	ID string `json:"id"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		return
	}

	tx, err := ingest.DecodeTransaction(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.svc.RecordTransaction(r.Context(), tx); err != nil {
		s.writeRecordError(w, r, err)
		return
	}

	s.records.LogRecordAppended(r.Context(), string(tx.Kind), tx.ID, tx.Amount.Cents)
	writeJSON(w, http.StatusCreated, createdJSON{ID: tx.ID})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		return
	}

	expense, err := ingest.DecodeExpense(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.svc.RecordExpense(r.Context(), expense); err != nil {
		s.writeRecordError(w, r, err)
		return
	}

	s.records.LogRecordAppended(r.Context(), string(expense.Category), expense.ID, expense.Amount.Cents)
	writeJSON(w, http.StatusCreated, createdJSON{ID: expense.ID})
}

func (s *Server) handleSaveParty(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		return
	}

	party, err := ingest.DecodeParty(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.svc.SaveParty(r.Context(), party); err != nil {
		s.writeRecordError(w, r, err)
		return
	}

	s.records.LogRecordAppended(r.Context(), string(party.Kind), party.ID, party.Balance.Cents)
	writeJSON(w, http.StatusCreated, createdJSON{ID: party.ID})
}

// readBody drains the request body under the size cap. On failure it has
// already written the error response; callers just return.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, err
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "request body is required")
		return nil, errors.New("empty body")
	}
	return body, nil
}

func (s *Server) writeRecordError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ledger.ErrDuplicateID) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if errors.Is(err, ledger.ErrReservedID) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	fields := applog.NewFields().
		WithRequestID(trace.GetRequestID(r.Context())).
		WithClientIP(clientIP(r))
	s.records.LogError(r.Context(), "Record write failed", err, applog.ComponentHTTP, applog.OpAppend, fields)
	writeError(w, http.StatusInternalServerError, "failed to record entry")
}
