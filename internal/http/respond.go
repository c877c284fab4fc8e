package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"khata/internal/analytics"
	"khata/internal/core"
	"khata/internal/ingest"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// Monetary amounts go over the wire as decimal strings, the same format
// the ingest side accepts.
func moneyString(m core.Money) string {
	return ingest.FormatCents(m.Cents)
}

type transactionJSON struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	OccurredOn  string `json:"occurredOn"`
	Description string `json:"description,omitempty"`
	PartyID     string `json:"partyId,omitempty"`
	PartyName   string `json:"partyName,omitempty"`
}

func toTransactionJSON(tx core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          tx.ID,
		Kind:        string(tx.Kind),
		Amount:      moneyString(tx.Amount),
		OccurredOn:  ingest.FormatDate(tx.OccurredOn),
		Description: tx.Description,
		PartyID:     tx.PartyID,
		PartyName:   tx.PartyName,
	}
}

type bucketJSON struct {
	Label    string `json:"label"`
	Sales    string `json:"sales"`
	Expenses string `json:"expenses"`
}

func toBucketsJSON(buckets []core.Bucket) []bucketJSON {
	out := make([]bucketJSON, len(buckets))
	for i, b := range buckets {
		out[i] = bucketJSON{
			Label:    b.Label,
			Sales:    moneyString(b.Sales),
			Expenses: moneyString(b.Expenses),
		}
	}
	return out
}

type ratioJSON struct {
	Value    float64 `json:"value"`
	Infinite bool    `json:"infinite"`
}

type healthJSON struct {
	Status             string    `json:"status"`
	CashFlowRatio      ratioJSON `json:"cashFlowRatio"`
	OverdueReceivables string    `json:"overdueReceivables"`
	PendingPayments    string    `json:"pendingPayments"`
}

func toHealthJSON(h analytics.HealthReport) healthJSON {
	return healthJSON{
		Status: string(h.Status),
		CashFlowRatio: ratioJSON{
			Value:    h.CashFlowRatio.Value,
			Infinite: h.CashFlowRatio.Infinite,
		},
		OverdueReceivables: moneyString(h.OverdueReceivables),
		PendingPayments:    moneyString(h.PendingPayments),
	}
}

type insightsJSON struct {
	BestSalesDay       string  `json:"bestSalesDay"`
	BestSalesAmount    string  `json:"bestSalesAmount"`
	TopExpenseCategory string  `json:"topExpenseCategory"`
	TopExpenseAmount   string  `json:"topExpenseAmount"`
	TopCustomer        string  `json:"topCustomer"`
	TopCustomerAmount  string  `json:"topCustomerAmount"`
	ProfitMargin       float64 `json:"profitMargin"`
	AvgDailyRevenue    string  `json:"avgDailyRevenue"`
}

func toInsightsJSON(ins analytics.Insights) insightsJSON {
	return insightsJSON{
		BestSalesDay:       ins.BestSalesDay,
		BestSalesAmount:    moneyString(ins.BestSalesAmount),
		TopExpenseCategory: ins.TopExpenseCategory,
		TopExpenseAmount:   moneyString(ins.TopExpenseAmount),
		TopCustomer:        ins.TopCustomer,
		TopCustomerAmount:  moneyString(ins.TopCustomerAmount),
		ProfitMargin:       ins.ProfitMargin,
		AvgDailyRevenue:    moneyString(ins.AvgDailyRevenue),
	}
}

type partyJSON struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Balance string `json:"balance"`
}

func toPartyJSON(p core.Party, balance core.Money) partyJSON {
	return partyJSON{
		ID:      p.ID,
		Name:    p.Name,
		Kind:    string(p.Kind),
		Phone:   p.Phone,
		Email:   p.Email,
		Address: p.Address,
		Balance: moneyString(balance),
	}
}

type entryJSON struct {
	Transaction transactionJSON `json:"transaction"`
	Debit       string          `json:"debit"`
	Credit      string          `json:"credit"`
	Balance     string          `json:"balance"`
}

type statementJSON struct {
	Party          partyJSON   `json:"party"`
	OpeningBalance string      `json:"openingBalance"`
	ClosingBalance string      `json:"closingBalance"`
	TotalDebit     string      `json:"totalDebit"`
	TotalCredit    string      `json:"totalCredit"`
	Entries        []entryJSON `json:"entries"`
}

func toStatementJSON(st analytics.Statement) statementJSON {
	entries := make([]entryJSON, len(st.Entries))
	for i, e := range st.Entries {
		entries[i] = entryJSON{
			Transaction: toTransactionJSON(e.Transaction),
			Debit:       moneyString(e.Debit),
			Credit:      moneyString(e.Credit),
			Balance:     moneyString(e.Balance),
		}
	}
	return statementJSON{
		Party:          toPartyJSON(st.Party, st.ClosingBalance),
		OpeningBalance: moneyString(st.OpeningBalance),
		ClosingBalance: moneyString(st.ClosingBalance),
		TotalDebit:     moneyString(st.TotalDebit),
		TotalCredit:    moneyString(st.TotalCredit),
		Entries:        entries,
	}
}
