// Package ingest decodes ledger records from their wire form. Both the
// AMQP worker and the HTTP write API accept the same JSON shapes, so the
// decoding and field validation live here once.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"khata/internal/core"
)

const dateLayout = "2006-01-02"

var (
	ErrMissingID     = errors.New("missing id")
	ErrMissingAmount = errors.New("missing amount")
	ErrMissingDate   = errors.New("missing occurredOn")
)

// decimal accepts a monetary amount as either a JSON string or number.
// Upstream clients are not consistent about which they send.
type decimal string

func (d *decimal) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = decimal(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*d = decimal(n.String())
	return nil
}

func (d decimal) toMoney() (core.Money, error) {
	cents, err := core.ParseDecimalToCents(string(d))
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// toSignedMoney allows a leading minus sign. Record amounts are always
// non-negative, but party opening balances can be owed in either direction.
func (d decimal) toSignedMoney() (core.Money, error) {
	s := strings.TrimSpace(string(d))
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	if negative {
		cents = -cents
	}
	return core.Money{Cents: cents}, nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.DateOf(t), nil
}

type transactionRecord struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	Amount      decimal `json:"amount"`
	OccurredOn  string  `json:"occurredOn"`
	Description string  `json:"description"`
	PartyID     string  `json:"partyId"`
	PartyName   string  `json:"partyName"`
}

// DecodeTransaction parses and validates a transaction payload.
func DecodeTransaction(payload []byte) (core.Transaction, error) {
	var rec transactionRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return core.Transaction{}, fmt.Errorf("decode transaction: %w", err)
	}

	if strings.TrimSpace(rec.ID) == "" {
		return core.Transaction{}, ErrMissingID
	}
	if rec.Amount == "" {
		return core.Transaction{}, ErrMissingAmount
	}
	if rec.OccurredOn == "" {
		return core.Transaction{}, ErrMissingDate
	}

	amount, err := rec.Amount.toMoney()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", rec.ID, err)
	}
	occurredOn, err := parseDate(rec.OccurredOn)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", rec.ID, err)
	}

	tx := core.Transaction{
		ID:          rec.ID,
		Kind:        core.TransactionKind(rec.Kind),
		Amount:      amount,
		OccurredOn:  occurredOn,
		Description: rec.Description,
		PartyID:     rec.PartyID,
		PartyName:   rec.PartyName,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", rec.ID, err)
	}
	return tx, nil
}

type expenseRecord struct {
	ID          string  `json:"id"`
	Category    string  `json:"category"`
	Amount      decimal `json:"amount"`
	OccurredOn  string  `json:"occurredOn"`
	Description string  `json:"description"`
	IsNecessary bool    `json:"isNecessary"`
}

// DecodeExpense parses and validates an expense payload.
func DecodeExpense(payload []byte) (core.Expense, error) {
	var rec expenseRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return core.Expense{}, fmt.Errorf("decode expense: %w", err)
	}

	if strings.TrimSpace(rec.ID) == "" {
		return core.Expense{}, ErrMissingID
	}
	if rec.Amount == "" {
		return core.Expense{}, ErrMissingAmount
	}
	if rec.OccurredOn == "" {
		return core.Expense{}, ErrMissingDate
	}

	amount, err := rec.Amount.toMoney()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: %w", rec.ID, err)
	}
	occurredOn, err := parseDate(rec.OccurredOn)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: %w", rec.ID, err)
	}

	e := core.Expense{
		ID:          rec.ID,
		Category:    core.Category(rec.Category),
		Amount:      amount,
		OccurredOn:  occurredOn,
		Description: rec.Description,
		IsNecessary: rec.IsNecessary,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: %w", rec.ID, err)
	}
	return e, nil
}

type partyRecord struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Kind    string  `json:"kind"`
	Phone   string  `json:"phone"`
	Email   string  `json:"email"`
	Address string  `json:"address"`
	Balance decimal `json:"balance"`
}

// DecodeParty parses and validates a party payload. Balance is optional
// and defaults to zero for parties without an opening balance.
func DecodeParty(payload []byte) (core.Party, error) {
	var rec partyRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return core.Party{}, fmt.Errorf("decode party: %w", err)
	}

	if strings.TrimSpace(rec.ID) == "" {
		return core.Party{}, ErrMissingID
	}

	var balance core.Money
	if rec.Balance != "" {
		var err error
		balance, err = rec.Balance.toSignedMoney()
		if err != nil {
			return core.Party{}, fmt.Errorf("party %s: %w", rec.ID, err)
		}
	}

	p := core.Party{
		ID:      rec.ID,
		Name:    rec.Name,
		Kind:    core.PartyKind(rec.Kind),
		Phone:   rec.Phone,
		Email:   rec.Email,
		Address: rec.Address,
		Balance: balance,
	}
	if err := p.Validate(); err != nil {
		return core.Party{}, fmt.Errorf("party %s: %w", rec.ID, err)
	}
	return p, nil
}

// FormatCents renders cents as a plain decimal string, the inverse of the
// wire amount format.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// FormatDate renders a date in the wire layout.
func FormatDate(d core.Date) string {
	return d.Format(dateLayout)
}

// ParseLimit parses an optional positive integer query value, falling
// back to def when absent.
func ParseLimit(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid limit %q", s)
	}
	return n, nil
}
