package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Sale     TransactionKind = "sale"
	Purchase TransactionKind = "purchase"
	Spend    TransactionKind = "expense"
)

const (
	Customer PartyKind = "customer"
	Supplier PartyKind = "supplier"
)

type (
	TransactionKind string

	PartyKind string

	Category string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is one entry in the append-only ledger. Expense-kind
	// transactions mirror Expense records for the activity feed.
	Transaction struct {
		ID          string
		Kind        TransactionKind
		Amount      Money
		OccurredOn  Date
		Description string
		PartyID     string
		PartyName   string
	}

	Expense struct {
		ID          string
		Category    Category
		Amount      Money
		Description string
		OccurredOn  Date
		IsNecessary bool
	}

	// Party is a customer or supplier counterpart. Balance is a cached
	// opening-balance snapshot; the derived value lives in the ledger.
	Party struct {
		ID      string
		Name    string
		Kind    PartyKind
		Phone   string
		Email   string
		Address string
		Balance Money
	}
)

// Categories is the closed set of expense categories.
var Categories = []Category{
	"Rent",
	"Utilities",
	"Salary",
	"Inventory",
	"Transport",
	"Food",
	"Office Supplies",
	"Phone/Internet",
	"Marketing",
	"Other",
}

var (
	ErrEmptyID          = errors.New("empty id")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidPartyKind = errors.New("invalid party kind")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyName        = errors.New("empty name")
)

func (k TransactionKind) Validate() error {
	switch k {
	case Sale, Purchase, Spend:
		return nil
	}
	return ErrInvalidKind
}

func (k PartyKind) Validate() error {
	switch k {
	case Customer, Supplier:
		return nil
	}
	return ErrInvalidPartyKind
}

func (c Category) Validate() error {
	for _, known := range Categories {
		if c == known {
			return nil
		}
	}
	return ErrInvalidCategory
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as an int (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// SameDay reports calendar-date equality (year, month, day). Two timestamps
// 20 hours apart that cross midnight are different days.
func (d Date) SameDay(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month() && d.Day() == other.Day()
}

// AddDays returns the date n calendar days later (negative n goes back).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

// WeekOfMonth partitions a month into five buckets: min(ceil(day/7), 5).
// Week 5 absorbs days 29-31.
func (d Date) WeekOfMonth() int {
	week := (d.Day() + 6) / 7
	if week > 5 {
		week = 5
	}
	return week
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns the difference of two amounts. May be negative.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Cents > 0
}

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool {
	return m.Cents < 0
}

// Abs returns the absolute amount.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.OccurredOn.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if err := e.Category.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.OccurredOn.Validate(); err != nil {
		return err
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (p Party) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return p.Kind.Validate()
}

// MirrorIDPrefix marks the transaction IDs reserved for expense mirrors.
// Externally supplied transactions must not use it.
const MirrorIDPrefix = "exp-"

// MirrorTransaction builds the Expense-kind ledger entry that mirrors an
// expense record in the activity feed. Every expense has exactly one mirror
// with matching amount and date.
func (e Expense) MirrorTransaction() Transaction {
	return Transaction{
		ID:          MirrorIDPrefix + e.ID,
		Kind:        Spend,
		Amount:      e.Amount,
		OccurredOn:  e.OccurredOn,
		Description: string(e.Category) + ": " + e.Description,
	}
}
