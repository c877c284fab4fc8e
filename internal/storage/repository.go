package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"khata/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// SQLiteRepository persists the ledger to SQLite. The in-memory store
// remains the read model; the repository is the durable append log that
// reloads it on startup.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveTransaction inserts a transaction row. Duplicate IDs fail on the
// primary key, matching the append-only ledger semantics.
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, kind, amount_cents, occurred_on, description, party_id, party_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, string(tx.Kind), tx.Amount.Cents, tx.OccurredOn.Format(dateLayout),
		tx.Description, tx.PartyID, tx.PartyName)
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"kind", string(tx.Kind),
		"amount_cents", tx.Amount.Cents)
	return nil
}

// SaveExpense inserts an expense row.
func (r *SQLiteRepository) SaveExpense(ctx context.Context, e core.Expense) error {
	necessary := 0
	if e.IsNecessary {
		necessary = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, category, amount_cents, occurred_on, description, is_necessary)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Category), e.Amount.Cents, e.OccurredOn.Format(dateLayout),
		e.Description, necessary)
	if err != nil {
		return fmt.Errorf("insert expense %s: %w", e.ID, err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"category", string(e.Category),
		"amount_cents", e.Amount.Cents)
	return nil
}

// SaveParty inserts or wholesale-replaces a party row.
func (r *SQLiteRepository) SaveParty(ctx context.Context, p core.Party) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO parties (id, name, kind, phone, email, address, balance_cents)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		     name = excluded.name,
		     kind = excluded.kind,
		     phone = excluded.phone,
		     email = excluded.email,
		     address = excluded.address,
		     balance_cents = excluded.balance_cents,
		     updated_at = CURRENT_TIMESTAMP`,
		p.ID, p.Name, string(p.Kind), p.Phone, p.Email, p.Address, p.Balance.Cents)
	if err != nil {
		return fmt.Errorf("upsert party %s: %w", p.ID, err)
	}
	return nil
}

// LoadAll reads the whole ledger back, oldest transaction first. Used at
// startup to rebuild the in-memory store.
func (r *SQLiteRepository) LoadAll(ctx context.Context) ([]core.Transaction, []core.Expense, []core.Party, error) {
	txs, err := r.loadTransactions(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	exps, err := r.loadExpenses(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	parties, err := r.loadParties(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return txs, exps, parties, nil
}

func (r *SQLiteRepository) loadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, amount_cents, occurred_on, description, party_id, party_name
		 FROM transactions ORDER BY occurred_on, created_at`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var tx core.Transaction
		var kind, occurredOn string
		if err := rows.Scan(&tx.ID, &kind, &tx.Amount.Cents, &occurredOn,
			&tx.Description, &tx.PartyID, &tx.PartyName); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Kind = core.TransactionKind(kind)
		tx.OccurredOn, err = parseDate(occurredOn)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, amount_cents, occurred_on, description, is_necessary
		 FROM expenses ORDER BY occurred_on, created_at`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var e core.Expense
		var category, occurredOn string
		var necessary int
		if err := rows.Scan(&e.ID, &category, &e.Amount.Cents, &occurredOn,
			&e.Description, &necessary); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Category = core.Category(category)
		e.IsNecessary = necessary != 0
		e.OccurredOn, err = parseDate(occurredOn)
		if err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadParties(ctx context.Context) ([]core.Party, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, kind, phone, email, address, balance_cents
		 FROM parties ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query parties: %w", err)
	}
	defer rows.Close()

	var out []core.Party
	for rows.Next() {
		var p core.Party
		var kind string
		if err := rows.Scan(&p.ID, &p.Name, &kind, &p.Phone, &p.Email,
			&p.Address, &p.Balance.Cents); err != nil {
			return nil, fmt.Errorf("scan party: %w", err)
		}
		p.Kind = core.PartyKind(kind)
		out = append(out, p)
	}
	return out, rows.Err()
}

func parseDate(s string) (core.Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.DateOf(t), nil
}
