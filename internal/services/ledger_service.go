// Package services orchestrates ledger writes across the in-memory
// store, durable storage and the AMQP record stream.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"khata/internal/amqp"
	"khata/internal/core"
	"khata/internal/ingest"
	"khata/internal/ledger"
)

// Persister is the durable side of a write. Nil disables persistence
// (memory backend).
type Persister interface {
	SaveTransaction(ctx context.Context, tx core.Transaction) error
	SaveExpense(ctx context.Context, e core.Expense) error
	SaveParty(ctx context.Context, p core.Party) error
}

// Loader reloads the whole ledger, used to rebuild the store at startup.
type Loader interface {
	LoadAll(ctx context.Context) ([]core.Transaction, []core.Expense, []core.Party, error)
}

// Publisher fans accepted records out to the AMQP exchange. Nil disables
// publishing; the ingest worker runs with a nil publisher so consumed
// records do not loop back onto the queue.
type Publisher interface {
	PublishRecord(ctx context.Context, msg *amqp.RecordMessage) error
}

// LedgerService is the single write path into the ledger. The in-memory
// store is the source of truth for validation and duplicate detection;
// storage and the record stream follow it.
type LedgerService struct {
	store     *ledger.Store
	persister Persister
	publisher Publisher
}

func NewLedgerService(store *ledger.Store, persister Persister, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:     store,
		persister: persister,
		publisher: publisher,
	}
}

// Store exposes the underlying read model.
func (s *LedgerService) Store() *ledger.Store {
	return s.store
}

// Load rebuilds the in-memory store from durable storage.
func (s *LedgerService) Load(ctx context.Context, loader Loader) error {
	txs, exps, parties, err := loader.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	if err := s.store.Reset(txs, exps, parties); err != nil {
		return fmt.Errorf("rebuild store: %w", err)
	}

	slog.InfoContext(ctx, "Ledger loaded from storage",
		"transactions", len(txs),
		"expenses", len(exps),
		"parties", len(parties))
	return nil
}

// RecordTransaction appends a transaction. The store validates and
// rejects duplicates before anything durable happens.
func (s *LedgerService) RecordTransaction(ctx context.Context, tx core.Transaction) error {
	if err := s.store.AppendTransaction(tx); err != nil {
		return err
	}

	if err := s.persistTransaction(ctx, tx); err != nil {
		return err
	}

	s.publish(ctx, amqp.RecordTransaction, transactionPayload(tx))
	return nil
}

// RecordExpense appends an expense record and its mirror transaction in
// one operation. The store admits or rejects the pair atomically, so a
// rejected write never leaves an expense without its mirror.
func (s *LedgerService) RecordExpense(ctx context.Context, e core.Expense) error {
	mirror := e.MirrorTransaction()
	if err := s.store.AppendExpense(e, mirror); err != nil {
		return err
	}

	if s.persister != nil {
		if err := s.persister.SaveExpense(ctx, e); err != nil {
			return fmt.Errorf("persist expense %s: %w", e.ID, err)
		}
	}
	if err := s.persistTransaction(ctx, mirror); err != nil {
		return err
	}

	s.publish(ctx, amqp.RecordExpense, expensePayload(e))
	return nil
}

// SaveParty creates or wholesale-replaces a party profile.
func (s *LedgerService) SaveParty(ctx context.Context, p core.Party) error {
	if err := s.store.UpsertParty(p); err != nil {
		return err
	}

	if s.persister != nil {
		if err := s.persister.SaveParty(ctx, p); err != nil {
			return fmt.Errorf("persist party %s: %w", p.ID, err)
		}
	}

	s.publish(ctx, amqp.RecordParty, partyPayload(p))
	return nil
}

func (s *LedgerService) persistTransaction(ctx context.Context, tx core.Transaction) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.SaveTransaction(ctx, tx); err != nil {
		return fmt.Errorf("persist transaction %s: %w", tx.ID, err)
	}
	return nil
}

// publish is best effort: the record is already accepted locally, so a
// broker outage must not fail the write.
func (s *LedgerService) publish(ctx context.Context, kind amqp.RecordKind, payload any) {
	if s.publisher == nil {
		return
	}

	msg, err := amqp.NewRecordMessage(kind, payload)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build record message", "kind", string(kind), "error", err)
		return
	}
	if err := s.publisher.PublishRecord(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record message", "kind", string(kind), "error", err)
	}
}

func transactionPayload(tx core.Transaction) map[string]any {
	return map[string]any{
		"id":          tx.ID,
		"kind":        string(tx.Kind),
		"amount":      ingest.FormatCents(tx.Amount.Cents),
		"occurredOn":  ingest.FormatDate(tx.OccurredOn),
		"description": tx.Description,
		"partyId":     tx.PartyID,
		"partyName":   tx.PartyName,
	}
}

func expensePayload(e core.Expense) map[string]any {
	return map[string]any{
		"id":          e.ID,
		"category":    string(e.Category),
		"amount":      ingest.FormatCents(e.Amount.Cents),
		"occurredOn":  ingest.FormatDate(e.OccurredOn),
		"description": e.Description,
		"isNecessary": e.IsNecessary,
	}
}

func partyPayload(p core.Party) map[string]any {
	return map[string]any{
		"id":      p.ID,
		"name":    p.Name,
		"kind":    string(p.Kind),
		"phone":   p.Phone,
		"email":   p.Email,
		"address": p.Address,
		"balance": ingest.FormatCents(p.Balance.Cents),
	}
}
