// Package worker runs the queue consumer and the periodic report export.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"khata/internal/amqp"
	"khata/internal/ingest"
	"khata/internal/ledger"
	"khata/internal/services"
)

// IngestWorker applies consumed record messages to the ledger. The
// service it writes through must have no publisher, otherwise every
// consumed record would loop straight back onto the queue.
type IngestWorker struct {
	svc *services.LedgerService
}

func NewIngestWorker(svc *services.LedgerService) *IngestWorker {
	return &IngestWorker{svc: svc}
}

// HandleRecord processes one message. A duplicate ID counts as success:
// the broker redelivers on missed acks, and the record is already in.
func (w *IngestWorker) HandleRecord(ctx context.Context, msg *amqp.RecordMessage) error {
	var err error
	switch msg.Kind {
	case amqp.RecordTransaction:
		decoded, decodeErr := ingest.DecodeTransaction(msg.Payload)
		if decodeErr != nil {
			return fmt.Errorf("decode transaction record: %w", decodeErr)
		}
		err = w.svc.RecordTransaction(ctx, decoded)
	case amqp.RecordExpense:
		decoded, decodeErr := ingest.DecodeExpense(msg.Payload)
		if decodeErr != nil {
			return fmt.Errorf("decode expense record: %w", decodeErr)
		}
		err = w.svc.RecordExpense(ctx, decoded)
	case amqp.RecordParty:
		decoded, decodeErr := ingest.DecodeParty(msg.Payload)
		if decodeErr != nil {
			return fmt.Errorf("decode party record: %w", decodeErr)
		}
		err = w.svc.SaveParty(ctx, decoded)
	default:
		return fmt.Errorf("unknown record kind %q", msg.Kind)
	}

	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateID) {
			slog.InfoContext(ctx, "Skipping redelivered record",
				"kind", string(msg.Kind), "error", err)
			return nil
		}
		// A reserved ID can never be applied; ack it so the broker does
		// not redeliver forever.
		if errors.Is(err, ledger.ErrReservedID) {
			slog.WarnContext(ctx, "Dropping record with reserved id",
				"kind", string(msg.Kind), "error", err)
			return nil
		}
		return fmt.Errorf("apply %s record: %w", msg.Kind, err)
	}

	slog.InfoContext(ctx, "Record applied", "kind", string(msg.Kind))
	return nil
}
