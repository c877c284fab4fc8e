package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecordKind tags the payload type of an ingestion message.
type RecordKind string

const (
	RecordTransaction RecordKind = "transaction"
	RecordExpense     RecordKind = "expense"
	RecordParty       RecordKind = "party"
)

// RecordMessage is the envelope for ledger records arriving over AMQP.
// The payload is kept raw; the ingest decoder owns field validation.
type RecordMessage struct {
	Kind      RecordKind      `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewRecordMessage wraps a payload in an envelope stamped with the current time.
func NewRecordMessage(kind RecordKind, payload any) (*RecordMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return &RecordMessage{
		Kind:      kind,
		Payload:   raw,
		Timestamp: time.Now(),
	}, nil
}

// ToJSON converts the message to JSON bytes
func (m *RecordMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordMessageFromJSON creates a message from JSON bytes
func RecordMessageFromJSON(data []byte) (*RecordMessage, error) {
	var msg RecordMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case RecordTransaction, RecordExpense, RecordParty:
	default:
		return nil, fmt.Errorf("unknown record kind %q", msg.Kind)
	}
	if len(msg.Payload) == 0 {
		return nil, fmt.Errorf("empty payload for %s message", msg.Kind)
	}
	return &msg, nil
}
