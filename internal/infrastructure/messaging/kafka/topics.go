// Package kafka provides the audit event stream. Every completed or failed
// verification is published so downstream compliance systems receive an
// immutable trail independent of the primary database.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/veriflowhq/veriflow/pkg/errors"
)

// Topic constants.
const (
	TopicVerificationCompleted = "verification.completed"
	TopicVerificationFailed    = "verification.failed"
	TopicAuditLog              = "audit.log"
	TopicDeadLetter            = "dead_letter.verification"
)

// EventEnvelope is the wire format shared by all published events.
type EventEnvelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEventEnvelope wraps a payload in an envelope with a fresh event ID.
func NewEventEnvelope(eventType, source string, payload any) (*EventEnvelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "failed to marshal event payload")
	}
	if source == "" {
		source = "veriflow"
	}
	return &EventEnvelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Payload:   body,
	}, nil
}

// DecodePayload unmarshals the envelope payload into target.
func (e *EventEnvelope) DecodePayload(target any) error {
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to decode event payload")
	}
	return nil
}
