package kafka

import (
	"context"
	"time"

	"github.com/veriflowhq/veriflow/internal/domain/verification"
)

// VerificationEvent is the audit payload for a finished verification run.
// It carries the outcome summary, not the full provider payloads; those stay
// in object storage.
type VerificationEvent struct {
	VerificationID string    `json:"verification_id"`
	CustomerID     string    `json:"customer_id"`
	ClientID       string    `json:"client_id,omitempty"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	Provider       string    `json:"provider"`
	OverallMatch   *bool     `json:"overall_match,omitempty"`
	Confidence     *int      `json:"confidence,omitempty"`
	UBOIdentified  *bool     `json:"ubo_identified,omitempty"`
	RiskScore      *int      `json:"risk_score,omitempty"`
	RiskCategory   string    `json:"risk_category,omitempty"`
	ErrorCode      string    `json:"error_code,omitempty"`
	ProcessingMS   int64     `json:"processing_ms"`
	CompletedAt    time.Time `json:"completed_at"`
}

// AuditPublisher publishes verification outcomes to the audit stream,
// keyed by customer so a customer's history stays ordered.
type AuditPublisher struct {
	producer *Producer
}

// NewAuditPublisher creates an audit publisher over the given producer.
func NewAuditPublisher(producer *Producer) *AuditPublisher {
	return &AuditPublisher{producer: producer}
}

// PublishVerificationCompleted emits the outcome event for a terminal record.
func (a *AuditPublisher) PublishVerificationCompleted(ctx context.Context, rec *verification.Record) error {
	event := VerificationEvent{
		VerificationID: rec.ID.String(),
		CustomerID:     rec.CustomerID,
		ClientID:       rec.ClientID,
		Type:           string(rec.Type),
		Status:         string(rec.Status),
		Provider:       rec.Provider,
		ErrorCode:      string(rec.ErrorCode),
		ProcessingMS:   rec.ProcessingTime.Milliseconds(),
		CompletedAt:    rec.UpdatedAt,
	}
	if rec.CrossValidation != nil {
		event.OverallMatch = &rec.CrossValidation.OverallMatch
		event.Confidence = &rec.CrossValidation.Confidence
	}
	if rec.Ownership != nil {
		event.UBOIdentified = &rec.Ownership.Identified
	}
	if rec.Risk != nil {
		event.RiskScore = &rec.Risk.TotalScore
		event.RiskCategory = string(rec.Risk.Category)
	}

	topic := TopicVerificationCompleted
	eventType := "verification.completed"
	if rec.Status == verification.StatusFailed {
		topic = TopicVerificationFailed
		eventType = "verification.failed"
	}

	envelope, err := NewEventEnvelope(eventType, "veriflow.orchestrator", event)
	if err != nil {
		return err
	}
	return a.producer.Publish(ctx, topic, rec.CustomerID, envelope)
}
