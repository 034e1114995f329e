package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriflowhq/veriflow/internal/domain/identity"
	"github.com/veriflowhq/veriflow/internal/domain/risk"
	"github.com/veriflowhq/veriflow/internal/domain/verification"
	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func newTestProducer(w writerInterface) *Producer {
	return &Producer{writer: w, logger: logging.NewNop()}
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(ProducerConfig{}, logging.NewNop())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeBadRequest))
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	envelope, err := NewEventEnvelope("verification.completed", "test", map[string]string{"k": "v"})
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), TopicVerificationCompleted, "CUST-001", envelope))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, TopicVerificationCompleted, msg.Topic)
	assert.Equal(t, "CUST-001", string(msg.Key))

	var decoded EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "verification.completed", decoded.EventType)
	assert.Equal(t, envelope.EventID, decoded.EventID)

	sent, failed := p.Stats()
	assert.Equal(t, int64(1), sent)
	assert.Equal(t, int64(0), failed)
}

func TestProducer_PublishAfterClose(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)
	require.NoError(t, p.Close())
	assert.True(t, w.closed)

	envelope, err := NewEventEnvelope("verification.completed", "test", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), TopicVerificationCompleted, "CUST-001", envelope)
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestProducer_WriteFailure(t *testing.T) {
	w := &fakeWriter{err: errors.New(errors.CodeUnavailable, "broker down")}
	p := newTestProducer(w)

	envelope, err := NewEventEnvelope("verification.completed", "test", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), TopicVerificationCompleted, "CUST-001", envelope)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeUnavailable))

	_, failed := p.Stats()
	assert.Equal(t, int64(1), failed)
}

func TestEventEnvelope_RoundTrip(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	envelope, err := NewEventEnvelope("audit.log", "", payload{Name: "check"})
	require.NoError(t, err)
	assert.Equal(t, "veriflow", envelope.Source)
	assert.NotEmpty(t, envelope.EventID)

	var got payload
	require.NoError(t, envelope.DecodePayload(&got))
	assert.Equal(t, "check", got.Name)
}

func TestAuditPublisher_CompletedEvent(t *testing.T) {
	w := &fakeWriter{}
	pub := NewAuditPublisher(newTestProducer(w))

	rec := verification.NewRecord("CUST-010", "client-a", verification.TypeIndividual, "mock")
	rec.CrossValidation = &identity.Verdict{OverallMatch: true, Confidence: 100}
	rec.Risk = &risk.Verdict{TotalScore: 4, Category: risk.CategoryLow}
	rec.Complete(0)

	require.NoError(t, pub.PublishVerificationCompleted(context.Background(), rec))
	require.Len(t, w.messages, 1)
	assert.Equal(t, TopicVerificationCompleted, w.messages[0].Topic)
	assert.Equal(t, "CUST-010", string(w.messages[0].Key))

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &envelope))
	var event VerificationEvent
	require.NoError(t, envelope.DecodePayload(&event))
	assert.Equal(t, rec.ID.String(), event.VerificationID)
	assert.Equal(t, "COMPLETED", event.Status)
	require.NotNil(t, event.Confidence)
	assert.Equal(t, 100, *event.Confidence)
	require.NotNil(t, event.RiskScore)
	assert.Equal(t, 4, *event.RiskScore)
	assert.Equal(t, "LOW", event.RiskCategory)
	assert.Nil(t, event.UBOIdentified)
}

func TestAuditPublisher_FailedEvent(t *testing.T) {
	w := &fakeWriter{}
	pub := NewAuditPublisher(newTestProducer(w))

	rec := verification.NewRecord("CUST-011", "", verification.TypeCorporate, "mock")
	rec.Fail(errors.CodeRegistryNotFound, "no company found")

	require.NoError(t, pub.PublishVerificationCompleted(context.Background(), rec))
	require.Len(t, w.messages, 1)
	assert.Equal(t, TopicVerificationFailed, w.messages[0].Topic)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &envelope))
	assert.Equal(t, "verification.failed", envelope.EventType)

	var event VerificationEvent
	require.NoError(t, envelope.DecodePayload(&event))
	assert.Equal(t, string(errors.CodeRegistryNotFound), event.ErrorCode)
}
