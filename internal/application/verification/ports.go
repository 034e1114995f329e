// Package verification orchestrates the full verification workflow: provider
// lookups, identity cross-validation, ownership tracing, risk scoring,
// persistence, and the best-effort side channels (audit events, graph
// storage, evidence archive, search indexing).
package verification

import (
	"context"

	"github.com/google/uuid"

	"github.com/veriflowhq/veriflow/internal/domain/ownership"
	domain "github.com/veriflowhq/veriflow/internal/domain/verification"
)

// AuditPublisher emits verification lifecycle events to the audit stream.
type AuditPublisher interface {
	PublishVerificationCompleted(ctx context.Context, rec *domain.Record) error
}

// GraphWriter persists traced ownership structures to the graph store.
type GraphWriter interface {
	SaveOwnership(ctx context.Context, verificationID uuid.UUID, rec ownership.RegistryRecord, analysis ownership.Analysis) error
}

// EvidenceArchiver stores raw provider payloads for regulator replay.
type EvidenceArchiver interface {
	Archive(ctx context.Context, verificationID uuid.UUID, name string, payload any) error
}

// VerdictIndexer makes completed verifications searchable for reviewers.
type VerdictIndexer interface {
	Index(ctx context.Context, rec *domain.Record) error
}
