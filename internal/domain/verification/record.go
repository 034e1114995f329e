// Package verification holds the verification-record aggregate: one record
// per verification run, accumulating provider outcomes, the cross-validation
// verdict, the ownership analysis, and the risk verdict, together with its
// status lifecycle.
package verification

import (
	"time"

	"github.com/google/uuid"

	"github.com/veriflowhq/veriflow/internal/domain/identity"
	"github.com/veriflowhq/veriflow/internal/domain/ownership"
	"github.com/veriflowhq/veriflow/internal/domain/risk"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

// Type is the verification flow that produced a record.
type Type string

const (
	TypeIndividual Type = "INDIVIDUAL"
	TypeCorporate  Type = "CORPORATE"
	TypeComplete   Type = "COMPLETE"
)

// Status is the record lifecycle state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Record is the aggregate for a single verification run. Result pointers are
// nil until the corresponding stage has run; a completed individual
// verification carries no Ownership, and vice versa.
type Record struct {
	ID         uuid.UUID
	CustomerID string
	// ClientID identifies the API client that requested the verification,
	// empty for internal runs.
	ClientID string
	Type     Type
	Status   Status
	Provider string

	BankIDVerified     bool
	BankName           string
	BankDOB            string
	BankPhone          string
	NationalIDVerified bool
	NationalName       string
	NationalDOB        string
	NationalAddress    string
	CrossValidation    *identity.Verdict

	RegistryVerified  bool
	CompanyName       string
	RegistryStatus    string
	IncorporationDate string
	Ownership         *ownership.Analysis

	Risk *risk.Verdict

	ErrorCode    errors.ErrorCode
	ErrorMessage string

	ProcessingTime time.Duration
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewRecord creates a pending record for the given flow.
func NewRecord(customerID, clientID string, typ Type, provider string) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:         uuid.New(),
		CustomerID: customerID,
		ClientID:   clientID,
		Type:       typ,
		Status:     StatusPending,
		Provider:   provider,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Start moves the record into PROCESSING.
func (r *Record) Start() {
	r.Status = StatusProcessing
	r.touch()
}

// Complete marks the record COMPLETED and stamps the total processing time.
func (r *Record) Complete(elapsed time.Duration) {
	r.Status = StatusCompleted
	r.ProcessingTime = elapsed
	r.touch()
}

// Fail marks the record FAILED with the cause. Failed records are terminal
// and keep whatever partial results were collected before the failure.
func (r *Record) Fail(code errors.ErrorCode, message string) {
	r.Status = StatusFailed
	r.ErrorCode = code
	r.ErrorMessage = message
	r.touch()
}

// Terminal reports whether the record can no longer change state.
func (r *Record) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

func (r *Record) touch() {
	r.UpdatedAt = time.Now().UTC()
}
