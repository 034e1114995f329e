// Package providers integrates the upstream identity and corporate-registry
// verification services. Every provider speaks the same interface so the
// orchestrator, CLI, and tests can swap the live VerifyMe client, the
// deterministic mock, and the caching decorator freely.
package providers

import (
	"context"
	"regexp"

	"github.com/veriflowhq/veriflow/internal/domain/identity"
	"github.com/veriflowhq/veriflow/internal/domain/ownership"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

// Provider is the upstream verification contract. Lookups that fail for
// business reasons (bad format, record not found) come back as unsuccessful
// results with an error code, not as Go errors; the error return is for
// transport problems only (provider unreachable, timeout, malformed
// response).
type Provider interface {
	VerifyBankID(ctx context.Context, bankID string) (BankIDResult, error)
	VerifyNationalID(ctx context.Context, nationalID string) (NationalIDResult, error)
	LookupRegistry(ctx context.Context, registryID string) (RegistryResult, error)
	Name() string
}

// BankIDResult is a bank-verification-number lookup outcome.
type BankIDResult struct {
	Success     bool
	BankID      string
	FullName    string
	FirstName   string
	MiddleName  string
	LastName    string
	DateOfBirth string
	Phone       string
	Gender      string
	// Raw is the provider payload as received, archived as evidence.
	Raw          map[string]any
	ErrorCode    errors.ErrorCode
	ErrorMessage string
}

// IdentityRecord converts the result into a cross-validation input.
func (r BankIDResult) IdentityRecord() identity.Record {
	return identity.Record{
		FullName:    r.FullName,
		DateOfBirth: r.DateOfBirth,
		Phone:       r.Phone,
	}
}

// NationalIDResult is a national-identification-number lookup outcome.
type NationalIDResult struct {
	Success       bool
	NationalID    string
	FullName      string
	FirstName     string
	MiddleName    string
	LastName      string
	DateOfBirth   string
	Gender        string
	Address       string
	StateOfOrigin string
	LGA           string
	Raw           map[string]any
	ErrorCode     errors.ErrorCode
	ErrorMessage  string
}

func (r NationalIDResult) IdentityRecord() identity.Record {
	return identity.Record{
		FullName:    r.FullName,
		DateOfBirth: r.DateOfBirth,
		Address:     r.Address,
	}
}

// Director is a company officer from the registry record.
type Director struct {
	Name            string
	Position        string
	AppointmentDate string
	Status          string // ACTIVE, RESIGNED, REMOVED; empty means active
	Email           string
	Phone           string
}

// RegistryResult is a corporate-registry lookup outcome. Record carries the
// ownership structure the analyzer consumes; Directors and ShareCapital feed
// risk factors and the evidence archive.
type RegistryResult struct {
	Success      bool
	RegistryID   string
	Record       ownership.RegistryRecord
	Directors    []Director
	ShareCapital float64
	Raw          map[string]any
	ErrorCode    errors.ErrorCode
	ErrorMessage string
}

var digits11 = regexp.MustCompile(`^[0-9]{11}$`)

// validIDFormat reports whether id is exactly 11 digits, the format shared
// by bank and national identifiers.
func validIDFormat(id string) bool {
	return digits11.MatchString(id)
}
