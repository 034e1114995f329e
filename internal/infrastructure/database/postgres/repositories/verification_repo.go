// Package repositories contains the PostgreSQL-backed implementations of the
// domain repository interfaces.
package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veriflowhq/veriflow/internal/domain/identity"
	"github.com/veriflowhq/veriflow/internal/domain/ownership"
	"github.com/veriflowhq/veriflow/internal/domain/risk"
	"github.com/veriflowhq/veriflow/internal/domain/verification"
	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

const verificationColumns = `
	id, customer_id, client_id, type, status, provider,
	bank_id_verified, bank_name, bank_dob, bank_phone,
	national_id_verified, national_name, national_dob, national_address,
	cross_validation,
	registry_verified, company_name, registry_status, incorporation_date,
	ownership, risk,
	error_code, error_message,
	processing_time_ms, created_at, updated_at`

// VerificationRepository persists verification records in PostgreSQL. Result
// verdicts are stored as JSONB documents alongside the denormalised provider
// fields.
type VerificationRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

var _ verification.Repository = (*VerificationRepository)(nil)

// NewVerificationRepository creates a repository over the given pool.
func NewVerificationRepository(pool *pgxpool.Pool, log logging.Logger) *VerificationRepository {
	return &VerificationRepository{pool: pool, logger: log}
}

// Create inserts a new verification record.
func (r *VerificationRepository) Create(ctx context.Context, rec *verification.Record) error {
	crossJSON, ownershipJSON, riskJSON, err := marshalVerdicts(rec)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO verifications (`+verificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14,
			$15,
			$16, $17, $18, $19,
			$20, $21,
			$22, $23,
			$24, $25, $26)`,
		rec.ID, rec.CustomerID, rec.ClientID, rec.Type, rec.Status, rec.Provider,
		rec.BankIDVerified, rec.BankName, rec.BankDOB, rec.BankPhone,
		rec.NationalIDVerified, rec.NationalName, rec.NationalDOB, rec.NationalAddress,
		crossJSON,
		rec.RegistryVerified, rec.CompanyName, rec.RegistryStatus, rec.IncorporationDate,
		ownershipJSON, riskJSON,
		string(rec.ErrorCode), rec.ErrorMessage,
		rec.ProcessingTime.Milliseconds(), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "failed to insert verification")
	}
	return nil
}

// Update rewrites the mutable columns of an existing record.
func (r *VerificationRepository) Update(ctx context.Context, rec *verification.Record) error {
	crossJSON, ownershipJSON, riskJSON, err := marshalVerdicts(rec)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE verifications SET
			status = $2,
			bank_id_verified = $3, bank_name = $4, bank_dob = $5, bank_phone = $6,
			national_id_verified = $7, national_name = $8, national_dob = $9, national_address = $10,
			cross_validation = $11,
			registry_verified = $12, company_name = $13, registry_status = $14, incorporation_date = $15,
			ownership = $16, risk = $17,
			error_code = $18, error_message = $19,
			processing_time_ms = $20, updated_at = $21
		WHERE id = $1`,
		rec.ID, rec.Status,
		rec.BankIDVerified, rec.BankName, rec.BankDOB, rec.BankPhone,
		rec.NationalIDVerified, rec.NationalName, rec.NationalDOB, rec.NationalAddress,
		crossJSON,
		rec.RegistryVerified, rec.CompanyName, rec.RegistryStatus, rec.IncorporationDate,
		ownershipJSON, riskJSON,
		string(rec.ErrorCode), rec.ErrorMessage,
		rec.ProcessingTime.Milliseconds(), rec.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "failed to update verification")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.CodeVerificationNotFound, "verification %s not found", rec.ID)
	}
	return nil
}

// GetByID loads a single verification record.
func (r *VerificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*verification.Record, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+verificationColumns+`
		FROM verifications
		WHERE id = $1`, id)

	rec, err := scanVerification(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.Newf(errors.CodeVerificationNotFound, "verification %s not found", id)
		}
		return nil, errors.Wrap(err, errors.CodeDatabase, "failed to load verification")
	}
	return rec, nil
}

// ListByCustomer returns the most recent records for a customer, newest
// first.
func (r *VerificationRepository) ListByCustomer(ctx context.Context, customerID string, limit int) ([]*verification.Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+verificationColumns+`
		FROM verifications
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, customerID, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabase, "failed to list verifications")
	}
	defer rows.Close()

	var records []*verification.Record
	for rows.Next() {
		rec, err := scanVerification(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabase, "failed to scan verification")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabase, "failed to iterate verifications")
	}
	return records, nil
}

func marshalVerdicts(rec *verification.Record) (cross, owner, riskDoc []byte, err error) {
	if rec.CrossValidation != nil {
		cross, err = json.Marshal(rec.CrossValidation)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, errors.CodeSerialization, "failed to marshal cross-validation verdict")
		}
	}
	if rec.Ownership != nil {
		owner, err = json.Marshal(rec.Ownership)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, errors.CodeSerialization, "failed to marshal ownership analysis")
		}
	}
	if rec.Risk != nil {
		riskDoc, err = json.Marshal(rec.Risk)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, errors.CodeSerialization, "failed to marshal risk verdict")
		}
	}
	return cross, owner, riskDoc, nil
}

func scanVerification(row pgx.Row) (*verification.Record, error) {
	var (
		rec              verification.Record
		crossJSON        []byte
		ownershipJSON    []byte
		riskJSON         []byte
		errorCode        string
		processingTimeMS int64
	)

	err := row.Scan(
		&rec.ID, &rec.CustomerID, &rec.ClientID, &rec.Type, &rec.Status, &rec.Provider,
		&rec.BankIDVerified, &rec.BankName, &rec.BankDOB, &rec.BankPhone,
		&rec.NationalIDVerified, &rec.NationalName, &rec.NationalDOB, &rec.NationalAddress,
		&crossJSON,
		&rec.RegistryVerified, &rec.CompanyName, &rec.RegistryStatus, &rec.IncorporationDate,
		&ownershipJSON, &riskJSON,
		&errorCode, &rec.ErrorMessage,
		&processingTimeMS, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.ErrorCode = errors.ErrorCode(errorCode)
	rec.ProcessingTime = time.Duration(processingTimeMS) * time.Millisecond

	if len(crossJSON) > 0 {
		var verdict identity.Verdict
		if err := json.Unmarshal(crossJSON, &verdict); err != nil {
			return nil, err
		}
		rec.CrossValidation = &verdict
	}
	if len(ownershipJSON) > 0 {
		var analysis ownership.Analysis
		if err := json.Unmarshal(ownershipJSON, &analysis); err != nil {
			return nil, err
		}
		rec.Ownership = &analysis
	}
	if len(riskJSON) > 0 {
		var verdict risk.Verdict
		if err := json.Unmarshal(riskJSON, &verdict); err != nil {
			return nil, err
		}
		rec.Risk = &verdict
	}
	return &rec, nil
}
