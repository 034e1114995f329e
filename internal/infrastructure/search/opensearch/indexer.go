package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/veriflowhq/veriflow/internal/domain/verification"
	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

// Document is the flattened, searchable projection of a verification record.
type Document struct {
	VerificationID string    `json:"verification_id"`
	CustomerID     string    `json:"customer_id"`
	ClientID       string    `json:"client_id,omitempty"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	BankName       string    `json:"bank_name,omitempty"`
	NationalName   string    `json:"national_name,omitempty"`
	CompanyName    string    `json:"company_name,omitempty"`
	OverallMatch   *bool     `json:"overall_match,omitempty"`
	Confidence     *int      `json:"confidence,omitempty"`
	UBOIdentified  *bool     `json:"ubo_identified,omitempty"`
	RiskScore      *int      `json:"risk_score,omitempty"`
	RiskCategory   string    `json:"risk_category,omitempty"`
	ErrorCode      string    `json:"error_code,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// VerdictIndexer writes verification documents into the verdict index.
type VerdictIndexer struct {
	client *Client
	logger logging.Logger
}

// NewVerdictIndexer creates an indexer over the given client.
func NewVerdictIndexer(client *Client, log logging.Logger) *VerdictIndexer {
	return &VerdictIndexer{client: client, logger: log}
}

// DocumentFromRecord flattens a record for indexing.
func DocumentFromRecord(rec *verification.Record) Document {
	doc := Document{
		VerificationID: rec.ID.String(),
		CustomerID:     rec.CustomerID,
		ClientID:       rec.ClientID,
		Type:           string(rec.Type),
		Status:         string(rec.Status),
		BankName:       rec.BankName,
		NationalName:   rec.NationalName,
		CompanyName:    rec.CompanyName,
		ErrorCode:      string(rec.ErrorCode),
		CreatedAt:      rec.CreatedAt,
	}
	if rec.CrossValidation != nil {
		doc.OverallMatch = &rec.CrossValidation.OverallMatch
		doc.Confidence = &rec.CrossValidation.Confidence
	}
	if rec.Ownership != nil {
		doc.UBOIdentified = &rec.Ownership.Identified
	}
	if rec.Risk != nil {
		doc.RiskScore = &rec.Risk.TotalScore
		doc.RiskCategory = string(rec.Risk.Category)
	}
	return doc
}

// Index upserts the record's document, keyed by verification ID.
func (i *VerdictIndexer) Index(ctx context.Context, rec *verification.Record) error {
	doc := DocumentFromRecord(rec)
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to marshal verdict document")
	}

	_, err = i.client.api.Index(ctx, opensearchapi.IndexReq{
		Index:      i.client.index,
		DocumentID: doc.VerificationID,
		Body:       bytes.NewReader(body),
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeUnavailable, "failed to index verdict")
	}

	i.logger.Debug("verdict indexed",
		logging.String("verification_id", doc.VerificationID),
		logging.String("status", doc.Status),
	)
	return nil
}
