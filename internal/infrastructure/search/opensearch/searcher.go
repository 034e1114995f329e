package opensearch

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

// SearchQuery narrows a verdict search. Zero values mean "any".
type SearchQuery struct {
	// Text matches against the bank, national, and company names.
	Text         string
	CustomerID   string
	RiskCategory string
	Limit        int
}

// VerdictSearcher queries the verdict index.
type VerdictSearcher struct {
	client *Client
	logger logging.Logger
}

// NewVerdictSearcher creates a searcher over the given client.
func NewVerdictSearcher(client *Client, log logging.Logger) *VerdictSearcher {
	return &VerdictSearcher{client: client, logger: log}
}

// Search returns matching verdict documents, newest first.
func (s *VerdictSearcher) Search(ctx context.Context, q SearchQuery) ([]Document, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	var must []map[string]any
	if q.Text != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":  q.Text,
				"fields": []string{"bank_name", "national_name", "company_name"},
			},
		})
	}
	if q.CustomerID != "" {
		must = append(must, map[string]any{
			"term": map[string]any{"customer_id": q.CustomerID},
		})
	}
	if q.RiskCategory != "" {
		must = append(must, map[string]any{
			"term": map[string]any{"risk_category": q.RiskCategory},
		})
	}
	if len(must) == 0 {
		must = append(must, map[string]any{"match_all": map[string]any{}})
	}

	body, err := json.Marshal(map[string]any{
		"size":  limit,
		"query": map[string]any{"bool": map[string]any{"must": must}},
		"sort":  []map[string]any{{"created_at": map[string]any{"order": "desc"}}},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "failed to build search query")
	}

	resp, err := s.client.api.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{s.client.index},
		Body:    bytes.NewReader(body),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "verdict search failed")
	}

	docs := make([]Document, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		var doc Document
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, errors.Wrap(err, errors.CodeSerialization, "failed to decode verdict document")
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
