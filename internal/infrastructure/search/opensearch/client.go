// Package opensearch indexes completed verification verdicts, so compliance
// reviewers can search past runs by customer, name, or risk category without
// touching the primary database.
package opensearch

import (
	"context"
	"strings"

	"github.com/opensearch-project/opensearch-go/v3"
	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

// DefaultIndex is the verdict index name.
const DefaultIndex = "veriflow-verifications"

// Config holds the search cluster settings.
type Config struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

const indexMapping = `{
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 1
	},
	"mappings": {
		"properties": {
			"verification_id": {"type": "keyword"},
			"customer_id":     {"type": "keyword"},
			"client_id":       {"type": "keyword"},
			"type":            {"type": "keyword"},
			"status":          {"type": "keyword"},
			"bank_name":       {"type": "text"},
			"national_name":   {"type": "text"},
			"company_name":    {"type": "text"},
			"overall_match":   {"type": "boolean"},
			"confidence":      {"type": "integer"},
			"ubo_identified":  {"type": "boolean"},
			"risk_score":      {"type": "integer"},
			"risk_category":   {"type": "keyword"},
			"error_code":      {"type": "keyword"},
			"created_at":      {"type": "date"}
		}
	}
}`

// searchAPI abstracts the opensearchapi client surface the indexer and
// searcher use.
type searchAPI interface {
	Index(ctx context.Context, req opensearchapi.IndexReq) (*opensearchapi.IndexResp, error)
	Search(ctx context.Context, req *opensearchapi.SearchReq) (*opensearchapi.SearchResp, error)
}

// Client wraps the opensearch API client with index bootstrap.
type Client struct {
	api    searchAPI
	index  string
	logger logging.Logger
}

// NewClient connects to the cluster and ensures the verdict index exists.
func NewClient(ctx context.Context, cfg Config, log logging.Logger) (*Client, error) {
	if cfg.Index == "" {
		cfg.Index = DefaultIndex
	}

	api, err := opensearchapi.NewClient(opensearchapi.Config{
		Client: opensearch.Config{
			Addresses: cfg.Addresses,
			Username:  cfg.Username,
			Password:  cfg.Password,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "failed to create opensearch client")
	}

	_, err = api.Indices.Create(ctx, opensearchapi.IndicesCreateReq{
		Index: cfg.Index,
		Body:  strings.NewReader(indexMapping),
	})
	if err != nil && !strings.Contains(err.Error(), "resource_already_exists_exception") {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "failed to create verdict index")
	}

	log.Info("connected to opensearch", logging.String("index", cfg.Index))
	return &Client{api: api, index: cfg.Index, logger: log}, nil
}
