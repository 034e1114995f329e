package opensearch

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriflowhq/veriflow/internal/domain/identity"
	"github.com/veriflowhq/veriflow/internal/domain/risk"
	"github.com/veriflowhq/veriflow/internal/domain/verification"
	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

type fakeSearchAPI struct {
	indexed    []opensearchapi.IndexReq
	indexBody  []byte
	indexErr   error
	searchReq  *opensearchapi.SearchReq
	searchBody []byte
	searchResp *opensearchapi.SearchResp
	searchErr  error
}

func (f *fakeSearchAPI) Index(_ context.Context, req opensearchapi.IndexReq) (*opensearchapi.IndexResp, error) {
	if f.indexErr != nil {
		return nil, f.indexErr
	}
	f.indexed = append(f.indexed, req)
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	f.indexBody = body
	return &opensearchapi.IndexResp{}, nil
}

func (f *fakeSearchAPI) Search(_ context.Context, req *opensearchapi.SearchReq) (*opensearchapi.SearchResp, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.searchReq = req
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	f.searchBody = body
	return f.searchResp, nil
}

func newTestClient(api searchAPI) *Client {
	return &Client{api: api, index: DefaultIndex, logger: logging.NewNop()}
}

func completedRecord() *verification.Record {
	rec := verification.NewRecord("CUST-020", "client-a", verification.TypeIndividual, "mock")
	rec.BankName = "JOHN PAUL OBI"
	rec.NationalName = "OBI, JOHN PAUL"
	rec.CrossValidation = &identity.Verdict{OverallMatch: true, Confidence: 100}
	rec.Risk = &risk.Verdict{TotalScore: 4, Category: risk.CategoryLow}
	rec.Complete(0)
	return rec
}

func TestVerdictIndexer_Index(t *testing.T) {
	api := &fakeSearchAPI{}
	indexer := NewVerdictIndexer(newTestClient(api), logging.NewNop())
	rec := completedRecord()

	require.NoError(t, indexer.Index(context.Background(), rec))
	require.Len(t, api.indexed, 1)
	assert.Equal(t, DefaultIndex, api.indexed[0].Index)
	assert.Equal(t, rec.ID.String(), api.indexed[0].DocumentID)

	var doc Document
	require.NoError(t, json.Unmarshal(api.indexBody, &doc))
	assert.Equal(t, "CUST-020", doc.CustomerID)
	assert.Equal(t, "COMPLETED", doc.Status)
	assert.Equal(t, "JOHN PAUL OBI", doc.BankName)
	require.NotNil(t, doc.Confidence)
	assert.Equal(t, 100, *doc.Confidence)
	assert.Equal(t, "LOW", doc.RiskCategory)
	assert.Nil(t, doc.UBOIdentified)
}

func TestVerdictIndexer_IndexFailure(t *testing.T) {
	api := &fakeSearchAPI{indexErr: errors.New(errors.CodeUnavailable, "cluster red")}
	indexer := NewVerdictIndexer(newTestClient(api), logging.NewNop())

	err := indexer.Index(context.Background(), completedRecord())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeUnavailable))
}

func TestDocumentFromRecord_FailedRun(t *testing.T) {
	rec := verification.NewRecord("CUST-021", "", verification.TypeCorporate, "mock")
	rec.Fail(errors.CodeRegistryNotFound, "no company found")

	doc := DocumentFromRecord(rec)
	assert.Equal(t, "FAILED", doc.Status)
	assert.Equal(t, string(errors.CodeRegistryNotFound), doc.ErrorCode)
	assert.Nil(t, doc.OverallMatch)
	assert.Nil(t, doc.RiskScore)
}

func TestVerdictSearcher_BuildsBoolQuery(t *testing.T) {
	doc := Document{VerificationID: "v-1", CustomerID: "CUST-020", RiskCategory: "HIGH"}
	source, err := json.Marshal(doc)
	require.NoError(t, err)

	resp := &opensearchapi.SearchResp{}
	resp.Hits.Hits = []opensearchapi.SearchHit{{Source: source}}

	api := &fakeSearchAPI{searchResp: resp}
	searcher := NewVerdictSearcher(newTestClient(api), logging.NewNop())

	docs, err := searcher.Search(context.Background(), SearchQuery{
		Text:         "OBI",
		RiskCategory: "HIGH",
		Limit:        5,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "CUST-020", docs[0].CustomerID)

	require.Equal(t, []string{DefaultIndex}, api.searchReq.Indices)

	var query map[string]any
	require.NoError(t, json.Unmarshal(api.searchBody, &query))
	assert.Equal(t, float64(5), query["size"])
	must := query["query"].(map[string]any)["bool"].(map[string]any)["must"].([]any)
	require.Len(t, must, 2)
}

func TestVerdictSearcher_DefaultsToMatchAll(t *testing.T) {
	api := &fakeSearchAPI{searchResp: &opensearchapi.SearchResp{}}
	searcher := NewVerdictSearcher(newTestClient(api), logging.NewNop())

	docs, err := searcher.Search(context.Background(), SearchQuery{})
	require.NoError(t, err)
	assert.Empty(t, docs)

	var query map[string]any
	require.NoError(t, json.Unmarshal(api.searchBody, &query))
	assert.Equal(t, float64(20), query["size"])
	must := query["query"].(map[string]any)["bool"].(map[string]any)["must"].([]any)
	require.Len(t, must, 1)
	_, ok := must[0].(map[string]any)["match_all"]
	assert.True(t, ok)
}
