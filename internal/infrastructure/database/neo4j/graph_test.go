package neo4j

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriflowhq/veriflow/internal/domain/ownership"
	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

type capturedWrite struct {
	cypher string
	params map[string]any
}

type fakeExecutor struct {
	writes   []capturedWrite
	failOn   int // 1-based index of the write that should fail, 0 for never
	readRows []map[string]any
	readErr  error
	lastRead capturedWrite
}

func (f *fakeExecutor) ExecuteWrite(_ context.Context, cypher string, params map[string]any) error {
	f.writes = append(f.writes, capturedWrite{cypher: cypher, params: params})
	if f.failOn > 0 && len(f.writes) == f.failOn {
		return errors.New(errors.CodeDatabase, "graph write failed")
	}
	return nil
}

func (f *fakeExecutor) ExecuteRead(_ context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	f.lastRead = capturedWrite{cypher: cypher, params: params}
	return f.readRows, f.readErr
}

func pct(v float64) *float64 { return &v }

func testRegistryRecord() ownership.RegistryRecord {
	return ownership.RegistryRecord{
		RegistryID:        "RC123456",
		Name:              "ALPHA TRADING LIMITED",
		Kind:              ownership.KindLimited,
		Status:            "ACTIVE",
		IncorporationDate: "2015-06-01",
		Parties: []ownership.Party{
			{Name: "Adebayo Ogundimu", Kind: ownership.PartyShareholder, Percentage: pct(60)},
			{Name: "Chioma Nwankwo", Kind: ownership.PartyShareholder, Percentage: pct(40)},
		},
	}
}

func testAnalysis() ownership.Analysis {
	return ownership.Analysis{
		Identified:      true,
		TotalPercentage: 100,
		Owners: []ownership.BeneficialOwner{
			{Name: "Adebayo Ogundimu", Percentage: 60, Type: ownership.OwnerDirect, TraceDepth: 1},
			{Name: "Chioma Nwankwo", Percentage: 40, Type: ownership.OwnerDirect, TraceDepth: 1},
		},
	}
}

func TestOwnershipGraph_SaveOwnership(t *testing.T) {
	exec := &fakeExecutor{}
	graph := &OwnershipGraph{exec: exec, logger: logging.NewNop()}
	verificationID := uuid.New()

	err := graph.SaveOwnership(context.Background(), verificationID, testRegistryRecord(), testAnalysis())
	require.NoError(t, err)
	require.Len(t, exec.writes, 3)

	company := exec.writes[0]
	assert.Contains(t, company.cypher, "MERGE (c:Company {registry_id: $registry_id})")
	assert.Equal(t, "RC123456", company.params["registry_id"])
	assert.Equal(t, "ALPHA TRADING LIMITED", company.params["name"])
	assert.Equal(t, "LIMITED", company.params["kind"])
	assert.Equal(t, verificationID.String(), company.params["verification_id"])

	holders := exec.writes[1]
	assert.Contains(t, holders.cypher, "MERGE (p)-[o:OWNS]->(c)")
	holderRows, ok := holders.params["holders"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, holderRows, 2)
	assert.Equal(t, "Adebayo Ogundimu", holderRows[0]["name"])
	assert.Equal(t, 60.0, holderRows[0]["percentage"])
	assert.Equal(t, false, holderRows[0]["is_corporate"])

	owners := exec.writes[2]
	assert.Contains(t, owners.cypher, "MERGE (p)-[b:BENEFICIAL_OWNER_OF]->(c)")
	assert.Equal(t, true, owners.params["identified"])
	ownerRows, ok := owners.params["owners"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, ownerRows, 2)
	assert.Equal(t, "DIRECT", ownerRows[0]["type"])
	assert.Equal(t, 1, ownerRows[0]["trace_depth"])
}

func TestOwnershipGraph_SkipsEmptySections(t *testing.T) {
	exec := &fakeExecutor{}
	graph := &OwnershipGraph{exec: exec, logger: logging.NewNop()}

	rec := testRegistryRecord()
	rec.Parties = nil
	analysis := ownership.Analysis{Issues: []string{"no_ubo_identified"}}

	err := graph.SaveOwnership(context.Background(), uuid.New(), rec, analysis)
	require.NoError(t, err)
	// Only the company node is written when there are no parties or owners.
	require.Len(t, exec.writes, 1)
}

func TestOwnershipGraph_NilPercentageStoredAsZero(t *testing.T) {
	exec := &fakeExecutor{}
	graph := &OwnershipGraph{exec: exec, logger: logging.NewNop()}

	rec := testRegistryRecord()
	rec.Parties = []ownership.Party{{Name: "Unknown Holder", Kind: ownership.PartyShareholder}}

	err := graph.SaveOwnership(context.Background(), uuid.New(), rec, ownership.Analysis{})
	require.NoError(t, err)
	require.Len(t, exec.writes, 2)

	holderRows := exec.writes[1].params["holders"].([]map[string]any)
	assert.Equal(t, 0.0, holderRows[0]["percentage"])
}

func TestOwnershipGraph_WriteFailurePropagates(t *testing.T) {
	exec := &fakeExecutor{failOn: 2}
	graph := &OwnershipGraph{exec: exec, logger: logging.NewNop()}

	err := graph.SaveOwnership(context.Background(), uuid.New(), testRegistryRecord(), testAnalysis())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeDatabase))
	// The owner write never ran.
	assert.Len(t, exec.writes, 2)
}

func TestOwnershipGraph_BeneficialOwners(t *testing.T) {
	exec := &fakeExecutor{readRows: []map[string]any{
		{
			"name":            "Adebayo Ogundimu",
			"percentage":      60.0,
			"type":            "DIRECT",
			"trace_depth":     int64(1),
			"verification_id": "7b69cba0-6f5c-4c1b-9d58-1f1f8f1a2b3c",
		},
		{
			"name":            "Emeka Obiora",
			"percentage":      int64(30),
			"type":            "INDIRECT",
			"trace_depth":     int64(2),
			"verification_id": "7b69cba0-6f5c-4c1b-9d58-1f1f8f1a2b3c",
		},
	}}
	graph := &OwnershipGraph{exec: exec, logger: logging.NewNop()}

	owners, err := graph.BeneficialOwners(context.Background(), "RC123456")
	require.NoError(t, err)

	assert.Contains(t, exec.lastRead.cypher, "BENEFICIAL_OWNER_OF")
	assert.Equal(t, "RC123456", exec.lastRead.params["registry_id"])

	require.Len(t, owners, 2)
	assert.Equal(t, GraphOwner{
		Name:           "Adebayo Ogundimu",
		Percentage:     60,
		Type:           "DIRECT",
		TraceDepth:     1,
		VerificationID: "7b69cba0-6f5c-4c1b-9d58-1f1f8f1a2b3c",
	}, owners[0])
	// Integer-typed percentages from the graph still come back as floats.
	assert.Equal(t, 30.0, owners[1].Percentage)
	assert.Equal(t, 2, owners[1].TraceDepth)
}

func TestOwnershipGraph_BeneficialOwnersReadFailure(t *testing.T) {
	exec := &fakeExecutor{readErr: errors.New(errors.CodeDatabase, "graph read failed")}
	graph := &OwnershipGraph{exec: exec, logger: logging.NewNop()}

	_, err := graph.BeneficialOwners(context.Background(), "RC123456")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeDatabase))
}
