package neo4j

import (
	"context"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/veriflowhq/veriflow/internal/domain/ownership"
	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

// graphExecutor runs single cypher statements. Abstracted so the graph
// adapter can be tested without a live database.
type graphExecutor interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) error
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

type driverExecutor struct {
	driver *Driver
}

func (e *driverExecutor) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) error {
	session := e.driver.Session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "graph write failed")
	}
	return nil
}

func (e *driverExecutor) ExecuteRead(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := e.driver.Session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	rows, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			out = append(out, rec.AsMap())
		}
		return out, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabase, "graph read failed")
	}
	return rows.([]map[string]any), nil
}

// OwnershipGraph persists company ownership structures. Companies are keyed
// by registry number, persons by name; repeated verifications update the
// same nodes rather than duplicating them.
type OwnershipGraph struct {
	exec   graphExecutor
	logger logging.Logger
}

// NewOwnershipGraph creates a graph writer over the given driver.
func NewOwnershipGraph(driver *Driver, log logging.Logger) *OwnershipGraph {
	return &OwnershipGraph{exec: &driverExecutor{driver: driver}, logger: log}
}

// SaveOwnership writes the company node, its direct shareholding edges, and
// the resolved beneficial owners for one verification run.
func (g *OwnershipGraph) SaveOwnership(ctx context.Context, verificationID uuid.UUID, rec ownership.RegistryRecord, analysis ownership.Analysis) error {
	companyParams := map[string]any{
		"registry_id":        rec.RegistryID,
		"name":               rec.Name,
		"kind":               rec.Kind.String(),
		"status":             rec.Status,
		"incorporation_date": rec.IncorporationDate,
		"verification_id":    verificationID.String(),
	}
	if err := g.exec.ExecuteWrite(ctx, `
		MERGE (c:Company {registry_id: $registry_id})
		SET c.name = $name,
		    c.kind = $kind,
		    c.status = $status,
		    c.incorporation_date = $incorporation_date,
		    c.last_verification_id = $verification_id,
		    c.updated_at = datetime()`, companyParams); err != nil {
		return err
	}

	holders := make([]map[string]any, 0, len(rec.Parties))
	for _, party := range rec.Parties {
		holders = append(holders, map[string]any{
			"name":         party.Name,
			"kind":         string(party.Kind),
			"percentage":   shareOrZero(party.Percentage),
			"is_corporate": party.IsCorporate,
			"registry_id":  party.RegistryID,
		})
	}
	if len(holders) > 0 {
		if err := g.exec.ExecuteWrite(ctx, `
			MATCH (c:Company {registry_id: $registry_id})
			UNWIND $holders AS h
			MERGE (p:Party {name: h.name})
			SET p.is_corporate = h.is_corporate,
			    p.registry_id = CASE WHEN h.registry_id <> '' THEN h.registry_id ELSE p.registry_id END
			MERGE (p)-[o:OWNS]->(c)
			SET o.percentage = h.percentage,
			    o.kind = h.kind,
			    o.verification_id = $verification_id`, map[string]any{
			"registry_id":     rec.RegistryID,
			"verification_id": verificationID.String(),
			"holders":         holders,
		}); err != nil {
			return err
		}
	}

	owners := make([]map[string]any, 0, len(analysis.Owners))
	for _, owner := range analysis.Owners {
		owners = append(owners, map[string]any{
			"name":        owner.Name,
			"percentage":  owner.Percentage,
			"type":        string(owner.Type),
			"trace_depth": owner.TraceDepth,
		})
	}
	if len(owners) > 0 {
		if err := g.exec.ExecuteWrite(ctx, `
			MATCH (c:Company {registry_id: $registry_id})
			UNWIND $owners AS u
			MERGE (p:Party {name: u.name})
			MERGE (p)-[b:BENEFICIAL_OWNER_OF]->(c)
			SET b.percentage = u.percentage,
			    b.type = u.type,
			    b.trace_depth = u.trace_depth,
			    b.identified = $identified,
			    b.verification_id = $verification_id`, map[string]any{
			"registry_id":     rec.RegistryID,
			"verification_id": verificationID.String(),
			"identified":      analysis.Identified,
			"owners":          owners,
		}); err != nil {
			return err
		}
	}

	g.logger.Debug("ownership graph saved",
		logging.String("registry_id", rec.RegistryID),
		logging.Int("parties", len(rec.Parties)),
		logging.Int("owners", len(analysis.Owners)),
	)
	return nil
}

// GraphOwner is a beneficial-owner edge read back from the graph.
type GraphOwner struct {
	Name           string
	Percentage     float64
	Type           string
	TraceDepth     int
	VerificationID string
}

// BeneficialOwners returns the persisted beneficial owners of a company,
// largest stake first.
func (g *OwnershipGraph) BeneficialOwners(ctx context.Context, registryID string) ([]GraphOwner, error) {
	rows, err := g.exec.ExecuteRead(ctx, `
		MATCH (p:Party)-[b:BENEFICIAL_OWNER_OF]->(c:Company {registry_id: $registry_id})
		RETURN p.name AS name, b.percentage AS percentage, b.type AS type,
		       b.trace_depth AS trace_depth, b.verification_id AS verification_id
		ORDER BY b.percentage DESC, name ASC`, map[string]any{
		"registry_id": registryID,
	})
	if err != nil {
		return nil, err
	}

	owners := make([]GraphOwner, 0, len(rows))
	for _, row := range rows {
		owners = append(owners, GraphOwner{
			Name:           asString(row["name"]),
			Percentage:     asFloat(row["percentage"]),
			Type:           asString(row["type"]),
			TraceDepth:     int(asInt(row["trace_depth"])),
			VerificationID: asString(row["verification_id"]),
		})
	}
	return owners, nil
}

func shareOrZero(pct *float64) float64 {
	if pct == nil {
		return 0
	}
	return *pct
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}
