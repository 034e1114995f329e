package ownership

import (
	"fmt"
	"strconv"
)

const (
	// ControlThreshold is the FATF ownership percentage at which a party is
	// treated as a beneficial owner. A share exactly at the threshold is
	// included.
	ControlThreshold = 25.0

	// MaxTraceDepth bounds how many corporate layers a trace may descend.
	MaxTraceDepth = 2
)

// Analyzer identifies beneficial owners from a registry record. Stateless
// and safe for concurrent use; depth and the visited set travel with each
// call, never in the receiver.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze inspects a single registry record and returns the owners it can
// establish from that record alone. depth is the current layer (1 for the
// root entity); visited holds the registry ids already expanded on this
// path. When a corporate shareholder needs tracing, Analyze flags it and
// leaves the next-layer fetch to the caller, which re-invokes Analyze with
// depth+1 and visited.With(current id).
func (a *Analyzer) Analyze(rec RegistryRecord, depth int, visited Visited) Analysis {
	visited = visited.With(rec.RegistryID)

	var (
		owners    []BeneficialOwner
		corporate []string
		issues    []string
	)

	switch rec.Kind {
	case KindLimited, KindPLC:
		owners, corporate, issues = analyzeShareholders(rec, depth, visited)
	case KindBusinessName:
		owners = analyzeProprietors(rec, depth)
	case KindIncorporatedTrustees:
		owners = analyzeTrustees(rec, depth)
	}

	total := 0.0
	for _, o := range owners {
		total += o.Percentage
	}

	identified := total >= ControlThreshold && len(owners) > 0

	if len(owners) == 0 {
		issues = append(issues, "no_ubo_identified")
	}
	if hasStatedShares(rec.Kind) && total < 100 && len(issues) == 0 {
		issues = append(issues, "incomplete_ownership_structure:"+formatPercent(total))
	}

	return Analysis{
		Identified:       identified,
		Owners:           owners,
		CorporateParties: corporate,
		TraceDepth:       depth,
		Issues:           issues,
		TotalPercentage:  total,
	}
}

func analyzeShareholders(rec RegistryRecord, depth int, visited Visited) (owners []BeneficialOwner, corporate []string, issues []string) {
	for _, p := range rec.Parties {
		if shareOf(p, 0) < ControlThreshold {
			continue
		}

		if !p.IsCorporate {
			owners = append(owners, BeneficialOwner{
				Name:       p.Name,
				Percentage: shareOf(p, 0),
				Type:       OwnerDirect,
				TraceDepth: depth,
			})
			continue
		}

		corporate = append(corporate, p.Name)

		if visited.Has(p.RegistryID) {
			issues = append(issues, fmt.Sprintf("circular_ownership_detected:%s", p.Name))
			continue
		}
		if depth >= MaxTraceDepth {
			// Can't go deeper; surface the corporate entity itself so the
			// share is not silently lost from the totals.
			issues = append(issues, fmt.Sprintf("max_depth_reached:%s", p.Name))
			owners = append(owners, BeneficialOwner{
				Name:       p.Name,
				Percentage: shareOf(p, 0),
				Type:       OwnerCorporateUntraced,
				TraceDepth: depth,
			})
			continue
		}
		issues = append(issues, fmt.Sprintf("corporate_shareholder_requires_tracing:%s", p.Name))
	}
	return owners, corporate, issues
}

func analyzeProprietors(rec RegistryRecord, depth int) []BeneficialOwner {
	var owners []BeneficialOwner
	for _, p := range rec.Parties {
		// A sole proprietor without a stated share owns the business
		// outright.
		pct := shareOf(p, 100)
		if pct < ControlThreshold {
			continue
		}
		owners = append(owners, BeneficialOwner{
			Name:       p.Name,
			Percentage: pct,
			Type:       OwnerProprietor,
			TraceDepth: depth,
		})
	}
	return owners
}

// analyzeTrustees surfaces each trustee with an equal 100/N share. Trustees
// hold control rather than ownership, but reviewers still need to see who
// they are, so they are reported through the same owner channel.
func analyzeTrustees(rec RegistryRecord, depth int) []BeneficialOwner {
	n := len(rec.Parties)
	if n == 0 {
		return nil
	}
	share := 100.0 / float64(n)
	owners := make([]BeneficialOwner, 0, n)
	for _, p := range rec.Parties {
		owners = append(owners, BeneficialOwner{
			Name:       p.Name,
			Percentage: share,
			Type:       OwnerTrustee,
			TraceDepth: depth,
		})
	}
	return owners
}

// hasStatedShares reports whether the entity kind carries real registry
// percentages, making an under-100% total a meaningful gap.
func hasStatedShares(k EntityKind) bool {
	switch k {
	case KindLimited, KindPLC, KindBusinessName:
		return true
	default:
		return false
	}
}

func shareOf(p Party, fallback float64) float64 {
	if p.Percentage == nil {
		return fallback
	}
	return *p.Percentage
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
