package risk

import (
	"fmt"
	"strings"
)

// Engine scores risk factors against a fixed set of tables. Stateless apart
// from the tables, which are read-only after construction, so a single
// Engine serves concurrent callers.
type Engine struct {
	tables Tables
}

// NewEngine returns an engine scoring against the given tables.
func NewEngine(tables Tables) *Engine {
	return &Engine{tables: tables}
}

// CalculateRisk scores the factors. Pure and deterministic: identical
// factors always produce an identical verdict, including the wording of the
// calculation sheet.
func (e *Engine) CalculateRisk(f Factors) Verdict {
	f = e.normalize(f)

	b := Breakdown{
		CustomerProfile:     e.customerProfileScore(f),
		GeographicExposure:  e.geographicScore(f),
		BusinessSector:      e.sectorScore(f),
		PEPInfluence:        e.pepScore(f),
		ProductRelationship: e.productScore(f),
		AdverseMedia:        e.adverseMediaScore(f),
	}
	b.Total = b.CustomerProfile + b.GeographicExposure + b.BusinessSector +
		b.PEPInfluence + b.ProductRelationship + b.AdverseMedia

	category := e.categorize(b.Total)

	return Verdict{
		TotalScore:       b.Total,
		Category:         category,
		Breakdown:        b,
		RiskDrivers:      e.riskDrivers(f, b),
		RequiredActions:  e.requiredActions(category, f),
		CalculationSheet: e.calculationSheet(f, b),
	}
}

// normalize fills the geography defaults so the sub-score functions never
// have to special-case empty fields.
func (e *Engine) normalize(f Factors) Factors {
	if f.Nationality == "" {
		f.Nationality = e.tables.HomeCountry
	}
	if f.ResidenceCountry == "" {
		f.ResidenceCountry = e.tables.HomeCountry
	}
	if len(f.TransactionCountries) == 0 {
		f.TransactionCountries = []string{f.ResidenceCountry}
	}
	return f
}

// customerProfileScore: 1 for a resident individual, 2 non-resident, 3 for
// corporate/NGO, 2 for government. A corporate score escalates on structural
// opacity: mostly-corporate shareholder registers, absent directors or UBOs,
// or an ownership structure that does not add up to 100%.
func (e *Engine) customerProfileScore(f Factors) int {
	score := 0
	switch f.CustomerType {
	case CustomerIndividual:
		if e.isHome(f.Nationality) && e.isHome(f.ResidenceCountry) {
			score = 1
		} else {
			score = 2
		}
	case CustomerCorporate:
		score = 3
		if f.RegisteredEntityKind != "" {
			if f.CorporateShareholdersCount > 0 {
				ratio := float64(f.CorporateShareholdersCount) / float64(maxInt(f.ShareholdersCount, 1))
				if ratio >= 0.8 {
					score = 5
				} else if ratio >= 0.5 {
					score = 4
				}
			}
			if f.DirectorsCount == 0 || f.UBOCount == 0 {
				score = maxInt(score, 5)
			} else if f.HasIncompleteOwnership {
				score = maxInt(score, 4)
			}
		}
	case CustomerNGO:
		score = 3
	case CustomerGovernment:
		score = 2
	}
	return minInt(score, 5)
}

// geographicScore: 1 when everything is domestic; any FATF grey- or
// black-listed jurisdiction forces 5 before the cross-border check;
// otherwise clean cross-border exposure scores 3.
func (e *Engine) geographicScore(f Factors) int {
	locations := append([]string{f.Nationality, f.ResidenceCountry}, f.TransactionCountries...)

	for _, loc := range locations {
		if containsFold(e.tables.BlackList, loc) {
			return 5
		}
	}
	for _, loc := range locations {
		if containsFold(e.tables.GreyList, loc) {
			return 5
		}
	}

	for _, loc := range locations {
		if !e.isHome(loc) {
			return 3
		}
	}
	return 1
}

func (e *Engine) sectorScore(f Factors) int {
	if f.IndustrySector == "" {
		return 1
	}
	score, ok := e.tables.Sectors[strings.ToUpper(f.IndustrySector)]
	if !ok {
		score = e.tables.SectorDefault
	}
	return minInt(score, 5)
}

// pepScore is categorical, not additive: 0 for non-PEPs, 3 domestic, 4
// foreign.
func (e *Engine) pepScore(f Factors) int {
	if !f.IsPEP {
		return 0
	}
	if !e.isHome(f.Nationality) {
		return 4
	}
	return 3
}

func (e *Engine) productScore(f Factors) int {
	score := 1
	if f.CustomerType == CustomerCorporate {
		score = 2
	}

	if f.ExpectedMonthlyTurnover > 10_000_000 {
		score = 4
	} else if f.ExpectedMonthlyTurnover > 5_000_000 {
		score = maxInt(score, 3)
	}

	switch f.CashIntensity {
	case CashHigh:
		score += 2
	case CashMedium:
		score++
	}
	return minInt(score, 5)
}

// adverseMediaScore is reserved input for external watchlist screening,
// always 0 until that feed exists. Kept in the breakdown so audit sheets
// keep a stable shape when it arrives.
func (e *Engine) adverseMediaScore(Factors) int {
	return 0
}

func (e *Engine) categorize(total int) Category {
	switch {
	case total <= e.tables.ThresholdLow:
		return CategoryLow
	case total <= e.tables.ThresholdMedium:
		return CategoryMedium
	default:
		return CategoryHigh
	}
}

func (e *Engine) calculationSheet(f Factors, b Breakdown) []string {
	var sheet []string

	if b.CustomerProfile > 0 {
		switch f.CustomerType {
		case CustomerIndividual:
			sheet = append(sheet, fmt.Sprintf("Customer Type (Individual): +%d", b.CustomerProfile))
		case CustomerCorporate:
			sheet = append(sheet, fmt.Sprintf("Customer Type (Corporate): +%d", b.CustomerProfile))
		case CustomerNGO:
			sheet = append(sheet, fmt.Sprintf("Customer Type (NGO): +%d", b.CustomerProfile))
		case CustomerGovernment:
			sheet = append(sheet, fmt.Sprintf("Customer Type (Government): +%d", b.CustomerProfile))
		}
	}

	if b.GeographicExposure > 0 {
		switch {
		case b.GeographicExposure >= 5:
			sheet = append(sheet, fmt.Sprintf("Geographic Exposure (High-risk jurisdiction): +%d", b.GeographicExposure))
		case b.GeographicExposure >= 3:
			sheet = append(sheet, fmt.Sprintf("Geographic Exposure (Cross-border): +%d", b.GeographicExposure))
		default:
			sheet = append(sheet, fmt.Sprintf("Geographic Exposure (%s only): +%d", e.tables.HomeCountry, b.GeographicExposure))
		}
	}

	if b.BusinessSector > 0 {
		sheet = append(sheet, fmt.Sprintf("Business Sector (%s): +%d", sectorLabel(f), b.BusinessSector))
	}
	if b.PEPInfluence > 0 {
		sheet = append(sheet, fmt.Sprintf("PEP Status: +%d", b.PEPInfluence))
	}

	if b.ProductRelationship > 0 {
		if f.CustomerType == CustomerCorporate {
			sheet = append(sheet, fmt.Sprintf("Product Type (Corporate Account): +%d", b.ProductRelationship))
		} else {
			sheet = append(sheet, fmt.Sprintf("Product Type (Basic Account): +%d", b.ProductRelationship))
		}
	}

	if b.AdverseMedia > 0 {
		sheet = append(sheet, fmt.Sprintf("Adverse Media/Watchlist: +%d", b.AdverseMedia))
	}

	sheet = append(sheet, strings.Repeat("-", 40))
	sheet = append(sheet, fmt.Sprintf("Total Risk Score: %d/30", b.Total))
	return sheet
}

// riskDrivers surfaces only the sub-scores that crossed materiality: any
// PEP hit, geography at 3+, sector at 3+, corporate complexity at 4+,
// product at 4+, any adverse finding.
func (e *Engine) riskDrivers(f Factors, b Breakdown) []string {
	var drivers []string

	if b.PEPInfluence > 0 {
		drivers = append(drivers, fmt.Sprintf("Politically Exposed Person (PEP) - Score: %d/5", b.PEPInfluence))
	}

	switch {
	case b.GeographicExposure >= 5:
		drivers = append(drivers, fmt.Sprintf("High-risk jurisdiction exposure - Score: %d/5", b.GeographicExposure))
	case b.GeographicExposure >= 3:
		drivers = append(drivers, fmt.Sprintf("Cross-border operations - Score: %d/5", b.GeographicExposure))
	}

	switch {
	case b.BusinessSector >= 5:
		drivers = append(drivers, fmt.Sprintf("Cash-intensive sector (%s) - Score: %d/5", sectorLabel(f), b.BusinessSector))
	case b.BusinessSector >= 3:
		drivers = append(drivers, fmt.Sprintf("Elevated-risk sector (%s) - Score: %d/5", sectorLabel(f), b.BusinessSector))
	}

	if f.CustomerType == CustomerCorporate && b.CustomerProfile >= 4 {
		if f.CorporateShareholdersCount > 0 {
			ratio := float64(f.CorporateShareholdersCount) / float64(maxInt(f.ShareholdersCount, 1))
			if ratio >= 0.5 {
				drivers = append(drivers, fmt.Sprintf("Complex corporate structure - Score: %d/5", b.CustomerProfile))
			}
		}
		if f.DirectorsCount == 0 || f.UBOCount == 0 {
			drivers = append(drivers, fmt.Sprintf("Missing governance information - Score: %d/5", b.CustomerProfile))
		} else if f.InactiveDirectorsCount > 0 {
			ratio := float64(f.InactiveDirectorsCount) / float64(maxInt(f.DirectorsCount, 1))
			if ratio > 0.5 {
				drivers = append(drivers, fmt.Sprintf("High proportion of inactive directors (%.0f%%) - Score: %d/5", ratio*100, b.CustomerProfile))
			}
		}
		if f.DirectorsMissingContacts > 0 {
			ratio := float64(f.DirectorsMissingContacts) / float64(maxInt(f.DirectorsCount, 1))
			if ratio > 0.4 {
				drivers = append(drivers, fmt.Sprintf("Missing director contacts (%.0f%%) - Score: %d/5", ratio*100, b.CustomerProfile))
			}
		}
	}

	if b.ProductRelationship >= 4 {
		if f.ExpectedMonthlyTurnover > 10_000_000 {
			drivers = append(drivers, fmt.Sprintf("High transaction volume (NGN %d/month) - Score: %d/5", f.ExpectedMonthlyTurnover, b.ProductRelationship))
		}
		if f.CashIntensity == CashHigh {
			drivers = append(drivers, fmt.Sprintf("High cash intensity - Score: %d/5", b.ProductRelationship))
		}
	}

	if b.AdverseMedia > 0 {
		drivers = append(drivers, fmt.Sprintf("Adverse media/watchlist findings - Score: %d/5", b.AdverseMedia))
	}

	if len(drivers) == 0 {
		return []string{"Standard risk profile"}
	}
	return drivers
}

func (e *Engine) requiredActions(category Category, f Factors) []string {
	var actions []string
	switch category {
	case CategoryHigh:
		actions = append(actions,
			"Enhanced Due Diligence (EDD) mandatory",
			"Maker + Checker + Approver approval required",
			"Source of wealth and source of funds documentation required",
			"Quarterly account review",
			"Enhanced transaction monitoring",
			"Senior management approval (Zonal Head)",
		)
	case CategoryMedium:
		actions = append(actions,
			"Enhanced Monitoring required",
			"Maker + Checker approval required",
			"Bi-annual account review",
			"Periodic transaction monitoring",
		)
	default:
		actions = append(actions,
			"Standard Due Diligence (SDD)",
			"Maker approval only",
			"Annual account review",
		)
	}

	if f.IsPEP {
		actions = append(actions,
			"PEP approval workflow mandatory",
			"Ongoing PEP status monitoring",
		)
	}
	return actions
}

func (e *Engine) isHome(country string) bool {
	return strings.EqualFold(country, e.tables.HomeCountry)
}

func sectorLabel(f Factors) string {
	if f.IndustrySector == "" {
		return "Unspecified"
	}
	return f.IndustrySector
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
