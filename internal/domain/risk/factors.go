// Package risk scores onboarding risk on a transparent 1-30 scale. Six
// factor groups each contribute 0-5 points, and every verdict carries the
// full line-by-line calculation so a compliance reviewer can reproduce the
// score by hand. Scoring is a pure function of the input factors and the
// injected regulatory tables.
package risk

// CustomerType is the broad legal classification of the onboarding customer.
type CustomerType string

const (
	CustomerIndividual CustomerType = "INDIVIDUAL"
	CustomerCorporate  CustomerType = "CORPORATE"
	CustomerNGO        CustomerType = "NGO"
	CustomerGovernment CustomerType = "GOVERNMENT"
)

// CashIntensity grades how cash-heavy the expected account activity is.
type CashIntensity string

const (
	CashLow    CashIntensity = "LOW"
	CashMedium CashIntensity = "MEDIUM"
	CashHigh   CashIntensity = "HIGH"
)

// Factors is the complete scoring input. The orchestrator assembles it from
// verification results; the engine never looks anywhere else.
type Factors struct {
	CustomerType   CustomerType
	Occupation     string
	IndustrySector string
	IsPEP          bool

	// Registered-entity structure, populated only for corporate customers
	// with a registry profile.
	RegisteredEntityKind       string
	DirectorsCount             int
	InactiveDirectorsCount     int
	DirectorsMissingContacts   int
	ShareholdersCount          int
	CorporateShareholdersCount int
	OwnershipConcentration     float64 // highest single shareholder percentage
	UBOCount                   int
	HasIncompleteOwnership     bool

	// Geography. Empty country fields are treated as the home jurisdiction.
	Nationality          string
	ResidenceCountry     string
	TransactionCountries []string

	// Product and relationship.
	ProductType             string
	ExpectedMonthlyTurnover int64 // NGN per month
	CashIntensity           CashIntensity
	OnboardingChannel       string
}

// Category buckets a total score.
type Category string

const (
	CategoryLow    Category = "LOW"
	CategoryMedium Category = "MEDIUM"
	CategoryHigh   Category = "HIGH"
)

// Breakdown holds the six sub-scores and their total. Total always equals
// the sum of the other fields.
type Breakdown struct {
	CustomerProfile     int
	GeographicExposure  int
	BusinessSector      int
	PEPInfluence        int
	ProductRelationship int
	AdverseMedia        int
	Total               int
}

// Verdict is a complete risk assessment.
type Verdict struct {
	TotalScore int
	Category   Category
	Breakdown  Breakdown
	// RiskDrivers names only the factors that materially moved the score,
	// never empty: a clean profile reads "Standard risk profile".
	RiskDrivers []string
	// RequiredActions is the compliance follow-up derived from the
	// category, plus PEP-specific steps when applicable.
	RequiredActions []string
	// CalculationSheet is the ordered, human-readable arithmetic behind
	// TotalScore.
	CalculationSheet []string
}
