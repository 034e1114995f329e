package risk

// Tables are the regulatory reference lists the engine scores against. They
// are injected rather than hard-coded so FATF list revisions and sector
// re-classifications ship as configuration, not code changes.
type Tables struct {
	// HomeCountry is the jurisdiction treated as domestic.
	HomeCountry string

	// Sectors maps an upper-cased industry sector to its 0-5 risk tier.
	// SectorDefault applies to sectors absent from the map; a wholly
	// unspecified sector scores 1.
	Sectors       map[string]int
	SectorDefault int

	// FATF jurisdiction lists, upper-cased country names.
	GreyList  []string
	BlackList []string

	// Category thresholds: total ≤ ThresholdLow is LOW, ≤ ThresholdMedium
	// is MEDIUM, anything above is HIGH.
	ThresholdLow    int
	ThresholdMedium int
}

// DefaultTables returns the tables in force for Nigerian onboarding, with
// the FATF lists as published in 2025.
func DefaultTables() Tables {
	return Tables{
		HomeCountry: "Nigeria",
		Sectors: map[string]int{
			"SALARY_EARNER":   1,
			"RETAIL":          1,
			"CONSULTANCY":     2,
			"SERVICES":        2,
			"NGO":             3,
			"EXPORT":          3,
			"IMPORT_EXPORT":   3,
			"LOGISTICS":       3,
			"REAL_ESTATE":     4,
			"ART_ANTIQUITIES": 4,
			"GOLD_TRADING":    5,
			"CRYPTOCURRENCY":  5,
			"MONEY_TRANSFER":  5,
			"OIL_GAS":         5,
			"GAMING_BETTING":  5,
			"PRECIOUS_METALS": 5,
			"CASH_INTENSIVE":  5,
		},
		SectorDefault: 2,
		GreyList: []string{
			"BULGARIA", "CAMEROON", "CROATIA", "VIETNAM", "TURKEY",
			"SOUTH_AFRICA", "UGANDA", "UAE", "SENEGAL", "MOZAMBIQUE",
		},
		BlackList:       []string{"IRAN", "NORTH_KOREA", "MYANMAR"},
		ThresholdLow:    10,
		ThresholdMedium: 20,
	}
}
