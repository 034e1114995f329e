// Package identity implements cross-validation of independently sourced
// identity records (a bank-verification record against a national-ID record)
// for regulated onboarding. The validator is a pure computation: every input,
// including empty or malformed names, maps to a normal explainable verdict
// rather than an error, which is what makes its output usable as audit
// evidence.
package identity

// Issue codes carried in Verdict.Issues. They are stable identifiers consumed
// by downstream review tooling; change them only with a migration plan.
const (
	IssueMissingName         = "missing_name"
	IssueDOBMismatch         = "dob_mismatch"
	IssueMiddleNameVariation = "middle_name_variation"
	IssueMinorTypo           = "minor_typo"
	IssuePossibleTypo        = "possible_typo"
	IssueNameMismatch        = "name_mismatch"
)

// Record is a single identity record as returned by an upstream provider.
// Immutable once produced; Phone and Address are source-specific fields that
// take no part in matching.
type Record struct {
	FullName    string
	DateOfBirth string // ISO date (YYYY-MM-DD); empty when the source omitted it
	Phone       string
	Address     string
}

// Verdict is the result of cross-validating two records.
//
// Invariant: OverallMatch ⇔ NameMatch ∧ DOBMatch.
type Verdict struct {
	OverallMatch bool
	Confidence   int // 0-100
	NameMatch    bool
	DOBMatch     bool
	Issues       []string
	// SourceAName/SourceBName preserve the raw names as received, so a
	// reviewer can see exactly what was compared.
	SourceAName string
	SourceBName string
	// NormalizedName is the canonical "Given Middle Surname" form of the
	// first record's name after normalization.
	NormalizedName string
	Explanation    string
}
