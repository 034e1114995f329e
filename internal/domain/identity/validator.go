package identity

import (
	"fmt"
	"strings"
)

// Validator cross-validates two identity records. It is stateless and safe
// for concurrent use.
type Validator struct{}

// NewValidator returns a ready-to-use Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// nameResult is the outcome of comparing the two names.
type nameResult struct {
	match      bool
	confidence int
	issue      string // empty on a perfect match
	normalized string
}

// Validate cross-validates records a and b for consistency. It is total:
// missing names and dates degrade to a no-match verdict with explicit issue
// codes, never an error. Running it twice with identical inputs yields a
// byte-identical verdict.
func (v *Validator) Validate(a, b Record) Verdict {
	var issues []string

	dobMatch := validateDOB(a.DateOfBirth, b.DateOfBirth)
	if !dobMatch {
		issues = append(issues, IssueDOBMismatch)
	}

	nr := validateNames(a.FullName, b.FullName)
	if nr.issue != "" {
		issues = append(issues, nr.issue)
	}

	return Verdict{
		OverallMatch:   dobMatch && nr.match,
		Confidence:     nr.confidence,
		NameMatch:      nr.match,
		DOBMatch:       dobMatch,
		Issues:         issues,
		SourceAName:    a.FullName,
		SourceBName:    b.FullName,
		NormalizedName: nr.normalized,
		Explanation:    explain(nr.match, dobMatch, nr),
	}
}

// validateDOB requires exact equality after trimming. No fuzzy date parsing:
// a fuzzy match on date of birth would be indefensible in an audit.
func validateDOB(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return a == b
}

func validateNames(nameA, nameB string) nameResult {
	if strings.TrimSpace(nameA) == "" || strings.TrimSpace(nameB) == "" {
		return nameResult{match: false, confidence: 0, issue: IssueMissingName}
	}

	normA := normalizeName(nameA, isSurnameFirst(nameA))
	normB := normalizeName(nameB, isSurnameFirst(nameB))

	tokensA := tokenSet(normA)
	tokensB := tokenSet(normB)

	if setsEqual(tokensA, tokensB) {
		return nameResult{match: true, confidence: 100, normalized: normA}
	}

	// One extra or missing token with at least two shared tokens is treated
	// as a middle-name variation ("John Paul Obi" vs "John Obi").
	common := intersectionSize(tokensA, tokensB)
	total := unionSize(tokensA, tokensB)
	if common >= 2 && total == common+1 {
		return nameResult{match: true, confidence: 95, issue: IssueMiddleNameVariation, normalized: normA}
	}

	switch d := levenshtein(normA, normB); {
	case d <= 2:
		return nameResult{match: true, confidence: 90, issue: IssueMinorTypo, normalized: normA}
	case d <= 3:
		return nameResult{match: true, confidence: 85, issue: IssuePossibleTypo, normalized: normA}
	}

	return nameResult{match: false, confidence: 0, issue: IssueNameMismatch, normalized: normA}
}

// explain maps the validation outcome to one of a fixed set of templates.
// The mapping is pure and deterministic so the same inputs always produce the
// same sentence on the customer's audit trail.
func explain(nameMatch, dobMatch bool, nr nameResult) string {
	switch {
	case nameMatch && dobMatch:
		switch {
		case nr.confidence == 100:
			return "Perfect match: all fields match exactly."
		case nr.issue == IssueMiddleNameVariation:
			return fmt.Sprintf("Match confirmed (%d%% confidence): names match with a minor middle name variation.", nr.confidence)
		case nr.issue == IssueMinorTypo:
			return fmt.Sprintf("Match confirmed (%d%% confidence): names match with a minor spelling variation.", nr.confidence)
		default:
			return fmt.Sprintf("Match confirmed (%d%% confidence).", nr.confidence)
		}
	case !nameMatch && !dobMatch:
		return "No match: both name and date of birth differ significantly. Possible identity mismatch."
	case !dobMatch:
		return "Partial match: names match but date of birth differs. Requires manual review."
	default:
		return "Partial match: date of birth matches but names differ. May indicate a name change or a data entry error."
	}
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func intersectionSize(a, b map[string]struct{}) int {
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func unionSize(a, b map[string]struct{}) int {
	n := len(a)
	for k := range b {
		if _, ok := a[k]; !ok {
			n++
		}
	}
	return n
}
