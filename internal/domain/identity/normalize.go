package identity

import (
	"strings"
	"unicode"
)

// isSurnameFirst reports whether a raw name appears to lead with the surname.
// Two heuristics, matched against how the national registries actually format
// names: an explicit comma ("OBI, John Paul"), or an all-uppercase first token
// of at least three characters followed by a token that is not all-uppercase
// ("OBI John Paul").
func isSurnameFirst(name string) bool {
	if strings.Contains(name, ",") {
		return true
	}
	tokens := strings.Fields(name)
	if len(tokens) < 2 {
		return false
	}
	first := tokens[0]
	if len([]rune(first)) < 3 {
		return false
	}
	return isAllUpper(first) && !isAllUpper(tokens[1])
}

// isAllUpper reports whether s contains at least one letter and no lowercase
// letters.
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

// normalizeName produces the canonical "Given Middle Surname" form:
// punctuation stripped, whitespace collapsed, title-cased, and for
// surname-first input the leading surname rotated to the end.
func normalizeName(name string, surnameFirst bool) string {
	clean := strings.NewReplacer(",", " ", ".", " ").Replace(name)
	clean = strings.Join(strings.Fields(clean), " ")
	clean = titleCase(clean)

	if !surnameFirst {
		return clean
	}

	tokens := strings.Split(clean, " ")
	if len(tokens) < 2 {
		return clean
	}
	rotated := append(tokens[1:], tokens[0])
	return strings.Join(rotated, " ")
}

// titleCase uppercases the first letter of every letter-run and lowercases the
// rest, so "OBI JOHN" and "obi john" both normalize to "Obi John".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

// tokenSet splits a normalized name into its comparison tokens: lower-cased
// and longer than one character, so single-letter initials never influence
// matching.
func tokenSet(name string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(name) {
		if len([]rune(tok)) > 1 {
			set[strings.ToLower(tok)] = struct{}{}
		}
	}
	return set
}

// levenshtein computes the edit distance between two strings using the
// classic two-row dynamic programming formulation.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i, ca := range ra {
		curr[0] = i + 1
		for j, cb := range rb {
			cost := 1
			if ca == cb {
				cost = 0
			}
			curr[j+1] = min3(prev[j+1]+1, curr[j]+1, prev[j]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
