package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_SurnameFirstAgainstGivenFirst(t *testing.T) {
	v := NewValidator()

	got := v.Validate(
		Record{FullName: "OBI, JOHN PAUL", DateOfBirth: "1985-03-15"},
		Record{FullName: "JOHN PAUL OBI", DateOfBirth: "1985-03-15"},
	)

	assert.True(t, got.OverallMatch)
	assert.True(t, got.NameMatch)
	assert.True(t, got.DOBMatch)
	assert.Equal(t, 100, got.Confidence)
	assert.Empty(t, got.Issues)
	assert.Equal(t, "John Paul Obi", got.NormalizedName)
	assert.Equal(t, "Perfect match: all fields match exactly.", got.Explanation)
}

func TestValidate_Confidence(t *testing.T) {
	tests := []struct {
		name       string
		a, b       Record
		match      bool
		confidence int
		issues     []string
	}{
		{
			name:       "exact",
			a:          Record{FullName: "Ngozi Eze", DateOfBirth: "1990-01-01"},
			b:          Record{FullName: "Ngozi Eze", DateOfBirth: "1990-01-01"},
			match:      true,
			confidence: 100,
		},
		{
			name:       "token order irrelevant",
			a:          Record{FullName: "Obi John Paul", DateOfBirth: "1985-03-15"},
			b:          Record{FullName: "Paul John Obi", DateOfBirth: "1985-03-15"},
			match:      true,
			confidence: 100,
		},
		{
			name:       "missing middle name",
			a:          Record{FullName: "John Paul Obi", DateOfBirth: "1985-03-15"},
			b:          Record{FullName: "John Obi", DateOfBirth: "1985-03-15"},
			match:      true,
			confidence: 95,
			issues:     []string{IssueMiddleNameVariation},
		},
		{
			name:       "middle initial collapses to variation",
			a:          Record{FullName: "John P Obi", DateOfBirth: "1985-03-15"},
			b:          Record{FullName: "John Paul Obi", DateOfBirth: "1985-03-15"},
			match:      true,
			confidence: 95,
			issues:     []string{IssueMiddleNameVariation},
		},
		{
			name:       "single character typo",
			a:          Record{FullName: "Jon Paul Obi", DateOfBirth: "1985-03-15"},
			b:          Record{FullName: "John Paul Obi", DateOfBirth: "1985-03-15"},
			match:      true,
			confidence: 90,
			issues:     []string{IssueMinorTypo},
		},
		{
			name:       "three character distance",
			a:          Record{FullName: "Jon Pal Ob", DateOfBirth: "1985-03-15"},
			b:          Record{FullName: "John Paul Obi", DateOfBirth: "1985-03-15"},
			match:      true,
			confidence: 85,
			issues:     []string{IssuePossibleTypo},
		},
		{
			name:       "unrelated names",
			a:          Record{FullName: "Ngozi Eze", DateOfBirth: "1985-03-15"},
			b:          Record{FullName: "Chukwuma Okafor", DateOfBirth: "1985-03-15"},
			match:      false,
			confidence: 0,
			issues:     []string{IssueNameMismatch},
		},
		{
			name:       "missing name on one side",
			a:          Record{FullName: "", DateOfBirth: "1985-03-15"},
			b:          Record{FullName: "John Obi", DateOfBirth: "1985-03-15"},
			match:      false,
			confidence: 0,
			issues:     []string{IssueMissingName},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewValidator().Validate(tt.a, tt.b)
			assert.Equal(t, tt.match, got.NameMatch)
			assert.Equal(t, tt.confidence, got.Confidence)
			assert.Equal(t, tt.issues, got.Issues)
			assert.Equal(t, tt.match && got.DOBMatch, got.OverallMatch)
		})
	}
}

func TestValidate_DOB(t *testing.T) {
	v := NewValidator()

	t.Run("mismatch ordered before name issues", func(t *testing.T) {
		got := v.Validate(
			Record{FullName: "John Obi", DateOfBirth: "1985-03-15"},
			Record{FullName: "John Paul Obi", DateOfBirth: "1986-03-15"},
		)
		assert.False(t, got.OverallMatch)
		assert.True(t, got.NameMatch)
		assert.False(t, got.DOBMatch)
		assert.Equal(t, []string{IssueDOBMismatch, IssueMiddleNameVariation}, got.Issues)
		assert.Equal(t, "Partial match: names match but date of birth differs. Requires manual review.", got.Explanation)
	})

	t.Run("missing dob never matches", func(t *testing.T) {
		got := v.Validate(
			Record{FullName: "John Obi", DateOfBirth: ""},
			Record{FullName: "John Obi", DateOfBirth: ""},
		)
		assert.False(t, got.DOBMatch)
		assert.False(t, got.OverallMatch)
		assert.Contains(t, got.Issues, IssueDOBMismatch)
	})

	t.Run("surrounding whitespace tolerated", func(t *testing.T) {
		got := v.Validate(
			Record{FullName: "John Obi", DateOfBirth: " 1985-03-15"},
			Record{FullName: "John Obi", DateOfBirth: "1985-03-15 "},
		)
		assert.True(t, got.DOBMatch)
		assert.True(t, got.OverallMatch)
	})
}

func TestValidate_Explanations(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name string
		a, b Record
		want string
	}{
		{
			name: "double mismatch",
			a:    Record{FullName: "Ngozi Eze", DateOfBirth: "1990-01-01"},
			b:    Record{FullName: "Chukwuma Okafor", DateOfBirth: "1985-03-15"},
			want: "No match: both name and date of birth differ significantly. Possible identity mismatch.",
		},
		{
			name: "dob only",
			a:    Record{FullName: "Ngozi Eze", DateOfBirth: "1990-01-01"},
			b:    Record{FullName: "Chukwuma Okafor", DateOfBirth: "1990-01-01"},
			want: "Partial match: date of birth matches but names differ. May indicate a name change or a data entry error.",
		},
		{
			name: "middle name variation",
			a:    Record{FullName: "John Paul Obi", DateOfBirth: "1985-03-15"},
			b:    Record{FullName: "John Obi", DateOfBirth: "1985-03-15"},
			want: "Match confirmed (95% confidence): names match with a minor middle name variation.",
		},
		{
			name: "spelling variation",
			a:    Record{FullName: "Jon Paul Obi", DateOfBirth: "1985-03-15"},
			b:    Record{FullName: "John Paul Obi", DateOfBirth: "1985-03-15"},
			want: "Match confirmed (90% confidence): names match with a minor spelling variation.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Validate(tt.a, tt.b).Explanation)
		})
	}
}

func TestValidate_Deterministic(t *testing.T) {
	v := NewValidator()
	a := Record{FullName: "OBI, JOHN PAUL", DateOfBirth: "1985-03-15", Phone: "0801", Address: "Lagos"}
	b := Record{FullName: "Jon Paul Obi", DateOfBirth: "1986-03-15"}

	first := v.Validate(a, b)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, v.Validate(a, b))
	}
}

func TestValidate_PreservesSourceNames(t *testing.T) {
	got := NewValidator().Validate(
		Record{FullName: "ADEBAYO Oluwaseun"},
		Record{FullName: "Oluwaseun Adebayo"},
	)
	assert.Equal(t, "ADEBAYO Oluwaseun", got.SourceAName)
	assert.Equal(t, "Oluwaseun Adebayo", got.SourceBName)
	assert.Equal(t, "Oluwaseun Adebayo", got.NormalizedName)
}
