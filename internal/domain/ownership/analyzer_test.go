package ownership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(v float64) *float64 { return &v }

func TestAnalyze_DirectShareholders(t *testing.T) {
	rec := RegistryRecord{
		RegistryID: "RC123456",
		Name:       "ALPHA TRADING LIMITED",
		Kind:       KindLimited,
		Parties: []Party{
			{Name: "John Obi", Kind: PartyShareholder, Percentage: pct(60)},
			{Name: "Amaka Nwosu", Kind: PartyShareholder, Percentage: pct(40)},
		},
	}

	got := NewAnalyzer().Analyze(rec, 1, nil)

	require.Len(t, got.Owners, 2)
	assert.Equal(t, BeneficialOwner{Name: "John Obi", Percentage: 60, Type: OwnerDirect, TraceDepth: 1}, got.Owners[0])
	assert.Equal(t, BeneficialOwner{Name: "Amaka Nwosu", Percentage: 40, Type: OwnerDirect, TraceDepth: 1}, got.Owners[1])
	assert.True(t, got.Identified)
	assert.Equal(t, 100.0, got.TotalPercentage)
	assert.Empty(t, got.Issues)
	assert.Empty(t, got.CorporateParties)
}

func TestAnalyze_CorporateShareholderFlaggedForTracing(t *testing.T) {
	rec := RegistryRecord{
		RegistryID: "RC789012",
		Name:       "BETA INDUSTRIES PLC",
		Kind:       KindPLC,
		Parties: []Party{
			{Name: "GAMMA HOLDINGS LIMITED", Kind: PartyShareholder, Percentage: pct(55), IsCorporate: true, RegistryID: "RC456789"},
			{Name: "Chukwuma Okafor", Kind: PartyShareholder, Percentage: pct(25)},
			{Name: "Ngozi Eze", Kind: PartyShareholder, Percentage: pct(20)},
		},
	}

	got := NewAnalyzer().Analyze(rec, 1, nil)

	require.Len(t, got.Owners, 1)
	assert.Equal(t, BeneficialOwner{Name: "Chukwuma Okafor", Percentage: 25, Type: OwnerDirect, TraceDepth: 1}, got.Owners[0])
	assert.Equal(t, []string{"GAMMA HOLDINGS LIMITED"}, got.CorporateParties)
	assert.Equal(t, []string{"corporate_shareholder_requires_tracing:GAMMA HOLDINGS LIMITED"}, got.Issues)
	assert.Equal(t, 25.0, got.TotalPercentage)
	assert.True(t, got.Identified, "exactly-at-threshold total still identifies")
}

func TestAnalyze_ThresholdBoundary(t *testing.T) {
	rec := RegistryRecord{
		RegistryID: "RC1",
		Kind:       KindLimited,
		Parties: []Party{
			{Name: "At Threshold", Kind: PartyShareholder, Percentage: pct(25)},
			{Name: "Below Threshold", Kind: PartyShareholder, Percentage: pct(24.9)},
			{Name: "No Stated Share", Kind: PartyShareholder},
		},
	}

	got := NewAnalyzer().Analyze(rec, 1, nil)

	require.Len(t, got.Owners, 1)
	assert.Equal(t, "At Threshold", got.Owners[0].Name)
}

func TestAnalyze_MaxDepth(t *testing.T) {
	rec := RegistryRecord{
		RegistryID: "RC456789",
		Name:       "GAMMA HOLDINGS LIMITED",
		Kind:       KindLimited,
		Parties: []Party{
			{Name: "DELTA CAPITAL LIMITED", Kind: PartyShareholder, Percentage: pct(70), IsCorporate: true, RegistryID: "RC999999"},
			{Name: "Ifeoma Dike", Kind: PartyShareholder, Percentage: pct(30)},
		},
	}

	got := NewAnalyzer().Analyze(rec, MaxTraceDepth, NewVisited("RC789012"))

	require.Len(t, got.Owners, 2)
	assert.Equal(t, BeneficialOwner{Name: "Ifeoma Dike", Percentage: 30, Type: OwnerDirect, TraceDepth: 2}, got.Owners[1])
	assert.Equal(t, BeneficialOwner{Name: "DELTA CAPITAL LIMITED", Percentage: 70, Type: OwnerCorporateUntraced, TraceDepth: 2}, got.Owners[0])
	assert.Equal(t, []string{"max_depth_reached:DELTA CAPITAL LIMITED"}, got.Issues)
	assert.Equal(t, 100.0, got.TotalPercentage)
	assert.True(t, got.Identified)
}

func TestAnalyze_CircularOwnership(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		// RC2's record names RC1 as a shareholder while RC1 is already on
		// the trace path.
		rec := RegistryRecord{
			RegistryID: "RC2",
			Kind:       KindLimited,
			Parties: []Party{
				{Name: "PARENT LIMITED", Kind: PartyShareholder, Percentage: pct(100), IsCorporate: true, RegistryID: "RC1"},
			},
		}

		got := NewAnalyzer().Analyze(rec, 2, NewVisited("RC1"))

		assert.Empty(t, got.Owners)
		assert.Equal(t, []string{"circular_ownership_detected:PARENT LIMITED", "no_ubo_identified"}, got.Issues)
		assert.False(t, got.Identified)
	})

	t.Run("self ownership", func(t *testing.T) {
		rec := RegistryRecord{
			RegistryID: "RC1",
			Kind:       KindLimited,
			Parties: []Party{
				{Name: "OUROBOROS LIMITED", Kind: PartyShareholder, Percentage: pct(100), IsCorporate: true, RegistryID: "RC1"},
			},
		}

		got := NewAnalyzer().Analyze(rec, 1, nil)

		assert.Contains(t, got.Issues, "circular_ownership_detected:OUROBOROS LIMITED")
		assert.False(t, got.Identified)
	})
}

func TestAnalyze_IncompleteStructure(t *testing.T) {
	rec := RegistryRecord{
		RegistryID: "RC1",
		Kind:       KindLimited,
		Parties: []Party{
			{Name: "Majority Holder", Kind: PartyShareholder, Percentage: pct(60)},
			{Name: "Minor Holder", Kind: PartyShareholder, Percentage: pct(10)},
		},
	}

	got := NewAnalyzer().Analyze(rec, 1, nil)

	assert.True(t, got.Identified)
	assert.Equal(t, 60.0, got.TotalPercentage)
	assert.Equal(t, []string{"incomplete_ownership_structure:60%"}, got.Issues)
}

func TestAnalyze_NoOwners(t *testing.T) {
	rec := RegistryRecord{
		RegistryID: "RC1",
		Kind:       KindLimited,
		Parties: []Party{
			{Name: "A", Kind: PartyShareholder, Percentage: pct(10)},
			{Name: "B", Kind: PartyShareholder, Percentage: pct(10)},
		},
	}

	got := NewAnalyzer().Analyze(rec, 1, nil)

	assert.Empty(t, got.Owners)
	assert.False(t, got.Identified)
	assert.Equal(t, []string{"no_ubo_identified"}, got.Issues)
}

func TestAnalyze_BusinessName(t *testing.T) {
	rec := RegistryRecord{
		RegistryID: "BN345678",
		Name:       "PRECIOUS VENTURES",
		Kind:       KindBusinessName,
		Parties: []Party{
			{Name: "Precious Okoro", Kind: PartyProprietor},
		},
	}

	got := NewAnalyzer().Analyze(rec, 1, nil)

	require.Len(t, got.Owners, 1)
	assert.Equal(t, BeneficialOwner{Name: "Precious Okoro", Percentage: 100, Type: OwnerProprietor, TraceDepth: 1}, got.Owners[0])
	assert.True(t, got.Identified)
	assert.Empty(t, got.Issues)
}

func TestAnalyze_IncorporatedTrustees(t *testing.T) {
	rec := RegistryRecord{
		RegistryID: "IT000123",
		Name:       "HOPEWELL FOUNDATION",
		Kind:       KindIncorporatedTrustees,
		Parties: []Party{
			{Name: "Trustee One", Kind: PartyTrustee},
			{Name: "Trustee Two", Kind: PartyTrustee},
			{Name: "Trustee Three", Kind: PartyTrustee},
			{Name: "Trustee Four", Kind: PartyTrustee},
		},
	}

	got := NewAnalyzer().Analyze(rec, 1, nil)

	require.Len(t, got.Owners, 4)
	for _, o := range got.Owners {
		assert.Equal(t, OwnerTrustee, o.Type)
		assert.Equal(t, 25.0, o.Percentage)
	}
	assert.True(t, got.Identified)
	assert.Empty(t, got.Issues, "trustee structures carry no percentage gap issue")
}

func TestAnalyze_TotalEqualsOwnerSum(t *testing.T) {
	rec := RegistryRecord{
		RegistryID: "RC1",
		Kind:       KindLimited,
		Parties: []Party{
			{Name: "A", Kind: PartyShareholder, Percentage: pct(47.5)},
			{Name: "B", Kind: PartyShareholder, Percentage: pct(27.5)},
			{Name: "C", Kind: PartyShareholder, Percentage: pct(25)},
		},
	}

	got := NewAnalyzer().Analyze(rec, 1, nil)

	sum := 0.0
	for _, o := range got.Owners {
		sum += o.Percentage
	}
	assert.Equal(t, sum, got.TotalPercentage)
}

func TestAnalyze_Deterministic(t *testing.T) {
	rec := RegistryRecord{
		RegistryID: "RC789012",
		Kind:       KindPLC,
		Parties: []Party{
			{Name: "GAMMA HOLDINGS LIMITED", Kind: PartyShareholder, Percentage: pct(55), IsCorporate: true, RegistryID: "RC456789"},
			{Name: "Chukwuma Okafor", Kind: PartyShareholder, Percentage: pct(25)},
		},
	}

	a := NewAnalyzer()
	first := a.Analyze(rec, 1, nil)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, a.Analyze(rec, 1, nil))
	}
}

func TestVisited_WithDoesNotMutate(t *testing.T) {
	base := NewVisited("RC1")
	next := base.With("RC2")

	assert.True(t, next.Has("RC1"))
	assert.True(t, next.Has("RC2"))
	assert.False(t, base.Has("RC2"))
	assert.False(t, Visited(nil).Has("RC1"))
}
