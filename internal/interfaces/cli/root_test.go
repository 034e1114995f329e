package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriflowhq/veriflow/internal/infrastructure/providers"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand_RejectsUnknownOutput(t *testing.T) {
	_, err := runCommand(t, "--output", "yaml", "risk", "score")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestVerifyIndividual_TextOutput(t *testing.T) {
	out, err := runCommand(t, "verify", "individual",
		"--bank-id", providers.ValidBankID,
		"--national-id", providers.ValidNationalID,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Status: COMPLETED")
	assert.Contains(t, out, "Match: true (confidence 100)")
	assert.Contains(t, out, "Perfect match: all fields match exactly.")
	assert.Contains(t, out, "Total Risk Score:")
}

func TestVerifyIndividual_RequiresFlags(t *testing.T) {
	_, err := runCommand(t, "verify", "individual")
	require.Error(t, err)
}

func TestVerifyCorporate_JSONOutput(t *testing.T) {
	out, err := runCommand(t, "--output", "json", "verify", "corporate",
		"--registry-id", providers.ValidRegistryID,
	)
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "COMPLETED", rec["Status"])
	require.NotNil(t, rec["Ownership"])
	ownership := rec["Ownership"].(map[string]any)
	assert.Equal(t, true, ownership["Identified"])
}

func TestVerifyCorporate_DepthTwoTrace(t *testing.T) {
	out, err := runCommand(t, "verify", "corporate",
		"--registry-id", providers.PLCRegistryID,
	)
	require.NoError(t, err)
	// The corporate shareholder resolves through its own register.
	assert.Contains(t, out, "Emeka Obiora")
	assert.Contains(t, out, "depth 2")
}

func TestRiskScore_Baseline(t *testing.T) {
	out, err := runCommand(t, "risk", "score", "--occupation", "SALARY_EARNER")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Risk Score: 4/30")
	assert.Contains(t, out, "Category: LOW")
}

func TestRiskScore_ForeignPEP(t *testing.T) {
	out, err := runCommand(t, "risk", "score",
		"--pep",
		"--nationality", "Bulgaria",
		"--residence", "Bulgaria",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "PEP approval workflow mandatory")
	assert.Contains(t, out, "Category:")
}
