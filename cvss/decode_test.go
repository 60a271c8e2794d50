package cvss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortelius/cve-catalog/model"
)

func TestDecodeV31AllNone(t *testing.T) {
	vector := "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:N/I:N/A:N"

	score := Decode("3.1", vector)
	require.NotNil(t, score)

	v31, ok := score.(*model.CvssV31)
	require.True(t, ok)

	assert.Equal(t, "3.1", v31.Version)
	assert.Equal(t, vector, v31.VectorString)
	assert.Equal(t, "NETWORK", v31.AttackVector)
	assert.Equal(t, "LOW", v31.AttackComplexity)
	assert.Equal(t, "NONE", v31.PrivilegesRequired)
	assert.Equal(t, "NONE", v31.UserInteraction)
	assert.Equal(t, "UNCHANGED", v31.Scope)
	assert.Equal(t, "NONE", v31.ConfidentialityImpact)
	assert.Equal(t, "NONE", v31.IntegrityImpact)
	assert.Equal(t, "NONE", v31.AvailabilityImpact)

	// Temporal fields only set when present in the vector
	assert.Empty(t, v31.ExploitCodeMaturity)
	assert.Empty(t, v31.RemediationLevel)
	assert.Empty(t, v31.ReportConfidence)
}

func TestDecodeV31Temporal(t *testing.T) {
	vector := "CVSS:3.1/AV:L/AC:H/PR:H/UI:R/S:C/C:H/I:L/A:H/E:F/RL:O/RC:C"

	v31, ok := Decode("3.1", vector).(*model.CvssV31)
	require.True(t, ok)

	assert.Equal(t, "LOCAL", v31.AttackVector)
	assert.Equal(t, "HIGH", v31.AttackComplexity)
	assert.Equal(t, "CHANGED", v31.Scope)
	assert.Equal(t, "FUNCTIONAL", v31.ExploitCodeMaturity)
	assert.Equal(t, "OFFICIAL_FIX", v31.RemediationLevel)
	assert.Equal(t, "CONFIRMED", v31.ReportConfidence)
}

func TestDecodeTolerance(t *testing.T) {
	// Unknown metric (ZZ), unknown value (AV:Q) and a segment without a
	// colon are all skipped without error.
	vector := "CVSS:3.1/AV:Q/ZZ:N/garbage/AC:L"

	v31, ok := Decode("3.1", vector).(*model.CvssV31)
	require.True(t, ok)

	assert.Empty(t, v31.AttackVector)
	assert.Equal(t, "LOW", v31.AttackComplexity)
}

func TestDecodeV20BareList(t *testing.T) {
	vector := "AV:N/AC:M/Au:S/C:P/I:C/A:N/E:POC/RL:OF/RC:UC"

	v20, ok := Decode("2.0", vector).(*model.CvssV20)
	require.True(t, ok)

	assert.Equal(t, "2.0", v20.Version)
	assert.Equal(t, "NETWORK", v20.AccessVector)
	assert.Equal(t, "MEDIUM", v20.AccessComplexity)
	assert.Equal(t, "SINGLE", v20.Authentication)
	assert.Equal(t, "PARTIAL", v20.ConfidentialityImpact)
	assert.Equal(t, "COMPLETE", v20.IntegrityImpact)
	assert.Equal(t, "NONE", v20.AvailabilityImpact)
	assert.Equal(t, "PROOF_OF_CONCEPT", v20.Exploitability)
	assert.Equal(t, "OFFICIAL_FIX", v20.RemediationLevel)
	assert.Equal(t, "UNCONFIRMED", v20.ReportConfidence)
}

func TestDecodeV40(t *testing.T) {
	vector := "CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N"

	v40, ok := Decode("4.0", vector).(*model.CvssV40)
	require.True(t, ok)

	assert.Equal(t, "NETWORK", v40.AttackVector)
	assert.Equal(t, "NONE", v40.AttackRequirements)
	assert.Equal(t, "HIGH", v40.VulnConfidentialityImpact)
	assert.Equal(t, "NONE", v40.SubAvailabilityImpact)
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	assert.Nil(t, Decode("1.0", "AV:N"))
}

func TestDetectVersion(t *testing.T) {
	cases := map[string]string{
		"CVSS:4.0/AV:N/AC:L": "4.0",
		"CVSS:3.1/AV:N":      "3.1",
		"CVSS:3.0/AV:N":      "3.0",
		"AV:N/AC:L/Au:N":     "2.0",
		"CVSS2#AV:N/AC:L":    "2.0",
		"Au:N/C:P":           "2.0",
		"not a vector":       "",
		"CVSS:9.9/AV:N":      "",
	}
	for vector, want := range cases {
		assert.Equal(t, want, DetectVersion(vector), vector)
	}
}
