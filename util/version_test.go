package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortelius/cve-catalog/model"
)

func TestParseSemver(t *testing.T) {
	parsed := ParseSemver("v1.2.3-rc.1+build.5")
	require.NotNil(t, parsed)
	assert.Equal(t, 1, *parsed.Major)
	assert.Equal(t, 2, *parsed.Minor)
	assert.Equal(t, 3, *parsed.Patch)
	assert.Equal(t, "rc.1", parsed.Prerelease)
	assert.Equal(t, "build.5", parsed.BuildMetadata)

	assert.Nil(t, ParseSemver(""))
	assert.Nil(t, ParseSemver("not-a-version"))
	assert.Nil(t, ParseSemver("1.2"))
}

func TestCleanVersion(t *testing.T) {
	assert.Equal(t, "1.2.3", CleanVersion("v1.2.3"))
	assert.Equal(t, "1.2.3", CleanVersion("V1.2.3"))
	assert.Equal(t, "1.2.3", CleanVersion("1.2.3"))
	assert.Equal(t, "vendor-build", CleanVersion("vendor-build"))
	assert.Equal(t, "", CleanVersion(""))
}

func TestVersionStatusExactMatch(t *testing.T) {
	ranges := []model.VersionRange{
		{Version: "1.0.0", Status: "affected"},
	}

	status, covered := VersionStatus("1.0.0", ranges)
	assert.True(t, covered)
	assert.Equal(t, "affected", status)

	_, covered = VersionStatus("1.0.1", ranges)
	assert.False(t, covered)

	// Exact entries match verbatim, no semver normalization.
	_, covered = VersionStatus("v1.0.0", ranges)
	assert.False(t, covered)
}

func TestVersionStatusSemverRange(t *testing.T) {
	ranges := []model.VersionRange{
		{Version: "1.0.0", Status: "affected", VersionType: "semver", LessThan: "1.5.0"},
	}

	status, covered := VersionStatus("1.2.3", ranges)
	assert.True(t, covered)
	assert.Equal(t, "affected", status)

	_, covered = VersionStatus("1.5.0", ranges)
	assert.False(t, covered)
	_, covered = VersionStatus("0.9.0", ranges)
	assert.False(t, covered)

	status, covered = VersionStatus("1.0.0", ranges)
	assert.True(t, covered)
	assert.Equal(t, "affected", status)
}

func TestVersionStatusLessThanOrEqual(t *testing.T) {
	ranges := []model.VersionRange{
		{Version: "0", Status: "affected", VersionType: "semver", LessThanOrEqual: "2.0.0"},
	}

	status, covered := VersionStatus("2.0.0", ranges)
	assert.True(t, covered)
	assert.Equal(t, "affected", status)

	_, covered = VersionStatus("2.0.1", ranges)
	assert.False(t, covered)
}

func TestVersionStatusOpenLowerBound(t *testing.T) {
	// "0" and "n/a" as the range start both mean from the beginning.
	for _, start := range []string{"0", "n/a", ""} {
		ranges := []model.VersionRange{
			{Version: start, Status: "affected", VersionType: "semver", LessThan: "1.0.0"},
		}
		status, covered := VersionStatus("0.0.1", ranges)
		assert.True(t, covered, start)
		assert.Equal(t, "affected", status, start)
	}
}

func TestVersionStatusChanges(t *testing.T) {
	ranges := []model.VersionRange{
		{
			Version:     "1.0.0",
			Status:      "affected",
			VersionType: "semver",
			LessThan:    "3.0.0",
			Changes: []model.VersionChange{
				{At: "2.0.0", Status: "unaffected"},
				{At: "1.5.0", Status: "unknown"},
			},
		},
	}

	// Before any change boundary the range status applies.
	status, _ := VersionStatus("1.2.0", ranges)
	assert.Equal(t, "affected", status)

	// The last change at or below the version wins, in at order.
	status, _ = VersionStatus("1.5.0", ranges)
	assert.Equal(t, "unknown", status)
	status, _ = VersionStatus("1.9.0", ranges)
	assert.Equal(t, "unknown", status)
	status, _ = VersionStatus("2.5.0", ranges)
	assert.Equal(t, "unaffected", status)
}

func TestVersionStatusNpmType(t *testing.T) {
	ranges := []model.VersionRange{
		{Version: "1.0.0", Status: "affected", VersionType: "npm", LessThan: "1.4.2"},
	}

	status, covered := VersionStatus("1.4.1", ranges)
	assert.True(t, covered)
	assert.Equal(t, "affected", status)

	_, covered = VersionStatus("1.4.2", ranges)
	assert.False(t, covered)
}

func TestVersionStatusPythonType(t *testing.T) {
	ranges := []model.VersionRange{
		{Version: "2.0", Status: "affected", VersionType: "python", LessThan: "2.6.1"},
	}

	// pep440 understands release candidates.
	status, covered := VersionStatus("2.6rc1", ranges)
	assert.True(t, covered)
	assert.Equal(t, "affected", status)

	_, covered = VersionStatus("2.6.1", ranges)
	assert.False(t, covered)
}

func TestVersionStatusUnparseableBounds(t *testing.T) {
	// Bounds the comparator cannot parse never match, to avoid false
	// positives.
	ranges := []model.VersionRange{
		{Version: "1.0.0", Status: "affected", VersionType: "npm", LessThan: "one.five"},
	}

	_, covered := VersionStatus("1.2.0", ranges)
	assert.False(t, covered)
}

func TestVersionStatusEmptyStatusIsUnknown(t *testing.T) {
	ranges := []model.VersionRange{
		{Version: "1.0.0", VersionType: "semver", LessThan: "2.0.0"},
	}

	status, covered := VersionStatus("1.5.0", ranges)
	assert.True(t, covered)
	assert.Equal(t, "unknown", status)
}

func TestIsVersionAffected(t *testing.T) {
	p := &model.Product{
		Vendor:        "Acme",
		Product:       "Widget",
		DefaultStatus: "affected",
		Versions: []model.VersionRange{
			{Version: "1.0.0", Status: "unaffected"},
		},
	}

	// Covered by a range: the range decides.
	assert.False(t, IsVersionAffected("1.0.0", p))
	// Uncovered: defaultStatus decides.
	assert.True(t, IsVersionAffected("9.9.9", p))

	p.DefaultStatus = "unaffected"
	assert.False(t, IsVersionAffected("9.9.9", p))
}
