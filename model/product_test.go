package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductSeedsFromEntry(t *testing.T) {
	p := NewProduct(AffectedProduct{
		Vendor:        "Acme",
		Product:       "Widget",
		PackageName:   "acme-widget",
		Cpes:          []string{"cpe:2.3:a:acme:widget"},
		DefaultStatus: "unaffected",
		Versions: []VersionRange{
			{Version: "1.0.0", Status: "affected", VersionType: "semver"},
		},
	})

	assert.Equal(t, "Product", p.ObjType)
	assert.Equal(t, "Acme", p.Vendor)
	assert.Equal(t, "Widget", p.Product)
	assert.Equal(t, []string{"cpe:2.3:a:acme:widget"}, p.Cpes)
	require.Len(t, p.Versions, 1)
}

func TestMergeScalarsOnlyWhenPresent(t *testing.T) {
	p := NewProduct(AffectedProduct{
		Vendor:        "Acme",
		Product:       "Widget",
		PackageName:   "acme-widget",
		Repo:          "https://git.example.com/acme/widget",
		DefaultStatus: "unaffected",
	})

	p.Merge(AffectedProduct{
		Vendor:      "Acme",
		Product:     "Widget",
		PackageName: "widget-core",
	})

	// Supplied scalar overwrites, absent scalars keep their values.
	assert.Equal(t, "widget-core", p.PackageName)
	assert.Equal(t, "https://git.example.com/acme/widget", p.Repo)
	assert.Equal(t, "unaffected", p.DefaultStatus)
}

func TestMergeUnionsListFields(t *testing.T) {
	p := NewProduct(AffectedProduct{
		Vendor:    "Acme",
		Product:   "Widget",
		Cpes:      []string{"cpe:a", "cpe:b"},
		Platforms: []string{"linux"},
		ProgramRoutines: []ProgramRoutine{
			{Name: "parse_input"},
		},
	})

	p.Merge(AffectedProduct{
		Vendor:    "Acme",
		Product:   "Widget",
		Cpes:      []string{"cpe:b", "cpe:c"},
		Platforms: []string{"linux", "windows"},
		ProgramRoutines: []ProgramRoutine{
			{Name: "parse_input"},
			{Name: "render_output"},
		},
	})

	assert.Equal(t, []string{"cpe:a", "cpe:b", "cpe:c"}, p.Cpes)
	assert.Equal(t, []string{"linux", "windows"}, p.Platforms)
	assert.Equal(t, []ProgramRoutine{{Name: "parse_input"}, {Name: "render_output"}}, p.ProgramRoutines)
}

func TestMergeVersionRangesByVersionKey(t *testing.T) {
	existing := []VersionRange{
		{Version: "1.0.0", Status: "affected", VersionType: "semver", LessThan: "1.5.0"},
	}

	merged := MergeVersionRanges(existing, []VersionRange{
		// Known version: only supplied scalars update.
		{Version: "1.0.0", Status: "unaffected"},
		// New version: appended whole.
		{Version: "2.0.0", Status: "affected", VersionType: "semver"},
	})

	require.Len(t, merged, 2)
	assert.Equal(t, "unaffected", merged[0].Status)
	assert.Equal(t, "semver", merged[0].VersionType)
	assert.Equal(t, "1.5.0", merged[0].LessThan)
	assert.Equal(t, "2.0.0", merged[1].Version)
}

func TestMergeVersionChangesByAtKey(t *testing.T) {
	existing := []VersionRange{
		{
			Version: "1.0.0",
			Status:  "affected",
			Changes: []VersionChange{
				{At: "1.1.0", Status: "unaffected"},
			},
		},
	}

	merged := MergeVersionRanges(existing, []VersionRange{
		{
			Version: "1.0.0",
			Changes: []VersionChange{
				// Known at: status overwritten.
				{At: "1.1.0", Status: "affected"},
				// New at: appended.
				{At: "1.2.0", Status: "unaffected"},
			},
		},
	})

	require.Len(t, merged, 1)
	require.Len(t, merged[0].Changes, 2)
	assert.Equal(t, VersionChange{At: "1.1.0", Status: "affected"}, merged[0].Changes[0])
	assert.Equal(t, VersionChange{At: "1.2.0", Status: "unaffected"}, merged[0].Changes[1])
}

func TestMergeVersionRangesDedupesIncoming(t *testing.T) {
	// One advisory may repeat a version key; the duplicates fold into a
	// single entry with the later occurrence winning.
	merged := MergeVersionRanges(nil, []VersionRange{
		{Version: "1.0.0", Status: "affected", VersionType: "semver"},
		{Version: "1.0.0", Status: "unaffected"},
	})

	require.Len(t, merged, 1)
	assert.Equal(t, "unaffected", merged[0].Status)
	assert.Equal(t, "semver", merged[0].VersionType)
}

func TestMergeVersionRangesDedupesChangesWithinRange(t *testing.T) {
	merged := MergeVersionRanges(nil, []VersionRange{
		{
			Version: "1.0.0",
			Status:  "affected",
			Changes: []VersionChange{
				{At: "1.1.0", Status: "unaffected"},
				{At: "1.1.0", Status: "affected"},
				{At: "1.2.0", Status: "unaffected"},
			},
		},
	})

	require.Len(t, merged, 1)
	require.Len(t, merged[0].Changes, 2)
	assert.Equal(t, VersionChange{At: "1.1.0", Status: "affected"}, merged[0].Changes[0])
	assert.Equal(t, VersionChange{At: "1.2.0", Status: "unaffected"}, merged[0].Changes[1])
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	existing := []VersionRange{
		{Version: "1.0.0", Status: "affected"},
	}

	_ = MergeVersionRanges(existing, []VersionRange{
		{Version: "1.0.0", Status: "unaffected"},
	})

	assert.Equal(t, "affected", existing[0].Status)
}

func TestAddCveReference(t *testing.T) {
	p := NewProduct(AffectedProduct{Vendor: "Acme", Product: "Widget"})

	assert.True(t, p.AddCveReference("CVE-2024-0001"))
	assert.False(t, p.AddCveReference("CVE-2024-0001"))
	assert.True(t, p.AddCveReference("CVE-2024-0002"))
	assert.Equal(t, []string{"CVE-2024-0001", "CVE-2024-0002"}, p.Cves)
}
