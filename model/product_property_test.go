package model

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func genVersionChange() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("1.1.0", "1.2.0", "2.0.0", "2.5.0"),
		gen.OneConstOf("affected", "unaffected", "unknown"),
	).Map(func(values []interface{}) VersionChange {
		return VersionChange{
			At:     values[0].(string),
			Status: values[1].(string),
		}
	})
}

func genVersionRange() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("1.0.0", "2.0.0", "3.0.0", "n/a"),
		gen.OneConstOf("affected", "unaffected", ""),
		gen.OneConstOf("semver", "custom", ""),
		gen.SliceOfN(2, genVersionChange()),
	).Map(func(values []interface{}) VersionRange {
		return VersionRange{
			Version:     values[0].(string),
			Status:      values[1].(string),
			VersionType: values[2].(string),
			Changes:     values[3].([]VersionChange),
		}
	})
}

func genAffectedProduct() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("pkg-a", "pkg-b", ""),
		gen.SliceOfN(3, gen.OneConstOf("cpe:a", "cpe:b", "cpe:c", "cpe:d")),
		gen.SliceOfN(2, genVersionRange()),
	).Map(func(values []interface{}) AffectedProduct {
		return AffectedProduct{
			Vendor:      "Acme",
			Product:     "Widget",
			PackageName: values[0].(string),
			Cpes:        values[1].([]string),
			Versions:    values[2].([]VersionRange),
		}
	})
}

// Re-ingesting an advisory must not change the catalog: merging the same
// facts again is a no-op.
func TestMergeIdempotenceProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("merging the same entry twice equals merging once", prop.ForAll(
		func(in AffectedProduct) bool {
			once := NewProduct(in)
			once.Merge(in)

			twice := NewProduct(in)
			twice.Merge(in)
			twice.Merge(in)

			return reflect.DeepEqual(once, twice)
		},
		genAffectedProduct(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Merging entries from two advisories yields the union of their list facts,
// without duplicates.
func TestMergeUnionProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("cpes union has every element exactly once", prop.ForAll(
		func(a AffectedProduct, b AffectedProduct) bool {
			p := NewProduct(a)
			p.Merge(b)

			seen := make(map[string]int)
			for _, cpe := range p.Cpes {
				seen[cpe]++
			}
			for _, cpe := range append(append([]string{}, a.Cpes...), b.Cpes...) {
				if cpe != "" && seen[cpe] != 1 {
					return false
				}
			}
			for _, count := range seen {
				if count != 1 {
					return false
				}
			}
			return true
		},
		genAffectedProduct(),
		genAffectedProduct(),
	))

	properties.Property("version keys union without duplicates", prop.ForAll(
		func(a AffectedProduct, b AffectedProduct) bool {
			p := NewProduct(a)
			p.Merge(b)

			seen := make(map[string]int)
			for _, v := range p.Versions {
				seen[v.Version]++
			}
			for _, count := range seen {
				if count != 1 {
					return false
				}
			}
			return true
		},
		genAffectedProduct(),
		genAffectedProduct(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// For a (version, at) pair seen again, the later status wins.
func TestMergeOverwriteProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("later change status wins for the same at", prop.ForAll(
		func(first string, second string) bool {
			base := AffectedProduct{
				Vendor:  "Acme",
				Product: "Widget",
				Versions: []VersionRange{
					{Version: "1.0.0", Status: "affected", Changes: []VersionChange{
						{At: "1.1.0", Status: first},
					}},
				},
			}
			p := NewProduct(base)

			update := base
			update.Versions = []VersionRange{
				{Version: "1.0.0", Changes: []VersionChange{
					{At: "1.1.0", Status: second},
				}},
			}
			p.Merge(update)

			return len(p.Versions) == 1 &&
				len(p.Versions[0].Changes) == 1 &&
				p.Versions[0].Changes[0].Status == second
		},
		gen.OneConstOf("affected", "unaffected", "unknown"),
		gen.OneConstOf("affected", "unaffected", "unknown"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
