package util

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	npm "github.com/aquasecurity/go-npm-version/pkg"
	pep440 "github.com/aquasecurity/go-pep440-version"

	"github.com/ortelius/cve-catalog/model"
)

var (
	semverPattern = regexp.MustCompile(
		`^v?(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)
	versionPrefixPattern = regexp.MustCompile(`^[vV]?([0-9].*)$`)
)

// ParsedSemver holds all components of a semantic version.
type ParsedSemver struct {
	Major         *int
	Minor         *int
	Patch         *int
	Prerelease    string
	BuildMetadata string
}

// ParseSemver parses a semantic version string into its components.
// Returns nil if the string is not a semantic version.
func ParseSemver(version string) *ParsedSemver {
	if version == "" {
		return nil
	}
	matches := semverPattern.FindStringSubmatch(CleanVersion(version))
	if len(matches) == 0 {
		return nil
	}
	result := &ParsedSemver{}
	if major, err := strconv.Atoi(matches[1]); err == nil {
		result.Major = &major
	}
	if minor, err := strconv.Atoi(matches[2]); err == nil {
		result.Minor = &minor
	}
	if patch, err := strconv.Atoi(matches[3]); err == nil {
		result.Patch = &patch
	}
	result.Prerelease = matches[4]
	result.BuildMetadata = matches[5]
	return result
}

// CleanVersion strips a leading v/V prefix so "v1.2.3" parses like "1.2.3".
func CleanVersion(version string) string {
	if version == "" {
		return version
	}
	if matches := versionPrefixPattern.FindStringSubmatch(version); len(matches) > 1 {
		return matches[1]
	}
	return version
}

// IsVersionAffected evaluates a concrete version against the stored
// affectedness facts of a catalog product. Each range is checked with the
// comparator its versionType names; ranges whose bounds cannot be parsed
// under that comparator are not matched, to avoid false positives. When no
// range covers the version the product's defaultStatus decides.
func IsVersionAffected(version string, p *model.Product) bool {
	status, covered := VersionStatus(version, p.Versions)
	if !covered {
		return p.DefaultStatus == "affected"
	}
	return status == "affected"
}

// VersionStatus resolves the status a version list assigns to a concrete
// version. The second return is false when no range covers the version.
func VersionStatus(version string, ranges []model.VersionRange) (string, bool) {
	for _, r := range ranges {
		if status, ok := rangeStatus(version, r); ok {
			return status, true
		}
	}
	return "", false
}

func rangeStatus(version string, r model.VersionRange) (string, bool) {
	// Exact entries match verbatim regardless of versionType.
	if r.LessThan == "" && r.LessThanOrEqual == "" {
		if r.Version == version {
			return statusOrUnknown(r.Status), true
		}
		return "", false
	}

	cmp := comparatorFor(r.VersionType)

	// "0" and "n/a" as the range start mean from the beginning.
	if r.Version != "" && r.Version != "0" && r.Version != "n/a" {
		c, ok := cmp(version, r.Version)
		if !ok || c < 0 {
			return "", false
		}
	}
	if r.LessThan != "" {
		c, ok := cmp(version, r.LessThan)
		if !ok || c >= 0 {
			return "", false
		}
	}
	if r.LessThanOrEqual != "" {
		c, ok := cmp(version, r.LessThanOrEqual)
		if !ok || c > 0 {
			return "", false
		}
	}

	status := statusOrUnknown(r.Status)
	if len(r.Changes) == 0 {
		return status, true
	}

	// Status flips apply in order of their at boundary; the last change at
	// or below the version wins.
	changes := make([]model.VersionChange, len(r.Changes))
	copy(changes, r.Changes)
	sort.SliceStable(changes, func(i, j int) bool {
		c, ok := cmp(changes[i].At, changes[j].At)
		return ok && c < 0
	})
	for _, change := range changes {
		c, ok := cmp(version, change.At)
		if ok && c >= 0 && change.Status != "" {
			status = change.Status
		}
	}
	return status, true
}

func statusOrUnknown(status string) string {
	if status == "" {
		return "unknown"
	}
	return status
}

// comparator returns (sign, parseable-pair).
type comparator func(a, b string) (int, bool)

func comparatorFor(versionType string) comparator {
	switch strings.ToLower(versionType) {
	case "npm":
		return compareNPM
	case "python", "pep440", "pypi":
		return comparePython
	default:
		return compareSemverOrString
	}
}

// compareSemverOrString tries semver first and falls back to lexical
// comparison, mirroring how "custom" and "git" version types behave in
// practice.
func compareSemverOrString(a, b string) (int, bool) {
	va, errA := semver.NewVersion(CleanVersion(a))
	vb, errB := semver.NewVersion(CleanVersion(b))
	if errA == nil && errB == nil {
		return va.Compare(vb), true
	}
	return strings.Compare(a, b), true
}

func compareNPM(a, b string) (int, bool) {
	va, errA := npm.NewVersion(CleanVersion(a))
	vb, errB := npm.NewVersion(CleanVersion(b))
	if errA != nil || errB != nil {
		return 0, false
	}
	return va.Compare(vb), true
}

func comparePython(a, b string) (int, bool) {
	va, errA := pep440.Parse(a)
	vb, errB := pep440.Parse(b)
	if errA != nil || errB != nil {
		return 0, false
	}
	return va.Compare(vb), true
}
