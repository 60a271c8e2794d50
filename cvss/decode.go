// Package cvss decodes CVSS vector strings into per-version score records.
// Decoding is tolerant: unknown metrics, unknown values and unparseable
// segments are skipped rather than rejected, because upstream advisories
// routinely carry slightly malformed vectors that are still mostly usable.
package cvss

import (
	"strings"

	"github.com/ortelius/cve-catalog/model"
)

// Per-version abbreviation tables. Keys are metric abbreviations as they
// appear in the vector; values map the one-letter (or short) code to the
// long-form enumeration used in advisory records.

var v3Table = map[string]map[string]string{
	"AV": {"N": "NETWORK", "A": "ADJACENT_NETWORK", "L": "LOCAL", "P": "PHYSICAL"},
	"AC": {"L": "LOW", "H": "HIGH"},
	"PR": {"N": "NONE", "L": "LOW", "H": "HIGH"},
	"UI": {"N": "NONE", "R": "REQUIRED"},
	"S":  {"U": "UNCHANGED", "C": "CHANGED"},
	"C":  {"N": "NONE", "L": "LOW", "H": "HIGH"},
	"I":  {"N": "NONE", "L": "LOW", "H": "HIGH"},
	"A":  {"N": "NONE", "L": "LOW", "H": "HIGH"},
	"E":  {"X": "NOT_DEFINED", "U": "UNPROVEN", "P": "PROOF_OF_CONCEPT", "F": "FUNCTIONAL", "H": "HIGH"},
	"RL": {"X": "NOT_DEFINED", "O": "OFFICIAL_FIX", "T": "TEMPORARY_FIX", "W": "WORKAROUND", "U": "UNAVAILABLE"},
	"RC": {"X": "NOT_DEFINED", "U": "UNKNOWN", "R": "REASONABLE", "C": "CONFIRMED"},
}

var v2Table = map[string]map[string]string{
	"AV": {"N": "NETWORK", "A": "ADJACENT_NETWORK", "L": "LOCAL"},
	"AC": {"H": "HIGH", "M": "MEDIUM", "L": "LOW"},
	"Au": {"M": "MULTIPLE", "S": "SINGLE", "N": "NONE"},
	"C":  {"N": "NONE", "P": "PARTIAL", "C": "COMPLETE"},
	"I":  {"N": "NONE", "P": "PARTIAL", "C": "COMPLETE"},
	"A":  {"N": "NONE", "P": "PARTIAL", "C": "COMPLETE"},
	"E":  {"U": "UNPROVEN", "POC": "PROOF_OF_CONCEPT", "F": "FUNCTIONAL", "H": "HIGH", "ND": "NOT_DEFINED"},
	"RL": {"OF": "OFFICIAL_FIX", "TF": "TEMPORARY_FIX", "W": "WORKAROUND", "U": "UNAVAILABLE", "ND": "NOT_DEFINED"},
	"RC": {"UC": "UNCONFIRMED", "UR": "UNCORROBORATED", "C": "CONFIRMED", "ND": "NOT_DEFINED"},
}

var v4Table = map[string]map[string]string{
	"AV": {"N": "NETWORK", "A": "ADJACENT", "L": "LOCAL", "P": "PHYSICAL"},
	"AC": {"L": "LOW", "H": "HIGH"},
	"AT": {"N": "NONE", "P": "PRESENT"},
	"PR": {"N": "NONE", "L": "LOW", "H": "HIGH"},
	"UI": {"N": "NONE", "P": "PASSIVE", "A": "ACTIVE"},
	"VC": {"H": "HIGH", "L": "LOW", "N": "NONE"},
	"VI": {"H": "HIGH", "L": "LOW", "N": "NONE"},
	"VA": {"H": "HIGH", "L": "LOW", "N": "NONE"},
	"SC": {"H": "HIGH", "L": "LOW", "N": "NONE"},
	"SI": {"H": "HIGH", "L": "LOW", "N": "NONE"},
	"SA": {"H": "HIGH", "L": "LOW", "N": "NONE"},
}

// DetectVersion sniffs the CVSS version of a vector string. Prefixed
// vectors name their version; a bare metric list starting with AV:, AC: or
// Au: is the legacy 2.0 form. Empty result means undetectable.
func DetectVersion(vector string) string {
	switch {
	case strings.HasPrefix(vector, "CVSS:4.0/"):
		return "4.0"
	case strings.HasPrefix(vector, "CVSS:3.1/"):
		return "3.1"
	case strings.HasPrefix(vector, "CVSS:3.0/"):
		return "3.0"
	case strings.HasPrefix(vector, "CVSS2#"),
		strings.HasPrefix(vector, "AV:"),
		strings.HasPrefix(vector, "AC:"),
		strings.HasPrefix(vector, "Au:"):
		return "2.0"
	default:
		return ""
	}
}

// Decode parses vector under the grammar of version and returns the
// matching score record, or nil when the version is unsupported. The
// record carries only what the vector supplied: temporal fields stay
// empty unless present, and the base score is left for the caller (it is
// not derivable from the vector alone in all versions).
func Decode(version, vector string) model.CvssMetric {
	switch version {
	case "2.0":
		return decodeV20(vector)
	case "3.0":
		m := decodeV3(vector, "CVSS:3.0/")
		return &model.CvssV30{
			Version: "3.0", VectorString: vector,
			AttackVector: m["AV"], AttackComplexity: m["AC"],
			PrivilegesRequired: m["PR"], UserInteraction: m["UI"], Scope: m["S"],
			ConfidentialityImpact: m["C"], IntegrityImpact: m["I"], AvailabilityImpact: m["A"],
			ExploitCodeMaturity: m["E"], RemediationLevel: m["RL"], ReportConfidence: m["RC"],
		}
	case "3.1":
		m := decodeV3(vector, "CVSS:3.1/")
		return &model.CvssV31{
			Version: "3.1", VectorString: vector,
			AttackVector: m["AV"], AttackComplexity: m["AC"],
			PrivilegesRequired: m["PR"], UserInteraction: m["UI"], Scope: m["S"],
			ConfidentialityImpact: m["C"], IntegrityImpact: m["I"], AvailabilityImpact: m["A"],
			ExploitCodeMaturity: m["E"], RemediationLevel: m["RL"], ReportConfidence: m["RC"],
		}
	case "4.0":
		return decodeV40(vector)
	default:
		return nil
	}
}

// segments splits a vector body into key/value pairs, skipping anything
// without exactly one colon.
func segments(body string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(body, "/") {
		key, value, ok := strings.Cut(part, ":")
		if !ok || key == "" || value == "" || strings.Contains(value, ":") {
			continue
		}
		out[key] = value
	}
	return out
}

func resolve(table map[string]map[string]string, raw map[string]string) map[string]string {
	out := make(map[string]string, len(raw))
	for key, code := range raw {
		values, ok := table[key]
		if !ok {
			continue
		}
		long, ok := values[code]
		if !ok {
			continue
		}
		out[key] = long
	}
	return out
}

func decodeV3(vector, prefix string) map[string]string {
	body := strings.TrimPrefix(vector, prefix)
	return resolve(v3Table, segments(body))
}

func decodeV20(vector string) *model.CvssV20 {
	body := strings.TrimPrefix(vector, "CVSS2#")
	body = strings.TrimPrefix(body, "(")
	body = strings.TrimSuffix(body, ")")
	m := resolve(v2Table, segments(body))
	return &model.CvssV20{
		Version: "2.0", VectorString: vector,
		AccessVector: m["AV"], AccessComplexity: m["AC"], Authentication: m["Au"],
		ConfidentialityImpact: m["C"], IntegrityImpact: m["I"], AvailabilityImpact: m["A"],
		Exploitability: m["E"], RemediationLevel: m["RL"], ReportConfidence: m["RC"],
	}
}

func decodeV40(vector string) *model.CvssV40 {
	body := strings.TrimPrefix(vector, "CVSS:4.0/")
	m := resolve(v4Table, segments(body))
	return &model.CvssV40{
		Version: "4.0", VectorString: vector,
		AttackVector: m["AV"], AttackComplexity: m["AC"], AttackRequirements: m["AT"],
		PrivilegesRequired: m["PR"], UserInteraction: m["UI"],
		VulnConfidentialityImpact: m["VC"], VulnIntegrityImpact: m["VI"], VulnAvailabilityImpact: m["VA"],
		SubConfidentialityImpact: m["SC"], SubIntegrityImpact: m["SI"], SubAvailabilityImpact: m["SA"],
	}
}
