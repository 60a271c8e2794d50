// Package schema validates raw advisory documents against the CVE record
// rules: required fields, enumerations, numeric ranges and format patterns.
// All findings for a document are collected in one pass.
package schema

import "regexp"

// Rule names attached to violations. Handlers and tests switch on these.
const (
	RuleRequired = "required"
	RuleType     = "type"
	RuleEnum     = "enum"
	RuleFormat   = "format"
	RuleRange    = "range"
	RuleLength   = "maxLength"
)

// Registry holds the compiled format patterns and enumeration sets the
// validator checks against. Build it once with NewRegistry and share it:
// it is never mutated after construction, so any number of validators can
// hold the same instance.
type Registry struct {
	patterns map[string]*regexp.Regexp
	enums    map[string]map[string]struct{}
}

// Pattern names.
const (
	PatternCveID       = "cveId"
	PatternUUID        = "uuid"
	PatternTimestamp   = "timestamp"
	PatternLanguage    = "language"
	PatternURI         = "uri"
	PatternCweID       = "cweId"
	PatternCapecID     = "capecId"
	PatternDataVersion = "dataVersion"
	PatternVector20    = "cvssVector2_0"
	PatternVector30    = "cvssVector3_0"
	PatternVector31    = "cvssVector3_1"
	PatternVector40    = "cvssVector4_0"
)

// Enum names.
const (
	EnumDataType      = "dataType"
	EnumState         = "state"
	EnumVersionStatus = "versionStatus"
	EnumSeverity      = "severity"
	EnumReferenceTag  = "referenceTag"
	EnumCnaTag        = "cnaTag"
	EnumAdpTag        = "adpTag"
	EnumCreditType    = "creditType"
	EnumMetricFormat  = "metricFormat"
)

// The timestamp grammar spells out month lengths, including February 29
// restricted to leap years.
const timestampPattern = `^(((2000|2400|2800|(19|2[0-9](0[48]|[2468][048]|[13579][26])))-02-29)|` +
	`(((19|2[0-9])[0-9]{2})-02-(0[1-9]|1[0-9]|2[0-8]))|` +
	`(((19|2[0-9])[0-9]{2})-(0[13578]|10|12)-(0[1-9]|[12][0-9]|3[01]))|` +
	`(((19|2[0-9])[0-9]{2})-(0[469]|11)-(0[1-9]|[12][0-9]|30)))` +
	`T(2[0-3]|[01][0-9]):([0-5][0-9]):([0-5][0-9])(\.[0-9]+)?(Z|[+-][0-9]{2}:[0-9]{2})?$`

const vector31Pattern = `^CVSS:3[.]1/((AV:[NALP]|AC:[LH]|PR:[NLH]|UI:[NR]|S:[UC]|[CIA]:[NLH]|` +
	`E:[XUPFH]|RL:[XOTWU]|RC:[XURC]|[CIA]R:[XLMH]|MAV:[XNALP]|MAC:[XLH]|MPR:[XNLH]|MUI:[XNR]|` +
	`MS:[XUC]|M[CIA]:[XNLH])/)*?(AV:[NALP]|AC:[LH]|PR:[NLH]|UI:[NR]|S:[UC]|[CIA]:[NLH]|` +
	`E:[XUPFH]|RL:[XOTWU]|RC:[XURC]|[CIA]R:[XLMH]|MAV:[XNALP]|MAC:[XLH]|MPR:[XNLH]|MUI:[XNR]|` +
	`MS:[XUC]|M[CIA]:[XNLH])$`

const vector30Pattern = `^CVSS:3[.]0/((AV:[NALP]|AC:[LH]|PR:[NLH]|UI:[NR]|S:[UC]|[CIA]:[NLH]|` +
	`E:[XUPFH]|RL:[XOTWU]|RC:[XURC]|[CIA]R:[XLMH]|MAV:[XNALP]|MAC:[XLH]|MPR:[XNLH]|MUI:[XNR]|` +
	`MS:[XUC]|M[CIA]:[XNLH])/)*?(AV:[NALP]|AC:[LH]|PR:[NLH]|UI:[NR]|S:[UC]|[CIA]:[NLH]|` +
	`E:[XUPFH]|RL:[XOTWU]|RC:[XURC]|[CIA]R:[XLMH]|MAV:[XNALP]|MAC:[XLH]|MPR:[XNLH]|MUI:[XNR]|` +
	`MS:[XUC]|M[CIA]:[XNLH])$`

// 2.0 vectors are a bare metric list, optionally wrapped in the historical
// CVSS#2.0 prefix. Temporal values may be multi-letter (POC, OF, ND...).
const vector20Pattern = `^(CVSS2#|\(?)?((AV:[NAL]|AC:[HML]|Au:[MSN]|[CIA]:[NPC]|` +
	`E:(U|POC|F|H|ND)|RL:(OF|TF|W|U|ND)|RC:(UC|UR|C|ND))/)*` +
	`(AV:[NAL]|AC:[HML]|Au:[MSN]|[CIA]:[NPC]|E:(U|POC|F|H|ND)|RL:(OF|TF|W|U|ND)|RC:(UC|UR|C|ND))\)?$`

const vector40Pattern = `^CVSS:4[.]0(/(AV:[NALP]|AC:[LH]|AT:[NP]|PR:[NLH]|UI:[NPA]|` +
	`V[CIA]:[HLN]|S[CIA]:[HLN]|E:[XAPU]|[CIA]R:[XHML]|MAV:[XNALP]|MAC:[XLH]|MAT:[XNP]|` +
	`MPR:[XNLH]|MUI:[XNPA]|MV[CIA]:[XNLH]|MS[CIA]:[XNLHS]|S:[XNP]|AU:[XNY]|R:[XAUI]|` +
	`V:[XDC]|RE:[XLMH]|U:(X|Clear|Green|Amber|Red)))+$`

// NewRegistry compiles the full rule set. Compilation happens exactly once;
// the returned registry is safe for concurrent use.
func NewRegistry() *Registry {
	r := &Registry{
		patterns: map[string]*regexp.Regexp{
			PatternCveID:       regexp.MustCompile(`^CVE-[0-9]{4}-[0-9]{4,19}$`),
			PatternUUID:        regexp.MustCompile(`^[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-4[0-9A-Fa-f]{3}-[89ABab][0-9A-Fa-f]{3}-[0-9A-Fa-f]{12}$`),
			PatternTimestamp:   regexp.MustCompile(timestampPattern),
			PatternLanguage:    regexp.MustCompile(`^[A-Za-z]{2,4}([_-][A-Za-z]{4})?([_-]([A-Za-z]{2}|[0-9]{3}))?$`),
			PatternURI:         regexp.MustCompile(`(?i)^(https?|ftp)://[^\s/$.?#].[^\s]*$`),
			PatternCweID:       regexp.MustCompile(`^CWE-[1-9][0-9]*$`),
			PatternCapecID:     regexp.MustCompile(`^CAPEC-[1-9][0-9]{0,4}$`),
			PatternDataVersion: regexp.MustCompile(`^5\.(0|[1-9][0-9]*)(\.(0|[1-9][0-9]*))?$`),
			PatternVector20:    regexp.MustCompile(vector20Pattern),
			PatternVector30:    regexp.MustCompile(vector30Pattern),
			PatternVector31:    regexp.MustCompile(vector31Pattern),
			PatternVector40:    regexp.MustCompile(vector40Pattern),
		},
		enums: map[string]map[string]struct{}{
			EnumDataType:      enumSet("CVE_RECORD"),
			EnumState:         enumSet("PUBLISHED", "REJECTED"),
			EnumVersionStatus: enumSet("affected", "unaffected", "unknown"),
			EnumSeverity:      enumSet("NONE", "LOW", "MEDIUM", "HIGH", "CRITICAL"),
			EnumReferenceTag: enumSet(
				"broken-link", "customer-entitlement", "exploit",
				"government-resource", "issue-tracking", "mailing-list",
				"mitigation", "not-applicable", "patch",
				"permissions-required", "media-coverage", "product",
				"related", "release-notes", "signature",
				"technical-description", "third-party-advisory",
				"vendor-advisory", "vdb-entry",
			),
			EnumCnaTag: enumSet(
				"unsupported-when-assigned", "exclusively-hosted-service", "disputed",
			),
			EnumAdpTag: enumSet("disputed"),
			EnumCreditType: enumSet(
				"finder", "reporter", "analyst", "coordinator",
				"remediation developer", "remediation reviewer",
				"remediation verifier", "tool", "sponsor", "other",
			),
			EnumMetricFormat: enumSet("CVSS"),
		},
	}
	return r
}

func enumSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// MatchPattern reports whether value satisfies the named format pattern.
// Unknown pattern names never match.
func (r *Registry) MatchPattern(name, value string) bool {
	p, ok := r.patterns[name]
	if !ok {
		return false
	}
	return p.MatchString(value)
}

// InEnum reports whether value belongs to the named enumeration.
func (r *Registry) InEnum(name, value string) bool {
	set, ok := r.enums[name]
	if !ok {
		return false
	}
	_, ok = set[value]
	return ok
}

// VectorPattern returns the pattern name for a CVSS version, or empty when
// the version has no grammar registered.
func (r *Registry) VectorPattern(version string) string {
	switch version {
	case "2.0":
		return PatternVector20
	case "3.0":
		return PatternVector30
	case "3.1":
		return PatternVector31
	case "4.0":
		return PatternVector40
	default:
		return ""
	}
}
