// Package normalize turns raw advisory documents into canonical records.
// Normalization is best-effort and independent of validation: an invalid
// document still normalizes, so downstream consumers always see one shape.
package normalize

import (
	"encoding/json"

	"github.com/ortelius/cve-catalog/cvss"
	"github.com/ortelius/cve-catalog/model"
	"github.com/ortelius/cve-catalog/util"
)

// Defaults applied where a document is silent. These are part of the
// record contract: consumers may rely on the fields being present.
const (
	DefaultLang        = "en"
	DefaultDataVersion = "5.1.1"
	DefaultDataType    = "CVE_RECORD"
	DefaultDescription = "No description provided"
	DefaultVendor      = "unspecified"
	DefaultProduct     = "unspecified"
	DefaultVersion     = "n/a"
	DefaultStatus      = "unknown"
	DefaultVersionType = "custom"
	DefaultScenario    = "GENERAL"
	DefaultFormat      = "CVSS"
)

// Record maps a raw document onto the canonical model. Unknown fields are
// dropped by the decode; missing fields get the documented defaults; CVSS
// metrics are enriched from their vector strings. The input map is never
// modified.
func Record(doc map[string]any) *model.Cve {
	record := &model.Cve{}
	if raw, err := json.Marshal(doc); err == nil {
		// A shape mismatch on some branch leaves that branch zero-valued;
		// defaults below still produce a usable record.
		_ = json.Unmarshal(raw, record)
	}

	record.ObjType = "Cve"
	record.CveID = record.CveMetadata.CveID
	if record.DataType == "" {
		record.DataType = DefaultDataType
	}
	if record.DataVersion == "" {
		record.DataVersion = DefaultDataVersion
	}

	normalizeContainer(&record.Containers.Cna, true)
	for i := range record.Containers.Adp {
		normalizeContainer(&record.Containers.Adp[i], false)
	}

	return record
}

func normalizeContainer(c *model.Container, cna bool) {
	for i := range c.Descriptions {
		if c.Descriptions[i].Lang == "" {
			c.Descriptions[i].Lang = DefaultLang
		}
	}
	// Only the authoritative container is padded with a sentinel
	// description; ADP containers may legitimately carry none.
	if cna && len(c.Descriptions) == 0 {
		c.Descriptions = []model.Description{{Lang: DefaultLang, Value: DefaultDescription}}
	}

	for i := range c.Affected {
		normalizeAffected(&c.Affected[i])
	}
	for i := range c.Metrics {
		normalizeMetric(&c.Metrics[i])
	}
	for i := range c.ProblemTypes {
		for j := range c.ProblemTypes[i].Descriptions {
			if c.ProblemTypes[i].Descriptions[j].Lang == "" {
				c.ProblemTypes[i].Descriptions[j].Lang = DefaultLang
			}
		}
	}
}

func normalizeAffected(a *model.AffectedProduct) {
	if a.Vendor == "" {
		a.Vendor = DefaultVendor
	}
	if a.Product == "" {
		a.Product = DefaultProduct
	}
	for i := range a.Versions {
		v := &a.Versions[i]
		if v.Version == "" {
			v.Version = DefaultVersion
		}
		if v.Status == "" {
			v.Status = DefaultStatus
		}
		if v.VersionType == "" {
			v.VersionType = DefaultVersionType
		}
	}
}

func normalizeMetric(m *model.Metric) {
	if m.Format == "" {
		m.Format = DefaultFormat
	}
	if len(m.Scenarios) == 0 {
		m.Scenarios = []model.Scenario{{Lang: DefaultLang, Value: DefaultScenario}}
	}
	if m.CvssV20 != nil {
		enrichV20(m.CvssV20)
	}
	if m.CvssV30 != nil {
		enrichV30(m.CvssV30)
	}
	if m.CvssV31 != nil {
		enrichV31(m.CvssV31)
	}
	if m.CvssV40 != nil {
		enrichV40(m.CvssV40)
	}
}

func enrichV20(c *model.CvssV20) {
	c.Version = "2.0"
	if c.VectorString == "" {
		return
	}
	dec, _ := cvss.Decode("2.0", c.VectorString).(*model.CvssV20)
	if dec == nil {
		return
	}
	fill(&c.AccessVector, dec.AccessVector)
	fill(&c.AccessComplexity, dec.AccessComplexity)
	fill(&c.Authentication, dec.Authentication)
	fill(&c.ConfidentialityImpact, dec.ConfidentialityImpact)
	fill(&c.IntegrityImpact, dec.IntegrityImpact)
	fill(&c.AvailabilityImpact, dec.AvailabilityImpact)
	fill(&c.Exploitability, dec.Exploitability)
	fill(&c.RemediationLevel, dec.RemediationLevel)
	fill(&c.ReportConfidence, dec.ReportConfidence)
}

func enrichV30(c *model.CvssV30) {
	c.Version = "3.0"
	if c.VectorString == "" {
		return
	}
	dec, _ := cvss.Decode("3.0", c.VectorString).(*model.CvssV30)
	if dec == nil {
		return
	}
	fill(&c.AttackVector, dec.AttackVector)
	fill(&c.AttackComplexity, dec.AttackComplexity)
	fill(&c.PrivilegesRequired, dec.PrivilegesRequired)
	fill(&c.UserInteraction, dec.UserInteraction)
	fill(&c.Scope, dec.Scope)
	fill(&c.ConfidentialityImpact, dec.ConfidentialityImpact)
	fill(&c.IntegrityImpact, dec.IntegrityImpact)
	fill(&c.AvailabilityImpact, dec.AvailabilityImpact)
	fill(&c.ExploitCodeMaturity, dec.ExploitCodeMaturity)
	fill(&c.RemediationLevel, dec.RemediationLevel)
	fill(&c.ReportConfidence, dec.ReportConfidence)
	if c.BaseScore == 0 {
		c.BaseScore = util.CalculateCVSSScore(c.VectorString)
	}
	if c.BaseSeverity == "" {
		c.BaseSeverity = util.GetSeverityRating(c.BaseScore)
	}
}

func enrichV31(c *model.CvssV31) {
	c.Version = "3.1"
	if c.VectorString == "" {
		return
	}
	dec, _ := cvss.Decode("3.1", c.VectorString).(*model.CvssV31)
	if dec == nil {
		return
	}
	fill(&c.AttackVector, dec.AttackVector)
	fill(&c.AttackComplexity, dec.AttackComplexity)
	fill(&c.PrivilegesRequired, dec.PrivilegesRequired)
	fill(&c.UserInteraction, dec.UserInteraction)
	fill(&c.Scope, dec.Scope)
	fill(&c.ConfidentialityImpact, dec.ConfidentialityImpact)
	fill(&c.IntegrityImpact, dec.IntegrityImpact)
	fill(&c.AvailabilityImpact, dec.AvailabilityImpact)
	fill(&c.ExploitCodeMaturity, dec.ExploitCodeMaturity)
	fill(&c.RemediationLevel, dec.RemediationLevel)
	fill(&c.ReportConfidence, dec.ReportConfidence)
	if c.BaseScore == 0 {
		c.BaseScore = util.CalculateCVSSScore(c.VectorString)
	}
	if c.BaseSeverity == "" {
		c.BaseSeverity = util.GetSeverityRating(c.BaseScore)
	}
}

func enrichV40(c *model.CvssV40) {
	c.Version = "4.0"
	if c.VectorString == "" {
		return
	}
	dec, _ := cvss.Decode("4.0", c.VectorString).(*model.CvssV40)
	if dec == nil {
		return
	}
	fill(&c.AttackVector, dec.AttackVector)
	fill(&c.AttackComplexity, dec.AttackComplexity)
	fill(&c.AttackRequirements, dec.AttackRequirements)
	fill(&c.PrivilegesRequired, dec.PrivilegesRequired)
	fill(&c.UserInteraction, dec.UserInteraction)
	fill(&c.VulnConfidentialityImpact, dec.VulnConfidentialityImpact)
	fill(&c.VulnIntegrityImpact, dec.VulnIntegrityImpact)
	fill(&c.VulnAvailabilityImpact, dec.VulnAvailabilityImpact)
	fill(&c.SubConfidentialityImpact, dec.SubConfidentialityImpact)
	fill(&c.SubIntegrityImpact, dec.SubIntegrityImpact)
	fill(&c.SubAvailabilityImpact, dec.SubAvailabilityImpact)
	if c.BaseScore == 0 {
		c.BaseScore = util.CalculateCVSSScore(c.VectorString)
	}
	if c.BaseSeverity == "" {
		c.BaseSeverity = util.GetSeverityRating(c.BaseScore)
	}
}

func fill(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}
