package model

// CvssMetric is the common face of the per-version CVSS score records.
// Exactly one concrete type exists per supported vector grammar.
type CvssMetric interface {
	CvssVersion() string
	Vector() string
	Score() float64
	Severity() string
}

// CvssV20 is a CVSS 2.0 score record. 2.0 has no defined severity scale;
// Severity() derives one from the base score for display parity.
type CvssV20 struct {
	Version               string   `json:"version"`
	VectorString          string   `json:"vectorString"`
	BaseScore             float64  `json:"baseScore"`
	AccessVector          string   `json:"accessVector,omitempty"`
	AccessComplexity      string   `json:"accessComplexity,omitempty"`
	Authentication        string   `json:"authentication,omitempty"`
	ConfidentialityImpact string   `json:"confidentialityImpact,omitempty"`
	IntegrityImpact       string   `json:"integrityImpact,omitempty"`
	AvailabilityImpact    string   `json:"availabilityImpact,omitempty"`
	Exploitability        string   `json:"exploitability,omitempty"`
	RemediationLevel      string   `json:"remediationLevel,omitempty"`
	ReportConfidence      string   `json:"reportConfidence,omitempty"`
	TemporalScore         *float64 `json:"temporalScore,omitempty"`
}

func (c *CvssV20) CvssVersion() string { return "2.0" }
func (c *CvssV20) Vector() string      { return c.VectorString }
func (c *CvssV20) Score() float64      { return c.BaseScore }
func (c *CvssV20) Severity() string    { return RatingFromScore(c.BaseScore) }

// CvssV30 is a CVSS 3.0 score record.
type CvssV30 struct {
	Version               string   `json:"version"`
	VectorString          string   `json:"vectorString"`
	BaseScore             float64  `json:"baseScore"`
	BaseSeverity          string   `json:"baseSeverity,omitempty"`
	AttackVector          string   `json:"attackVector,omitempty"`
	AttackComplexity      string   `json:"attackComplexity,omitempty"`
	PrivilegesRequired    string   `json:"privilegesRequired,omitempty"`
	UserInteraction       string   `json:"userInteraction,omitempty"`
	Scope                 string   `json:"scope,omitempty"`
	ConfidentialityImpact string   `json:"confidentialityImpact,omitempty"`
	IntegrityImpact       string   `json:"integrityImpact,omitempty"`
	AvailabilityImpact    string   `json:"availabilityImpact,omitempty"`
	ExploitCodeMaturity   string   `json:"exploitCodeMaturity,omitempty"`
	RemediationLevel      string   `json:"remediationLevel,omitempty"`
	ReportConfidence      string   `json:"reportConfidence,omitempty"`
	TemporalScore         *float64 `json:"temporalScore,omitempty"`
	TemporalSeverity      string   `json:"temporalSeverity,omitempty"`
}

func (c *CvssV30) CvssVersion() string { return "3.0" }
func (c *CvssV30) Vector() string      { return c.VectorString }
func (c *CvssV30) Score() float64      { return c.BaseScore }
func (c *CvssV30) Severity() string    { return c.BaseSeverity }

// CvssV31 is a CVSS 3.1 score record. Structurally identical to 3.0 but a
// distinct type so the decode tables and vector grammar stay per-version.
type CvssV31 struct {
	Version               string   `json:"version"`
	VectorString          string   `json:"vectorString"`
	BaseScore             float64  `json:"baseScore"`
	BaseSeverity          string   `json:"baseSeverity,omitempty"`
	AttackVector          string   `json:"attackVector,omitempty"`
	AttackComplexity      string   `json:"attackComplexity,omitempty"`
	PrivilegesRequired    string   `json:"privilegesRequired,omitempty"`
	UserInteraction       string   `json:"userInteraction,omitempty"`
	Scope                 string   `json:"scope,omitempty"`
	ConfidentialityImpact string   `json:"confidentialityImpact,omitempty"`
	IntegrityImpact       string   `json:"integrityImpact,omitempty"`
	AvailabilityImpact    string   `json:"availabilityImpact,omitempty"`
	ExploitCodeMaturity   string   `json:"exploitCodeMaturity,omitempty"`
	RemediationLevel      string   `json:"remediationLevel,omitempty"`
	ReportConfidence      string   `json:"reportConfidence,omitempty"`
	TemporalScore         *float64 `json:"temporalScore,omitempty"`
	TemporalSeverity      string   `json:"temporalSeverity,omitempty"`
}

func (c *CvssV31) CvssVersion() string { return "3.1" }
func (c *CvssV31) Vector() string      { return c.VectorString }
func (c *CvssV31) Score() float64      { return c.BaseScore }
func (c *CvssV31) Severity() string    { return c.BaseSeverity }

// CvssV40 is a CVSS 4.0 score record.
type CvssV40 struct {
	Version                   string  `json:"version"`
	VectorString              string  `json:"vectorString"`
	BaseScore                 float64 `json:"baseScore"`
	BaseSeverity              string  `json:"baseSeverity,omitempty"`
	AttackVector              string  `json:"attackVector,omitempty"`
	AttackComplexity          string  `json:"attackComplexity,omitempty"`
	AttackRequirements        string  `json:"attackRequirements,omitempty"`
	PrivilegesRequired        string  `json:"privilegesRequired,omitempty"`
	UserInteraction           string  `json:"userInteraction,omitempty"`
	VulnConfidentialityImpact string  `json:"vulnConfidentialityImpact,omitempty"`
	VulnIntegrityImpact       string  `json:"vulnIntegrityImpact,omitempty"`
	VulnAvailabilityImpact    string  `json:"vulnAvailabilityImpact,omitempty"`
	SubConfidentialityImpact  string  `json:"subConfidentialityImpact,omitempty"`
	SubIntegrityImpact        string  `json:"subIntegrityImpact,omitempty"`
	SubAvailabilityImpact     string  `json:"subAvailabilityImpact,omitempty"`
}

func (c *CvssV40) CvssVersion() string { return "4.0" }
func (c *CvssV40) Vector() string      { return c.VectorString }
func (c *CvssV40) Score() float64      { return c.BaseScore }
func (c *CvssV40) Severity() string    { return c.BaseSeverity }

// RatingFromScore maps a 0-10 base score onto the qualitative scale used by
// CVSS 3.x. Out-of-range scores rate as NONE.
func RatingFromScore(score float64) string {
	switch {
	case score == 0:
		return "NONE"
	case score > 0 && score < 4.0:
		return "LOW"
	case score >= 4.0 && score < 7.0:
		return "MEDIUM"
	case score >= 7.0 && score < 9.0:
		return "HIGH"
	case score >= 9.0 && score <= 10.0:
		return "CRITICAL"
	default:
		return "NONE"
	}
}
