// Package model defines the advisory record and product catalog documents stored in the database.
package model

// Cve represents a CVE JSON 5.x advisory record as persisted in the cves collection.
// CveID duplicates cveMetadata.cveId at the top level so the unique persistent index
// and upsert lookups stay flat.
type Cve struct {
	Key         string      `json:"_key,omitempty"`
	ObjType     string      `json:"objtype,omitempty"`
	CveID       string      `json:"cve_id,omitempty"`
	DataType    string      `json:"dataType"`
	DataVersion string      `json:"dataVersion"`
	CveMetadata CveMetadata `json:"cveMetadata"`
	Containers  Containers  `json:"containers"`
}

// CveMetadata holds the assignment and lifecycle metadata of an advisory.
type CveMetadata struct {
	CveID             string `json:"cveId"`
	AssignerOrgID     string `json:"assignerOrgId,omitempty"`
	AssignerShortName string `json:"assignerShortName,omitempty"`
	RequesterUserID   string `json:"requesterUserId,omitempty"`
	DateReserved      string `json:"dateReserved,omitempty"`
	DatePublished     string `json:"datePublished,omitempty"`
	DateUpdated       string `json:"dateUpdated,omitempty"`
	State             string `json:"state,omitempty"`
	Serial            int    `json:"serial,omitempty"`
}

// Containers wraps the authoritative CNA container and any supplementary ADP containers.
type Containers struct {
	Cna Container   `json:"cna"`
	Adp []Container `json:"adp,omitempty"`
}

// Container is the shared shape of CNA and ADP containers. Requiredness differs
// between the two (the validator enforces it); the struct does not.
type Container struct {
	ProviderMetadata ProviderMetadata  `json:"providerMetadata,omitempty"`
	DateAssigned     string            `json:"dateAssigned,omitempty"`
	DatePublic       string            `json:"datePublic,omitempty"`
	Title            string            `json:"title,omitempty"`
	Descriptions     []Description     `json:"descriptions,omitempty"`
	Affected         []AffectedProduct `json:"affected,omitempty"`
	ProblemTypes     []ProblemType     `json:"problemTypes,omitempty"`
	References       []Reference       `json:"references,omitempty"`
	Impacts          []Impact          `json:"impacts,omitempty"`
	Metrics          []Metric          `json:"metrics,omitempty"`
	Configurations   []Description     `json:"configurations,omitempty"`
	Workarounds      []Description     `json:"workarounds,omitempty"`
	Solutions        []Description     `json:"solutions,omitempty"`
	Exploits         []Description     `json:"exploits,omitempty"`
	Timeline         []TimelineEntry   `json:"timeline,omitempty"`
	Credits          []Credit          `json:"credits,omitempty"`
	Source           map[string]any    `json:"source,omitempty"`
	Tags             []string          `json:"tags,omitempty"`
}

// ProviderMetadata identifies the organization that supplied a container.
type ProviderMetadata struct {
	OrgID       string `json:"orgId,omitempty"`
	ShortName   string `json:"shortName,omitempty"`
	DateUpdated string `json:"dateUpdated,omitempty"`
}

// Description is a localized free-text block with optional embedded media.
type Description struct {
	Lang            string            `json:"lang,omitempty"`
	Value           string            `json:"value"`
	SupportingMedia []SupportingMedia `json:"supportingMedia,omitempty"`
}

// SupportingMedia carries inline media attached to a description.
type SupportingMedia struct {
	Type   string `json:"type"`
	Base64 bool   `json:"base64,omitempty"`
	Value  string `json:"value"`
}

// Reference points at external material about the advisory.
type Reference struct {
	URL  string   `json:"url,omitempty"`
	Name string   `json:"name,omitempty"`
	Tags []string `json:"tags,omitempty"`
}

// ProblemType groups localized weakness descriptions.
type ProblemType struct {
	Descriptions []ProblemTypeDescription `json:"descriptions,omitempty"`
}

// ProblemTypeDescription describes one weakness, optionally tied to a CWE.
type ProblemTypeDescription struct {
	Lang        string      `json:"lang,omitempty"`
	Description string      `json:"description"`
	CweID       string      `json:"cweId,omitempty"`
	Type        string      `json:"type,omitempty"`
	References  []Reference `json:"references,omitempty"`
}

// Impact links an advisory to a CAPEC attack pattern.
type Impact struct {
	CapecID      string        `json:"capecId,omitempty"`
	Descriptions []Description `json:"descriptions,omitempty"`
}

// TimelineEntry records a dated event in the advisory's history.
type TimelineEntry struct {
	Time  string `json:"time,omitempty"`
	Lang  string `json:"lang,omitempty"`
	Value string `json:"value"`
}

// Credit acknowledges a contributor.
type Credit struct {
	Lang  string `json:"lang,omitempty"`
	Value string `json:"value"`
	User  string `json:"user,omitempty"`
	Type  string `json:"type,omitempty"`
}

// Scenario qualifies the context a metric applies to.
type Scenario struct {
	Lang  string `json:"lang,omitempty"`
	Value string `json:"value,omitempty"`
}

// Metric carries at most one CVSS record per version plus an open-ended
// "other" escape hatch. Scores() exposes the populated variants as the
// CvssMetric sum type.
type Metric struct {
	Format    string       `json:"format,omitempty"`
	Scenarios []Scenario   `json:"scenarios,omitempty"`
	CvssV20   *CvssV20     `json:"cvssV2_0,omitempty"`
	CvssV30   *CvssV30     `json:"cvssV3_0,omitempty"`
	CvssV31   *CvssV31     `json:"cvssV3_1,omitempty"`
	CvssV40   *CvssV40     `json:"cvssV4_0,omitempty"`
	Other     *OtherMetric `json:"other,omitempty"`
}

// OtherMetric holds non-CVSS scoring content. Content is intentionally
// schema-less; the validator only bounds its size.
type OtherMetric struct {
	Type    string         `json:"type,omitempty"`
	Content map[string]any `json:"content,omitempty"`
}

// Scores returns the CVSS variants present on this metric.
func (m Metric) Scores() []CvssMetric {
	var scores []CvssMetric
	if m.CvssV20 != nil {
		scores = append(scores, m.CvssV20)
	}
	if m.CvssV30 != nil {
		scores = append(scores, m.CvssV30)
	}
	if m.CvssV31 != nil {
		scores = append(scores, m.CvssV31)
	}
	if m.CvssV40 != nil {
		scores = append(scores, m.CvssV40)
	}
	return scores
}

// Title returns the CNA container title, or empty.
func (c *Cve) Title() string {
	return c.Containers.Cna.Title
}

// Description returns the first CNA description whose language tag starts
// with lang ("en" matches "en", "en-US", ...), or empty.
func (c *Cve) Description(lang string) string {
	for _, d := range c.Containers.Cna.Descriptions {
		if len(d.Lang) >= len(lang) && d.Lang[:len(lang)] == lang {
			return d.Value
		}
	}
	return ""
}

// AffectedProducts returns the CNA affected list.
func (c *Cve) AffectedProducts() []AffectedProduct {
	return c.Containers.Cna.Affected
}

// CvssScores flattens every CVSS variant found in the CNA metrics, in
// version order (2.0 through 4.0) within each metric.
func (c *Cve) CvssScores() []CvssMetric {
	var scores []CvssMetric
	for _, m := range c.Containers.Cna.Metrics {
		scores = append(scores, m.Scores()...)
	}
	return scores
}
