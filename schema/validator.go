package schema

import (
	"encoding/json"
	"fmt"
)

// Violation is one finding: where, what, and which rule flagged it.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Rule    string `json:"rule"`
}

// Report is the outcome of validating a single document. Valid is true
// exactly when Errors is empty.
type Report struct {
	Valid  bool        `json:"valid"`
	Errors []Violation `json:"errors,omitempty"`
}

// Validator checks raw advisory documents against a shared Registry. It
// keeps no per-document state, so one instance serves concurrent callers.
type Validator struct {
	reg *Registry
}

// NewValidator returns a validator bound to reg.
func NewValidator(reg *Registry) *Validator {
	return &Validator{reg: reg}
}

type collector struct {
	reg    *Registry
	errors []Violation
}

func (c *collector) add(path, rule, format string, args ...any) {
	c.errors = append(c.errors, Violation{
		Path:    path,
		Message: fmt.Sprintf(format, args...),
		Rule:    rule,
	})
}

// Validate inspects the whole document and returns every violation found.
// It never stops at the first error and never panics on shape mismatches:
// a field of the wrong type is reported and its subtree skipped.
func (v *Validator) Validate(doc map[string]any) Report {
	c := &collector{reg: v.reg}

	dataType, ok := getString(doc, "dataType")
	if !ok || dataType == "" {
		c.add("dataType", RuleRequired, "dataType is required")
	} else if !v.reg.InEnum(EnumDataType, dataType) {
		c.add("dataType", RuleEnum, "dataType must be CVE_RECORD, got %q", dataType)
	}

	dataVersion, ok := getString(doc, "dataVersion")
	if !ok || dataVersion == "" {
		c.add("dataVersion", RuleRequired, "dataVersion is required")
	} else if !v.reg.MatchPattern(PatternDataVersion, dataVersion) {
		c.add("dataVersion", RuleFormat, "dataVersion %q is not a 5.x version", dataVersion)
	}

	meta, ok := getMap(doc, "cveMetadata")
	if !ok {
		c.add("cveMetadata", RuleRequired, "cveMetadata is required")
	} else {
		c.checkMetadata(meta, "cveMetadata")
	}

	containers, ok := getMap(doc, "containers")
	if !ok {
		c.add("containers", RuleRequired, "containers is required")
	} else {
		cna, ok := getMap(containers, "cna")
		if !ok {
			c.add("containers.cna", RuleRequired, "containers.cna is required")
		} else {
			c.checkContainer(cna, "containers.cna", true)
		}
		if adp, ok, bad := getSlice(containers, "adp"); bad {
			c.add("containers.adp", RuleType, "adp must be an array")
		} else if ok {
			for i, raw := range adp {
				path := fmt.Sprintf("containers.adp[%d]", i)
				m, ok := raw.(map[string]any)
				if !ok {
					c.add(path, RuleType, "adp container must be an object")
					continue
				}
				c.checkContainer(m, path, false)
			}
		}
	}

	return Report{Valid: len(c.errors) == 0, Errors: c.errors}
}

func (c *collector) checkMetadata(meta map[string]any, path string) {
	cveID, ok := getString(meta, "cveId")
	if !ok || cveID == "" {
		c.add(path+".cveId", RuleRequired, "cveId is required")
	} else if !c.reg.MatchPattern(PatternCveID, cveID) {
		c.add(path+".cveId", RuleFormat, "cveId %q does not match CVE-YYYY-NNNN", cveID)
	}

	c.checkUUID(meta, "assignerOrgId", path)
	c.checkUUID(meta, "requesterUserId", path)
	c.checkTimestamp(meta, "dateReserved", path)
	c.checkTimestamp(meta, "datePublished", path)
	c.checkTimestamp(meta, "dateUpdated", path)

	if state, ok := getString(meta, "state"); ok && state != "" {
		if !c.reg.InEnum(EnumState, state) {
			c.add(path+".state", RuleEnum, "state %q is not PUBLISHED or REJECTED", state)
		}
	}
	if raw, present := meta["serial"]; present {
		serial, ok := asNumber(raw)
		if !ok {
			c.add(path+".serial", RuleType, "serial must be a number")
		} else if serial < 1 {
			c.add(path+".serial", RuleRange, "serial must be >= 1, got %v", serial)
		}
	}
}

func (c *collector) checkContainer(m map[string]any, path string, cna bool) {
	if pm, ok := getMap(m, "providerMetadata"); ok {
		c.checkUUID(pm, "orgId", path+".providerMetadata")
		c.checkTimestamp(pm, "dateUpdated", path+".providerMetadata")
	} else if cna {
		c.add(path+".providerMetadata", RuleRequired, "providerMetadata is required")
	}

	c.checkTimestamp(m, "dateAssigned", path)
	c.checkTimestamp(m, "datePublic", path)

	if title, ok := getString(m, "title"); ok && len(title) > 256 {
		c.add(path+".title", RuleLength, "title exceeds 256 characters")
	}

	c.checkDescriptions(m, "descriptions", path, cna)
	c.checkAffected(m, path, cna)
	c.checkReferences(m, path, cna)
	c.checkProblemTypes(m, path)
	c.checkImpacts(m, path)
	c.checkMetrics(m, path)
	c.checkTimeline(m, path)
	c.checkCredits(m, path)
	c.checkDescriptionList(m, "configurations", path)
	c.checkDescriptionList(m, "workarounds", path)
	c.checkDescriptionList(m, "solutions", path)
	c.checkDescriptionList(m, "exploits", path)

	tagEnum := EnumAdpTag
	if cna {
		tagEnum = EnumCnaTag
	}
	if tags, ok, bad := getSlice(m, "tags"); bad {
		c.add(path+".tags", RuleType, "tags must be an array")
	} else if ok {
		for i, raw := range tags {
			tag, ok := raw.(string)
			if !ok {
				c.add(fmt.Sprintf("%s.tags[%d]", path, i), RuleType, "tag must be a string")
				continue
			}
			if !c.reg.InEnum(tagEnum, tag) {
				c.add(fmt.Sprintf("%s.tags[%d]", path, i), RuleEnum, "unknown container tag %q", tag)
			}
		}
	}
}

func (c *collector) checkDescriptions(m map[string]any, key, path string, required bool) {
	list, ok, bad := getSlice(m, key)
	if bad {
		c.add(path+"."+key, RuleType, "%s must be an array", key)
		return
	}
	if required && (!ok || len(list) == 0) {
		c.add(path+"."+key, RuleRequired, "at least one description is required")
		return
	}
	for i, raw := range list {
		ipath := fmt.Sprintf("%s.%s[%d]", path, key, i)
		d, ok := raw.(map[string]any)
		if !ok {
			c.add(ipath, RuleType, "description must be an object")
			continue
		}
		c.checkDescription(d, ipath)
	}
}

// checkDescriptionList covers the free-text blocks (configurations,
// workarounds, solutions, exploits) that share the description shape but
// are always optional.
func (c *collector) checkDescriptionList(m map[string]any, key, path string) {
	c.checkDescriptions(m, key, path, false)
}

func (c *collector) checkDescription(d map[string]any, path string) {
	c.checkLang(d, path)
	value, ok := getString(d, "value")
	if !ok || value == "" {
		c.add(path+".value", RuleRequired, "value is required")
	} else if len(value) > 4096 {
		c.add(path+".value", RuleLength, "value exceeds 4096 characters")
	}
}

func (c *collector) checkAffected(m map[string]any, path string, required bool) {
	list, ok, bad := getSlice(m, "affected")
	if bad {
		c.add(path+".affected", RuleType, "affected must be an array")
		return
	}
	if required && (!ok || len(list) == 0) {
		c.add(path+".affected", RuleRequired, "at least one affected product is required")
		return
	}
	for i, raw := range list {
		ipath := fmt.Sprintf("%s.affected[%d]", path, i)
		a, ok := raw.(map[string]any)
		if !ok {
			c.add(ipath, RuleType, "affected entry must be an object")
			continue
		}
		if status, ok := getString(a, "defaultStatus"); ok && status != "" {
			if !c.reg.InEnum(EnumVersionStatus, status) {
				c.add(ipath+".defaultStatus", RuleEnum, "unknown status %q", status)
			}
		}
		versions, ok, bad := getSlice(a, "versions")
		if bad {
			c.add(ipath+".versions", RuleType, "versions must be an array")
			continue
		}
		if !ok {
			continue
		}
		for j, vraw := range versions {
			vpath := fmt.Sprintf("%s.versions[%d]", ipath, j)
			vm, ok := vraw.(map[string]any)
			if !ok {
				c.add(vpath, RuleType, "version entry must be an object")
				continue
			}
			c.checkVersionRange(vm, vpath)
		}
	}
}

func (c *collector) checkVersionRange(vm map[string]any, path string) {
	if ver, ok := getString(vm, "version"); !ok || ver == "" {
		c.add(path+".version", RuleRequired, "version is required")
	}
	if status, ok := getString(vm, "status"); ok && status != "" {
		if !c.reg.InEnum(EnumVersionStatus, status) {
			c.add(path+".status", RuleEnum, "unknown status %q", status)
		}
	}
	changes, ok, bad := getSlice(vm, "changes")
	if bad {
		c.add(path+".changes", RuleType, "changes must be an array")
		return
	}
	if !ok {
		return
	}
	for i, raw := range changes {
		cpath := fmt.Sprintf("%s.changes[%d]", path, i)
		cm, ok := raw.(map[string]any)
		if !ok {
			c.add(cpath, RuleType, "change must be an object")
			continue
		}
		if at, ok := getString(cm, "at"); !ok || at == "" {
			c.add(cpath+".at", RuleRequired, "at is required")
		}
		if status, ok := getString(cm, "status"); ok && status != "" {
			if !c.reg.InEnum(EnumVersionStatus, status) {
				c.add(cpath+".status", RuleEnum, "unknown status %q", status)
			}
		}
	}
}

func (c *collector) checkReferences(m map[string]any, path string, required bool) {
	list, ok, bad := getSlice(m, "references")
	if bad {
		c.add(path+".references", RuleType, "references must be an array")
		return
	}
	if required && (!ok || len(list) == 0) {
		c.add(path+".references", RuleRequired, "at least one reference is required")
		return
	}
	for i, raw := range list {
		ipath := fmt.Sprintf("%s.references[%d]", path, i)
		ref, ok := raw.(map[string]any)
		if !ok {
			c.add(ipath, RuleType, "reference must be an object")
			continue
		}
		url, ok := getString(ref, "url")
		if !ok || url == "" {
			c.add(ipath+".url", RuleRequired, "url is required")
		} else if !c.reg.MatchPattern(PatternURI, url) {
			c.add(ipath+".url", RuleFormat, "url %q is not a valid URI", url)
		}
		if name, ok := getString(ref, "name"); ok && len(name) > 512 {
			c.add(ipath+".name", RuleLength, "name exceeds 512 characters")
		}
		if tags, ok, bad := getSlice(ref, "tags"); bad {
			c.add(ipath+".tags", RuleType, "tags must be an array")
		} else if ok {
			for j, traw := range tags {
				tag, ok := traw.(string)
				if !ok {
					c.add(fmt.Sprintf("%s.tags[%d]", ipath, j), RuleType, "tag must be a string")
					continue
				}
				if !c.reg.InEnum(EnumReferenceTag, tag) {
					c.add(fmt.Sprintf("%s.tags[%d]", ipath, j), RuleEnum, "unknown reference tag %q", tag)
				}
			}
		}
	}
}

func (c *collector) checkProblemTypes(m map[string]any, path string) {
	list, ok, bad := getSlice(m, "problemTypes")
	if bad {
		c.add(path+".problemTypes", RuleType, "problemTypes must be an array")
		return
	}
	if !ok {
		return
	}
	for i, raw := range list {
		ipath := fmt.Sprintf("%s.problemTypes[%d]", path, i)
		pt, ok := raw.(map[string]any)
		if !ok {
			c.add(ipath, RuleType, "problemType must be an object")
			continue
		}
		descs, ok, bad := getSlice(pt, "descriptions")
		if bad {
			c.add(ipath+".descriptions", RuleType, "descriptions must be an array")
			continue
		}
		if !ok {
			continue
		}
		for j, draw := range descs {
			dpath := fmt.Sprintf("%s.descriptions[%d]", ipath, j)
			d, ok := draw.(map[string]any)
			if !ok {
				c.add(dpath, RuleType, "description must be an object")
				continue
			}
			c.checkLang(d, dpath)
			if desc, ok := getString(d, "description"); !ok || desc == "" {
				c.add(dpath+".description", RuleRequired, "description is required")
			}
			if cwe, ok := getString(d, "cweId"); ok && cwe != "" {
				if !c.reg.MatchPattern(PatternCweID, cwe) {
					c.add(dpath+".cweId", RuleFormat, "cweId %q does not match CWE-N", cwe)
				}
			}
		}
	}
}

func (c *collector) checkImpacts(m map[string]any, path string) {
	list, ok, bad := getSlice(m, "impacts")
	if bad {
		c.add(path+".impacts", RuleType, "impacts must be an array")
		return
	}
	if !ok {
		return
	}
	for i, raw := range list {
		ipath := fmt.Sprintf("%s.impacts[%d]", path, i)
		imp, ok := raw.(map[string]any)
		if !ok {
			c.add(ipath, RuleType, "impact must be an object")
			continue
		}
		if capec, ok := getString(imp, "capecId"); ok && capec != "" {
			if !c.reg.MatchPattern(PatternCapecID, capec) {
				c.add(ipath+".capecId", RuleFormat, "capecId %q does not match CAPEC-N", capec)
			}
		}
	}
}

func (c *collector) checkMetrics(m map[string]any, path string) {
	list, ok, bad := getSlice(m, "metrics")
	if bad {
		c.add(path+".metrics", RuleType, "metrics must be an array")
		return
	}
	if !ok {
		return
	}
	for i, raw := range list {
		ipath := fmt.Sprintf("%s.metrics[%d]", path, i)
		metric, ok := raw.(map[string]any)
		if !ok {
			c.add(ipath, RuleType, "metric must be an object")
			continue
		}
		if format, ok := getString(metric, "format"); ok && format != "" {
			if !c.reg.InEnum(EnumMetricFormat, format) {
				c.add(ipath+".format", RuleEnum, "unknown metric format %q", format)
			}
		}
		variants := 0
		for key, version := range map[string]string{
			"cvssV2_0": "2.0",
			"cvssV3_0": "3.0",
			"cvssV3_1": "3.1",
			"cvssV4_0": "4.0",
		} {
			cvss, ok := getMap(metric, key)
			if !ok {
				continue
			}
			variants++
			c.checkCvss(cvss, fmt.Sprintf("%s.%s", ipath, key), version)
		}
		if _, ok := getMap(metric, "other"); ok {
			variants++
		}
		if variants == 0 {
			c.add(ipath, RuleRequired, "metric carries no score content")
		}
	}
}

func (c *collector) checkCvss(m map[string]any, path, version string) {
	if got, ok := getString(m, "version"); !ok || got == "" {
		c.add(path+".version", RuleRequired, "version is required")
	} else if got != version {
		c.add(path+".version", RuleEnum, "version must be %q, got %q", version, got)
	}

	if raw, present := m["baseScore"]; !present {
		c.add(path+".baseScore", RuleRequired, "baseScore is required")
	} else if score, ok := asNumber(raw); !ok {
		c.add(path+".baseScore", RuleType, "baseScore must be a number")
	} else if score < 0 || score > 10 {
		c.add(path+".baseScore", RuleRange, "baseScore must be within 0..10, got %v", score)
	}

	// 2.0 predates the qualitative severity scale.
	if version != "2.0" {
		if severity, ok := getString(m, "baseSeverity"); !ok || severity == "" {
			c.add(path+".baseSeverity", RuleRequired, "baseSeverity is required")
		} else if !c.reg.InEnum(EnumSeverity, severity) {
			c.add(path+".baseSeverity", RuleEnum, "unknown severity %q", severity)
		}
	}

	if vector, ok := getString(m, "vectorString"); ok && vector != "" {
		pattern := c.reg.VectorPattern(version)
		if pattern != "" && !c.reg.MatchPattern(pattern, vector) {
			c.add(path+".vectorString", RuleFormat, "vectorString %q is not a valid CVSS %s vector", vector, version)
		}
	}
}

func (c *collector) checkTimeline(m map[string]any, path string) {
	list, ok, bad := getSlice(m, "timeline")
	if bad {
		c.add(path+".timeline", RuleType, "timeline must be an array")
		return
	}
	if !ok {
		return
	}
	for i, raw := range list {
		ipath := fmt.Sprintf("%s.timeline[%d]", path, i)
		entry, ok := raw.(map[string]any)
		if !ok {
			c.add(ipath, RuleType, "timeline entry must be an object")
			continue
		}
		c.checkTimestamp(entry, "time", ipath)
		c.checkLang(entry, ipath)
		if value, ok := getString(entry, "value"); !ok || value == "" {
			c.add(ipath+".value", RuleRequired, "value is required")
		}
	}
}

func (c *collector) checkCredits(m map[string]any, path string) {
	list, ok, bad := getSlice(m, "credits")
	if bad {
		c.add(path+".credits", RuleType, "credits must be an array")
		return
	}
	if !ok {
		return
	}
	for i, raw := range list {
		ipath := fmt.Sprintf("%s.credits[%d]", path, i)
		credit, ok := raw.(map[string]any)
		if !ok {
			c.add(ipath, RuleType, "credit must be an object")
			continue
		}
		c.checkLang(credit, ipath)
		if value, ok := getString(credit, "value"); !ok || value == "" {
			c.add(ipath+".value", RuleRequired, "value is required")
		}
		c.checkUUID(credit, "user", ipath)
		if typ, ok := getString(credit, "type"); ok && typ != "" {
			if !c.reg.InEnum(EnumCreditType, typ) {
				c.add(ipath+".type", RuleEnum, "unknown credit type %q", typ)
			}
		}
	}
}

func (c *collector) checkLang(m map[string]any, path string) {
	if lang, ok := getString(m, "lang"); ok && lang != "" {
		if !c.reg.MatchPattern(PatternLanguage, lang) {
			c.add(path+".lang", RuleFormat, "lang %q is not a language tag", lang)
		}
	}
}

func (c *collector) checkUUID(m map[string]any, key, path string) {
	if id, ok := getString(m, key); ok && id != "" {
		if !c.reg.MatchPattern(PatternUUID, id) {
			c.add(path+"."+key, RuleFormat, "%s %q is not a UUID v4", key, id)
		}
	}
}

func (c *collector) checkTimestamp(m map[string]any, key, path string) {
	if ts, ok := getString(m, key); ok && ts != "" {
		if !c.reg.MatchPattern(PatternTimestamp, ts) {
			c.add(path+"."+key, RuleFormat, "%s %q is not a valid timestamp", key, ts)
		}
	}
}

func getString(m map[string]any, key string) (string, bool) {
	raw, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

func getMap(m map[string]any, key string) (map[string]any, bool) {
	raw, ok := m[key]
	if !ok {
		return nil, false
	}
	mm, ok := raw.(map[string]any)
	return mm, ok
}

// getSlice returns (list, present-and-array, present-but-not-array).
func getSlice(m map[string]any, key string) ([]any, bool, bool) {
	raw, ok := m[key]
	if !ok {
		return nil, false, false
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, false, true
	}
	return list, true, false
}

func asNumber(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
