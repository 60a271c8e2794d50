package model

// AffectedProduct is one entry of a container's affected list: the product
// identity plus the version-affectedness facts this advisory contributes.
type AffectedProduct struct {
	Vendor          string           `json:"vendor,omitempty"`
	Product         string           `json:"product,omitempty"`
	CollectionURL   string           `json:"collectionURL,omitempty"`
	PackageName     string           `json:"packageName,omitempty"`
	Cpes            []string         `json:"cpes,omitempty"`
	Modules         []string         `json:"modules,omitempty"`
	ProgramFiles    []string         `json:"programFiles,omitempty"`
	ProgramRoutines []ProgramRoutine `json:"programRoutines,omitempty"`
	Platforms       []string         `json:"platforms,omitempty"`
	Repo            string           `json:"repo,omitempty"`
	DefaultStatus   string           `json:"defaultStatus,omitempty"`
	Versions        []VersionRange   `json:"versions,omitempty"`
}

// ProgramRoutine names a routine within an affected program.
type ProgramRoutine struct {
	Name string `json:"name"`
}

// VersionRange describes the affectedness of a single version or range.
// Version is the identity key when merging ranges from multiple advisories.
type VersionRange struct {
	Version         string          `json:"version"`
	Status          string          `json:"status,omitempty"`
	VersionType     string          `json:"versionType,omitempty"`
	LessThan        string          `json:"lessThan,omitempty"`
	LessThanOrEqual string          `json:"lessThanOrEqual,omitempty"`
	Changes         []VersionChange `json:"changes,omitempty"`
}

// VersionChange marks a status flip at a point within a range. At is the
// identity key when merging change lists.
type VersionChange struct {
	At     string `json:"at"`
	Status string `json:"status,omitempty"`
}

// Product is a catalog document keyed by the unique (vendor, product) pair.
// It accumulates facts from every advisory that mentions the product and
// keeps back-references to the contributing CVE IDs.
type Product struct {
	Key             string           `json:"_key,omitempty"`
	ObjType         string           `json:"objtype,omitempty"`
	Vendor          string           `json:"vendor"`
	Product         string           `json:"product"`
	CollectionURL   string           `json:"collectionURL,omitempty"`
	PackageName     string           `json:"packageName,omitempty"`
	Cpes            []string         `json:"cpes,omitempty"`
	Modules         []string         `json:"modules,omitempty"`
	ProgramFiles    []string         `json:"programFiles,omitempty"`
	ProgramRoutines []ProgramRoutine `json:"programRoutines,omitempty"`
	Platforms       []string         `json:"platforms,omitempty"`
	Repo            string           `json:"repo,omitempty"`
	DefaultStatus   string           `json:"defaultStatus,omitempty"`
	Versions        []VersionRange   `json:"versions,omitempty"`
	Cves            []string         `json:"cves,omitempty"`
	CreatedAt       string           `json:"created_at,omitempty"`
	UpdatedAt       string           `json:"updated_at,omitempty"`
}

// NewProduct seeds a catalog document from a first-seen affected entry.
func NewProduct(in AffectedProduct) *Product {
	p := &Product{
		ObjType:         "Product",
		Vendor:          in.Vendor,
		Product:         in.Product,
		CollectionURL:   in.CollectionURL,
		PackageName:     in.PackageName,
		Cpes:            unionStrings(nil, in.Cpes),
		Modules:         unionStrings(nil, in.Modules),
		ProgramFiles:    unionStrings(nil, in.ProgramFiles),
		ProgramRoutines: mergeRoutines(nil, in.ProgramRoutines),
		Platforms:       unionStrings(nil, in.Platforms),
		Repo:            in.Repo,
		DefaultStatus:   in.DefaultStatus,
	}
	p.Versions = MergeVersionRanges(nil, in.Versions)
	return p
}

// Merge folds an affected entry into the catalog document. Scalars are
// overwritten only when the incoming value is non-empty; list fields are
// unioned by value (routines by name); version ranges merge by version key.
// This is the reference for the server-side merge the store performs.
func (p *Product) Merge(in AffectedProduct) {
	if in.CollectionURL != "" {
		p.CollectionURL = in.CollectionURL
	}
	if in.PackageName != "" {
		p.PackageName = in.PackageName
	}
	if in.Repo != "" {
		p.Repo = in.Repo
	}
	if in.DefaultStatus != "" {
		p.DefaultStatus = in.DefaultStatus
	}
	p.Cpes = unionStrings(p.Cpes, in.Cpes)
	p.Modules = unionStrings(p.Modules, in.Modules)
	p.ProgramFiles = unionStrings(p.ProgramFiles, in.ProgramFiles)
	p.Platforms = unionStrings(p.Platforms, in.Platforms)
	p.ProgramRoutines = mergeRoutines(p.ProgramRoutines, in.ProgramRoutines)
	p.Versions = MergeVersionRanges(p.Versions, in.Versions)
}

// AddCveReference appends the CVE ID with set semantics and reports whether
// the document changed.
func (p *Product) AddCveReference(cveID string) bool {
	for _, id := range p.Cves {
		if id == cveID {
			return false
		}
	}
	p.Cves = append(p.Cves, cveID)
	return true
}

// MergeVersionRanges merges incoming ranges into existing by version key.
// A version not seen before appends with its change list deduplicated by
// at. A known version updates only the scalar fields the incoming range
// supplies and merges its change list by the at key: a new at appends, a
// known at overwrites the status. Duplicate version keys in incoming fold
// into one entry, later occurrences winning.
func MergeVersionRanges(existing, incoming []VersionRange) []VersionRange {
	out := make([]VersionRange, len(existing))
	copy(out, existing)
	for _, in := range incoming {
		idx := -1
		for i := range out {
			if out[i].Version == in.Version {
				idx = i
				break
			}
		}
		if idx < 0 {
			in.Changes = mergeVersionChanges(nil, in.Changes)
			out = append(out, in)
			continue
		}
		cur := &out[idx]
		if in.Status != "" {
			cur.Status = in.Status
		}
		if in.VersionType != "" {
			cur.VersionType = in.VersionType
		}
		if in.LessThan != "" {
			cur.LessThan = in.LessThan
		}
		if in.LessThanOrEqual != "" {
			cur.LessThanOrEqual = in.LessThanOrEqual
		}
		cur.Changes = mergeVersionChanges(cur.Changes, in.Changes)
	}
	return out
}

func mergeVersionChanges(existing, incoming []VersionChange) []VersionChange {
	out := make([]VersionChange, len(existing))
	copy(out, existing)
	for _, in := range incoming {
		found := false
		for i := range out {
			if out[i].At == in.At {
				out[i].Status = in.Status
				found = true
				break
			}
		}
		if !found {
			out = append(out, in)
		}
	}
	return out
}

func mergeRoutines(existing, incoming []ProgramRoutine) []ProgramRoutine {
	out := make([]ProgramRoutine, len(existing))
	copy(out, existing)
	for _, in := range incoming {
		if in.Name == "" {
			continue
		}
		found := false
		for _, r := range out {
			if r.Name == in.Name {
				found = true
				break
			}
		}
		if !found {
			out = append(out, in)
		}
	}
	return out
}

func unionStrings(existing, incoming []string) []string {
	out := make([]string, len(existing))
	copy(out, existing)
	for _, in := range incoming {
		if in == "" {
			continue
		}
		found := false
		for _, s := range out {
			if s == in {
				found = true
				break
			}
		}
		if !found {
			out = append(out, in)
		}
	}
	return out
}
