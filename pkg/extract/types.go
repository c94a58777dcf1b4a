// Package extract turns helmfile manifests into chart dependency records.
//
// ExtractPackageFile is the entry point: it sanitizes templating, loads every YAML
// sub-document, resolves repository aliases and classifies each release into exactly
// one Dependency. Nothing in this package returns an error or panics on bad input;
// problems become skip reasons on individual dependencies, and a manifest without any
// release yields nil.
package extract

// Datasource is the datasource tag carried by every dependency from a helmfile.
const Datasource = "helm"

// SkipReason explains why a release cannot be tracked as an updatable dependency.
type SkipReason string

// Skip reasons. The empty value means the dependency is trackable.
const (
	SkipNone                 SkipReason = ""
	SkipLocalChart           SkipReason = "local-chart"
	SkipUnsupportedChartType SkipReason = "unsupported-chart-type"
	SkipUnknownRepository    SkipReason = "unknown-repository"
	SkipInvalidName          SkipReason = "invalid-name"
	SkipInvalidVersion       SkipReason = "invalid-version"
)

// Valid reports whether r is one of the defined skip reasons (including SkipNone).
func (r SkipReason) Valid() bool {
	switch r {
	case SkipNone, SkipLocalChart, SkipUnsupportedChartType, SkipUnknownRepository, SkipInvalidName, SkipInvalidVersion:
		return true
	}
	return false
}

// Dependency is the record produced for one release.
type Dependency struct {
	DepName      string     `json:"depName,omitempty"`
	CurrentValue string     `json:"currentValue,omitempty"`
	Datasource   string     `json:"datasource"`
	RegistryURL  string     `json:"registryUrl,omitempty"`
	SkipReason   SkipReason `json:"skipReason,omitempty"`
}

// Skipped reports whether the dependency carries a skip reason.
func (d Dependency) Skipped() bool {
	return d.SkipReason != SkipNone
}

// PackageFile is the extraction result for one manifest.
type PackageFile struct {
	Datasource string       `json:"datasource"`
	Deps       []Dependency `json:"deps"`
}

// Config carries the caller-supplied settings for an extraction.
type Config struct {
	// Aliases maps repository alias names to URLs. Manifest declarations override them.
	Aliases map[string]string
}
