// Package manifest loads helmfile manifests into typed documents.
//
// A manifest is split into its YAML sub-documents before parsing, so a syntax error in
// one document never hides the releases of another. Parsing goes through yaml.Node
// rather than struct decoding: duplicate mapping keys are resolved with the last
// occurrence winning, which is what template sanitizing relies on when both branches of
// a conditional leave the same key behind.
package manifest

import "fmt"

// Repository is a chart repository declared in the "repositories" list.
type Repository struct {
	Name string
	URL  string
	// OCI marks the URL as an OCI registry location rather than a chart index.
	OCI bool
}

// Release is one entry of the "releases" list. A nil field was absent or null in the
// source; a pointer to "" was present but empty.
type Release struct {
	Name      *string
	Namespace *string
	Chart     *string
	Version   *string
}

// Document is one parsed YAML sub-document of a manifest.
type Document struct {
	// Index is the zero-based position of the document in the manifest.
	Index        int
	Repositories []Repository
	Releases     []Release
	// HasReleases is set when the document carries a "releases" sequence, even an empty one.
	HasReleases bool
}

// ParseError records a sub-document that could not be parsed.
type ParseError struct {
	Index int
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("manifest document %d: %v", e.Index, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StringValue dereferences an optional field, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
