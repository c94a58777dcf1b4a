// Package repository resolves chart repository aliases to URLs.
//
// The alias table for one extraction is built from caller defaults first and then from
// every "repositories" declaration found in the manifest, in document order, with later
// declarations replacing earlier ones of the same name. The package also loads alias
// defaults from configuration files and from Helm's repositories.yaml.
package repository

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/distribution/reference"

	"github.com/lucas-albers-lz4/helmfile-deps/pkg/log"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/manifest"
)

// OCIScheme prefixes registry URLs of repositories declared with "oci: true".
const OCIScheme = "oci://"

var (
	// ErrIncompleteDeclaration is returned for a declaration without a name or URL.
	ErrIncompleteDeclaration = errors.New("repository declaration needs both name and url")
	// ErrInvalidOCILocation is returned when an OCI repository URL is not a valid registry path.
	ErrInvalidOCILocation = errors.New("invalid OCI repository location")
)

// Map maps repository alias names to URLs.
type Map map[string]string

// Lookup returns the URL registered for name.
func (m Map) Lookup(name string) (string, bool) {
	url, ok := m[name]
	return url, ok
}

// Names returns the alias names in sorted order.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve builds the alias table for one extraction. defaults has the lowest precedence;
// declarations from docs override it and each other in document order. Invalid
// declarations are logged and ignored. defaults is not modified.
func Resolve(defaults map[string]string, docs []manifest.Document) Map {
	repos := make(Map, len(defaults))
	for name, url := range defaults {
		if name != "" && url != "" {
			repos[name] = url
		}
	}

	for _, doc := range docs {
		for _, decl := range doc.Repositories {
			url, err := DeclaredURL(decl)
			if err != nil {
				log.Debug("Ignoring repository declaration", "document", doc.Index, "repository", decl.Name, "error", err)
				continue
			}
			repos[strings.TrimSpace(decl.Name)] = url
		}
	}
	return repos
}

// DeclaredURL returns the registry URL a manifest declaration resolves to.
// OCI declarations are validated and returned with the oci:// scheme.
func DeclaredURL(decl manifest.Repository) (string, error) {
	name := strings.TrimSpace(decl.Name)
	url := strings.TrimSpace(decl.URL)
	if name == "" || url == "" {
		return "", ErrIncompleteDeclaration
	}
	if !decl.OCI {
		return url, nil
	}
	return ociURL(url)
}

func ociURL(raw string) (string, error) {
	location := strings.TrimSuffix(strings.TrimPrefix(raw, OCIScheme), "/")
	named, err := reference.ParseNormalizedNamed(location)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidOCILocation, raw, err)
	}
	if !reference.IsNameOnly(named) {
		return "", fmt.Errorf("%w %q: tags and digests are not allowed", ErrInvalidOCILocation, raw)
	}
	return OCIScheme + location, nil
}

// IsOCI reports whether url points at an OCI registry.
func IsOCI(url string) bool {
	return strings.HasPrefix(url, OCIScheme)
}

// Merge combines alias layers; later layers override earlier ones.
func Merge(layers ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, layer := range layers {
		for name, url := range layer {
			merged[name] = url
		}
	}
	return merged
}
