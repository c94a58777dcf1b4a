package manifest

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	keyRepositories = "repositories"
	keyReleases     = "releases"
	mergeKey        = "<<"

	// maxMergeDepth bounds alias and merge-key resolution so self-referencing anchors
	// cannot recurse forever.
	maxMergeDepth = 32
)

// documentBoundary matches a "---" separator line, optionally followed by a comment.
var documentBoundary = regexp.MustCompile(`^---[ \t]*(?:#.*)?$`)

// Split cuts content into its YAML sub-documents on "---" boundary lines.
// The result always has at least one element; documents may be empty.
func Split(content string) []string {
	var docs []string
	var current []string
	for _, line := range strings.Split(content, "\n") {
		if documentBoundary.MatchString(strings.TrimRight(line, "\r")) {
			docs = append(docs, strings.Join(current, "\n"))
			current = current[:0]
			continue
		}
		current = append(current, line)
	}
	return append(docs, strings.Join(current, "\n"))
}

// All lazily parses every sub-document of content in source order. A document that
// fails to parse yields a nil *Document and a *ParseError; iteration continues with the
// next document.
func All(content string) iter.Seq2[*Document, error] {
	return func(yield func(*Document, error) bool) {
		for i, raw := range Split(content) {
			if !yield(Parse(i, raw)) {
				return
			}
		}
	}
}

// Load parses every sub-document of content and returns the ones that parsed, in order,
// together with the failures.
func Load(content string) ([]Document, []*ParseError) {
	var docs []Document
	var failures []*ParseError
	for doc, err := range All(content) {
		if err != nil {
			var perr *ParseError
			if !errors.As(err, &perr) {
				perr = &ParseError{Index: -1, Err: err}
			}
			failures = append(failures, perr)
			continue
		}
		docs = append(docs, *doc)
	}
	return docs, failures
}

// Parse parses a single sub-document. index is only used to label the result.
// Empty documents and documents whose root is not a mapping parse successfully
// with no repositories and no releases.
func Parse(index int, raw string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = &ParseError{Index: index, Err: fmt.Errorf("parser panic: %v", r)}
		}
	}()

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &root); err != nil {
		return nil, &ParseError{Index: index, Err: err}
	}

	doc = &Document{Index: index}
	fields := mappingFields(&root, 0)

	if repos := resolve(fields[keyRepositories]); repos != nil && repos.Kind == yaml.SequenceNode {
		for _, item := range repos.Content {
			if repo, ok := decodeRepository(item); ok {
				doc.Repositories = append(doc.Repositories, repo)
			}
		}
	}

	if releases := resolve(fields[keyReleases]); releases != nil && releases.Kind == yaml.SequenceNode {
		doc.HasReleases = true
		for _, item := range releases.Content {
			doc.Releases = append(doc.Releases, decodeRelease(item))
		}
	}

	return doc, nil
}

func decodeRepository(node *yaml.Node) (Repository, bool) {
	node = resolve(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return Repository{}, false
	}
	fields := mappingFields(node, 0)
	repo := Repository{
		Name: StringValue(scalar(fields["name"])),
		URL:  StringValue(scalar(fields["url"])),
	}
	if oci := scalar(fields["oci"]); oci != nil {
		repo.OCI, _ = strconv.ParseBool(*oci) //nolint:errcheck // non-boolean means false
	}
	return repo, true
}

// decodeRelease never fails: anything that is not a mapping becomes a release with
// every field absent.
func decodeRelease(node *yaml.Node) Release {
	fields := mappingFields(node, 0)
	return Release{
		Name:      scalar(fields["name"]),
		Namespace: scalar(fields["namespace"]),
		Chart:     scalar(fields["chart"]),
		Version:   scalar(fields["version"]),
	}
}

// resolve unwraps document and alias nodes.
func resolve(node *yaml.Node) *yaml.Node {
	for depth := 0; node != nil && depth < maxMergeDepth; depth++ {
		switch node.Kind {
		case yaml.DocumentNode:
			if len(node.Content) == 0 {
				return nil
			}
			node = node.Content[0]
		case yaml.AliasNode:
			node = node.Alias
		default:
			return node
		}
	}
	return nil
}

// mappingFields flattens a mapping node into key -> value. Values pulled in through "<<"
// merge keys are applied first so explicit keys override them, and among explicit keys
// the last occurrence wins.
func mappingFields(node *yaml.Node, depth int) map[string]*yaml.Node {
	fields := make(map[string]*yaml.Node)
	node = resolve(node)
	if node == nil || node.Kind != yaml.MappingNode || depth > maxMergeDepth {
		return fields
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != mergeKey {
			continue
		}
		merged := resolve(node.Content[i+1])
		if merged == nil {
			continue
		}
		switch merged.Kind {
		case yaml.MappingNode:
			for k, v := range mappingFields(merged, depth+1) {
				fields[k] = v
			}
		case yaml.SequenceNode:
			// Earlier mappings in a merge sequence take precedence.
			for j := len(merged.Content) - 1; j >= 0; j-- {
				for k, v := range mappingFields(merged.Content[j], depth+1) {
					fields[k] = v
				}
			}
		}
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if key := node.Content[i]; key.Value != mergeKey {
			fields[key.Value] = node.Content[i+1]
		}
	}
	return fields
}

// scalar returns the value of a non-null scalar node, or nil.
func scalar(node *yaml.Node) *string {
	node = resolve(node)
	if node == nil || node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		return nil
	}
	v := node.Value
	return &v
}
