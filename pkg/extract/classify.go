package extract

import (
	"regexp"
	"strings"

	"github.com/lucas-albers-lz4/helmfile-deps/pkg/manifest"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/repository"
)

const chartSeparator = "/"

// chartNamePattern is the accepted form of the chart-name segment of a chart reference:
// lowercase letters and digits, optionally joined by single hyphens.
var chartNamePattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// localChartPrefixes mark a chart reference as a path relative to the manifest.
var localChartPrefixes = []string{"./", "../"}

// ValidChartName reports whether name is an acceptable chart-name segment.
func ValidChartName(name string) bool {
	return chartNamePattern.MatchString(name)
}

// Classify produces the dependency record for one release. The checks run in a fixed
// order and the first failing one decides the skip reason:
//
//  1. chart missing or empty: invalid-name
//  2. chart is a relative path: local-chart
//  3. chart is not "<alias>/<name>": unsupported-chart-type
//  4. alias not in repos: unknown-repository
//  5. chart name has disallowed characters: invalid-name
//  6. version missing, empty or still templated: invalid-version
//
// Skipped records keep whatever was already known about the release.
func Classify(rel manifest.Release, repos repository.Map) Dependency {
	dep := Dependency{Datasource: Datasource}
	chart := manifest.StringValue(rel.Chart)
	version := manifest.StringValue(rel.Version)

	if strings.TrimSpace(chart) == "" {
		dep.DepName = manifest.StringValue(rel.Name)
		dep.SkipReason = SkipInvalidName
		return dep
	}

	for _, prefix := range localChartPrefixes {
		if strings.HasPrefix(chart, prefix) {
			dep.DepName = manifest.StringValue(rel.Name)
			dep.SkipReason = SkipLocalChart
			return dep
		}
	}

	if validVersion(version) {
		dep.CurrentValue = version
	}

	alias, name, ok := splitChart(chart)
	if !ok {
		dep.DepName = chart
		dep.SkipReason = SkipUnsupportedChartType
		return dep
	}
	dep.DepName = name

	url, known := repos.Lookup(alias)
	if !known {
		dep.SkipReason = SkipUnknownRepository
		return dep
	}
	dep.RegistryURL = url

	if !ValidChartName(name) {
		dep.SkipReason = SkipInvalidName
		return dep
	}

	if !validVersion(version) {
		dep.SkipReason = SkipInvalidVersion
	}
	return dep
}

// splitChart splits "<alias>/<name>"; anything other than exactly two non-empty
// segments is rejected.
func splitChart(chart string) (alias, name string, ok bool) {
	parts := strings.Split(chart, chartSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// validVersion rejects empty versions and leftovers of template expressions that the
// sanitizer could not remove.
func validVersion(version string) bool {
	v := strings.TrimSpace(version)
	return v != "" && !strings.Contains(v, "{{") && !strings.Contains(v, "}}")
}
