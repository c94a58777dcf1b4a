package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/lucas-albers-lz4/helmfile-deps/pkg/manifest"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/repository"
)

func strPtr(s string) *string { return &s }

var testRepos = repository.Map{
	"stable":   "https://charts.helm.sh/stable",
	"kiwigrid": "https://kiwigrid.github.io",
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		release  manifest.Release
		expected Dependency
	}{
		{
			name:     "trackable release",
			release:  manifest.Release{Name: strPtr("example"), Chart: strPtr("stable/example"), Version: strPtr("1.0.0")},
			expected: Dependency{DepName: "example", CurrentValue: "1.0.0", Datasource: "helm", RegistryURL: "https://charts.helm.sh/stable"},
		},
		{
			name:     "missing chart",
			release:  manifest.Release{Name: strPtr("example"), Version: strPtr("1.0.0")},
			expected: Dependency{DepName: "example", Datasource: "helm", SkipReason: SkipInvalidName},
		},
		{
			name:     "blank chart",
			release:  manifest.Release{Chart: strPtr("  "), Version: strPtr("1.0.0")},
			expected: Dependency{Datasource: "helm", SkipReason: SkipInvalidName},
		},
		{
			name:     "local chart",
			release:  manifest.Release{Name: strPtr("example"), Chart: strPtr("./charts/example"), Version: strPtr("1.0.0")},
			expected: Dependency{DepName: "example", Datasource: "helm", SkipReason: SkipLocalChart},
		},
		{
			name:     "local chart in parent directory",
			release:  manifest.Release{Name: strPtr("example"), Chart: strPtr("../example")},
			expected: Dependency{DepName: "example", Datasource: "helm", SkipReason: SkipLocalChart},
		},
		{
			name:     "chart without repository",
			release:  manifest.Release{Name: strPtr("example"), Chart: strPtr("example"), Version: strPtr("1.0.0")},
			expected: Dependency{DepName: "example", CurrentValue: "1.0.0", Datasource: "helm", SkipReason: SkipUnsupportedChartType},
		},
		{
			name:     "nested chart path",
			release:  manifest.Release{Name: strPtr("example"), Chart: strPtr("kiwigrid/example/example"), Version: strPtr("1.0.0")},
			expected: Dependency{DepName: "kiwigrid/example/example", CurrentValue: "1.0.0", Datasource: "helm", SkipReason: SkipUnsupportedChartType},
		},
		{
			name:     "empty alias segment",
			release:  manifest.Release{Chart: strPtr("/example"), Version: strPtr("1.0.0")},
			expected: Dependency{DepName: "/example", CurrentValue: "1.0.0", Datasource: "helm", SkipReason: SkipUnsupportedChartType},
		},
		{
			name:     "empty name segment",
			release:  manifest.Release{Chart: strPtr("stable/"), Version: strPtr("1.0.0")},
			expected: Dependency{DepName: "stable/", CurrentValue: "1.0.0", Datasource: "helm", SkipReason: SkipUnsupportedChartType},
		},
		{
			name:     "unknown repository",
			release:  manifest.Release{Name: strPtr("example"), Chart: strPtr("experimental/example"), Version: strPtr("1.0.0")},
			expected: Dependency{DepName: "example", CurrentValue: "1.0.0", Datasource: "helm", SkipReason: SkipUnknownRepository},
		},
		{
			name:     "unknown repository wins over bad name and version",
			release:  manifest.Release{Chart: strPtr("experimental/Bad?Name")},
			expected: Dependency{DepName: "Bad?Name", Datasource: "helm", SkipReason: SkipUnknownRepository},
		},
		{
			name:     "question mark in chart name",
			release:  manifest.Release{Name: strPtr("example2"), Chart: strPtr("kiwigrid/example?example"), Version: strPtr("1.0.0")},
			expected: Dependency{DepName: "example?example", CurrentValue: "1.0.0", Datasource: "helm", RegistryURL: "https://kiwigrid.github.io", SkipReason: SkipInvalidName},
		},
		{
			name:     "punctuation only chart name",
			release:  manifest.Release{Name: strPtr("example"), Chart: strPtr("stable/!!!!--!"), Version: strPtr("1.0.0")},
			expected: Dependency{DepName: "!!!!--!", CurrentValue: "1.0.0", Datasource: "helm", RegistryURL: "https://charts.helm.sh/stable", SkipReason: SkipInvalidName},
		},
		{
			name:     "missing version",
			release:  manifest.Release{Name: strPtr("example"), Chart: strPtr("stable/example")},
			expected: Dependency{DepName: "example", Datasource: "helm", RegistryURL: "https://charts.helm.sh/stable", SkipReason: SkipInvalidVersion},
		},
		{
			name:     "empty version",
			release:  manifest.Release{Chart: strPtr("stable/example"), Version: strPtr("")},
			expected: Dependency{DepName: "example", Datasource: "helm", RegistryURL: "https://charts.helm.sh/stable", SkipReason: SkipInvalidVersion},
		},
		{
			name:     "unresolved template version",
			release:  manifest.Release{Chart: strPtr("stable/example"), Version: strPtr("{{ .Values.v")},
			expected: Dependency{DepName: "example", Datasource: "helm", RegistryURL: "https://charts.helm.sh/stable", SkipReason: SkipInvalidVersion},
		},
		{
			name:     "version range is kept verbatim",
			release:  manifest.Release{Chart: strPtr("stable/example"), Version: strPtr("~1.2.0")},
			expected: Dependency{DepName: "example", CurrentValue: "~1.2.0", Datasource: "helm", RegistryURL: "https://charts.helm.sh/stable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.release, testRepos)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Classify() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassifyOrderingProperties(t *testing.T) {
	versions := []*string{nil, strPtr(""), strPtr("1.0.0")}

	for _, version := range versions {
		for _, chart := range []string{"./a", "./stable/example", "./a?b/c/d", "../x"} {
			dep := Classify(manifest.Release{Chart: strPtr(chart), Version: version}, testRepos)
			assert.Equal(t, SkipLocalChart, dep.SkipReason, "chart %q", chart)
		}
		for _, chart := range []string{"a", "a/b/c", "stable/example/extra", "stable//example", "oci://ghcr.io/x"} {
			dep := Classify(manifest.Release{Chart: strPtr(chart), Version: version}, testRepos)
			assert.Equal(t, SkipUnsupportedChartType, dep.SkipReason, "chart %q", chart)
		}
		for _, chart := range []string{"nope/example", "nope/Ex?mple", "STABLE/example"} {
			dep := Classify(manifest.Release{Chart: strPtr(chart), Version: version}, testRepos)
			assert.Equal(t, SkipUnknownRepository, dep.SkipReason, "chart %q", chart)
		}
	}

	for _, chart := range []string{"stable/example", "kiwigrid/kube-prometheus-stack", "stable/a1"} {
		dep := Classify(manifest.Release{Chart: strPtr(chart)}, testRepos)
		assert.Equal(t, SkipInvalidVersion, dep.SkipReason, "chart %q", chart)
		assert.Equal(t, Datasource, dep.Datasource)
	}
}

func TestValidChartName(t *testing.T) {
	valid := []string{"example", "kube-prometheus-stack", "a", "a1-b2", "0"}
	invalid := []string{"", "Example", "my_chart", "my.chart", "-leading", "trailing-", "double--hyphen", "example?example", "a b"}

	for _, name := range valid {
		assert.True(t, ValidChartName(name), name)
	}
	for _, name := range invalid {
		assert.False(t, ValidChartName(name), name)
	}
}

func TestSkipReasonValid(t *testing.T) {
	for _, r := range []SkipReason{SkipNone, SkipLocalChart, SkipUnsupportedChartType, SkipUnknownRepository, SkipInvalidName, SkipInvalidVersion} {
		assert.True(t, r.Valid(), string(r))
	}
	assert.False(t, SkipReason("unknown-registry").Valid())
}
