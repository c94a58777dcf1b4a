package datasource

import (
	"context"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"github.com/lucas-albers-lz4/helmfile-deps/pkg/extract"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/log"
)

// Update lists the versions available for one trackable dependency.
type Update struct {
	DepName      string   `json:"depName"`
	RegistryURL  string   `json:"registryUrl"`
	CurrentValue string   `json:"currentValue"`
	Latest       string   `json:"latest,omitempty"`
	Newer        []string `json:"newer,omitempty"`
	// Comparable is false when CurrentValue is not a semantic version; Newer is then empty
	// and Latest is the highest published version.
	Comparable bool `json:"comparable"`
}

// Updates queries ds for every trackable dependency in deps. Dependencies with a skip
// reason and registries the datasource does not support are left out. Any other lookup
// failure aborts and is returned.
func Updates(ctx context.Context, ds Datasource, deps []extract.Dependency) ([]Update, error) {
	var updates []Update
	for _, dep := range deps {
		if dep.Skipped() {
			continue
		}

		published, err := ds.Versions(ctx, dep.RegistryURL, dep.DepName)
		if errors.Is(err, ErrUnsupportedRegistry) {
			log.Debug("Skipping dependency on unsupported registry", "chart", dep.DepName, "url", dep.RegistryURL)
			continue
		}
		if err != nil {
			return nil, err
		}

		updates = append(updates, compare(dep, published))
	}
	return updates, nil
}

func compare(dep extract.Dependency, published []string) Update {
	u := Update{
		DepName:      dep.DepName,
		RegistryURL:  dep.RegistryURL,
		CurrentValue: dep.CurrentValue,
	}

	available := parseVersions(published)
	current, err := semver.NewVersion(dep.CurrentValue)
	if err != nil {
		log.Debug("Current version is not semver", "chart", dep.DepName, "version", dep.CurrentValue)
		for _, v := range available {
			if v.Prerelease() == "" {
				u.Latest = v.Original()
				break
			}
		}
		return u
	}

	u.Comparable = true
	for _, v := range available {
		// Prereleases are only offered to dependencies already on a prerelease.
		if v.Prerelease() != "" && current.Prerelease() == "" {
			continue
		}
		if v.GreaterThan(current) {
			u.Newer = append(u.Newer, v.Original())
		}
	}
	if len(u.Newer) > 0 {
		u.Latest = u.Newer[0]
	}
	return u
}

// parseVersions drops unparsable versions and sorts the rest newest first.
func parseVersions(raw []string) []*semver.Version {
	versions := make([]*semver.Version, 0, len(raw))
	for _, r := range raw {
		v, err := semver.NewVersion(r)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	sort.Sort(sort.Reverse(semver.Collection(versions)))
	return versions
}
