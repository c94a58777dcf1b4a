package extract

import (
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/debug"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/log"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/manifest"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/repository"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/template"
)

// ExtractPackageFile extracts the chart dependencies declared in a helmfile manifest.
// fileName is only used in log messages. It returns nil when no document of the
// manifest contains a release.
func ExtractPackageFile(content, fileName string, cfg Config) (result *PackageFile) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("Recovered from panic during extraction", "file", fileName, "panic", r)
			result = nil
		}
	}()

	sanitized := template.Sanitize(content)
	if template.HasTemplating(content) {
		log.Debug("Removed template syntax before parsing", "file", fileName)
		debug.Printf("Sanitized %s:\n%s", fileName, sanitized)
	}

	docs, failures := manifest.Load(sanitized)
	for _, failure := range failures {
		log.Debug("Skipping unparsable helmfile document", "file", fileName, "document", failure.Index, "error", failure.Err)
	}

	repos := repository.Resolve(cfg.Aliases, docs)

	var deps []Dependency
	for _, doc := range docs {
		for _, rel := range doc.Releases {
			dep := Classify(rel, repos)
			if dep.Skipped() {
				log.Debug("Skipping release", "file", fileName, "release", manifest.StringValue(rel.Name), "reason", dep.SkipReason)
			}
			deps = append(deps, dep)
		}
	}

	if len(deps) == 0 {
		log.Debug("No releases found", "file", fileName)
		return nil
	}
	return &PackageFile{Datasource: Datasource, Deps: deps}
}

// Trackable returns the dependencies without a skip reason.
func (p *PackageFile) Trackable() []Dependency {
	if p == nil {
		return nil
	}
	var deps []Dependency
	for _, dep := range p.Deps {
		if !dep.Skipped() {
			deps = append(deps, dep)
		}
	}
	return deps
}
