// Package datasource looks up the published versions of charts found by the extractor.
//
// The only implementation reads the repository index files Helm keeps in its local cache
// (populated by `helm repo update`), so lookups never touch the network.
package datasource

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/helmpath"
	"helm.sh/helm/v3/pkg/repo"

	"github.com/lucas-albers-lz4/helmfile-deps/pkg/log"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/repository"
)

// DefaultCacheDuration is how long a loaded index is reused
const DefaultCacheDuration = 5 * time.Minute

// Datasource returns the versions published for chart in the repository at registryURL.
type Datasource interface {
	Versions(ctx context.Context, registryURL, chart string) ([]string, error)
}

// HelmIndex is a Datasource backed by Helm repository index files.
type HelmIndex struct {
	settings   *cli.EnvSettings
	indexFiles map[string]string
	ttl        time.Duration
	now        func() time.Time
	cache      *indexCache
}

type indexCache struct {
	entries map[string]cachedIndex
	mu      sync.RWMutex
}

type cachedIndex struct {
	index  *repo.IndexFile
	loaded time.Time
}

// Option configures a HelmIndex.
type Option func(*HelmIndex)

// WithIndexFile maps a repository URL to an index file, bypassing Helm's repository
// configuration for that URL.
func WithIndexFile(registryURL, path string) Option {
	return func(h *HelmIndex) {
		h.indexFiles[normalizeURL(registryURL)] = path
	}
}

// WithCacheDuration overrides DefaultCacheDuration.
func WithCacheDuration(d time.Duration) Option {
	return func(h *HelmIndex) {
		h.ttl = d
	}
}

// WithClock replaces time.Now for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(h *HelmIndex) {
		h.now = now
	}
}

// NewHelmIndex creates an index datasource. A nil settings uses cli.New().
func NewHelmIndex(settings *cli.EnvSettings, opts ...Option) *HelmIndex {
	if settings == nil {
		settings = cli.New()
	}
	h := &HelmIndex{
		settings:   settings,
		indexFiles: make(map[string]string),
		ttl:        DefaultCacheDuration,
		now:        time.Now,
		cache: &indexCache{
			entries: make(map[string]cachedIndex),
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Versions implements Datasource. Versions are returned newest first as ordered by the index.
func (h *HelmIndex) Versions(ctx context.Context, registryURL, chart string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if repository.IsOCI(registryURL) {
		return nil, &IndexError{URL: registryURL, Chart: chart, Err: ErrUnsupportedRegistry}
	}

	index, err := h.index(registryURL)
	if err != nil {
		return nil, &IndexError{URL: registryURL, Err: err}
	}

	entries, ok := index.Entries[chart]
	if !ok {
		return nil, &IndexError{URL: registryURL, Chart: chart, Err: ErrChartNotFound}
	}

	versions := make([]string, 0, len(entries))
	for _, cv := range entries {
		if cv == nil || cv.Metadata == nil {
			continue
		}
		versions = append(versions, cv.Version)
	}
	return versions, nil
}

// index returns the index for registryURL, using the cache if it is fresh
func (h *HelmIndex) index(registryURL string) (*repo.IndexFile, error) {
	key := normalizeURL(registryURL)

	h.cache.mu.RLock()
	if c, ok := h.cache.entries[key]; ok && h.now().Sub(c.loaded) < h.ttl {
		defer h.cache.mu.RUnlock()
		return c.index, nil
	}
	h.cache.mu.RUnlock()

	h.cache.mu.Lock()
	defer h.cache.mu.Unlock()

	// Double check after acquiring write lock
	if c, ok := h.cache.entries[key]; ok && h.now().Sub(c.loaded) < h.ttl {
		return c.index, nil
	}

	path, err := h.indexPath(key)
	if err != nil {
		return nil, err
	}

	log.Debug("Loading repository index", "url", registryURL, "path", path)
	index, err := repo.LoadIndexFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load index %s", path)
	}
	index.SortEntries()

	h.cache.entries[key] = cachedIndex{index: index, loaded: h.now()}
	return index, nil
}

// indexPath finds the cached index file of a repository: an explicit mapping first, then
// the repository with the same URL in Helm's repositories.yaml.
func (h *HelmIndex) indexPath(key string) (string, error) {
	if path, ok := h.indexFiles[key]; ok {
		return path, nil
	}

	repos, err := repo.LoadFile(h.settings.RepositoryConfig)
	if err != nil {
		return "", errors.Wrap(ErrRepositoryNotCached, err.Error())
	}
	for _, entry := range repos.Repositories {
		if normalizeURL(entry.URL) == key {
			return filepath.Join(h.settings.RepositoryCache, helmpath.CacheIndexFile(entry.Name)), nil
		}
	}
	return "", ErrRepositoryNotCached
}

// ClearCache drops every loaded index.
func (h *HelmIndex) ClearCache() {
	h.cache.mu.Lock()
	defer h.cache.mu.Unlock()

	h.cache.entries = make(map[string]cachedIndex)
}

func normalizeURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}
