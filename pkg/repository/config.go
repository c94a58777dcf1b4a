package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/spf13/afero"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/repo"
	"sigs.k8s.io/yaml"

	"github.com/lucas-albers-lz4/helmfile-deps/pkg/debug"
)

// AliasFile is the on-disk format of an alias configuration file:
//
//	aliases:
//	  stable: https://charts.helm.sh/stable
//	  bitnami: oci://registry-1.docker.io/bitnamicharts
type AliasFile struct {
	Aliases map[string]string `json:"aliases"`
}

// LoadAliasFile reads and validates an alias configuration file from fsys.
func LoadAliasFile(fsys afero.Fs, path string) (map[string]string, error) {
	if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
		return nil, &ConfigError{Path: path, Err: ErrConfigExtension}
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Path: path, Err: fmt.Errorf("%w: %w", ErrConfigNotExist, err)}
		}
		return nil, &ConfigError{Path: path, Err: err}
	}

	debug.Printf("LoadAliasFile: parsing %s", path)

	var file AliasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("parse: %w", err)}
	}
	if err := ValidateAliases(file.Aliases); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	if file.Aliases == nil {
		file.Aliases = map[string]string{}
	}
	return file.Aliases, nil
}

// ValidateAliases checks that every alias has a usable name and an absolute
// http, https or oci URL.
func ValidateAliases(aliases map[string]string) error {
	for _, name := range Map(aliases).Names() {
		if err := validateAlias(name, aliases[name]); err != nil {
			return err
		}
	}
	return nil
}

func validateAlias(name, raw string) error {
	if strings.TrimSpace(name) == "" {
		return &AliasError{Name: name, URL: raw, Reason: "empty alias name"}
	}
	if strings.Contains(name, "/") {
		return &AliasError{Name: name, URL: raw, Reason: "alias name must not contain '/'"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return &AliasError{Name: name, URL: raw, Reason: err.Error()}
	}
	switch u.Scheme {
	case "http", "https", "oci":
	default:
		return &AliasError{Name: name, URL: raw, Reason: "URL scheme must be http, https or oci"}
	}
	if u.Host == "" {
		return &AliasError{Name: name, URL: raw, Reason: "URL has no host"}
	}
	return nil
}

// ParseAliasFlags parses "name=url" pairs as given on the command line.
func ParseAliasFlags(pairs []string) (map[string]string, error) {
	aliases := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, u, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, &AliasError{Name: pair, Reason: "expected name=url"}
		}
		name, u = strings.TrimSpace(name), strings.TrimSpace(u)
		if err := validateAlias(name, u); err != nil {
			return nil, err
		}
		aliases[name] = u
	}
	return aliases, nil
}

// DefaultHelmRepositoriesPath returns the repositories.yaml location Helm itself uses.
func DefaultHelmRepositoriesPath() string {
	return cli.New().RepositoryConfig
}

// LoadHelmRepositories imports the repositories configured in Helm's repositories.yaml
// as aliases. A missing file yields an empty table.
func LoadHelmRepositories(path string) (map[string]string, error) {
	file, err := repo.LoadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			debug.Printf("LoadHelmRepositories: %s does not exist", path)
			return map[string]string{}, nil
		}
		return nil, &ConfigError{Path: path, Err: err}
	}

	aliases := make(map[string]string, len(file.Repositories))
	for _, entry := range file.Repositories {
		if entry == nil || entry.Name == "" || entry.URL == "" {
			continue
		}
		aliases[entry.Name] = entry.URL
	}
	return aliases, nil
}
