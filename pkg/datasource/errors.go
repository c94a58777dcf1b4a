package datasource

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedRegistry is returned for registries the index datasource cannot read,
	// such as OCI registries.
	ErrUnsupportedRegistry = errors.New("registry not supported by the helm index datasource")
	// ErrRepositoryNotCached means no local index file is known for the registry URL.
	ErrRepositoryNotCached = errors.New("no cached index for repository")
	// ErrChartNotFound means the index has no entry for the chart.
	ErrChartNotFound = errors.New("chart not found in repository index")
)

// IndexError reports a failed version lookup against a repository index.
type IndexError struct {
	URL   string
	Chart string
	Err   error
}

func (e *IndexError) Error() string {
	if e.Chart == "" {
		return fmt.Sprintf("repository %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("chart %s in repository %s: %v", e.Chart, e.URL, e.Err)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}
