package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucas-albers-lz4/helmfile-deps/pkg/datasource"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/exitcodes"
)

// setupUpdatesFixture writes a helmfile and a bitnami index.yaml to a temporary directory
// on the OS filesystem, where Helm's index loader reads from.
func setupUpdatesFixture(t *testing.T) (helmfilePath, indexPath string) {
	t.Helper()
	t.Cleanup(SetFs(afero.NewOsFs()))
	isolateEnvironment(t)

	dir := t.TempDir()
	helmfilePath = filepath.Join(dir, "helmfile.yaml")
	indexPath = filepath.Join(dir, "index.yaml")

	require.NoError(t, os.WriteFile(helmfilePath, []byte(heredoc.Doc(`
		repositories:
		  - name: bitnami
		    url: https://charts.bitnami.com/bitnami
		  - name: ghcr
		    url: ghcr.io/charts
		    oci: true
		releases:
		  - name: rabbitmq
		    chart: bitnami/rabbitmq
		    version: 7.4.3
		  - name: redis
		    chart: ghcr/redis
		    version: 1.0.0
		  - name: local
		    chart: ./local
	`)), 0o600))

	require.NoError(t, os.WriteFile(indexPath, []byte(heredoc.Doc(`
		apiVersion: v1
		entries:
		  rabbitmq:
		    - apiVersion: v2
		      name: rabbitmq
		      version: 8.0.0
		    - apiVersion: v2
		      name: rabbitmq
		      version: 7.5.0
		    - apiVersion: v2
		      name: rabbitmq
		      version: 7.4.3
		generated: "2024-01-01T00:00:00Z"
	`)), 0o600))
	return helmfilePath, indexPath
}

func TestUpdatesCommand(t *testing.T) {
	helmfilePath, indexPath := setupUpdatesFixture(t)

	out, err := executeCommand(newRootCmd(), "updates",
		"--index-file", "https://charts.bitnami.com/bitnami="+indexPath, helmfilePath)
	require.NoError(t, err)

	var got []datasource.Update
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, datasource.Update{
		DepName:      "rabbitmq",
		RegistryURL:  "https://charts.bitnami.com/bitnami",
		CurrentValue: "7.4.3",
		Latest:       "8.0.0",
		Newer:        []string{"8.0.0", "7.5.0"},
		Comparable:   true,
	}, got[0])
}

func TestUpdatesCommandErrors(t *testing.T) {
	helmfilePath, indexPath := setupUpdatesFixture(t)

	_, err := executeCommand(newRootCmd(), "updates", helmfilePath)
	requireExitCode(t, err, exitcodes.ExitIndexLookupError)

	_, err = executeCommand(newRootCmd(), "updates", "--index-file", indexPath, helmfilePath)
	requireExitCode(t, err, exitcodes.ExitInputConfigurationError)

	_, err = executeCommand(newRootCmd(), "updates")
	requireExitCode(t, err, exitcodes.ExitMissingRequiredFlag)

	_, err = executeCommand(newRootCmd(), "updates", filepath.Join(filepath.Dir(helmfilePath), "missing.yaml"))
	requireExitCode(t, err, exitcodes.ExitManifestNotFound)
}

func TestUpdatesCommandWithoutReleases(t *testing.T) {
	setupMemoryFS(t, map[string]string{"/helmfile.yaml": "repositories: []\n"})

	out, err := executeCommand(newRootCmd(), "updates", "/helmfile.yaml")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}
