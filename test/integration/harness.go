// Package integration provides a harness for running the helmfile-deps binary in tests.
package integration

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// defaultFilePerm defines the default file permissions (rw-------)
	defaultFilePerm = 0o600
	binaryName      = "helmfile-deps"
)

// TestHarness runs the compiled binary inside a temporary working directory.
type TestHarness struct {
	t       *testing.T
	tempDir string
	rootDir string
	env     []string
	logger  *log.Logger
}

// NewTestHarness creates a harness with an isolated HOME and Helm configuration.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	rootDir, err := getProjectRoot()
	require.NoError(t, err, "Failed to get project root in NewTestHarness")

	tempDir := t.TempDir()
	h := &TestHarness{
		t:       t,
		tempDir: tempDir,
		rootDir: rootDir,
		env: append(os.Environ(),
			"HOME="+tempDir,
			"HELM_REPOSITORY_CONFIG="+filepath.Join(tempDir, "repositories.yaml"),
			"HELM_REPOSITORY_CACHE="+filepath.Join(tempDir, "cache"),
		),
		logger: log.New(os.Stdout, fmt.Sprintf("[HARNESS %s] ", t.Name()), log.LstdFlags),
	}
	h.logger.Printf("Initialized harness in temp dir: %s", tempDir)
	return h
}

// WriteFile writes content to name inside the harness directory and returns its path.
func (h *TestHarness) WriteFile(name, content string) string {
	h.t.Helper()
	path := filepath.Join(h.tempDir, name)
	require.NoError(h.t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(h.t, os.WriteFile(path, []byte(content), defaultFilePerm))
	return path
}

// GetTestdataPath returns the absolute path of a file in this package's testdata directory.
func (h *TestHarness) GetTestdataPath(relativePath string) string {
	absPath, err := filepath.Abs(filepath.Join("testdata", relativePath))
	if err != nil {
		h.t.Fatalf("Failed to get absolute path for testdata: %v", err)
	}
	return absPath
}

// Execute runs the binary and returns stdout and stderr separately.
func (h *TestHarness) Execute(args ...string) (stdout, stderr string, err error) {
	binPath := h.getBinaryPath()
	// #nosec G204 -- arguments are controlled by the test
	cmd := exec.Command(binPath, args...)
	cmd.Dir = h.tempDir
	cmd.Env = h.env
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	h.logger.Printf("[HARNESS EXECUTE] Command: %s %s", binPath, strings.Join(args, " "))
	err = cmd.Run()
	if errOut.Len() > 0 {
		h.logger.Printf("[HARNESS EXECUTE] Stderr:\n%s", errOut.String())
	}
	return out.String(), errOut.String(), err
}

// AssertExitCode runs the binary with args and checks its exit code.
func (h *TestHarness) AssertExitCode(expected int, args ...string) {
	h.t.Helper()
	stdout, stderr, runErr := h.Execute(args...)

	var exitErr *exec.ExitError
	switch {
	case errors.As(runErr, &exitErr):
		assert.Equal(h.t, expected, exitErr.ExitCode(),
			"Expected exit code %d but got %d\nArgs: %v\nStdout:\n%s\nStderr:\n%s", expected, exitErr.ExitCode(), args, stdout, stderr)
	case runErr != nil:
		h.t.Fatalf("Command failed to run: %v\nArgs: %v", runErr, args)
	case expected != 0:
		h.t.Fatalf("Expected exit code %d but command succeeded.\nArgs: %v\nStdout:\n%s", expected, args, stdout)
	}
}

func (h *TestHarness) getBinaryPath() string {
	return filepath.Join(h.rootDir, "bin", binaryName)
}

// getProjectRoot finds the project root directory by searching upwards for go.mod
func getProjectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("failed to find project root (go.mod) starting from %s", wd)
		}
		dir = parent
	}
}

// buildBinary compiles cmd/helmfile-deps into <root>/bin. It is called once from TestMain.
func buildBinary() error {
	rootDir, err := getProjectRoot()
	if err != nil {
		return fmt.Errorf("failed to find project root: %w", err)
	}

	binDir := filepath.Join(rootDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil { // #nosec G301
		return fmt.Errorf("failed to create bin directory %s: %w", binDir, err)
	}

	// #nosec G204 -- Building the project's own binary is safe.
	cmd := exec.Command("go", "build", "-o", filepath.Join(binDir, binaryName), "./cmd/helmfile-deps")
	cmd.Dir = rootDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("go build failed with exit code %d: %w\nOutput:\n%s", exitErr.ExitCode(), err, string(output))
		}
		return fmt.Errorf("go build failed: %w\nOutput:\n%s", err, string(output))
	}
	return nil
}
