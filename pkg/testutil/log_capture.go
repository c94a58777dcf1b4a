// Package testutil holds helpers shared by the package tests of helmfile-deps.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/lucas-albers-lz4/helmfile-deps/pkg/log"
	"github.com/stretchr/testify/assert"
)

// mutex serialises tests that swap the global logger output.
var mutex sync.Mutex

// CaptureJSONLogs runs testFunc with the logger writing JSON at logLevel into a buffer
// and returns the raw output together with one decoded map per log line.
func CaptureJSONLogs(t *testing.T, logLevel log.Level, testFunc func()) (string, []map[string]interface{}) {
	t.Helper()
	t.Setenv(log.FormatEnvVar, "json")

	mutex.Lock()
	defer mutex.Unlock()

	originalLevel := log.CurrentLevel()
	var buf bytes.Buffer
	restore := log.SetOutput(&buf)
	log.SetLevel(logLevel)
	defer func() {
		log.SetLevel(originalLevel)
		restore()
	}()

	testFunc()

	output := buf.String()
	var entries []map[string]interface{}
	for i, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("%v", fmt.Errorf("log line %d is not JSON: %w\n%s", i+1, err, line))
		}
		entries = append(entries, entry)
	}
	return output, entries
}

// AssertLogContainsJSON fails the test unless some entry carries every key/value of expected.
func AssertLogContainsJSON(t *testing.T, logs []map[string]interface{}, expected map[string]interface{}) {
	t.Helper()
	for _, entry := range logs {
		if containsAll(entry, expected) {
			return
		}
	}
	got, _ := json.MarshalIndent(logs, "", "  ")       //nolint:errcheck // test helper
	want, _ := json.MarshalIndent(expected, "", "  ") //nolint:errcheck // test helper
	assert.Fail(t, "expected log entry not found", "want entry containing:\n%s\n\ncaptured:\n%s", want, got)
}

func containsAll(actual, expected map[string]interface{}) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok {
			return false
		}
		if n, isNum := got.(float64); isNum {
			if i, isInt := want.(int); isInt {
				if n != float64(i) {
					return false
				}
				continue
			}
		}
		if got != want {
			return false
		}
	}
	return true
}
