package testutil

import (
	"bytes"
	"io"
	"testing"

	"github.com/lucas-albers-lz4/helmfile-deps/pkg/log"
)

// SuppressLogging discards log output until the returned function is called.
func SuppressLogging() func() {
	mutex.Lock()
	defer mutex.Unlock()
	return log.SetOutput(io.Discard)
}

// UseTestLogger buffers log output for the duration of the test and prints it only
// when the test fails.
func UseTestLogger(t *testing.T) {
	t.Helper()
	if testing.Verbose() {
		return
	}

	var buf bytes.Buffer
	restore := log.SetOutput(&buf)
	t.Cleanup(func() {
		restore()
		if t.Failed() {
			t.Logf("log output captured during test:\n%s", buf.String())
		}
	})
}
