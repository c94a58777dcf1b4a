// Package debug prints "[DEBUG]"-prefixed trace output to stderr when enabled by the
// --debug flag or the HELMFILE_DEPS_DEBUG environment variable.
package debug

import (
	"fmt"
	"io"
	"os"
	"strconv"
)

// EnvVar enables debug tracing when set to a true boolean value.
const EnvVar = "HELMFILE_DEPS_DEBUG"

var (
	// Enabled reports whether debug output is written.
	Enabled bool

	out    io.Writer = os.Stderr
	prefix           = "[DEBUG] "
)

// Init enables tracing when force is set or EnvVar parses as true.
func Init(force bool) {
	if force {
		Enabled = true
		return
	}
	v, err := strconv.ParseBool(os.Getenv(EnvVar))
	Enabled = err == nil && v
}

// SetOutput redirects debug output and returns a function restoring the previous writer.
func SetOutput(w io.Writer) func() {
	old := out
	out = w
	return func() { out = old }
}

// Printf prints a formatted debug line if debug output is enabled.
func Printf(format string, args ...interface{}) {
	if Enabled {
		fmt.Fprintf(out, prefix+format+"\n", args...)
	}
}

// DumpValue prints a labelled value using %+v.
func DumpValue(label string, value interface{}) {
	if Enabled {
		fmt.Fprintf(out, "%s%s: %+v\n", prefix, label, value)
	}
}
