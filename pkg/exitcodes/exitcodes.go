// Package exitcodes defines the process exit codes of helmfile-deps.
// Codes are grouped in ranges:
//
//	0:     Success
//	1-9:   Input/Configuration Errors (missing flags, invalid config, missing manifests)
//	10-19: Extraction Errors (nothing extracted, index lookups)
//	20-29: Runtime Errors (I/O errors, system failures)
package exitcodes

import (
	"errors"
	"fmt"
)

// Exit code constants organized by category
const (
	// Success (0)
	ExitSuccess = 0

	// Input/Configuration Errors (1-9)
	ExitMissingRequiredFlag     = 1 // Required argument or flag not provided
	ExitInputConfigurationError = 2 // Invalid configuration, alias file or flag value
	ExitManifestNotFound        = 4 // Helmfile manifest not found

	// Extraction Errors (10-19)
	ExitNothingExtracted = 10 // No dependency found in any manifest (--fail-on-empty)
	ExitIndexLookupError = 11 // Repository index could not be loaded or queried

	// Runtime Errors (20-29)
	ExitGeneralRuntimeError = 20 // General runtime/system error
	ExitIOError             = 21 // IO operation error
)

// ExitCodeError wraps an error with an exit code. Commands return it and main
// turns it into the process exit status.
type ExitCodeError struct {
	Code int   // Exit code to return
	Err  error // Underlying error
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d: %v", e.Code, e.Err)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// IsExitCodeError checks if an error is an ExitCodeError and returns its code.
// Returns false and 0 if the error is not an ExitCodeError.
func IsExitCodeError(err error) (int, bool) {
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// CodeDescriptions maps exit codes to their human-readable descriptions
var CodeDescriptions = map[int]string{
	ExitSuccess:                 "Success",
	ExitMissingRequiredFlag:     "Required argument or flag not provided",
	ExitInputConfigurationError: "Invalid configuration",
	ExitManifestNotFound:        "Helmfile manifest not found",
	ExitNothingExtracted:        "No dependency extracted",
	ExitIndexLookupError:        "Repository index lookup failed",
	ExitGeneralRuntimeError:     "General runtime/system error",
	ExitIOError:                 "IO operation error",
}
