package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigExtension indicates an alias file without a .yaml or .yml extension.
	ErrConfigExtension = errors.New("alias file must end with .yaml or .yml")
	// ErrConfigNotExist indicates a missing alias file.
	ErrConfigNotExist = errors.New("alias file does not exist")
)

// ConfigError wraps a failure to load alias configuration from Path.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("alias configuration %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// AliasError describes a single invalid alias definition.
type AliasError struct {
	Name   string
	URL    string
	Reason string
}

func (e *AliasError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("invalid alias %q: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("invalid alias %q (%s): %s", e.Name, e.URL, e.Reason)
}
