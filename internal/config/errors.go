package config

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrFileNotFound is returned when the configuration file does not exist.
	ErrFileNotFound = errors.New("config file not found")

	// ErrParse is returned when the configuration file cannot be parsed.
	ErrParse = errors.New("invalid config file")
)

// LoadError describes a configuration file that could not be loaded.
// It matches ErrFileNotFound or ErrParse with errors.Is.
type LoadError struct {
	// Path is the file that failed to load.
	Path string
	// Kind is ErrFileNotFound or ErrParse.
	Kind error
	// Err is the underlying cause, if any.
	Err error
	// ModTime is the file's modification time, zero when it does not exist.
	ModTime time.Time
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if errors.Is(e.Kind, ErrFileNotFound) || e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%v %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap returns both the kind and the cause so errors.Is matches either.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
