// Package provider implements the content producers behind each panel
// variant. A provider maps (command, options) to text or an error; it never
// panics past its boundary and never touches panel state.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// ErrScriptNotFound is returned when a script panel's command does not name
// an existing file.
var ErrScriptNotFound = errors.New("script not found")

// Provider produces raw panel text.
// Implementations may block (process I/O, script execution, network); they
// are always invoked off the coordinating goroutine unless they also
// implement Inline.
type Provider interface {
	Produce(ctx context.Context, command, options string) (string, error)
}

// Inline is implemented by providers that never block. The scheduler runs
// their first update synchronously so a freshly started panel has text
// immediately.
type Inline interface {
	Inline() bool
}

// IsInline reports whether p can safely run on the coordinating goroutine.
func IsInline(p Provider) bool {
	in, ok := p.(Inline)
	return ok && in.Inline()
}

// Func adapts an ordinary function to the Provider interface.
type Func func(ctx context.Context, command, options string) (string, error)

// Produce calls f.
func (f Func) Produce(ctx context.Context, command, options string) (string, error) {
	return f(ctx, command, options)
}

// Error is a failure scoped to a single provider invocation.
// It is rendered as the owning panel's display text and never propagates
// beyond the scheduler.
type Error struct {
	// Provider names the variant that failed (e.g. "command", "script").
	Provider string
	// Command is the command or script path that was being run.
	Command string
	// Err is the underlying cause.
	Err error
}

// Error returns the underlying message only; the panel adds its own
// diagnostic prefix.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %q failed", e.Provider, e.Command)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// fail wraps err as a provider Error.
func fail(provider, command string, err error) error {
	return &Error{Provider: provider, Command: command, Err: err}
}
