package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/opd-ai/go-limebar/internal/lua"
)

// Script runs a Lua file in a fresh sandboxed runtime on every invocation.
// Text printed by the script is returned when present; otherwise the string
// form of the script's first return value.
type Script struct {
	// Limits bounds each run. The zero value means lua.DefaultLimits.
	Limits lua.Limits
}

// Produce executes the script at path command. The options string is split
// into the global arg table and passed as the chunk's varargs.
func (s *Script) Produce(ctx context.Context, command, options string) (string, error) {
	info, err := os.Stat(command)
	if err != nil || info.IsDir() {
		return "", fail("script", command, ErrScriptNotFound)
	}

	args, err := SplitArgs(options)
	if err != nil {
		return "", fail("script", command, err)
	}

	limits := lua.DefaultLimits()
	if s != nil && s.Limits != (lua.Limits{}) {
		limits = s.Limits
	}

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("script panicked: %v", r)}
			}
		}()

		host := lua.New(limits, nil)
		defer host.Close()

		result, err := host.ExecuteFile(command, host.SetArgs(args)...)
		if err != nil {
			done <- outcome{err: err}
			return
		}
		if out := host.Output(); out != "" {
			done <- outcome{text: out}
			return
		}
		done <- outcome{text: lua.String(result)}
	}()

	// The interpreter cannot be interrupted; on cancellation the run is
	// abandoned and finishes within its CPU budget.
	select {
	case o := <-done:
		if o.err != nil {
			return "", fail("script", command, o.err)
		}
		return o.text, nil
	case <-ctx.Done():
		return "", fail("script", command, ctx.Err())
	}
}
