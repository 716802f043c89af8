// Package lua provides the embedded Golua host used by limebar.
// It runs script panels and Lua configuration files inside a runtime with
// CPU and memory limits, capturing anything the script prints.
package lua

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// ErrClosed is returned when a closed runtime is used.
var ErrClosed = errors.New("lua runtime closed")

// Limits bounds the resources a single chunk may consume.
type Limits struct {
	// CPU is the instruction budget. 0 means unlimited.
	CPU uint64
	// Memory is the allocation budget in bytes. 0 means unlimited.
	Memory uint64
}

// DefaultLimits returns the limits applied to scripts and config files:
// 10,000,000 instructions and 50 MB.
func DefaultLimits() Limits {
	return Limits{
		CPU:    10_000_000,
		Memory: 50 * 1024 * 1024,
	}
}

// Runtime wraps a Golua runtime with resource limits and print capture.
// A Runtime is safe for concurrent use but executes one chunk at a time.
type Runtime struct {
	limits  Limits
	runtime *rt.Runtime
	output  *bytes.Buffer
	cleanup func()
	mu      sync.Mutex
}

// New creates a Runtime with the standard libraries loaded.
// If echo is non-nil, printed output is also copied to it.
func New(limits Limits, echo io.Writer) *Runtime {
	output := &bytes.Buffer{}
	var stdout io.Writer = output
	if echo != nil {
		stdout = io.MultiWriter(echo, output)
	}

	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)

	return &Runtime{
		limits:  limits,
		runtime: runtime,
		output:  output,
		cleanup: cleanup,
	}
}

// SetGlobal sets a global variable.
func (r *Runtime) SetGlobal(name string, value rt.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runtime == nil {
		return
	}
	r.runtime.GlobalEnv().Set(rt.StringValue(name), value)
}

// Global returns a global variable, or rt.NilValue.
func (r *Runtime) Global(name string) rt.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runtime == nil {
		return rt.NilValue
	}
	return r.runtime.GlobalEnv().Get(rt.StringValue(name))
}

// SetArgs exposes args to the chunk as the global arg table (1-based) and
// returns them as Lua values suitable for passing as varargs.
func (r *Runtime) SetArgs(args []string) []rt.Value {
	table := rt.NewTable()
	values := make([]rt.Value, 0, len(args))
	for i, a := range args {
		v := rt.StringValue(a)
		table.Set(rt.IntValue(int64(i+1)), v)
		values = append(values, v)
	}
	r.SetGlobal("arg", rt.TableValue(table))
	return values
}

// ExecuteFile loads path and runs it within the runtime's limits.
// The chunk receives args as its varargs.
func (r *Runtime) ExecuteFile(path string, args ...rt.Value) (rt.Value, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return rt.NilValue, fmt.Errorf("failed to read Lua file %s: %w", path, err)
	}
	return r.Execute(path, content, args...)
}

// Execute compiles code under the given chunk name and runs it within the
// runtime's limits, returning the chunk's first result.
func (r *Runtime) Execute(name string, code []byte, args ...rt.Value) (rt.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.runtime == nil {
		return rt.NilValue, ErrClosed
	}

	closure, err := r.runtime.CompileAndLoadLuaChunk(
		name,
		code,
		rt.TableValue(r.runtime.GlobalEnv()),
	)
	if err != nil {
		return rt.NilValue, fmt.Errorf("failed to load Lua chunk %s: %w", name, err)
	}

	r.runtime.PushContext(rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    r.limits.CPU,
			Memory: r.limits.Memory,
		},
	})
	defer r.runtime.PopContext()

	result, err := rt.Call1(r.runtime.MainThread(), rt.FunctionValue(closure), args...)
	if err != nil {
		return rt.NilValue, fmt.Errorf("Lua execution error: %w", err)
	}
	return result, nil
}

// Output returns everything printed since the runtime was created.
func (r *Runtime) Output() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.output.String()
}

// Close releases the runtime. It is safe to call more than once.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cleanup != nil {
		r.cleanup()
		r.cleanup = nil
	}
	r.runtime = nil
	return nil
}
