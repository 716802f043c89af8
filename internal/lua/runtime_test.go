package lua

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	rt "github.com/arnodel/golua/runtime"
)

func TestDefaultLimits(t *testing.T) {
	limits := DefaultLimits()

	if limits.CPU != 10_000_000 {
		t.Errorf("expected CPU 10000000, got %d", limits.CPU)
	}
	if limits.Memory != 50*1024*1024 {
		t.Errorf("expected Memory %d, got %d", 50*1024*1024, limits.Memory)
	}
}

func TestExecute(t *testing.T) {
	r := New(DefaultLimits(), nil)
	defer r.Close()

	result, err := r.Execute("test", []byte(`return 1 + 2`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := result.TryInt(); !ok || n != 3 {
		t.Errorf("expected 3, got %v", result)
	}
}

func TestExecute_CompileError(t *testing.T) {
	r := New(DefaultLimits(), nil)
	defer r.Close()

	if _, err := r.Execute("bad", []byte(`return (`)); err == nil {
		t.Error("expected compile error")
	}
}

func TestOutputCapture(t *testing.T) {
	echo := &bytes.Buffer{}
	r := New(DefaultLimits(), echo)
	defer r.Close()

	if _, err := r.Execute("print", []byte(`print("one") print("two")`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := r.Output(); got != "one\ntwo\n" {
		t.Errorf("Output = %q", got)
	}
	if echo.String() != "one\ntwo\n" {
		t.Errorf("echo = %q", echo.String())
	}
}

func TestExecuteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.lua")
	if err := os.WriteFile(path, []byte(`local first = ... return first .. "!"`), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New(DefaultLimits(), nil)
	defer r.Close()

	result, err := r.ExecuteFile(path, r.SetArgs([]string{"hey"})...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if String(result) != "hey!" {
		t.Errorf("got %q", String(result))
	}

	if _, err := r.ExecuteFile(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGlobals(t *testing.T) {
	r := New(DefaultLimits(), nil)
	defer r.Close()

	r.SetGlobal("greeting", rt.StringValue("hello"))
	if _, err := r.Execute("g", []byte(`answer = greeting .. " back"`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := String(r.Global("answer")); got != "hello back" {
		t.Errorf("answer = %q", got)
	}
	if r.Global("undefined") != rt.NilValue {
		t.Error("expected nil for undefined global")
	}
}

func TestCPULimit(t *testing.T) {
	r := New(Limits{CPU: 50_000}, nil)
	defer r.Close()

	var err error
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err = errors.New("limit exceeded")
			}
		}()
		_, err = r.Execute("loop", []byte(`while true do end`))
	}()
	if err == nil {
		t.Error("expected infinite loop to hit the CPU limit")
	}
}

func TestClose(t *testing.T) {
	r := New(DefaultLimits(), nil)
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := r.Execute("x", []byte(`return 1`)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		v    rt.Value
		want string
	}{
		{"nil", rt.NilValue, ""},
		{"string", rt.StringValue("x"), "x"},
		{"int", rt.IntValue(-7), "-7"},
		{"float", rt.FloatValue(1.5), "1.5"},
		{"bool", rt.BoolValue(true), "true"},
		{"table", rt.TableValue(rt.NewTable()), "table"},
	}
	for _, tt := range tests {
		if got := String(tt.v); got != tt.want {
			t.Errorf("%s: String = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestToGo(t *testing.T) {
	r := New(DefaultLimits(), nil)
	defer r.Close()

	result, err := r.Execute("t", []byte(`
return {
  name = "cpu",
  width = 20,
  ratio = 0.5,
  enabled = true,
  items = { "a", "b", "c" },
  nested = { key = "value" },
}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, ok := ToGo(result).(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", ToGo(result))
	}
	if m["name"] != "cpu" {
		t.Errorf("name = %v", m["name"])
	}
	if m["width"] != int64(20) {
		t.Errorf("width = %#v", m["width"])
	}
	if m["ratio"] != 0.5 {
		t.Errorf("ratio = %#v", m["ratio"])
	}
	if m["enabled"] != true {
		t.Errorf("enabled = %#v", m["enabled"])
	}
	items, ok := m["items"].([]any)
	if !ok || len(items) != 3 || items[2] != "c" {
		t.Errorf("items = %#v", m["items"])
	}
	nested, ok := m["nested"].(map[string]any)
	if !ok || nested["key"] != "value" {
		t.Errorf("nested = %#v", m["nested"])
	}
}
