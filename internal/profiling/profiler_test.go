package profiling

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigEnabled(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   bool
	}{
		{"empty", Config{}, false},
		{"cpu", Config{CPUProfilePath: "cpu.prof"}, true},
		{"mem", Config{MemProfilePath: "mem.prof"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProfilerStartStop(t *testing.T) {
	dir := t.TempDir()
	cpuPath := filepath.Join(dir, "cpu.prof")
	memPath := filepath.Join(dir, "mem.prof")

	p := New(Config{CPUProfilePath: cpuPath, MemProfilePath: memPath})
	if err := p.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !p.IsRunning() {
		t.Error("IsRunning() should be true after Start()")
	}
	if err := p.Start(); err == nil {
		t.Error("Start() should fail when already running")
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if p.IsRunning() {
		t.Error("IsRunning() should be false after Stop()")
	}

	for _, path := range []string{cpuPath, memPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("profile %s not written: %v", filepath.Base(path), err)
		}
	}
}

func TestProfilerMemoryOnly(t *testing.T) {
	memPath := filepath.Join(t.TempDir(), "mem.prof")

	p := New(Config{MemProfilePath: memPath})
	if err := p.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if _, err := os.Stat(memPath); err != nil {
		t.Errorf("memory profile not written: %v", err)
	}
}

func TestProfilerStopWithoutStart(t *testing.T) {
	if err := New(Config{}).Stop(); err == nil {
		t.Error("Stop() should fail when not running")
	}
}

func TestProfilerBadPath(t *testing.T) {
	p := New(Config{CPUProfilePath: filepath.Join(t.TempDir(), "missing", "cpu.prof")})
	if err := p.Start(); err == nil {
		t.Error("Start() should fail for an unwritable path")
	}
	if p.IsRunning() {
		t.Error("failed Start() must not leave the profiler running")
	}
}
