package config

import (
	"testing"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_LIMEBAR_VAR", "test_value")
	t.Setenv("TEST_LIMEBAR_HOST", "ops@build01")
	t.Setenv("TEST_LIMEBAR_PATH", "/home/user/.config")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no variables",
			input:    "plain text without variables",
			expected: "plain text without variables",
		},
		{
			name:     "simple ${VAR} format",
			input:    "prefix ${TEST_LIMEBAR_VAR} suffix",
			expected: "prefix test_value suffix",
		},
		{
			name:     "simple $VAR format",
			input:    "prefix $TEST_LIMEBAR_VAR suffix",
			expected: "prefix test_value suffix",
		},
		{
			name:     "unset variable becomes empty",
			input:    "prefix ${UNSET_VAR_12345} suffix",
			expected: "prefix  suffix",
		},
		{
			name:     "unset variable with default",
			input:    "prefix ${UNSET_VAR_12345:-default_value} suffix",
			expected: "prefix default_value suffix",
		},
		{
			name:     "set variable ignores default",
			input:    "${TEST_LIMEBAR_HOST:-localhost}",
			expected: "ops@build01",
		},
		{
			name:     "empty default",
			input:    "${UNSET_VAR_12345:-}",
			expected: "",
		},
		{
			name:     "adjacent variables",
			input:    "${TEST_LIMEBAR_PATH}/${TEST_LIMEBAR_VAR}",
			expected: "/home/user/.config/test_value",
		},
		{
			name:     "dollar without name",
			input:    "costs $5",
			expected: "costs $5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.input); got != tt.expected {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExpandEnvPanel(t *testing.T) {
	t.Setenv("TEST_LIMEBAR_SCRIPTS", "/opt/scripts")
	t.Setenv("TEST_LIMEBAR_HOST", "ops@build01")

	p := PanelConfig{
		Command:      "${TEST_LIMEBAR_SCRIPTS}/load.lua",
		Options:      "--host $TEST_LIMEBAR_HOST",
		Text:         "on ${TEST_LIMEBAR_HOST}",
		Host:         "${TEST_LIMEBAR_HOST}",
		LayoutString: "${TEST_LIMEBAR_HOST} {content}",
		Foreground:   "$TEST_LIMEBAR_HOST",
	}
	ExpandEnvPanel(&p)

	if p.Command != "/opt/scripts/load.lua" {
		t.Errorf("Command = %q", p.Command)
	}
	if p.Options != "--host ops@build01" {
		t.Errorf("Options = %q", p.Options)
	}
	if p.Text != "on ops@build01" {
		t.Errorf("Text = %q", p.Text)
	}
	if p.Host != "ops@build01" {
		t.Errorf("Host = %q", p.Host)
	}
	if p.LayoutString != "${TEST_LIMEBAR_HOST} {content}" {
		t.Errorf("LayoutString should not be expanded, got %q", p.LayoutString)
	}
	if p.Foreground != "$TEST_LIMEBAR_HOST" {
		t.Errorf("Foreground should not be expanded, got %q", p.Foreground)
	}
}

func TestExpandEnvConfig(t *testing.T) {
	t.Setenv("TEST_LIMEBAR_VAR", "x")

	cfg := &Config{Panels: []PanelConfig{
		{Command: "$TEST_LIMEBAR_VAR"},
		{Command: "${TEST_LIMEBAR_VAR}y"},
	}}
	ExpandEnvConfig(cfg)

	if cfg.Panels[0].Command != "x" || cfg.Panels[1].Command != "xy" {
		t.Errorf("unexpected commands: %q, %q", cfg.Panels[0].Command, cfg.Panels[1].Command)
	}

	// Should not panic.
	ExpandEnvConfig(nil)
	ExpandEnvPanel(nil)
}
