package config

import (
	"strings"
	"testing"
)

func validPanel() PanelConfig {
	p := DefaultPanelConfig()
	p.PanelType = "clock"
	p.Name = "clock"
	return p
}

func TestValidatorWithStrictMode(t *testing.T) {
	v := NewValidator().WithStrictMode(true)
	if !v.strictMode {
		t.Error("strictMode should be true after WithStrictMode(true)")
	}
	if NewValidator().strictMode {
		t.Error("strictMode should default to false")
	}
}

func TestValidationErrorError(t *testing.T) {
	ve := ValidationError{Field: "panels[0].Name", Message: "name is required"}
	if ve.Error() != "panels[0].Name: name is required" {
		t.Errorf("unexpected message %q", ve.Error())
	}
}

func TestValidationResult(t *testing.T) {
	r := &ValidationResult{}
	if !r.IsValid() || r.Error() != nil {
		t.Error("empty result should be valid")
	}

	r.AddWarning("a", "warn")
	if !r.IsValid() {
		t.Error("warnings should not invalidate")
	}

	r.AddError("b", "bad")
	r.AddError("c", "worse")
	if r.IsValid() {
		t.Error("expected invalid result")
	}
	msg := r.Error().Error()
	if !strings.Contains(msg, "b: bad") || !strings.Contains(msg, "c: worse") {
		t.Errorf("combined error missing parts: %q", msg)
	}

	other := &ValidationResult{}
	other.AddError("d", "x")
	r.Merge(other)
	r.Merge(nil)
	if len(r.Errors) != 3 {
		t.Errorf("expected 3 errors after merge, got %d", len(r.Errors))
	}
}

func TestValidatePanel(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(p *PanelConfig)
		wantErr    string
		wantWarn   string
		strictMode bool
	}{
		{name: "valid", mutate: func(p *PanelConfig) {}},
		{name: "missing type", mutate: func(p *PanelConfig) { p.PanelType = " " }, wantErr: "PanelType"},
		{name: "missing name", mutate: func(p *PanelConfig) { p.Name = "" }, wantErr: "Name"},
		{name: "width too large", mutate: func(p *PanelConfig) { p.WidthPercent = 101 }, wantErr: "WidthPercent"},
		{name: "negative width", mutate: func(p *PanelConfig) { p.WidthPercent = -1 }, wantErr: "WidthPercent"},
		{name: "full width", mutate: func(p *PanelConfig) { p.WidthPercent = 100 }},
		{name: "negative frequency", mutate: func(p *PanelConfig) { p.UpdateFrequency = -5 }, wantErr: "UpdateFrequency"},
		{name: "negative timeout", mutate: func(p *PanelConfig) { p.Timeout = -1 }, wantErr: "Timeout"},
		{name: "huge font", mutate: func(p *PanelConfig) { p.FontSize = 500 }, wantErr: "FontSize"},
		{name: "negative font", mutate: func(p *PanelConfig) { p.FontSize = -1 }, wantWarn: "FontSize"},
		{name: "bad alignment", mutate: func(p *PanelConfig) { p.ContentAlignment = 7 }, wantErr: "ContentAlignment"},
		{name: "layout without marker", mutate: func(p *PanelConfig) { p.LayoutString = "CPU" }, wantWarn: "LayoutString"},
		{name: "bad color", mutate: func(p *PanelConfig) { p.Foreground = "sparkly" }, wantWarn: "Foreground"},
		{name: "bad color strict", mutate: func(p *PanelConfig) { p.Background = "sparkly" }, wantErr: "Background", strictMode: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPanel()
			tt.mutate(&p)
			result := NewValidator().WithStrictMode(tt.strictMode).ValidatePanel(&p)

			if tt.wantErr == "" && !result.IsValid() {
				t.Fatalf("unexpected errors: %v", result.Errors)
			}
			if tt.wantErr != "" && !hasField(result.Errors, tt.wantErr) {
				t.Errorf("expected error on %s, got %v", tt.wantErr, result.Errors)
			}
			if tt.wantWarn != "" && !hasField(result.Warnings, tt.wantWarn) {
				t.Errorf("expected warning on %s, got %v", tt.wantWarn, result.Warnings)
			}
		})
	}
}

func TestValidateSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BarHeight = -3
	result := NewValidator().ValidateSettings(&cfg)
	if !hasField(result.Errors, "BarHeight") {
		t.Errorf("expected BarHeight error, got %v", result.Errors)
	}

	cfg = DefaultConfig()
	cfg.Panels = []PanelConfig{{WidthPercent: 60}, {WidthPercent: 60}}
	result = NewValidator().ValidateSettings(&cfg)
	if !hasField(result.Warnings, "Panels") {
		t.Errorf("expected width overflow warning, got %v", result.Warnings)
	}
}

func TestValidateDuplicateNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Panels = []PanelConfig{validPanel(), validPanel()}
	result := NewValidator().Validate(&cfg)
	if !result.IsValid() {
		t.Fatalf("duplicates should only warn: %v", result.Errors)
	}
	if !hasField(result.Warnings, "panels[1].Name") {
		t.Errorf("expected duplicate warning, got %v", result.Warnings)
	}
}

func TestValidateConfigNil(t *testing.T) {
	if ValidateConfig(nil) == nil {
		t.Error("expected error for nil config")
	}
	if ValidateConfigStrict(nil) == nil {
		t.Error("expected error for nil config")
	}
}

func hasField(errs []ValidationError, field string) bool {
	for _, e := range errs {
		if strings.HasSuffix(e.Field, field) || e.Field == field {
			return true
		}
	}
	return false
}
