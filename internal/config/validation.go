package config

import (
	"fmt"
	"strings"

	"github.com/opd-ai/go-limebar/internal/content"
)

// ValidationError represents a configuration validation error.
// It contains the field name and a description of the issue.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the results of a configuration validation.
type ValidationResult struct {
	// Errors contains all validation errors found.
	Errors []ValidationError
	// Warnings contains non-fatal issues (e.g., unknown fields).
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error message if there are errors, nil otherwise.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}

	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// AddError adds a validation error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

// Merge combines another ValidationResult into this one.
func (vr *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	vr.Errors = append(vr.Errors, other.Errors...)
	vr.Warnings = append(vr.Warnings, other.Warnings...)
}

// Validator checks configuration values.
type Validator struct {
	// strictMode turns unknown color references into errors.
	strictMode bool
}

// NewValidator creates a new Validator with default settings.
func NewValidator() *Validator {
	return &Validator{}
}

// WithStrictMode enables strict validation where unparseable colors reject
// the record instead of falling back to the defaults.
func (v *Validator) WithStrictMode(strict bool) *Validator {
	v.strictMode = strict
	return v
}

// Validate performs validation of the bar settings and every panel.
func (v *Validator) Validate(cfg *Config) *ValidationResult {
	result := v.ValidateSettings(cfg)
	for i := range cfg.Panels {
		pr := v.ValidatePanel(&cfg.Panels[i])
		field := fmt.Sprintf("panels[%d]", i)
		result.Errors = append(result.Errors, prefixed(field, pr.Errors)...)
		result.Warnings = append(result.Warnings, prefixed(field, pr.Warnings)...)
	}

	seen := make(map[string]int, len(cfg.Panels))
	for i, p := range cfg.Panels {
		if prev, ok := seen[p.Name]; ok {
			result.AddWarning(fmt.Sprintf("panels[%d].Name", i),
				fmt.Sprintf("duplicate name %q replaces panels[%d]", p.Name, prev))
		}
		seen[p.Name] = i
	}
	return result
}

// ValidateSettings validates the bar-wide settings.
func (v *Validator) ValidateSettings(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	if cfg.BarHeight < 0 || cfg.BarHeight > MaxBarHeight {
		result.AddError("BarHeight", fmt.Sprintf("must be between 0 and %d, got %d", MaxBarHeight, cfg.BarHeight))
	}
	if cfg.BarLocation != LocationTop && cfg.BarLocation != LocationBottom {
		result.AddError("BarLocation", fmt.Sprintf("unknown location %d", cfg.BarLocation))
	}
	if cfg.PanelAlignment < VAlignTop || cfg.PanelAlignment > VAlignStretch {
		result.AddError("PanelAlignment", fmt.Sprintf("unknown alignment %d", cfg.PanelAlignment))
	}

	total := 0
	for _, p := range cfg.Panels {
		total += p.WidthPercent
	}
	if total > 100 {
		result.AddWarning("Panels", fmt.Sprintf("panel widths add up to %d%%", total))
	}

	return result
}

// ValidatePanel validates a single panel record.
func (v *Validator) ValidatePanel(p *PanelConfig) *ValidationResult {
	result := &ValidationResult{}

	if strings.TrimSpace(p.PanelType) == "" {
		result.AddError("PanelType", "panel type is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		result.AddError("Name", "name is required")
	}
	if p.WidthPercent < 0 || p.WidthPercent > 100 {
		result.AddError("WidthPercent", fmt.Sprintf("must be between 0 and 100, got %d", p.WidthPercent))
	}
	if p.UpdateFrequency < 0 {
		result.AddError("UpdateFrequency", fmt.Sprintf("must not be negative, got %d", p.UpdateFrequency))
	}
	if p.Timeout < 0 {
		result.AddError("Timeout", fmt.Sprintf("must not be negative, got %d", p.Timeout))
	}
	if p.FontSize < 0 {
		result.AddWarning("FontSize", "negative size uses the default")
	} else if p.FontSize > MaxFontSize {
		result.AddError("FontSize", fmt.Sprintf("must be at most %d, got %d", MaxFontSize, p.FontSize))
	}
	if p.ContentAlignment < AlignLeft || p.ContentAlignment > AlignCentre {
		result.AddError("ContentAlignment", fmt.Sprintf("unknown alignment %d", p.ContentAlignment))
	}
	if p.LayoutString != "" && !strings.Contains(p.LayoutString, content.Marker) {
		result.AddWarning("LayoutString", fmt.Sprintf("no %s marker; content will not be shown", content.Marker))
	}

	v.validateColor("Foreground", p.Foreground, result)
	v.validateColor("Background", p.Background, result)

	return result
}

func (v *Validator) validateColor(field, value string, result *ValidationResult) {
	if value == "" {
		return
	}
	if _, err := ParseColor(value); err != nil {
		if v.strictMode {
			result.AddError(field, err.Error())
			return
		}
		result.AddWarning(field, err.Error()+"; using default")
	}
}

// ValidateConfig validates cfg and returns the combined errors, if any.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	return NewValidator().Validate(cfg).Error()
}

// ValidateConfigStrict validates cfg in strict mode.
func ValidateConfigStrict(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	return NewValidator().WithStrictMode(true).Validate(cfg).Error()
}
