package config

import (
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches environment variable references in configuration values.
// Supports formats:
//   - ${VAR_NAME} - standard shell-like format
//   - ${VAR_NAME:-default} - with default value if unset or empty
//   - $VAR_NAME - simple format (word characters only)
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// ExpandEnv expands environment variable references in a string.
// It supports the following formats:
//   - ${VAR_NAME} - replaced with value of VAR_NAME
//   - ${VAR_NAME:-default} - replaced with VAR_NAME's value, or "default" if unset/empty
//   - $VAR_NAME - replaced with value of VAR_NAME (simple format)
//
// Unknown or unset variables without defaults are replaced with empty string.
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Check for ${VAR} or ${VAR:-default} format
		if strings.HasPrefix(match, "${") && strings.HasSuffix(match, "}") {
			inner := match[2 : len(match)-1]

			// Check for default value syntax: VAR:-default
			if idx := strings.Index(inner, ":-"); idx >= 0 {
				varName := inner[:idx]
				defaultVal := inner[idx+2:]
				if val := os.Getenv(varName); val != "" {
					return val
				}
				return defaultVal
			}

			// Simple variable reference
			return os.Getenv(inner)
		}

		// Handle $VAR format (simple variable)
		if strings.HasPrefix(match, "$") {
			varName := match[1:]
			return os.Getenv(varName)
		}

		return match
	})
}

// ExpandEnvPanel expands environment variable references in the string
// fields of a panel record that name commands, paths, hosts or literal text.
// Layout strings and color references are left untouched.
func ExpandEnvPanel(p *PanelConfig) {
	if p == nil {
		return
	}
	for _, field := range []*string{
		&p.Command,
		&p.Options,
		&p.Text,
		&p.TooltipText,
		&p.Host,
		&p.IdentityFile,
		&p.Font,
	} {
		*field = ExpandEnv(*field)
	}
}

// ExpandEnvConfig expands environment variables in every panel of cfg.
func ExpandEnvConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	for i := range cfg.Panels {
		ExpandEnvPanel(&cfg.Panels[i])
	}
}
