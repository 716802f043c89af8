//go:build !linux

package render

import "github.com/opd-ai/go-limebar/internal/config"

// ApplyWindowHints is a no-op outside X11.
func ApplyWindowHints(title string, loc config.BarLocation, width, height int) error {
	return nil
}

// CloseWindowHints is a no-op outside X11.
func CloseWindowHints() {
}
