// Package config provides configuration data structures for limebar.
// It defines the bar settings and the heterogeneous panel records read from
// a JSON, YAML, TOML or Lua configuration file.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents a complete limebar configuration file.
type Config struct {
	// BarHeight is the height of the strip in pixels.
	BarHeight int
	// BarLocation is the screen edge the strip docks to.
	BarLocation BarLocation
	// PanelAlignment is how panels sit vertically within the strip.
	PanelAlignment VerticalAlignment
	// Surface selects the host surface used by the command-line binary.
	Surface Surface
	// Panels holds the records that decoded and validated, in declaration
	// order.
	Panels []PanelConfig `mapstructure:"-"`

	// Path is the file the configuration was read from.
	Path string `mapstructure:"-"`
	// ModTime is the file's modification time when it was read.
	ModTime time.Time `mapstructure:"-"`
	// Warnings lists records that were rejected or adjusted during loading.
	Warnings []ValidationError `mapstructure:"-"`
}

// Validate checks the configuration and returns the combined errors.
// For warnings as well, use NewValidator().Validate().
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// PanelConfig is one panel record as written in the configuration file.
// Which fields matter depends on PanelType.
type PanelConfig struct {
	// PanelType is the variant tag, e.g. "clock" or "command".
	PanelType string
	// Name identifies the panel within a set.
	Name string
	// DisplayOrder sorts panels left to right. Ties keep declaration order.
	DisplayOrder int
	// WidthPercent is the share of the strip width. 0 means automatic.
	WidthPercent int
	// Text is the literal text of a static panel.
	Text string
	// TooltipText is the initial tooltip before the first update.
	TooltipText string
	// ContentAlignment aligns the text within the panel.
	ContentAlignment Alignment
	// Foreground is the text color reference.
	Foreground string
	// Background is the panel color reference.
	Background string
	// UpdateFrequency is the refresh interval in seconds. 0 runs once.
	UpdateFrequency int
	// Command is the executable, script path or remote command.
	Command string
	// Options holds arguments or variant keywords.
	Options string
	// LayoutString is an optional template containing the {content} marker.
	LayoutString string
	// Font is the font family. Empty means the surface default.
	Font string
	// FontSize is the font size in points. 0 means the surface default.
	FontSize int
	// ShowTooltip enables the hover tooltip.
	ShowTooltip bool
	// Host is the user@host[:port] target of a remote panel.
	Host string
	// IdentityFile is the private key used by a remote panel.
	IdentityFile string
	// Timeout bounds a single update in seconds. 0 means unbounded.
	Timeout int

	// Index is the record's position in the file.
	Index int `mapstructure:"-"`
}

// Interval returns UpdateFrequency as a duration.
func (p PanelConfig) Interval() time.Duration {
	return time.Duration(p.UpdateFrequency) * time.Second
}

// UpdateTimeout returns Timeout as a duration.
func (p PanelConfig) UpdateTimeout() time.Duration {
	return time.Duration(p.Timeout) * time.Second
}

// BarLocation is the screen edge the strip is attached to.
type BarLocation int

const (
	// LocationTop docks the strip to the top edge.
	LocationTop BarLocation = iota
	// LocationBottom docks the strip to the bottom edge.
	LocationBottom
)

// String returns the string representation of a BarLocation.
func (l BarLocation) String() string {
	switch l {
	case LocationTop:
		return "top"
	case LocationBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// ParseBarLocation parses a string into a BarLocation.
func ParseBarLocation(s string) (BarLocation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top", "", "0":
		return LocationTop, nil
	case "bottom", "1":
		return LocationBottom, nil
	default:
		return LocationTop, fmt.Errorf("unknown bar location: %s", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *BarLocation) UnmarshalText(text []byte) error {
	v, err := ParseBarLocation(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Alignment is the horizontal placement of text within a panel.
type Alignment int

const (
	// AlignLeft places text at the left edge.
	AlignLeft Alignment = iota
	// AlignRight places text at the right edge.
	AlignRight
	// AlignCentre centres text.
	AlignCentre
)

// String returns the string representation of an Alignment.
func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	case AlignCentre:
		return "centre"
	default:
		return "unknown"
	}
}

// ParseAlignment parses a string into an Alignment.
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l", "", "0":
		return AlignLeft, nil
	case "right", "r", "1":
		return AlignRight, nil
	case "centre", "center", "c", "2":
		return AlignCentre, nil
	default:
		return AlignLeft, fmt.Errorf("unknown alignment: %s", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Alignment) UnmarshalText(text []byte) error {
	v, err := ParseAlignment(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// VerticalAlignment is how panels sit within the strip's height.
type VerticalAlignment int

const (
	// VAlignTop aligns panels to the top of the strip.
	VAlignTop VerticalAlignment = iota
	// VAlignCenter centres panels vertically.
	VAlignCenter
	// VAlignBottom aligns panels to the bottom of the strip.
	VAlignBottom
	// VAlignStretch makes panels fill the strip height.
	VAlignStretch
)

// String returns the string representation of a VerticalAlignment.
func (v VerticalAlignment) String() string {
	switch v {
	case VAlignTop:
		return "top"
	case VAlignCenter:
		return "center"
	case VAlignBottom:
		return "bottom"
	case VAlignStretch:
		return "stretch"
	default:
		return "unknown"
	}
}

// ParseVerticalAlignment parses a string into a VerticalAlignment.
func ParseVerticalAlignment(s string) (VerticalAlignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top", "", "0":
		return VAlignTop, nil
	case "center", "centre", "middle", "1":
		return VAlignCenter, nil
	case "bottom", "2":
		return VAlignBottom, nil
	case "stretch", "3":
		return VAlignStretch, nil
	default:
		return VAlignTop, fmt.Errorf("unknown vertical alignment: %s", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *VerticalAlignment) UnmarshalText(text []byte) error {
	p, err := ParseVerticalAlignment(string(text))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

// Surface selects where the strip is drawn.
type Surface int

const (
	// SurfaceWindow draws into a docked desktop window.
	SurfaceWindow Surface = iota
	// SurfaceTerminal draws a single styled line on the terminal.
	SurfaceTerminal
	// SurfaceNone runs headless.
	SurfaceNone
)

// String returns the string representation of a Surface.
func (s Surface) String() string {
	switch s {
	case SurfaceWindow:
		return "window"
	case SurfaceTerminal:
		return "terminal"
	case SurfaceNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseSurface parses a string into a Surface.
func ParseSurface(s string) (Surface, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "window", "":
		return SurfaceWindow, nil
	case "terminal", "term", "tty":
		return SurfaceTerminal, nil
	case "none", "headless":
		return SurfaceNone, nil
	default:
		if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= int(SurfaceNone) {
			return Surface(n), nil
		}
		return SurfaceWindow, fmt.Errorf("unknown surface: %s", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Surface) UnmarshalText(text []byte) error {
	v, err := ParseSurface(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
