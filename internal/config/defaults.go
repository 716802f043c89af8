package config

// Default values for configuration options.
const (
	// DefaultConfigFile is read when no path is given on the command line.
	DefaultConfigFile = "config.json"
	// DefaultBarHeight is the strip height in pixels when none is configured.
	DefaultBarHeight = 24
	// MaxBarHeight bounds BarHeight.
	MaxBarHeight = 1024
	// DefaultForeground is the panel text color.
	DefaultForeground = "green"
	// DefaultBackground is the panel color.
	DefaultBackground = "black"
	// MaxFontSize bounds FontSize.
	MaxFontSize = 200

	// ErrorForeground and ErrorBackground color the synthetic panel shown
	// when a configuration cannot be loaded.
	ErrorForeground = "black"
	ErrorBackground = "red"
)

// DefaultConfig returns a Config with no panels and default settings.
func DefaultConfig() Config {
	return Config{
		BarHeight:      DefaultBarHeight,
		BarLocation:    LocationTop,
		PanelAlignment: VAlignTop,
		Surface:        SurfaceWindow,
	}
}

// DefaultPanelConfig returns the values a panel record starts from before
// its fields are decoded.
func DefaultPanelConfig() PanelConfig {
	return PanelConfig{
		ContentAlignment: AlignLeft,
		Foreground:       DefaultForeground,
		Background:       DefaultBackground,
	}
}
