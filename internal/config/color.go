package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// namedColors maps color names (lower case, no spaces) to RGBA values.
var namedColors = map[string]color.RGBA{
	"black":       {R: 0, G: 0, B: 0, A: 255},
	"white":       {R: 255, G: 255, B: 255, A: 255},
	"red":         {R: 255, G: 0, B: 0, A: 255},
	"green":       {R: 0, G: 128, B: 0, A: 255},
	"blue":        {R: 0, G: 0, B: 255, A: 255},
	"yellow":      {R: 255, G: 255, B: 0, A: 255},
	"cyan":        {R: 0, G: 255, B: 255, A: 255},
	"magenta":     {R: 255, G: 0, B: 255, A: 255},
	"gray":        {R: 128, G: 128, B: 128, A: 255},
	"grey":        {R: 128, G: 128, B: 128, A: 255},
	"silver":      {R: 192, G: 192, B: 192, A: 255},
	"maroon":      {R: 128, G: 0, B: 0, A: 255},
	"olive":       {R: 128, G: 128, B: 0, A: 255},
	"lime":        {R: 0, G: 255, B: 0, A: 255},
	"aqua":        {R: 0, G: 255, B: 255, A: 255},
	"teal":        {R: 0, G: 128, B: 128, A: 255},
	"navy":        {R: 0, G: 0, B: 128, A: 255},
	"fuchsia":     {R: 255, G: 0, B: 255, A: 255},
	"purple":      {R: 128, G: 0, B: 128, A: 255},
	"orange":      {R: 255, G: 165, B: 0, A: 255},
	"pink":        {R: 255, G: 192, B: 203, A: 255},
	"brown":       {R: 165, G: 42, B: 42, A: 255},
	"gold":        {R: 255, G: 215, B: 0, A: 255},
	"crimson":     {R: 220, G: 20, B: 60, A: 255},
	"darkblue":    {R: 0, G: 0, B: 139, A: 255},
	"darkgreen":   {R: 0, G: 100, B: 0, A: 255},
	"darkred":     {R: 139, G: 0, B: 0, A: 255},
	"darkorange":  {R: 255, G: 140, B: 0, A: 255},
	"darkgray":    {R: 169, G: 169, B: 169, A: 255},
	"darkgrey":    {R: 169, G: 169, B: 169, A: 255},
	"lightblue":   {R: 173, G: 216, B: 230, A: 255},
	"lightgreen":  {R: 144, G: 238, B: 144, A: 255},
	"lightgray":   {R: 211, G: 211, B: 211, A: 255},
	"lightgrey":   {R: 211, G: 211, B: 211, A: 255},
	"limegreen":   {R: 50, G: 205, B: 50, A: 255},
	"dimgray":     {R: 105, G: 105, B: 105, A: 255},
	"steelblue":   {R: 70, G: 130, B: 180, A: 255},
	"transparent": {R: 0, G: 0, B: 0, A: 0},
}

// ParseColor parses a color reference.
// Supported formats:
//   - Named colors, case-insensitive: "Red", "DarkGreen", "transparent"
//   - "#RGB", "#RRGGBB"
//   - "#ARGB", "#AARRGGBB" (alpha first)
//   - "rgb(r, g, b)"
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}

	key := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	if c, ok := namedColors[key]; ok {
		return c, nil
	}

	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}

	if strings.HasPrefix(key, "rgb(") && strings.HasSuffix(key, ")") {
		parts := strings.Split(key[4:len(key)-1], ",")
		if len(parts) != 3 {
			return color.RGBA{}, fmt.Errorf("rgb() requires exactly 3 values, got %d", len(parts))
		}
		var rgb [3]uint8
		for i, p := range parts {
			v, err := strconv.ParseUint(p, 10, 8)
			if err != nil {
				return color.RGBA{}, fmt.Errorf("invalid rgb() component %q: %w", p, err)
			}
			rgb[i] = uint8(v)
		}
		return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}, nil
	}

	return color.RGBA{}, fmt.Errorf("unrecognized color format: %q", s)
}

// MustParseColor parses a color string and panics if parsing fails.
func MustParseColor(s string) color.RGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ColorOr parses s, falling back to def when s is empty or invalid.
func ColorOr(s, def string) color.RGBA {
	if c, err := ParseColor(s); err == nil {
		return c
	}
	return MustParseColor(def)
}

func parseHexColor(s string) (color.RGBA, error) {
	// Expand shorthand forms to one byte per channel.
	if len(s) == 3 || len(s) == 4 {
		var b strings.Builder
		for _, r := range s {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		s = b.String()
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}

	switch len(s) {
	case 6:
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
	case 8:
		return color.RGBA{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length: %d", len(s))
	}
}
