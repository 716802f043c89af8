// Package render provides the surfaces that display a bar: an Ebiten strip
// window, a styled terminal line, and a headless surface.
package render

import (
	"errors"
	"image/color"

	"github.com/opd-ai/go-limebar/internal/config"
	"github.com/opd-ai/go-limebar/internal/reconcile"
)

// ErrUnknownPanel is returned by RefreshView for a name that is not in the
// current view.
var ErrUnknownPanel = errors.New("panel not in view")

// ErrWindowNotFound is returned by ApplyWindowHints when the bar window is
// not yet known to the window manager.
var ErrWindowNotFound = errors.New("bar window not found")

// Span is the horizontal extent of one panel in pixels or cells.
type Span struct {
	X int
	W int
}

// Columns distributes total units across panels left to right. Panels with
// a WidthPercent get that share of total; the rest split what remains
// evenly. When fixed shares exceed total, automatic panels get zero width.
func Columns(descriptors []reconcile.Descriptor, total int) []Span {
	spans := make([]Span, len(descriptors))
	if total <= 0 {
		return spans
	}

	fixed, auto := 0, 0
	for i, d := range descriptors {
		if d.WidthPercent > 0 {
			spans[i].W = total * d.WidthPercent / 100
			fixed += spans[i].W
		} else {
			auto++
		}
	}

	if auto > 0 {
		remaining := total - fixed
		if remaining < 0 {
			remaining = 0
		}
		share, extra := remaining/auto, remaining%auto
		for i, d := range descriptors {
			if d.WidthPercent > 0 {
				continue
			}
			spans[i].W = share
			if extra > 0 {
				spans[i].W++
				extra--
			}
		}
	}

	x := 0
	for i := range spans {
		spans[i].X = x
		x += spans[i].W
	}
	return spans
}

// AlignOffset returns where content of width w starts inside a box of
// width box.
func AlignOffset(a config.Alignment, box, w int) int {
	if w >= box {
		return 0
	}
	switch a {
	case config.AlignRight:
		return box - w
	case config.AlignCentre:
		return (box - w) / 2
	default:
		return 0
	}
}

// VerticalBox returns the top offset and height of a panel of natural height
// h inside a strip of height strip.
func VerticalBox(a config.VerticalAlignment, strip, h int) (top, height int) {
	if h >= strip || a == config.VAlignStretch {
		return 0, strip
	}
	switch a {
	case config.VAlignCenter:
		return (strip - h) / 2, h
	case config.VAlignBottom:
		return strip - h, h
	default:
		return 0, h
	}
}

// Colors resolves a descriptor's color references, falling back to the
// defaults for references that do not parse.
func Colors(d reconcile.Descriptor) (fg, bg color.RGBA) {
	return config.ColorOr(d.Foreground, config.DefaultForeground),
		config.ColorOr(d.Background, config.DefaultBackground)
}

// indexOf returns the position of name in descriptors, or -1.
func indexOf(descriptors []reconcile.Descriptor, name string) int {
	for i, d := range descriptors {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// hitTest returns the index of the span containing x, or -1.
func hitTest(spans []Span, x int) int {
	for i, s := range spans {
		if x >= s.X && x < s.X+s.W {
			return i
		}
	}
	return -1
}
