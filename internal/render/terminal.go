package render

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/opd-ai/go-limebar/internal/config"
	"github.com/opd-ai/go-limebar/internal/reconcile"
)

// DefaultTerminalWidth is used when the output is not a terminal.
const DefaultTerminalWidth = 80

// ellipsis marks text cut to fit its cell.
const ellipsis = "…"

// Terminal draws the bar as one styled line that is rewritten in place.
type Terminal struct {
	mu          sync.Mutex
	out         io.Writer
	width       func() int
	descriptors []reconcile.Descriptor
	last        string
}

// NewTerminal returns a surface writing to out. When out is a terminal its
// width is queried on every redraw.
func NewTerminal(out io.Writer) *Terminal {
	t := &Terminal{out: out, width: func() int { return DefaultTerminalWidth }}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		t.width = func() int {
			w, _, err := term.GetSize(fd)
			if err != nil || w <= 0 {
				return DefaultTerminalWidth
			}
			return w
		}
	}
	return t
}

// SetWidth fixes the line width in cells.
func (t *Terminal) SetWidth(w int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.width = func() int { return w }
}

// RebuildView implements reconcile.Surface.
func (t *Terminal) RebuildView(descriptors []reconcile.Descriptor) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.descriptors = append(t.descriptors[:0:0], descriptors...)
	t.last = ""
	return t.draw()
}

// RefreshView implements reconcile.Surface.
func (t *Terminal) RefreshView(name, display, tooltip string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := indexOf(t.descriptors, name)
	if i < 0 {
		return ErrUnknownPanel
	}
	t.descriptors[i].Display = display
	t.descriptors[i].Tooltip = tooltip
	return t.draw()
}

// Line renders the current view without writing it.
func (t *Terminal) Line() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.render()
}

// Close ends the line so the shell prompt starts on a fresh one.
func (t *Terminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == "" {
		return nil
	}
	_, err := io.WriteString(t.out, "\n")
	return err
}

func (t *Terminal) draw() error {
	line := t.render()
	if line == t.last {
		return nil
	}
	t.last = line
	_, err := fmt.Fprintf(t.out, "\r\x1b[2K%s", line)
	return err
}

func (t *Terminal) render() string {
	spans := Columns(t.descriptors, t.width())
	var b strings.Builder
	for i, d := range t.descriptors {
		w := spans[i].W
		if w <= 0 {
			continue
		}
		fg, bg := Colors(d)
		style := lipgloss.NewStyle().
			Width(w).
			MaxWidth(w).
			Align(lipglossAlign(d.Alignment)).
			Foreground(lipgloss.Color(hex(fg))).
			Background(lipgloss.Color(hex(bg)))
		b.WriteString(style.Render(runewidth.Truncate(d.Display, w, ellipsis)))
	}
	return b.String()
}

func lipglossAlign(a config.Alignment) lipgloss.Position {
	switch a {
	case config.AlignRight:
		return lipgloss.Right
	case config.AlignCentre:
		return lipgloss.Center
	default:
		return lipgloss.Left
	}
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
