//go:build !noebiten

package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	etext "github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/opd-ai/go-limebar/internal/config"
	"github.com/opd-ai/go-limebar/internal/reconcile"
)

// ErrWindowTerminated is returned from Update when the run context is done.
var ErrWindowTerminated = errors.New("window terminated")

// WindowAvailable reports whether this build includes the window surface.
const WindowAvailable = true

const (
	// panelPadding is the horizontal space between a panel edge and its text.
	panelPadding = 4
	// lineSpacing scales font size to line height.
	lineSpacing = 1.2
	// ticksPerSecond bounds the redraw rate of a mostly static strip.
	ticksPerSecond = 30
	// maxHintAttempts bounds how many ticks we wait for the window manager
	// to list the window.
	maxHintAttempts = 10 * ticksPerSecond
)

// ErrorHandler receives errors the window cannot return to a caller.
type ErrorHandler func(err error)

// DefaultErrorHandler writes errors to stderr.
func DefaultErrorHandler(err error) {
	fmt.Fprintf(os.Stderr, "window error: %v\n", err)
}

// WindowSettings are the bar-wide settings the window lays out with.
type WindowSettings struct {
	Title          string
	Height         int
	Location       config.BarLocation
	PanelAlignment config.VerticalAlignment
}

// SettingsFrom extracts window settings from a loaded configuration.
func SettingsFrom(cfg config.Config) WindowSettings {
	return WindowSettings{
		Title:          "limebar",
		Height:         cfg.BarHeight,
		Location:       cfg.BarLocation,
		PanelAlignment: cfg.PanelAlignment,
	}
}

// Window is an undecorated strip spanning the primary monitor. It
// implements reconcile.Surface and ebiten.Game; surface calls may arrive
// from any goroutine while Ebiten draws on its own.
type Window struct {
	mu          sync.RWMutex
	settings    WindowSettings
	fonts       *FontManager
	descriptors []reconcile.Descriptor
	spans       []Span

	width   int
	height  int
	hover   int
	hinted  bool
	hintTry int
	moved   bool
	running bool

	ctx     context.Context
	onError ErrorHandler
}

// NewWindow creates a window surface. It does not open the window; call Run
// from the main goroutine for that.
func NewWindow(settings WindowSettings) *Window {
	if settings.Height <= 0 {
		settings.Height = config.DefaultBarHeight
	}
	if settings.Title == "" {
		settings.Title = "limebar"
	}
	return &Window{
		settings: settings,
		fonts:    NewFontManager(),
		width:    800,
		height:   settings.Height,
		hover:    -1,
		onError:  DefaultErrorHandler,
	}
}

// SetErrorHandler sets the handler for errors raised while drawing.
// A nil handler ignores them.
func (w *Window) SetErrorHandler(h ErrorHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = h
}

// ApplySettings updates the strip height, edge and vertical alignment.
func (w *Window) ApplySettings(cfg config.Config) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := SettingsFrom(cfg)
	s.Title = w.settings.Title
	if s.Height <= 0 {
		s.Height = config.DefaultBarHeight
	}
	if s != w.settings {
		w.settings = s
		w.height = s.Height
		w.moved = false
		w.hinted = false
		w.hintTry = 0
	}
}

// RebuildView implements reconcile.Surface.
func (w *Window) RebuildView(descriptors []reconcile.Descriptor) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.descriptors = append(w.descriptors[:0:0], descriptors...)
	w.spans = Columns(w.descriptors, w.width)
	w.hover = -1
	return nil
}

// RefreshView implements reconcile.Surface.
func (w *Window) RefreshView(name, display, tooltip string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := indexOf(w.descriptors, name)
	if i < 0 {
		return ErrUnknownPanel
	}
	w.descriptors[i].Display = display
	w.descriptors[i].Tooltip = tooltip
	return nil
}

// Run opens the window and blocks until it is closed or ctx is done. It
// must be called from the main goroutine.
func (w *Window) Run(ctx context.Context) error {
	mw, _ := ebiten.Monitor().Size()

	w.mu.Lock()
	w.ctx = ctx
	if mw > 0 {
		w.width = mw
		w.spans = Columns(w.descriptors, w.width)
	}
	width, height, title := w.width, w.height, w.settings.Title
	w.running = true
	w.mu.Unlock()

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowFloating(true)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetTPS(ticksPerSecond)
	ebiten.SetWindowSize(width, height)

	err := ebiten.RunGameWithOptions(w, &ebiten.RunGameOptions{
		InitUnfocused: true,
		SkipTaskbar:   true,
		X11ClassName:  "limebar",
	})

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	CloseWindowHints()

	if errors.Is(err, ErrWindowTerminated) {
		return nil
	}
	return err
}

// Running reports whether Run is active.
func (w *Window) Running() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Update implements ebiten.Game.
func (w *Window) Update() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ctx != nil {
		select {
		case <-w.ctx.Done():
			return ErrWindowTerminated
		default:
		}
	}

	cx, cy := ebiten.CursorPosition()
	stripTop := w.stripTop()
	hover := -1
	if cy >= stripTop && cy < stripTop+w.settings.Height {
		hover = hitTest(w.spans, cx)
	}
	if hover >= 0 {
		d := w.descriptors[hover]
		if !d.ShowTooltip || d.Tooltip == "" {
			hover = -1
		}
	}
	w.hover = hover

	want := w.settings.Height
	if hover >= 0 {
		want += w.tooltipSize(w.descriptors[hover]).Y
	}
	if want != w.height || !w.moved {
		w.height = want
		ebiten.SetWindowSize(w.width, w.height)
		w.place()
	}

	if !w.hinted {
		w.hintTry++
		err := ApplyWindowHints(w.settings.Title, w.settings.Location, w.width, w.settings.Height)
		switch {
		case err == nil:
			w.hinted = true
		case errors.Is(err, ErrWindowNotFound) && w.hintTry < maxHintAttempts:
		default:
			w.hinted = true
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
	return nil
}

// place moves the window so the strip hugs its screen edge.
func (w *Window) place() {
	w.moved = true
	if w.settings.Location == config.LocationBottom {
		_, mh := ebiten.Monitor().Size()
		ebiten.SetWindowPosition(0, mh-w.height)
		return
	}
	ebiten.SetWindowPosition(0, 0)
}

// stripTop is the y offset of the strip inside the window. A bottom bar
// grows its tooltip upwards.
func (w *Window) stripTop() int {
	if w.settings.Location == config.LocationBottom {
		return w.height - w.settings.Height
	}
	return 0
}

// Draw implements ebiten.Game.
func (w *Window) Draw(screen *ebiten.Image) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	screen.Fill(color.RGBA{A: 0xff})
	stripTop := w.stripTop()

	for i, d := range w.descriptors {
		span := w.spans[i]
		if span.W <= 0 {
			continue
		}
		fg, bg := Colors(d)
		face := w.fonts.Face(d.Font, d.FontSize)

		lineH := int(face.Size*lineSpacing) + 2
		top, h := VerticalBox(w.settings.PanelAlignment, w.settings.Height, lineH)
		box := image.Rect(span.X, stripTop+top, span.X+span.W, stripTop+top+h)
		cell := screen.SubImage(box).(*ebiten.Image)
		cell.Fill(bg)

		tw, th := etext.Measure(d.Display, face, face.Size*lineSpacing)
		inner := span.W - 2*panelPadding
		op := &etext.DrawOptions{}
		op.GeoM.Translate(
			float64(span.X+panelPadding+AlignOffset(d.Alignment, inner, int(tw))),
			float64(box.Min.Y)+(float64(h)-th)/2,
		)
		op.ColorScale.ScaleWithColor(fg)
		etext.Draw(cell, d.Display, face, op)
	}

	if w.hover >= 0 && w.hover < len(w.descriptors) {
		w.drawTooltip(screen, w.descriptors[w.hover], w.spans[w.hover])
	}
}

// tooltipSize measures the tooltip box of d in pixels.
func (w *Window) tooltipSize(d reconcile.Descriptor) image.Point {
	face := w.fonts.Face(d.Font, d.FontSize)
	tw, th := etext.Measure(d.Tooltip, face, face.Size*lineSpacing)
	return image.Pt(int(tw)+2*panelPadding, int(th)+2*panelPadding)
}

func (w *Window) drawTooltip(screen *ebiten.Image, d reconcile.Descriptor, span Span) {
	size := w.tooltipSize(d)
	x := span.X
	if x+size.X > w.width {
		x = w.width - size.X
	}
	if x < 0 {
		x = 0
	}
	y := w.settings.Height
	if w.settings.Location == config.LocationBottom {
		y = 0
	}

	fg, bg := Colors(d)
	box := image.Rect(x, y, x+size.X, y+size.Y)
	cell := screen.SubImage(box).(*ebiten.Image)
	cell.Fill(bg)

	face := w.fonts.Face(d.Font, d.FontSize)
	op := &etext.DrawOptions{}
	op.GeoM.Translate(float64(x+panelPadding), float64(y+panelPadding))
	op.ColorScale.ScaleWithColor(fg)
	op.LineSpacing = face.Size * lineSpacing
	etext.Draw(cell, strings.TrimRight(d.Tooltip, "\n"), face, op)
}

// Layout implements ebiten.Game.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.width, w.height
}
