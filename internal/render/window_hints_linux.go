//go:build linux

package render

import (
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/opd-ai/go-limebar/internal/config"
)

// WindowHintApplier marks the bar window as a dock and reserves its screen
// edge through EWMH properties. It caches the X11 connection and atoms.
type WindowHintApplier struct {
	mu       sync.Mutex
	conn     *xgb.Conn
	atoms    map[string]xproto.Atom
	initDone bool
}

// globalHintApplier is a singleton for applying window hints.
var globalHintApplier = &WindowHintApplier{
	atoms: make(map[string]xproto.Atom),
}

// ApplyWindowHints finds the window titled title and applies the dock
// type, skip-taskbar/pager state and a strut of height pixels along loc.
// A missing X server is not an error; ErrWindowNotFound is returned while
// the window manager has not listed the window yet.
func ApplyWindowHints(title string, loc config.BarLocation, width, height int) error {
	return globalHintApplier.Apply(title, loc, width, height)
}

// Apply sets the hints on the window titled title.
func (h *WindowHintApplier) Apply(title string, loc config.BarLocation, width, height int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ensureInit(); err != nil {
		return nil
	}

	window, err := h.findWindow(title)
	if err != nil {
		return nil
	}
	if window == xproto.WindowNone {
		return ErrWindowNotFound
	}

	atomAtom, err := h.getAtom("ATOM")
	if err != nil {
		return nil
	}
	cardinal, err := h.getAtom("CARDINAL")
	if err != nil {
		return nil
	}

	if typeAtom, err := h.getAtom("_NET_WM_WINDOW_TYPE"); err == nil {
		if dock, err := h.getAtom("_NET_WM_WINDOW_TYPE_DOCK"); err == nil {
			h.putAtoms(window, typeAtom, atomAtom, []xproto.Atom{dock})
		}
	}

	if stateAtom, err := h.getAtom("_NET_WM_STATE"); err == nil {
		current, err := h.getAtoms(window, stateAtom, atomAtom)
		if err != nil {
			current = nil
		}
		want := current
		for _, name := range []string{"_NET_WM_STATE_SKIP_TASKBAR", "_NET_WM_STATE_SKIP_PAGER", "_NET_WM_STATE_STICKY", "_NET_WM_STATE_ABOVE"} {
			if a, err := h.getAtom(name); err == nil && !containsAtom(want, a) {
				want = append(want, a)
			}
		}
		h.putAtoms(window, stateAtom, atomAtom, want)
	}

	partial := strutPartial(loc, width, height)
	if a, err := h.getAtom("_NET_WM_STRUT_PARTIAL"); err == nil {
		h.putCardinals(window, a, cardinal, partial)
	}
	if a, err := h.getAtom("_NET_WM_STRUT"); err == nil {
		h.putCardinals(window, a, cardinal, partial[:4])
	}
	return nil
}

// strutPartial returns the twelve _NET_WM_STRUT_PARTIAL values reserving
// height pixels across width along loc.
func strutPartial(loc config.BarLocation, width, height int) []uint32 {
	s := make([]uint32, 12)
	if width <= 0 || height <= 0 {
		return s
	}
	end := uint32(width - 1)
	if loc == config.LocationBottom {
		s[3] = uint32(height)
		s[10], s[11] = 0, end
	} else {
		s[2] = uint32(height)
		s[8], s[9] = 0, end
	}
	return s
}

func containsAtom(atoms []xproto.Atom, a xproto.Atom) bool {
	for _, x := range atoms {
		if x == a {
			return true
		}
	}
	return false
}

func (h *WindowHintApplier) putAtoms(window xproto.Window, prop, typ xproto.Atom, atoms []xproto.Atom) {
	data := make([]byte, len(atoms)*4)
	for i, a := range atoms {
		xgb.Put32(data[i*4:], uint32(a))
	}
	xproto.ChangeProperty(h.conn, xproto.PropModeReplace, window,
		prop, typ, 32, uint32(len(atoms)), data)
}

func (h *WindowHintApplier) putCardinals(window xproto.Window, prop, typ xproto.Atom, values []uint32) {
	data := make([]byte, len(values)*4)
	for i, v := range values {
		xgb.Put32(data[i*4:], v)
	}
	xproto.ChangeProperty(h.conn, xproto.PropModeReplace, window,
		prop, typ, 32, uint32(len(values)), data)
}

// ensureInit initializes the X11 connection if not already done.
func (h *WindowHintApplier) ensureInit() error {
	if h.initDone {
		return nil
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return err
	}

	h.conn = conn
	h.initDone = true
	return nil
}

// getAtom retrieves or interns an X11 atom by name.
func (h *WindowHintApplier) getAtom(name string) (xproto.Atom, error) {
	if atom, ok := h.atoms[name]; ok {
		return atom, nil
	}

	reply, err := xproto.InternAtom(h.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}

	h.atoms[name] = reply.Atom
	return reply.Atom, nil
}

// findWindow looks for a managed window named title.
func (h *WindowHintApplier) findWindow(title string) (xproto.Window, error) {
	setup := xproto.Setup(h.conn)
	if len(setup.Roots) == 0 {
		return xproto.WindowNone, nil
	}
	root := setup.Roots[0].Root

	if listAtom, err := h.getAtom("_NET_CLIENT_LIST"); err == nil {
		reply, err := xproto.GetProperty(h.conn, false, root, listAtom,
			xproto.AtomWindow, 0, 1024).Reply()
		if err == nil && reply != nil {
			for i := 0; i+4 <= len(reply.Value); i += 4 {
				w := xproto.Window(xgb.Get32(reply.Value[i:]))
				if h.windowName(w) == title {
					return w, nil
				}
			}
		}
	}

	return xproto.WindowNone, nil
}

// windowName returns _NET_WM_NAME, or WM_NAME when that is unset.
func (h *WindowHintApplier) windowName(w xproto.Window) string {
	if nameAtom, err := h.getAtom("_NET_WM_NAME"); err == nil {
		if utf8, err := h.getAtom("UTF8_STRING"); err == nil {
			reply, err := xproto.GetProperty(h.conn, false, w, nameAtom, utf8, 0, 256).Reply()
			if err == nil && reply != nil && len(reply.Value) > 0 {
				return string(reply.Value)
			}
		}
	}
	reply, err := xproto.GetProperty(h.conn, false, w, xproto.AtomWmName,
		xproto.AtomString, 0, 256).Reply()
	if err != nil || reply == nil {
		return ""
	}
	return string(reply.Value)
}

// getAtoms reads an ATOM list property.
func (h *WindowHintApplier) getAtoms(window xproto.Window, prop, typ xproto.Atom) ([]xproto.Atom, error) {
	reply, err := xproto.GetProperty(h.conn, false, window, prop,
		typ, 0, 256).Reply()
	if err != nil || reply == nil {
		return nil, err
	}

	atoms := make([]xproto.Atom, 0, len(reply.Value)/4)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		atoms = append(atoms, xproto.Atom(xgb.Get32(reply.Value[i:])))
	}
	return atoms, nil
}

// Close releases the X11 connection.
func (h *WindowHintApplier) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn != nil {
		h.conn.Close()
		h.conn = nil
	}
	h.initDone = false
	h.atoms = make(map[string]xproto.Atom)
}

// CloseWindowHints releases resources used by the window hint applier.
func CloseWindowHints() {
	globalHintApplier.Close()
}
