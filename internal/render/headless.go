package render

import (
	"sync"

	"github.com/opd-ai/go-limebar/internal/reconcile"
)

// Headless is a surface that only records what it was given.
type Headless struct {
	mu          sync.RWMutex
	descriptors []reconcile.Descriptor
	rebuilds    int
	refreshes   int
}

// NewHeadless returns an empty headless surface.
func NewHeadless() *Headless { return &Headless{} }

// RebuildView implements reconcile.Surface.
func (h *Headless) RebuildView(descriptors []reconcile.Descriptor) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.descriptors = append(h.descriptors[:0:0], descriptors...)
	h.rebuilds++
	return nil
}

// RefreshView implements reconcile.Surface.
func (h *Headless) RefreshView(name, display, tooltip string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	i := indexOf(h.descriptors, name)
	if i < 0 {
		return ErrUnknownPanel
	}
	h.descriptors[i].Display = display
	h.descriptors[i].Tooltip = tooltip
	h.refreshes++
	return nil
}

// View returns a copy of the current descriptors.
func (h *Headless) View() []reconcile.Descriptor {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]reconcile.Descriptor(nil), h.descriptors...)
}

// Counts returns how many rebuilds and refreshes were received.
func (h *Headless) Counts() (rebuilds, refreshes int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rebuilds, h.refreshes
}
