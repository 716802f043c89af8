// Package reconcile decides whether the render surface needs its panels
// rebuilt or only their texts refreshed.
package reconcile

import (
	"github.com/opd-ai/go-limebar/internal/config"
	"github.com/opd-ai/go-limebar/internal/content"
	"github.com/opd-ai/go-limebar/internal/panel"
)

// Descriptor is everything a surface needs to lay out one panel.
type Descriptor struct {
	Name         string
	WidthPercent int
	Alignment    config.Alignment
	Font         string
	FontSize     int
	Foreground   string
	Background   string
	ShowTooltip  bool
	Display      string
	Tooltip      string
}

// Update carries the new texts of one panel.
type Update struct {
	Name    string
	Display string
	Tooltip string
}

// Surface receives reconciled state. Both methods are called only from the
// coordinating goroutine.
type Surface interface {
	// RebuildView replaces the visible panels with descriptors, in order.
	RebuildView(descriptors []Descriptor) error
	// RefreshView replaces the texts of the named panel.
	RefreshView(name, display, tooltip string) error
}

// key is the part of a descriptor whose change forces a rebuild.
type key struct {
	name        string
	width       int
	alignment   config.Alignment
	font        string
	fontSize    int
	foreground  string
	background  string
	showTooltip bool
}

// Signature is the ordered layout identity of a panel list.
type Signature []key

// SignatureOf computes the signature of panels in their current order.
func SignatureOf(panels []*panel.Panel) Signature {
	sig := make(Signature, len(panels))
	for i, p := range panels {
		cfg := p.Config()
		sig[i] = key{
			name:        cfg.Name,
			width:       cfg.WidthPercent,
			alignment:   cfg.ContentAlignment,
			font:        cfg.Font,
			fontSize:    cfg.FontSize,
			foreground:  cfg.Foreground,
			background:  cfg.Background,
			showTooltip: cfg.ShowTooltip,
		}
	}
	return sig
}

// Equal reports whether two signatures describe the same layout.
func (s Signature) Equal(o Signature) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Plan is the outcome of one reconciliation.
type Plan struct {
	// Rebuild is set when the layout changed; Descriptors is then filled.
	Rebuild     bool
	Descriptors []Descriptor
	// Updates is filled when only texts need refreshing.
	Updates []Update
}

// Reconciler remembers the last rendered signature.
type Reconciler struct {
	last     Signature
	rendered bool
}

// New returns a Reconciler that rebuilds on its first plan.
func New() *Reconciler { return &Reconciler{} }

// Plan compares panels against the last rendered layout. A rebuild is
// planned iff this is the first render or the signature differs.
func (r *Reconciler) Plan(panels []*panel.Panel) Plan {
	sig := SignatureOf(panels)
	if !r.rendered || !sig.Equal(r.last) {
		r.last = sig
		r.rendered = true
		return Plan{Rebuild: true, Descriptors: Describe(panels)}
	}

	updates := make([]Update, len(panels))
	for i, p := range panels {
		updates[i] = Update{
			Name:    p.Name(),
			Display: p.Display(),
			Tooltip: content.TrimTrailingBlankLines(p.Tooltip()),
		}
	}
	return Plan{Updates: updates}
}

// Render plans and pushes the result to s. It reports whether the view was
// rebuilt. A failed rebuild is forgotten so the next call retries it.
func (r *Reconciler) Render(s Surface, panels []*panel.Panel) (bool, error) {
	plan := r.Plan(panels)
	if plan.Rebuild {
		if err := s.RebuildView(plan.Descriptors); err != nil {
			r.Reset()
			return true, err
		}
		return true, nil
	}
	for _, u := range plan.Updates {
		if err := s.RefreshView(u.Name, u.Display, u.Tooltip); err != nil {
			return false, err
		}
	}
	return false, nil
}

// Reset forgets the last layout so the next plan rebuilds.
func (r *Reconciler) Reset() {
	r.last = nil
	r.rendered = false
}

// Describe builds descriptors for panels in order.
func Describe(panels []*panel.Panel) []Descriptor {
	out := make([]Descriptor, len(panels))
	for i, p := range panels {
		cfg := p.Config()
		out[i] = Descriptor{
			Name:         cfg.Name,
			WidthPercent: cfg.WidthPercent,
			Alignment:    cfg.ContentAlignment,
			Font:         cfg.Font,
			FontSize:     cfg.FontSize,
			Foreground:   cfg.Foreground,
			Background:   cfg.Background,
			ShowTooltip:  cfg.ShowTooltip,
			Display:      p.Display(),
			Tooltip:      content.TrimTrailingBlankLines(p.Tooltip()),
		}
	}
	return out
}
