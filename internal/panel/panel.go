// Package panel holds the runtime panels of a bar and the closed registry
// that turns configuration records into them.
//
// Panels are owned by a single coordinating goroutine. Nothing in this
// package is safe for concurrent use.
package panel

import (
	"time"

	"github.com/opd-ai/go-limebar/internal/config"
	"github.com/opd-ai/go-limebar/internal/content"
	"github.com/opd-ai/go-limebar/internal/provider"
)

// Panel is one scheduled unit of the bar.
// Its configuration, variant and provider never change after creation; only
// the texts, the busy flag and the update time do.
type Panel struct {
	config   config.PanelConfig
	variant  Variant
	provider provider.Provider

	display    string
	tooltip    string
	lastUpdate time.Time
	busySince  time.Time
	busy       bool
	generation string
	synthetic  bool
}

// New creates a panel for cfg backed by p. The initial display and tooltip
// texts are the record's Text and TooltipText.
func New(cfg config.PanelConfig, variant Variant, p provider.Provider) *Panel {
	return &Panel{
		config:   cfg,
		variant:  variant,
		provider: p,
		display:  cfg.Text,
		tooltip:  cfg.TooltipText,
	}
}

// Name returns the panel's unique name within its set.
func (p *Panel) Name() string { return p.config.Name }

// Config returns the configuration snapshot the panel was built from.
func (p *Panel) Config() config.PanelConfig { return p.config }

// Variant returns the panel's variant tag.
func (p *Panel) Variant() Variant { return p.variant }

// Provider returns the content provider, nil for synthetic panels.
func (p *Panel) Provider() provider.Provider { return p.provider }

// Interval returns the refresh interval. Zero means the panel runs once.
func (p *Panel) Interval() time.Duration { return p.config.Interval() }

// Display returns the current display text.
func (p *Panel) Display() string { return p.display }

// Tooltip returns the current tooltip text.
func (p *Panel) Tooltip() string { return p.tooltip }

// LastUpdate returns the time the texts were last replaced.
func (p *Panel) LastUpdate() time.Time { return p.lastUpdate }

// Generation returns the id of the set that owns the panel.
func (p *Panel) Generation() string { return p.generation }

// Synthetic reports whether the panel was generated rather than configured.
// Synthetic panels are never scheduled.
func (p *Panel) Synthetic() bool { return p.synthetic }

// Busy reports whether an update is in flight.
func (p *Panel) Busy() bool { return p.busy }

// BusySince returns when the in-flight update started, zero when idle.
func (p *Panel) BusySince() time.Time {
	if !p.busy {
		return time.Time{}
	}
	return p.busySince
}

// MarkBusy records that an update was dispatched at now. It returns false
// when an update is already in flight, in which case nothing changes.
func (p *Panel) MarkBusy(now time.Time) bool {
	if p.busy {
		return false
	}
	p.busy = true
	p.busySince = now
	return true
}

// Apply stores a finished update and clears the busy flag.
func (p *Panel) Apply(r content.Result, now time.Time) {
	p.display = r.Display
	p.tooltip = r.Tooltip
	p.lastUpdate = now
	p.busy = false
	p.busySince = time.Time{}
}

// ClearBusy clears the busy flag without touching the texts.
func (p *Panel) ClearBusy() {
	p.busy = false
	p.busySince = time.Time{}
}
