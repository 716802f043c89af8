package panel

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/opd-ai/go-limebar/internal/config"
)

// ErrorPrefix starts the text of the synthetic error panel.
const ErrorPrefix = "Error loading config file: "

// ErrorPanelName names the synthetic error panel.
const ErrorPanelName = "error"

// Set is an ordered collection of panels built from one configuration load.
type Set struct {
	// Generation uniquely identifies this set.
	Generation string
	// Settings are the bar-wide settings the set was loaded with.
	Settings config.Config

	panels []*Panel
	byName map[string]*Panel
	err    error
}

// Warning describes a record that was dropped while building a set.
type Warning struct {
	Index int
	Name  string
	Err   error
}

// Error implements the error interface.
func (w Warning) Error() string {
	if w.Name == "" {
		return fmt.Sprintf("panels[%d]: %v", w.Index, w.Err)
	}
	return fmt.Sprintf("panels[%d] %q: %v", w.Index, w.Name, w.Err)
}

// Unwrap returns the cause.
func (w Warning) Unwrap() error { return w.Err }

// Build turns a loaded configuration into a Set. Records whose variant is
// unknown or whose provider cannot be built are dropped and returned as
// warnings. When two records share a name the later one wins and keeps its
// own position. Panels are stably sorted by DisplayOrder.
func Build(cfg *config.Config, reg *Registry) (*Set, []Warning) {
	if reg == nil {
		reg = NewRegistry()
	}

	s := &Set{
		Generation: uuid.NewString(),
		Settings:   *cfg,
		byName:     make(map[string]*Panel, len(cfg.Panels)),
	}
	s.Settings.Panels = nil

	var warnings []Warning
	built := make([]*Panel, 0, len(cfg.Panels))
	for _, rec := range cfg.Panels {
		p, err := reg.Build(rec)
		if err != nil {
			warnings = append(warnings, Warning{Index: rec.Index, Name: rec.Name, Err: err})
			continue
		}
		p.generation = s.Generation
		built = append(built, p)
		s.byName[p.Name()] = p
	}

	for _, p := range built {
		if s.byName[p.Name()] == p {
			s.panels = append(s.panels, p)
		}
	}

	sort.SliceStable(s.panels, func(i, j int) bool {
		return s.panels[i].config.DisplayOrder < s.panels[j].config.DisplayOrder
	})

	return s, warnings
}

// ErrorSet returns a set holding one full-width panel that shows err.
// It uses default bar settings and is never scheduled.
func ErrorSet(err error) *Set {
	cfg := config.PanelConfig{
		PanelType:    VariantError.String(),
		Name:         ErrorPanelName,
		WidthPercent: 100,
		Text:         ErrorPrefix + err.Error(),
		Foreground:   config.ErrorForeground,
		Background:   config.ErrorBackground,
	}
	p := New(cfg, VariantError, nil)
	p.synthetic = true

	s := &Set{
		Generation: uuid.NewString(),
		Settings:   config.DefaultConfig(),
		panels:     []*Panel{p},
		byName:     map[string]*Panel{p.Name(): p},
		err:        err,
	}
	p.generation = s.Generation
	return s
}

// Panels returns the panels in display order.
func (s *Set) Panels() []*Panel {
	return s.panels
}

// Lookup returns the panel with the given name.
func (s *Set) Lookup(name string) (*Panel, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// Len returns the number of panels.
func (s *Set) Len() int { return len(s.panels) }

// Err returns the load error an error set was built from, nil otherwise.
func (s *Set) Err() error { return s.err }

// IsError reports whether s is an error set.
func (s *Set) IsError() bool { return s.err != nil }
