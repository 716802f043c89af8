package panel

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/opd-ai/go-limebar/internal/config"
	"github.com/opd-ai/go-limebar/internal/lua"
	"github.com/opd-ai/go-limebar/internal/provider"
)

// ErrUnknownVariant is returned for a record whose PanelType names no
// registered variant.
var ErrUnknownVariant = errors.New("unknown panel type")

// Variant identifies the kind of content a panel shows.
type Variant int

const (
	// VariantClock shows the local time.
	VariantClock Variant = iota
	// VariantCommand shows the output of a local executable.
	VariantCommand
	// VariantScript shows the output of a Lua script.
	VariantScript
	// VariantStatic shows fixed text.
	VariantStatic
	// VariantRemote shows the output of a command run over SSH.
	VariantRemote
	// VariantError is the synthetic panel shown when loading fails.
	VariantError
)

// String returns the canonical tag of a Variant.
func (v Variant) String() string {
	switch v {
	case VariantClock:
		return "clock"
	case VariantCommand:
		return "command"
	case VariantScript:
		return "script"
	case VariantStatic:
		return "text"
	case VariantRemote:
		return "remote"
	case VariantError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseVariant maps a PanelType tag to a Variant. Tags are
// case-insensitive, a few aliases are accepted, and the class-style tags of
// older bar configs (BarPanelClock, Limebar.BarPanelCommand) are recognised.
func ParseVariant(tag string) (Variant, error) {
	key := strings.ToLower(strings.TrimSpace(tag))
	key = strings.TrimPrefix(key, "limebar.")
	v, ok := aliases[key]
	if !ok {
		return VariantClock, fmt.Errorf("%w: %q", ErrUnknownVariant, tag)
	}
	return v, nil
}

var aliases = map[string]Variant{
	"clock":   VariantClock,
	"time":    VariantClock,
	"command": VariantCommand,
	"shell":   VariantCommand,
	"exec":    VariantCommand,
	"script":  VariantScript,
	"lua":     VariantScript,
	"text":    VariantStatic,
	"static":  VariantStatic,
	"remote":  VariantRemote,
	"ssh":     VariantRemote,

	"barpanelclock":      VariantClock,
	"barpanelcommand":    VariantCommand,
	"barpanelpowershell": VariantScript,
}

// Constructor builds the provider for a record of one variant.
type Constructor func(cfg config.PanelConfig) (provider.Provider, error)

// Registry is the closed mapping from variant to constructor.
type Registry struct {
	// ScriptLimits bounds every script panel built after it is set. The
	// zero value means lua.DefaultLimits.
	ScriptLimits lua.Limits

	constructors map[Variant]Constructor

	mu       sync.Mutex
	breakers map[string]*provider.Breaker
}

// NewRegistry returns a Registry holding the built-in variants.
func NewRegistry() *Registry {
	r := &Registry{breakers: make(map[string]*provider.Breaker)}
	r.constructors = map[Variant]Constructor{
		VariantClock: func(config.PanelConfig) (provider.Provider, error) {
			return &provider.Clock{}, nil
		},
		VariantCommand: func(cfg config.PanelConfig) (provider.Provider, error) {
			if strings.TrimSpace(cfg.Command) == "" {
				return nil, fmt.Errorf("command panel %q has no Command", cfg.Name)
			}
			return &provider.Command{}, nil
		},
		VariantScript: func(cfg config.PanelConfig) (provider.Provider, error) {
			if strings.TrimSpace(cfg.Command) == "" {
				return nil, fmt.Errorf("script panel %q has no Command", cfg.Name)
			}
			return &provider.Script{Limits: r.ScriptLimits}, nil
		},
		VariantStatic: func(cfg config.PanelConfig) (provider.Provider, error) {
			return &provider.Static{Text: cfg.Text}, nil
		},
		VariantRemote: func(cfg config.PanelConfig) (provider.Provider, error) {
			if strings.TrimSpace(cfg.Host) == "" {
				return nil, fmt.Errorf("remote panel %q has no Host", cfg.Name)
			}
			return &provider.Remote{
				Host:         cfg.Host,
				IdentityFile: cfg.IdentityFile,
				Breaker:      r.breaker(cfg.Host),
			}, nil
		},
	}
	return r
}

// breaker returns the breaker shared by every remote panel targeting host.
// Breakers persist across reloads.
func (r *Registry) breaker(host string) *provider.Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(host))
	b, ok := r.breakers[key]
	if !ok {
		b = provider.NewBreaker(0, 0)
		r.breakers[key] = b
	}
	return b
}

// Register replaces the constructor for v. It is intended for tests and
// embedders that substitute providers; the set of variants stays closed.
func (r *Registry) Register(v Variant, c Constructor) {
	r.constructors[v] = c
}

// Build creates the panel for one record.
func (r *Registry) Build(cfg config.PanelConfig) (*Panel, error) {
	v, err := ParseVariant(cfg.PanelType)
	if err != nil {
		return nil, err
	}
	ctor, ok := r.constructors[v]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, cfg.PanelType)
	}
	p, err := ctor(cfg)
	if err != nil {
		return nil, err
	}
	return New(cfg, v, p), nil
}
