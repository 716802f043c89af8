package main

import (
	"io"

	"github.com/opd-ai/go-limebar/internal/config"
	"github.com/opd-ai/go-limebar/internal/render"
	"github.com/opd-ai/go-limebar/pkg/limebar"
)

// output is the surface the bar draws to, plus the window to run when the
// surface needs the main goroutine.
type output struct {
	kind    config.Surface
	surface limebar.Surface
	window  *render.Window
	close   func()
}

// surfaceKind picks the surface: the override when set, otherwise the
// configuration file's Surface, otherwise the window.
func surfaceKind(path, override string, logger limebar.Logger) (config.Surface, *config.Config) {
	cfg, err := config.Load(path)
	if err != nil {
		cfg = nil
	}
	if override != "" {
		kind, err := config.ParseSurface(override)
		if err != nil {
			logger.Warn("ignoring surface override", "surface", override, "error", err)
		} else {
			return kind, cfg
		}
	}
	if cfg != nil {
		return cfg.Surface, cfg
	}
	return config.SurfaceWindow, nil
}

func openSurface(path, override string, stdout io.Writer, logger limebar.Logger) (*output, error) {
	kind, cfg := surfaceKind(path, override, logger)
	if kind == config.SurfaceWindow && !render.WindowAvailable {
		logger.Warn("window surface not built in, using terminal")
		kind = config.SurfaceTerminal
	}

	switch kind {
	case config.SurfaceWindow:
		ws := render.WindowSettings{}
		if cfg != nil {
			ws = render.SettingsFrom(*cfg)
		}
		w := render.NewWindow(ws)
		w.SetErrorHandler(func(err error) {
			logger.Warn("window error", "error", err)
		})
		return &output{kind: kind, surface: w, window: w, close: func() {}}, nil
	case config.SurfaceTerminal:
		t := render.NewTerminal(stdout)
		return &output{kind: kind, surface: t, close: func() { _ = t.Close() }}, nil
	default:
		return &output{kind: config.SurfaceNone, surface: render.NewHeadless(), close: func() {}}, nil
	}
}
