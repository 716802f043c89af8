// Package limebar provides the public API for running a limebar status
// strip: a row of panels whose text comes from clocks, local commands, Lua
// scripts or remote hosts, laid out by a JSON, YAML, TOML or Lua
// configuration file.
//
// # Basic Usage
//
//	b, err := limebar.New("/path/to/config.json", render.NewTerminal(os.Stdout), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := b.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer b.Stop()
//
// # Configuration
//
// The file is polled for modification-time changes every
// [Options.PollInterval] and, when [Options.WatchConfig] is set, watched
// with fsnotify as well. A changed file stops every running panel before
// the new set is started. A file that is missing or cannot be parsed never
// stops the bar: a single full-width error panel is shown until the file
// is fixed. [Bar.Reload] forces a reload.
//
// # Surfaces
//
// A [Surface] receives the panels through RebuildView whenever the set of
// panels or their layout changes, and through RefreshView when only their
// texts do. Surfaces that also implement [SettingsApplier] are told about
// bar-wide settings before each rebuild. Surface methods are only called
// from the bar's coordinating goroutine.
//
// # Error Handling
//
// Runtime errors are reported through [ErrorHandler] and lifecycle changes
// through [EventHandler]:
//
//	b.SetErrorHandler(func(err error) {
//		log.Printf("limebar error: %v", err)
//	})
//
// Handlers are called asynchronously; do not block in them. A panicking
// handler is recovered.
//
// # Health and Metrics
//
// [Bar.Health] reports stalled panels, the error panel and recent errors.
// [Metrics.RegisterExpvar] publishes counters under limebar_* names at
// /debug/vars.
package limebar
