// Package main provides the limebar-go command: a desktop status strip
// whose panels are described by a JSON, YAML, TOML or Lua file.
package main

import (
	"context"
	"errors"
	"expvar"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opd-ai/go-limebar/internal/config"
	"github.com/opd-ai/go-limebar/internal/profiling"
	"github.com/opd-ai/go-limebar/internal/telemetry"
	"github.com/opd-ai/go-limebar/pkg/limebar"
)

// Version is the current version of limebar-go.
// This default value can be overridden at build time using:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

// envPrefix prefixes every environment setting, e.g. LIMEBAR_LOG_LEVEL.
const envPrefix = "LIMEBAR"

// settings are the process options read from the environment.
type settings struct {
	LogLevel   string
	LogFormat  string
	Surface    string
	CPUProfile string
	MemProfile string
	DebugAddr  string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	return &cobra.Command{
		Use:   "limebar-go [config-file]",
		Short: "A configurable desktop status strip",
		Long: `limebar-go shows a row of panels along a screen edge. Each panel displays
the time, the output of a command or Lua script, or the output of a command
run on a remote host over SSH. The configuration file (default config.json)
is reloaded whenever it changes.

Environment:
  LIMEBAR_LOG_LEVEL    debug, info, warn or error (default info)
  LIMEBAR_LOG_FORMAT   text or json (default text)
  LIMEBAR_SURFACE      window, terminal or none; overrides the file's Surface
  LIMEBAR_CPUPROFILE   write a CPU profile to this file
  LIMEBAR_MEMPROFILE   write a heap profile to this file on exit
  LIMEBAR_DEBUG_ADDR   serve expvar metrics at http://ADDR/debug/vars
  OTEL_EXPORTER_OTLP_ENDPOINT  export panel update traces over OTLP/HTTP`,
		Args:          cobra.MaximumNArgs(1),
		Version:       Version,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			return run(cmd.Context(), path, readSettings(v), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func readSettings(v *viper.Viper) settings {
	return settings{
		LogLevel:   v.GetString("log_level"),
		LogFormat:  v.GetString("log_format"),
		Surface:    v.GetString("surface"),
		CPUProfile: v.GetString("cpuprofile"),
		MemProfile: v.GetString("memprofile"),
		DebugAddr:  v.GetString("debug_addr"),
	}
}

func newLogger(s settings, w io.Writer) limebar.Logger {
	level, ok := limebar.ParseLevel(s.LogLevel)
	var logger limebar.Logger
	if s.LogFormat == "json" {
		logger = limebar.JSONLogger(w, level)
	} else {
		logger = limebar.LevelLogger(w, level)
	}
	if !ok {
		logger.Warn("unknown log level, using info", "level", s.LogLevel)
	}
	return logger
}

func run(ctx context.Context, path string, s settings, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(s, stderr)

	profConfig := profiling.Config{CPUProfilePath: s.CPUProfile, MemProfilePath: s.MemProfile}
	if profConfig.Enabled() {
		prof := profiling.New(profConfig)
		if err := prof.Start(); err != nil {
			return err
		}
		defer func() {
			if err := prof.Stop(); err != nil {
				logger.Warn("failed to write profiles", "error", err)
			}
		}()
	}

	exporter, err := telemetry.Setup(ctx)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	}
	defer func() {
		if err := exporter.Shutdown(context.Background()); err != nil {
			logger.Warn("trace export shutdown failed", "error", err)
		}
	}()

	metrics := limebar.DefaultMetrics()
	metrics.RegisterExpvar()
	if s.DebugAddr != "" {
		go serveDebug(s.DebugAddr, logger)
	}

	out, err := openSurface(path, s.Surface, stdout, logger)
	if err != nil {
		return err
	}
	defer out.close()

	opts := limebar.DefaultOptions()
	opts.Logger = logger
	opts.Metrics = metrics
	opts.Tracer = exporter.Tracer("github.com/opd-ai/go-limebar")

	bar, err := limebar.New(path, out.surface, &opts)
	if err != nil {
		return err
	}
	if err := bar.Start(); err != nil {
		return err
	}
	logger.Info("limebar-go started", "version", Version, "config", path, "surface", out.kind)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go handleSignals(ctx, cancel, bar, logger)

	var runErr error
	if out.window != nil {
		// Blocks the main goroutine until the window closes or ctx ends.
		runErr = out.window.Run(ctx)
		cancel()
	} else {
		<-ctx.Done()
	}

	return errors.Join(runErr, bar.Stop())
}

// handleSignals stops on SIGINT or SIGTERM and reloads on SIGHUP.
func handleSignals(ctx context.Context, cancel context.CancelFunc, bar limebar.Bar, logger limebar.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				logger.Info("received SIGHUP, reloading configuration")
				// The error is already shown by the error panel.
				_ = bar.Reload()
				continue
			}
			logger.Info("shutting down", "signal", sig.String())
			cancel()
			return
		}
	}
}

func serveDebug(addr string, logger limebar.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/debug/vars", expvar.Handler())
	logger.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics server stopped", "addr", addr, "error", err)
	}
}
