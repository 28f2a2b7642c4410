package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"signalscope/internal/config"
	"signalscope/internal/httpapi"
	"signalscope/internal/registry"
	"signalscope/internal/stream"
)

type serveFlags struct {
	host         string
	port         int
	maxEvents    int
	corsOrigins  string
	demo         bool
	demoInterval time.Duration
	noWatch      bool
}

func newServeCmd(g *globals) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the debug server",
		Example: "  signalscope serve --demo\n" +
			"  signalscope serve --port 9191 --cors-origins http://localhost:5173",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := g.loadConfig()
			if err != nil {
				return err
			}
			f.apply(cmd, &cfg)
			cfg.Normalize()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a, err := newApp(g.log, registry.Default(), cfg)
			if err != nil {
				return err
			}
			if path != "" && !f.noWatch {
				a.watch(ctx, path, func(c *config.Config) { f.apply(cmd, c) })
			}
			if f.demo {
				startDemo(ctx, a.reg, f.demoInterval, g.log)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signalscope listening on http://%s (dashboard: /ui)\n", a.Addr())
			return a.run(ctx)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.host, "host", "", "Bind host (defaults SIGNALSCOPE_HOST or 127.0.0.1)")
	fl.IntVar(&f.port, "port", 0, "Bind port; the next free port is used on conflict (defaults SIGNALSCOPE_PORT or 9090)")
	fl.IntVar(&f.maxEvents, "max-events", 0, "Global history cap (defaults SIGNALSCOPE_MAX_EVENTS or 500)")
	fl.StringVar(&f.corsOrigins, "cors-origins", "", "Comma-separated allowed origins; enables CORS")
	fl.BoolVar(&f.demo, "demo", false, "Register a ticking demo counter so the dashboard has live data")
	fl.DurationVar(&f.demoInterval, "demo-interval", time.Second, "Demo tick period")
	fl.BoolVar(&f.noWatch, "no-watch", false, "Do not reload the config file on change")
	return cmd
}

// apply overlays explicitly set flags onto cfg.
func (f *serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("host") {
		cfg.Host = f.host
	}
	if fl.Changed("port") {
		cfg.Port = f.port
	}
	if fl.Changed("max-events") {
		cfg.MaxDevtoolsEvents = f.maxEvents
	}
	if fl.Changed("cors-origins") {
		cfg.CORSAllowedOrigins = splitCSV(f.corsOrigins)
		cfg.CORSEnabled = len(cfg.CORSAllowedOrigins) > 0
	}
}

// app wires the registry, the event broadcaster and the HTTP server.
type app struct {
	log     zerolog.Logger
	reg     *registry.Registry
	bus     *stream.Broadcaster
	ln      net.Listener
	srv     *http.Server
	started time.Time
}

func newApp(log zerolog.Logger, reg *registry.Registry, cfg config.Config) (*app, error) {
	a := &app{
		log:     log,
		reg:     reg,
		bus:     stream.New(),
		started: time.Now(),
	}
	reg.SetLogger(log.With().Str("component", "registry").Logger())
	reg.SetPublisher(a.bus)
	reg.SetMetricsProvider(a.metrics)
	a.applyConfig(cfg)

	httpapi.SetLogger(log.With().Str("component", "http").Logger())
	httpapi.SetDefaultLogLevel(cfg.LogLevel)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSAllowedOrigins, nil, nil)

	ln, err := httpapi.Listen(cfg.Host, cfg.Port, cfg.PortAttempts)
	if err != nil {
		a.bus.Close()
		return nil, err
	}
	a.ln = ln
	a.srv = &http.Server{
		Handler:           httpapi.NewMux(reg, a.bus),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// applyConfig pushes the live-tunable settings into the registry and the
// HTTP layer. Stream settings affect new connections only.
func (a *app) applyConfig(cfg config.Config) {
	a.reg.SetHistoryLimit(cfg.MaxDevtoolsEvents)
	a.reg.SetPerIDHistoryLimit(cfg.PerIDHistoryLimit)
	a.reg.SetEncodeMaxDepth(cfg.EncodeMaxDepth)
	httpapi.SetHeartbeatInterval(time.Duration(cfg.HeartbeatSeconds) * time.Second)
	httpapi.SetStreamBuffer(cfg.StreamBuffer)
	if cfg.IsEnabled() {
		a.reg.Enable()
	} else {
		a.reg.Disable()
	}
}

func (a *app) metrics() map[string]any {
	return map[string]any{
		"uptime":      time.Since(a.started).Round(time.Second),
		"subscribers": a.bus.Len(),
		"goroutines":  runtime.NumGoroutine(),
		"session":     httpapi.Session(),
	}
}

// Addr is the bound address, which may differ from the configured port.
func (a *app) Addr() string { return a.ln.Addr().String() }

// reload applies a freshly loaded file config. Environment overrides and the
// command-line overlay are layered on top the same way as at startup.
func (a *app) reload(cfg config.Config, overlay func(*config.Config)) config.Config {
	if err := cfg.ApplyEnv(); err != nil {
		a.log.Warn().Err(err).Msg("ignoring malformed environment override")
	}
	if overlay != nil {
		overlay(&cfg)
	}
	cfg.Normalize()
	a.applyConfig(cfg)
	return cfg
}

func (a *app) watch(ctx context.Context, path string, overlay func(*config.Config)) {
	err := config.Watch(ctx, path, func(cfg config.Config) {
		cfg = a.reload(cfg, overlay)
		a.log.Info().Str("path", path).Int("max_events", cfg.MaxDevtoolsEvents).Bool("enabled", cfg.IsEnabled()).Msg("config reloaded")
	}, func(err error) {
		a.log.Warn().Err(err).Str("path", path).Msg("config reload failed")
	})
	if err != nil {
		a.log.Warn().Err(err).Str("path", path).Msg("config watch disabled")
	}
}

// run serves until ctx is done, then shuts down gracefully. Open streams end
// through the base context.
func (a *app) run(ctx context.Context) error {
	base, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()
	httpapi.SetBaseContext(base)
	defer httpapi.SetBaseContext(nil)

	errc := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.Addr()).Str("session", httpapi.Session()).Msg("signalscope listening")
		if err := a.srv.Serve(a.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		a.bus.Close()
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown (Ctrl+C / SIGTERM)
	cancelStreams()
	a.bus.Close()
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(sctx); err != nil {
		a.log.Error().Err(err).Msg("graceful shutdown error")
		return err
	}
	a.reg.SetPublisher(nil)
	a.log.Info().Msg("signalscope stopped")
	return nil
}
