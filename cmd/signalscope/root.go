package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"signalscope/internal/config"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	logLevel   string
	logFormat  string
	log        zerolog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{log: zerolog.Nop()}
	root := &cobra.Command{
		Use:           "signalscope",
		Short:         "Debug telemetry server and client for reactive state",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (.yaml/.yml/.json/.toml); searched in ./ and ~/.config/signalscope when empty")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults SIGNALSCOPE_LOG_LEVEL or info)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "console", "Log format: console|json")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		lvl := g.logLevel
		if lvl == "" {
			lvl = os.Getenv(config.EnvLogLevel)
		}
		l, err := newLogger(cmd.ErrOrStderr(), lvl, g.logFormat)
		if err != nil {
			return err
		}
		g.log = l
		return nil
	}

	root.AddCommand(newServeCmd(g), newWatchCmd(g), newSnapshotCmd(g), newVersionCmd())
	return root
}

// newLogger builds a console or JSON zerolog logger at lvl (default info).
func newLogger(w io.Writer, lvl, format string) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if lvl != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(lvl))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid --log-level %q: %w", lvl, err)
		}
		level = parsed
	}
	switch format {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("invalid --log-format %q (want console|json)", format)
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// loadConfig resolves the config file (explicit or discovered), then applies
// environment overrides. It returns the path actually used, if any.
func (g *globals) loadConfig() (config.Config, string, error) {
	var cfg config.Config
	path := g.configPath
	if path == "" {
		if p, ok := config.Discover(); ok {
			path = p
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, "", err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, "", err
	}
	return cfg, path, nil
}

// splitCSV splits a comma-separated flag value, dropping empty items.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
