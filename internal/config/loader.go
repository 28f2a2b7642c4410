package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"signalscope/internal/common/fsutil"
)

// Defaults applied by Normalize.
const (
	DefaultHost             = "127.0.0.1"
	DefaultPort             = 9090
	DefaultPortAttempts     = 20
	DefaultMaxEvents        = 500
	DefaultHeartbeatSeconds = 15
	DefaultStreamBuffer     = 256
	DefaultEncodeMaxDepth   = 8
	DefaultLogLevel         = "info"
)

// Config holds the debug server and registry parameters.
// Zero values mean "unspecified" and are replaced by Normalize.
type Config struct {
	// Enabled is a pointer so an explicit false survives merging.
	Enabled            *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	MaxDevtoolsEvents  int      `json:"max_devtools_events" yaml:"max_devtools_events" toml:"max_devtools_events"`
	PerIDHistoryLimit  int      `json:"per_id_history_limit" yaml:"per_id_history_limit" toml:"per_id_history_limit"`
	Host               string   `json:"host" yaml:"host" toml:"host"`
	Port               int      `json:"port" yaml:"port" toml:"port"`
	PortAttempts       int      `json:"port_attempts" yaml:"port_attempts" toml:"port_attempts"`
	HeartbeatSeconds   int      `json:"heartbeat_seconds" yaml:"heartbeat_seconds" toml:"heartbeat_seconds"`
	StreamBuffer       int      `json:"stream_buffer" yaml:"stream_buffer" toml:"stream_buffer"`
	EncodeMaxDepth     int      `json:"encode_max_depth" yaml:"encode_max_depth" toml:"encode_max_depth"`
	LogLevel           string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	CORSEnabled        bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
}

// Default returns a normalized configuration with recording enabled.
func Default() Config {
	var cfg Config
	cfg.Normalize()
	return cfg
}

// IsEnabled reports the effective enabled flag. Unset means enabled.
func (c Config) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }

// Addr joins host and port.
func (c Config) Addr() string { return c.Host + ":" + strconv.Itoa(c.Port) }

// Normalize fills unspecified fields with defaults.
func (c *Config) Normalize() {
	if c.Enabled == nil {
		t := true
		c.Enabled = &t
	}
	if c.MaxDevtoolsEvents <= 0 {
		c.MaxDevtoolsEvents = DefaultMaxEvents
	}
	if c.PerIDHistoryLimit < 0 {
		c.PerIDHistoryLimit = 0
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port <= 0 {
		c.Port = DefaultPort
	}
	if c.PortAttempts <= 0 {
		c.PortAttempts = DefaultPortAttempts
	}
	if c.HeartbeatSeconds <= 0 {
		c.HeartbeatSeconds = DefaultHeartbeatSeconds
	}
	if c.StreamBuffer <= 0 {
		c.StreamBuffer = DefaultStreamBuffer
	}
	if c.EncodeMaxDepth <= 0 {
		c.EncodeMaxDepth = DefaultEncodeMaxDepth
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml. A leading '~' is expanded.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, ErrUnsupportedExtension(ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", filepath.Base(p), err)
	}
	return cfg, nil
}

// SearchPaths lists the files Discover looks for, in order.
var SearchPaths = []string{
	"signalscope.yaml",
	"signalscope.yml",
	"signalscope.toml",
	"signalscope.json",
	"~/.config/signalscope/config.yaml",
	"~/.config/signalscope/config.toml",
}

// Discover returns the first existing file in SearchPaths.
func Discover() (string, bool) {
	return fsutil.FirstExisting(SearchPaths...)
}

// Environment overrides.
const (
	EnvEnabled   = "SIGNALSCOPE_ENABLED"
	EnvMaxEvents = "SIGNALSCOPE_MAX_EVENTS"
	EnvPort      = "SIGNALSCOPE_PORT"
	EnvHost      = "SIGNALSCOPE_HOST"
	EnvLogLevel  = "SIGNALSCOPE_LOG_LEVEL"
)

// ApplyEnv overlays SIGNALSCOPE_* variables onto c. Malformed values are
// reported and leave the field untouched.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []string
	if v, ok := lookup(EnvEnabled); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, EnvEnabled+": "+err.Error())
		} else {
			c.Enabled = &b
		}
	}
	intVar := func(name string, dst *int) {
		v, ok := lookup(name)
		if !ok {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			errs = append(errs, name+": want a positive integer, got "+strconv.Quote(v))
			return
		}
		*dst = n
	}
	intVar(EnvMaxEvents, &c.MaxDevtoolsEvents)
	intVar(EnvPort, &c.Port)
	if v, ok := lookup(EnvHost); ok && v != "" {
		c.Host = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if len(errs) > 0 {
		return fmt.Errorf("environment: %s", strings.Join(errs, "; "))
	}
	return nil
}
