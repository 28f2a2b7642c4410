package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalscope/internal/client"
	"signalscope/internal/config"
	"signalscope/internal/event"
	"signalscope/internal/registry"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, splitCSV(c.in), c.in)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(&buf, "warn", "json")
	require.NoError(t, err)
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	_, err = newLogger(&buf, "loud", "json")
	assert.Error(t, err)
	_, err = newLogger(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestServeFlagsApplyOnlyChanged(t *testing.T) {
	cmd := newServeCmd(&globals{log: zerolog.Nop()})
	require.NoError(t, cmd.Flags().Parse([]string{"--port", "9999", "--cors-origins", "http://a, http://b"}))
	cfg := config.Config{Host: "0.0.0.0", MaxDevtoolsEvents: 7}
	f := &serveFlags{}
	// Re-read values through the command's own flag set.
	f.port, _ = cmd.Flags().GetInt("port")
	f.corsOrigins, _ = cmd.Flags().GetString("cors-origins")
	f.apply(cmd, &cfg)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 7, cfg.MaxDevtoolsEvents)
	assert.True(t, cfg.CORSEnabled)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.CORSAllowedOrigins)
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "signalscope dev (protocol 1.0.0)\n", out.String())
}

func testConfig() config.Config {
	cfg := config.Config{Port: 0}
	cfg.Normalize()
	cfg.Port = 0
	cfg.LogLevel = "off"
	return cfg
}

func startApp(t *testing.T, reg *registry.Registry) (*app, string) {
	t.Helper()
	cfg := testConfig()
	a, err := newApp(zerolog.Nop(), reg, cfg)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("app did not stop")
		}
	})
	base := "http://" + a.Addr()
	wctx, wcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer wcancel()
	require.NoError(t, client.New(base).WaitHealthy(wctx, 10*time.Millisecond))
	return a, base
}

func TestAppServesAndReportsMetrics(t *testing.T) {
	reg := registry.New(registry.Config{})
	a, base := startApp(t, reg)
	assert.True(t, reg.Enabled())

	d := newDemo(reg)
	for i := 0; i < 5; i++ {
		d.tick(reg)
	}

	snap, err := client.New(base).Snapshot(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 5, snap.Signals["Demo.count"].Value)
	assert.EqualValues(t, 10, snap.Computed["Demo.double"].Value)
	assert.Equal(t, "odd", snap.Computed["Demo.parity"].Value)
	require.Len(t, snap.Middlewares, 1)
	assert.Equal(t, "ticker", snap.Middlewares[0].Name)
	assert.Contains(t, snap.Metrics, "uptime")
	assert.Contains(t, snap.Metrics, "subscribers")

	d.close(reg)
	assert.Zero(t, reg.Counts().Controllers)
	assert.Zero(t, d.count.Listeners())
	_ = a
}

func TestAppApplyConfig(t *testing.T) {
	reg := registry.New(registry.Config{})
	a, _ := startApp(t, reg)
	off := false
	cfg := testConfig()
	cfg.Enabled = &off
	cfg.MaxDevtoolsEvents = 3
	a.applyConfig(cfg)
	assert.False(t, reg.Enabled())
	assert.Equal(t, 3, reg.HistoryLimit())
}

func TestReloadKeepsCommandLineOverrides(t *testing.T) {
	t.Setenv(config.EnvMaxEvents, "")
	reg := registry.New(registry.Config{})
	a, _ := startApp(t, reg)
	cmd := newServeCmd(&globals{log: zerolog.Nop()})
	require.NoError(t, cmd.Flags().Parse([]string{"--max-events", "42"}))
	f := &serveFlags{}
	f.maxEvents, _ = cmd.Flags().GetInt("max-events")

	// The edited file sets its own cap; the explicit flag still wins.
	cfg := testConfig()
	cfg.MaxDevtoolsEvents = 5
	got := a.reload(cfg, func(c *config.Config) { f.apply(cmd, c) })
	assert.Equal(t, 42, got.MaxDevtoolsEvents)
	assert.Equal(t, 42, reg.HistoryLimit())

	got = a.reload(cfg, nil)
	assert.Equal(t, 5, reg.HistoryLimit())
	assert.Equal(t, 5, got.MaxDevtoolsEvents)
}

func TestDemoTickRecordsEvents(t *testing.T) {
	reg := registry.New(registry.Config{})
	reg.Enable()
	d := newDemo(reg)
	reg.ClearHistory()
	d.tick(reg)
	kinds := map[event.Kind]int{}
	for _, e := range reg.History() {
		kinds[e.Kind]++
	}
	assert.Equal(t, 1, kinds[event.SignalEmit])
	// double and parity both change on the first tick
	assert.Equal(t, 2, kinds[event.ComputedUpdate])
}

func TestSnapshotCmd(t *testing.T) {
	reg := registry.New(registry.Config{})
	_, base := startApp(t, reg)
	newDemo(reg)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"snapshot", "--url", base, "--counts"})
	require.NoError(t, root.Execute())
	var m map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &m))
	assert.Equal(t, "registry", m["type"])
	assert.EqualValues(t, 1, m["counts"].(map[string]any)["signals"])
}

func TestPrintMessage(t *testing.T) {
	var buf bytes.Buffer
	raw := []byte(`{"type":"event","protocol":"1.0.0","event":{"kind":"signalEmit","id":"Demo.count","value":3,"timestamp":0,"meta":{}},"timestamp":0}`)
	m := client.Message{Raw: raw}
	require.NoError(t, json.Unmarshal(raw, &m.Envelope))
	require.NoError(t, printMessage(&buf, m))
	line := buf.String()
	assert.Contains(t, line, "signalEmit")
	assert.Contains(t, line, "Demo.count 3")

	buf.Reset()
	hb := []byte(`{"type":"heartbeat","protocol":"1.0.0","dropped":4,"timestamp":0}`)
	m = client.Message{Raw: hb}
	require.NoError(t, json.Unmarshal(hb, &m.Envelope))
	require.NoError(t, printMessage(&buf, m))
	assert.True(t, strings.HasPrefix(buf.String(), "heartbeat: 4 events dropped"))
}

func TestUnknownRouteThroughApp(t *testing.T) {
	reg := registry.New(registry.Config{})
	_, base := startApp(t, reg)
	resp, err := http.Get(base + "/unknown")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
