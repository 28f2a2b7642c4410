// Package client talks to a running signalscope server: it fetches snapshots
// over HTTP and tails the live event stream over WebSocket.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"signalscope/internal/protocol"
	"signalscope/pkg/types"
)

// Client is a devtools client bound to one server base URL.
type Client struct {
	base string
	http *http.Client
	log  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLogger installs a structured logger.
func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

// New returns a Client for base, e.g. "http://127.0.0.1:9090".
func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
		log:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Message is one received envelope with its raw JSON.
type Message struct {
	types.Envelope
	Raw json.RawMessage
}

// Decode unmarshals the full envelope into v.
func (m Message) Decode(v any) error { return json.Unmarshal(m.Raw, v) }

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	var env types.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	if err := protocol.Check(env); err != nil {
		return err
	}
	if env.Type == protocol.TypeError {
		var em types.ErrorMessage
		_ = json.Unmarshal(raw, &em)
		return ErrServer(resp.StatusCode, em.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return ErrServer(resp.StatusCode, resp.Status)
	}
	return json.Unmarshal(raw, v)
}

// Snapshot fetches /snapshot.
func (c *Client) Snapshot(ctx context.Context) (types.Snapshot, error) {
	var m types.SnapshotMessage
	if err := c.getJSON(ctx, "/snapshot", &m); err != nil {
		return types.Snapshot{}, err
	}
	return m.Snapshot, nil
}

// Registry fetches /registry.
func (c *Client) Registry(ctx context.Context) (types.RegistryMessage, error) {
	var m types.RegistryMessage
	err := c.getJSON(ctx, "/registry", &m)
	return m, err
}

// Info fetches /protocol.
func (c *Client) Info(ctx context.Context) (types.InfoMessage, error) {
	var m types.InfoMessage
	err := c.getJSON(ctx, "/protocol", &m)
	return m, err
}

// WaitHealthy polls /health until it answers or ctx is done.
func (c *Client) WaitHealthy(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		every = 250 * time.Millisecond
	}
	for {
		var m types.HealthMessage
		err := c.getJSON(ctx, "/health", &m)
		if err == nil && m.Status == "ok" {
			return nil
		}
		if protocol.IsIncompatible(err) {
			return err
		}
		select {
		case <-time.After(every):
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s/health: %w", c.base, ctx.Err())
		}
	}
}

func (c *Client) wsURL() (string, error) {
	u, err := url.Parse(c.base + "/ws")
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.String(), nil
}

// Tail streams envelopes from /ws to fn until ctx is done, the server closes
// the connection or fn returns an error. Every envelope is version-checked;
// an incompatible server ends the tail with an IsIncompatible error.
func (c *Client) Tail(ctx context.Context, fn func(Message) error) error {
	u, err := c.wsURL()
	if err != nil {
		return err
	}
	conn, _, err := websocket.Dial(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u, err)
	}
	defer conn.CloseNow()
	c.log.Debug().Str("url", u).Msg("tail connected")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		var m Message
		if err := json.Unmarshal(data, &m.Envelope); err != nil {
			return fmt.Errorf("decode envelope: %w", err)
		}
		if err := protocol.Check(m.Envelope); err != nil {
			conn.Close(websocket.StatusPolicyViolation, "incompatible protocol")
			return err
		}
		m.Raw = data
		if err := fn(m); err != nil {
			conn.Close(websocket.StatusNormalClosure, "")
			return err
		}
	}
}
