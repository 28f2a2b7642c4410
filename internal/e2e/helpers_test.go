package e2e

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"signalscope/internal/client"
	"signalscope/internal/httpapi"
	"signalscope/internal/registry"
	"signalscope/internal/stream"
)

// newServer wires a fresh registry to an httptest server the same way the
// serve command does.
func newServer(t *testing.T, cfg registry.Config) (*httptest.Server, *registry.Registry, *stream.Broadcaster) {
	t.Helper()
	bus := stream.New()
	cfg.Publisher = bus
	reg := registry.New(cfg)
	srv := httptest.NewServer(httpapi.NewMux(reg, bus))
	t.Cleanup(func() {
		bus.Close()
		srv.Close()
	})
	return srv, reg, bus
}

// tail collects envelopes from /ws on a goroutine until the returned stop
// func is called.
func tail(t *testing.T, base string) (<-chan client.Message, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan client.Message, 256)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = client.New(base).Tail(ctx, func(m client.Message) error {
			out <- m
			return nil
		})
	}()
	return out, func() {
		cancel()
		<-done
	}
}

func next(t *testing.T, ch <-chan client.Message) client.Message {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for envelope")
		return client.Message{}
	}
}
