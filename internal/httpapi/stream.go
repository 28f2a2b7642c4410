package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"signalscope/internal/protocol"
	"signalscope/internal/stream"
)

const (
	transportSSE = protocol.TransportSSE
	transportWS  = protocol.TransportWebSocket
	writeTimeout = 10 * time.Second
)

// sendFunc writes one envelope of the given type to a client.
type sendFunc func(ctx context.Context, typ string, v any) error

// pump writes the info envelope, then events and heartbeats, until ctx ends,
// the subscription closes or a write fails.
func pump(ctx context.Context, sub *stream.Subscription, transport string, l streamLog, send sendFunc) error {
	emit := func(typ string, v any) error {
		if err := send(ctx, typ, v); err != nil {
			return err
		}
		streamFramesTotal.WithLabelValues(transport, typ).Inc()
		l.frame(typ)
		return nil
	}
	if err := emit(protocol.TypeInfo, protocol.Info(session)); err != nil {
		return err
	}
	t := time.NewTicker(heartbeatEvery())
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-sub.C():
			if !ok {
				return nil
			}
			if err := emit(protocol.TypeEvent, protocol.EventMessage(e)); err != nil {
				return err
			}
		case <-t.C:
			if err := emit(protocol.TypeHeartbeat, protocol.Heartbeat(sub.Dropped())); err != nil {
				return err
			}
		}
	}
}

// sse streams envelopes as Server-Sent Events. The SSE event name is the
// envelope type.
//
// @Summary Live event stream (Server-Sent Events)
// @Tags debug
// @Produce text/event-stream
// @Success 200 {object} types.EventMessage
// @Router /stream [get]
func (h *handlers) sse(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		writeError(w, http.StatusServiceUnavailable, codeStreamUnsupported)
		return
	}
	f, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, codeStreamUnsupported)
		return
	}
	sub := h.events.Subscribe(streamBufferSize())
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	f.Flush()

	l := newStreamLog(r, transportSSE)
	l.opened(sub.ID())
	streamClients.WithLabelValues(transportSSE).Inc()
	defer streamClients.WithLabelValues(transportSSE).Dec()

	ctx, cancel := streamContext(r.Context())
	defer cancel()
	err := pump(ctx, sub, transportSSE, l, func(_ context.Context, typ string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", typ, b); err != nil {
			return err
		}
		f.Flush()
		return nil
	})
	l.closed(sub.Dropped(), err)
}

// ws streams the same envelope sequence as /stream over a WebSocket. Client
// messages are read and discarded.
//
// @Summary Live event stream (WebSocket)
// @Tags debug
// @Success 101 {object} types.EventMessage
// @Router /ws [get]
func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		writeError(w, http.StatusServiceUnavailable, codeStreamUnsupported)
		return
	}
	opts := &websocket.AcceptOptions{CompressionMode: websocket.CompressionDisabled}
	if corsEnabled {
		opts.OriginPatterns = corsAllowedOrigins
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		// Accept already wrote the HTTP error response.
		logger().Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.CloseNow()

	sub := h.events.Subscribe(streamBufferSize())
	defer sub.Close()

	l := newStreamLog(r, transportWS)
	l.opened(sub.ID())
	streamClients.WithLabelValues(transportWS).Inc()
	defer streamClients.WithLabelValues(transportWS).Dec()

	ctx, cancel := streamContext(r.Context())
	defer cancel()
	ctx = conn.CloseRead(ctx)
	err = pump(ctx, sub, transportWS, l, func(ctx context.Context, _ string, v any) error {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		defer cancel()
		return wsjson.Write(wctx, conn, v)
	})
	l.closed(sub.Dropped(), err)
	if err != nil {
		conn.Close(websocket.StatusInternalError, "write failed")
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}
