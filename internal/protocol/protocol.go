// Package protocol builds the versioned JSON envelopes exchanged with debug
// clients. Every message carries a type and the protocol version.
package protocol

import (
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"signalscope/internal/event"
	"signalscope/pkg/types"
)

// Version is the wire protocol version.
const Version = "1.0.0"

// Message types.
const (
	TypeEvent     = "event"
	TypeSnapshot  = "snapshot"
	TypeHeartbeat = "heartbeat"
	TypeInfo      = "info"
	TypeError     = "error"
	TypeHealth    = "health"
	TypeEvents    = "events"
	TypeRegistry  = "registry"
)

// Streaming transports offered by the HTTP server.
const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
)

// Clock supplies message timestamps. Tests may replace it.
var Clock = time.Now

func envelope(typ string) types.Envelope {
	return types.Envelope{Type: typ, Protocol: Version}
}

func now() int64 { return event.Millis(Clock()) }

// EventMessage wraps e.
func EventMessage(e event.Event) types.EventMessage {
	return types.EventMessage{Envelope: envelope(TypeEvent), Event: e.Map(), Timestamp: now()}
}

// SnapshotMessage wraps s.
func SnapshotMessage(s types.Snapshot) types.SnapshotMessage {
	return types.SnapshotMessage{Envelope: envelope(TypeSnapshot), Snapshot: s, Timestamp: now()}
}

// Heartbeat reports how many events the receiving subscriber has missed.
func Heartbeat(dropped uint64) types.HeartbeatMessage {
	return types.HeartbeatMessage{Envelope: envelope(TypeHeartbeat), Dropped: dropped, Timestamp: now()}
}

// Info lists every event wire name and the supported transports.
func Info(session string) types.InfoMessage {
	kinds := event.AllKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return types.InfoMessage{
		Envelope:   envelope(TypeInfo),
		EventTypes: names,
		Transports: []string{TransportSSE, TransportWebSocket},
		Session:    session,
		Timestamp:  now(),
	}
}

// Error builds an error envelope. code 0 omits the status.
func Error(msg string, code int) types.ErrorMessage {
	return types.ErrorMessage{Envelope: envelope(TypeError), Message: msg, Code: code, Timestamp: now()}
}

// Health is the liveness envelope.
func Health() types.HealthMessage {
	return types.HealthMessage{Envelope: envelope(TypeHealth), Status: "ok", Timestamp: now()}
}

// Events wraps an already serialized history.
func Events(history []map[string]any) types.EventsMessage {
	if history == nil {
		history = []map[string]any{}
	}
	return types.EventsMessage{Envelope: envelope(TypeEvents), History: history, Timestamp: now()}
}

// Registry wraps registry counts and controller summaries.
func Registry(counts types.Counts, controllers []types.ControllerSummary) types.RegistryMessage {
	if controllers == nil {
		controllers = []types.ControllerSummary{}
	}
	return types.RegistryMessage{Envelope: envelope(TypeRegistry), Counts: counts, Controllers: controllers, Timestamp: now()}
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// Compatible reports whether version shares Version's major number.
func Compatible(version string) bool {
	v := canonical(version)
	if !semver.IsValid(v) {
		return false
	}
	return semver.Major(v) == semver.Major(canonical(Version))
}

// Check validates the header of a received message.
func Check(env types.Envelope) error {
	if env.Type == "" {
		return ErrMalformed("missing message type")
	}
	if !Compatible(env.Protocol) {
		return ErrIncompatible(env.Protocol)
	}
	return nil
}
