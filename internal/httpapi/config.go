package httpapi

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	defaultHeartbeat    = 15 * time.Second
	defaultStreamBuffer = 256
)

// Stream settings are swapped by config reloads while streams are open, so
// they live in atomics. Each new connection reads them once.
var (
	heartbeatInterval atomic.Int64
	streamBuffer      atomic.Int64
)

func init() {
	heartbeatInterval.Store(int64(defaultHeartbeat))
	streamBuffer.Store(defaultStreamBuffer)
}

// SetHeartbeatInterval sets the streaming heartbeat period. Non-positive
// values restore the 15s default.
func SetHeartbeatInterval(d time.Duration) {
	if d <= 0 {
		d = defaultHeartbeat
	}
	heartbeatInterval.Store(int64(d))
}

func heartbeatEvery() time.Duration { return time.Duration(heartbeatInterval.Load()) }

// SetStreamBuffer sets the per-subscriber event buffer for /stream and /ws.
// Non-positive values restore the default of 256.
func SetStreamBuffer(n int) {
	if n <= 0 {
		n = defaultStreamBuffer
	}
	streamBuffer.Store(int64(n))
}

func streamBufferSize() int { return int(streamBuffer.Load()) }

// session identifies this server process in info envelopes.
var session = uuid.NewString()

// SetSession overrides the session id advertised by /protocol and streams.
func SetSession(id string) {
	if id == "" {
		id = uuid.NewString()
	}
	session = id
}

// Session returns the advertised session id.
func Session() string { return session }

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server. Empty method
// and header lists fall back to GET/OPTIONS and Accept/Content-Type.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
