package types

// Envelope is the header every protocol message carries.
type Envelope struct {
	// Message kind.
	// example: event
	Type string `json:"type" example:"event"`
	// Semantic version of the wire protocol.
	// example: 1.0.0
	Protocol string `json:"protocol" example:"1.0.0"`
}

// HealthMessage is returned by GET / and GET /health.
type HealthMessage struct {
	Envelope
	// example: ok
	Status    string `json:"status" example:"ok"`
	Timestamp int64  `json:"timestamp" example:"1700000000000"`
}

// EventMessage wraps one serialized event.
type EventMessage struct {
	Envelope
	Event     map[string]any `json:"event"`
	Timestamp int64          `json:"timestamp" example:"1700000000000"`
}

// SnapshotMessage wraps a full registry snapshot.
type SnapshotMessage struct {
	Envelope
	Snapshot  Snapshot `json:"snapshot"`
	Timestamp int64    `json:"timestamp" example:"1700000000000"`
}

// HeartbeatMessage keeps streaming connections alive. Dropped is the number
// of events the receiving subscriber has missed so far.
type HeartbeatMessage struct {
	Envelope
	Dropped   uint64 `json:"dropped,omitempty" example:"0"`
	Timestamp int64  `json:"timestamp" example:"1700000000000"`
}

// InfoMessage advertises protocol capabilities.
type InfoMessage struct {
	Envelope
	// Wire names of every event kind the server may emit.
	EventTypes []string `json:"eventTypes"`
	// Streaming transports offered by the server.
	Transports []string `json:"transports"`
	// Identifier of this server process.
	Session   string `json:"session,omitempty"`
	Timestamp int64  `json:"timestamp" example:"1700000000000"`
}

// ErrorMessage is a consistent JSON error payload.
type ErrorMessage struct {
	Envelope
	// Error message.
	// example: not_found
	Message string `json:"message" example:"not_found"`
	// HTTP status code, when produced by the HTTP transport.
	// example: 404
	Code      int   `json:"code,omitempty" example:"404"`
	Timestamp int64 `json:"timestamp" example:"1700000000000"`
}

// EventsMessage is returned by GET /events.
type EventsMessage struct {
	Envelope
	History   []map[string]any `json:"history"`
	Timestamp int64            `json:"timestamp" example:"1700000000000"`
}

// RegistryMessage is returned by GET /registry.
type RegistryMessage struct {
	Envelope
	Counts      Counts              `json:"counts"`
	Controllers []ControllerSummary `json:"controllers"`
	Timestamp   int64               `json:"timestamp" example:"1700000000000"`
}
