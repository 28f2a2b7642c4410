package types

// NotifierView describes one observed notifier inside a snapshot.
type NotifierView struct {
	// Registry id of the notifier.
	// example: Counter.count
	ID string `json:"id" example:"Counter.count"`
	// Notifier kind (signal, computed, ...).
	// example: signal
	Kind string `json:"kind" example:"signal"`
	// Name of the owning controller.
	// example: Counter
	Controller string `json:"controller" example:"Counter"`
	// Label supplied at registration, if any.
	// example: count
	Label string `json:"label,omitempty" example:"count"`
	// Encoded current value.
	Value any `json:"value"`
	// Last time the notifier fired or was registered (unix ms).
	// example: 1700000000000
	UpdatedAt int64 `json:"updatedAt" example:"1700000000000"`
}

// ControllerSummary is the snapshot view of a controller.
type ControllerSummary struct {
	// Controller name; also the namespace of its notifier ids.
	// example: Counter
	ID string `json:"id" example:"Counter"`
	// Creation time (unix ms).
	// example: 1700000000000
	CreatedAt int64 `json:"createdAt" example:"1700000000000"`
	// Number of notifiers owned by the controller.
	// example: 2
	SignalCount int `json:"signalCount" example:"2"`
}

// MiddlewareActivity is one entry of the middleware activity log.
type MiddlewareActivity struct {
	// Middleware name.
	// example: logger
	Name string `json:"name" example:"logger"`
	// Encoded payload.
	Payload any `json:"payload"`
	// Time of the activity (unix ms).
	// example: 1700000000000
	Timestamp int64 `json:"timestamp" example:"1700000000000"`
}

// Snapshot is an immutable projection of the registry.
type Snapshot struct {
	Signals          map[string]NotifierView     `json:"signals"`
	Computed         map[string]NotifierView     `json:"computed"`
	Controllers      []ControllerSummary         `json:"controllers"`
	Middlewares      []MiddlewareActivity        `json:"middlewares"`
	History          []map[string]any            `json:"history"`
	PerSignalHistory map[string][]map[string]any `json:"perSignalHistory"`
	Metrics          map[string]any              `json:"metrics"`
	// Capture time (unix ms).
	// example: 1700000000000
	Timestamp int64 `json:"timestamp" example:"1700000000000"`
}

// Counts summarizes registry size for GET /registry.
type Counts struct {
	Signals     int `json:"signals" example:"3"`
	Computed    int `json:"computed" example:"1"`
	Controllers int `json:"controllers" example:"2"`
	Middlewares int `json:"middlewares" example:"0"`
}
