// Package registry is the process-wide debug registry for reactive notifiers.
// It is structured into small files by concern:
//
//   - registry.go: Registry type, constructor, enable/disable, reset.
//   - config.go: Config and package defaults.
//   - notifier.go: the Notifier contract and notifier kinds.
//   - controllers.go: controller records, display names, unregistration.
//   - notifiers.go: notifier registration, id generation, listeners.
//   - history.go: bounded FIFO rings for global, per-id and middleware history.
//   - record.go: event recording, middleware activity, history queries.
//   - snapshot.go: Snapshot and Counts projections.
//   - publisher.go: Publisher interface for live event taps.
//   - metrics.go: Prometheus instrumentation.
//
// Every exported method is total: misuse (unknown owners, non-positive limits,
// nil notifiers) is a silent no-op and panics raised by notifiers or metrics
// providers are recovered. Instrumentation must never take down its host.
//
// All state is guarded by one mutex, so each operation, including Snapshot,
// is atomic relative to the others. Notifiers must invoke listeners after
// releasing their own locks.
package registry
