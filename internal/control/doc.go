// Package control turns raw UI selection events into serialized apply calls.
//
// # Debounce
//
// Select is a trailing-edge debounce: rapid selections on one application
// collapse to the last one inside the window (default 300ms). Each
// application gets its own timer, so selections on independent controls
// never cancel each other.
//
// # Serialization
//
// An apply runs to completion before the next one starts, whatever
// application it belongs to; the viewer and the active-object state are
// never mutated concurrently. An event already in flight is never
// preempted; a new selection simply waits its turn.
//
// # Error containment
//
// Every error from an apply is caught here, logged, and reported through the
// result callback together with the application's last successfully applied
// option, so the UI can revert the control and re-enable input. Nothing is
// retried automatically.
//
// # Diagnostics
//
// Snapshot exposes read-only controller state (pending selections, applied
// options, counters) for debug surfaces instead of ambient globals.
package control
