// Package tick provides an in-process deferred-call scheduler.
//
// # Overview
//
// A Loop owns a table of registrations and a single goroutine that fires
// their callbacks. Callbacks run to completion, one at a time: a scheduled
// callback never preempts running code and only starts once the currently
// executing callback (and any earlier-ready work) has finished. A delay is
// a minimum, never an exact instant.
//
// Scheduling returns an opaque Handle. Cancelling a handle removes the
// registration before it fires; cancelling an unknown or already-fired
// handle is a silent no-op.
//
// # Registration kinds
//
//   - One-shot: ScheduleOnce / ScheduleAt fire exactly once. A delay of
//     zero means "as soon as possible", never synchronously.
//   - Repeating: ScheduleRepeating fires on a fixed interval until
//     cancelled. There is no in-place interval mutation; cancel and
//     schedule anew.
//   - Cron: ScheduleCron fires per a cron expression (5/6-field specs,
//     "@hourly", "@every 55m").
//
// # Ordering
//
// Registrations fire in ready-time order. Registrations that become ready
// at the same instant fire in registration order.
//
// # Failure semantics
//
// Callbacks are expected to handle their own errors. A panic escaping a
// callback is recovered by the loop, logged with a stack, and recorded in
// the fire history; it affects only that invocation. Other registrations,
// and future firings of a repeating registration, are unaffected.
//
// # Utilities
//
// Debouncer suppresses all but the last of a burst of calls within a quiet
// window. Chain runs delayed steps strictly sequentially, each step
// scheduled only after the previous callback completed. Throttler is a
// leading-edge rate gate that drops excess calls.
//
// # Lifecycle
//
// The Loop can be started and stopped at runtime. Registering while
// stopped is supported: registrations are retained and become eligible on
// the next start.
package tick
