// Package dispatch runs a batch of package records through an update
// executor with bounded concurrency.
//
// A Dispatcher moves through the states idle, running and then one of
// completed, cancelled or system-error. Every call to Run reports through
// an Observer:
//   - OnRecordStarted when a record takes a slot
//   - OnProgress after every record, with a non-decreasing percentage and
//     an "<outcome>: <name>" status line
//   - a final OnProgress: (100, "completed"), a partial percentage with
//     "cancelled: X of Y processed", or (-1, "system error: ...") followed
//     by OnError
//   - OnCompleted exactly once
//
// Observer calls are serialized, so observers need no locking of their own.
//
// Stopping is cooperative. Token.RequestStop keeps unstarted records from
// starting and keeps running records from beginning another addressing
// attempt; an attempt already running finishes. Cancelling the context
// passed to Run is the hard stop: it also kills running processes.
package dispatch
