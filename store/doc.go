// Package store implements the durable persistence layer for frontdesk: a
// write-behind engine that absorbs high-frequency events (transcript lines,
// metrics, structured-state snapshots, transfer audit records) from the live
// conversational loop and flushes them to a Backend in batches from a
// background goroutine. Low-frequency, high-value writes (session lifecycle,
// patient and appointment records) bypass the queues and hit the backend on
// the caller's path.
//
// Enqueue operations never block and never fail; durability lags the
// in-memory state by at most one flush interval. Items popped from a queue
// are re-queued at the head if the backend write fails, but a process crash
// between pop and commit loses them. That window is a deliberate
// availability-over-durability tradeoff for conversational latency.
package store
