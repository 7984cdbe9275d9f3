// Package events fans roster changes out to external sinks.
//
// The registry hands every successful signup and unregister to a Dispatcher,
// which queues it without blocking and delivers it on its own goroutine.
// Sinks are write-only: nothing is ever read back, so the service keeps no
// durable roster state and a restart still resets membership to the seed.
//
// A full queue drops the event rather than stall a request. Sink failures
// are logged and counted and never surface to API clients.
package events
