// Package events defines the tagged event records emitted by POS Input
// Core and the dispatcher that fans them out to consumers.
//
// Everything downstream of the input pipeline - the WebSocket hub, the
// MQTT mirror, the telemetry writer - receives events through a
// Dispatcher. Delivery is fire-and-forget: each subscriber owns a bounded
// queue drained by its own goroutine, and Publish never blocks. When a
// subscriber's queue is full the event is dropped for that subscriber
// rather than buffered unbounded, because the key-dispatch path upstream
// must complete within a bounded time budget or the input subsystem
// starts coalescing hardware input.
//
// Ordering is preserved per subscriber: events that do get delivered
// arrive in publish order.
package events
