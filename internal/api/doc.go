// Package api implements the HTTP REST API and WebSocket server for the
// POS input daemon.
//
// This package provides:
//   - REST endpoints for device listing, keyboard lookup, and permissions
//   - WebSocket hub for the real-time consumer event stream
//   - Middleware stack (request ID, logging, recovery, CORS)
//   - TLS support for production deployments
//
// # Architecture
//
// The API server sits between till applications and the device registry +
// event dispatcher. Queries are answered from the registry's in-memory
// snapshot; the live event stream (key presses, committed records, device
// presence, permission results) is relayed from the dispatcher to every
// subscribed WebSocket client.
//
// # Graceful Degradation
//
// The server operates without an event dispatcher — queries work, only the
// WebSocket stream stays silent. This enables testing and partial operation.
package api
