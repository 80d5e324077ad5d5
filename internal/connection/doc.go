// Package connection implements a single venue WebSocket connection.
//
// A Client:
//   - Dials one streaming endpoint with a handshake timeout
//   - Answers server pings and sends its own keepalive pings
//   - Reports a stale connection when no ping/pong or frame arrives in time
//   - Delivers frames in receipt order, stamped with the local receive time
//
// Reconnection is not handled here. A failed Client is closed and replaced
// by its owner, which dials a fresh one.
package connection
