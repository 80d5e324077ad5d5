// Package api provides the Binance spot REST client used to seed local books.
//
// REST endpoints:
//   - Production: https://api.binance.com
//
// The diff-depth WebSocket stream only carries changes, so every fresh
// subscription first fetches GET /api/v3/depth and then applies buffered
// stream events on top of it.
package api
