// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Ticker records published and skipped per feed
//   - Store write failures
//   - Stream failures by kind and connector restarts
//   - Feed latency and connector status
//   - Cross-exchange opportunities seen by the scanner
//
// A nil *Metrics is valid and records nothing, so components can be built
// without a registry in tests.
package metrics
