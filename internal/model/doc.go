// Package model defines shared data types used across the ingestion pipeline.
//
// Conventions:
//   - Prices and sizes: float64 as normalized from the venue feed
//   - Timestamps: int64 milliseconds since Unix epoch, 0 when unknown
//   - Symbols: canonical BASE/QUOTE form (e.g. "BTC/USDT")
package model
