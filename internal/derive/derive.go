// Package derive turns an order-book snapshot into the published ticker record.
//
// Derivation is pure: no I/O, no mutation of the input, and the same snapshot
// with the same receive time always yields the same record.
package derive

import (
	"errors"

	"github.com/rickgao/arb-ingest/internal/model"
)

// DepthLevels is the number of top levels summed into BidDepth/AskDepth.
const DepthLevels = 5

// ErrEmptySide is returned when either side of the book has no levels.
// The caller skips publishing for that update.
var ErrEmptySide = errors.New("order book side empty")

// Ticker derives a TickerRecord from snap, received locally at nowMs.
//
// The feed's level order is trusted; nothing is re-sorted. Latency is
// nowMs - ExchangeTimestampMs when the exchange time is known, clamped to 0
// when clock skew would make it negative.
func Ticker(snap model.OrderBookSnapshot, nowMs int64) (model.TickerRecord, error) {
	if !snap.HasBothSides() {
		return model.TickerRecord{}, ErrEmptySide
	}

	return model.TickerRecord{
		Exchange:            snap.Exchange,
		Symbol:              snap.Symbol,
		BestBid:             snap.Bids[0].Price,
		BestAsk:             snap.Asks[0].Price,
		BidDepth:            Depth(snap.Bids, DepthLevels),
		AskDepth:            Depth(snap.Asks, DepthLevels),
		LatencyMs:           Latency(nowMs, snap.ExchangeTimestampMs),
		ExchangeTimestampMs: snap.ExchangeTimestampMs,
	}, nil
}

// Depth sums the sizes of the first min(n, len(levels)) levels.
func Depth(levels []model.PriceLevel, n int) float64 {
	if n > len(levels) {
		n = len(levels)
	}
	var sum float64
	for _, l := range levels[:n] {
		sum += l.Size
	}
	return sum
}

// Latency returns the receive latency in milliseconds.
// Unknown exchange time (<= 0) and negative skew both yield 0.
func Latency(nowMs, exchangeMs int64) float64 {
	if exchangeMs <= 0 {
		return 0
	}
	d := nowMs - exchangeMs
	if d < 0 {
		return 0
	}
	return float64(d)
}
