package model

import (
	"encoding/json"
	"strings"
)

// KeyPrefix is the namespace for published ticker records.
const KeyPrefix = "ticker:"

// -----------------------------------------------------------------------------
// Order Book Types
// -----------------------------------------------------------------------------

// PriceLevel is a single (price, size) entry on one side of a book.
type PriceLevel struct {
	Price float64
	Size  float64
}

// OrderBookSnapshot is the canonical, venue-independent view of one book.
// It is replaced on every update and never mutated after construction.
type OrderBookSnapshot struct {
	Exchange            string       // Venue identifier (e.g. "binance")
	Symbol              string       // Canonical pair (e.g. "BTC/USDT")
	Bids                []PriceLevel // Descending by price
	Asks                []PriceLevel // Ascending by price
	ExchangeTimestampMs int64        // Venue-reported update time (0 = unknown)
}

// HasBothSides reports whether both bid and ask sides carry at least one level.
func (s OrderBookSnapshot) HasBothSides() bool {
	return len(s.Bids) > 0 && len(s.Asks) > 0
}

// -----------------------------------------------------------------------------
// Published Types
// -----------------------------------------------------------------------------

// TickerRecord is the derived artifact published for each (exchange, symbol).
type TickerRecord struct {
	Exchange            string
	Symbol              string
	BestBid             float64
	BestAsk             float64
	BidDepth            float64 // Sum of sizes across the top levels
	AskDepth            float64
	LatencyMs           float64 // Local receive time minus exchange time, clamped to >= 0
	ExchangeTimestampMs int64   // Passthrough, 0 = unknown
}

// tickerWire is the store value layout. Field names are shared with consumers.
type tickerWire struct {
	Exchange  string  `json:"exchange"`
	Symbol    string  `json:"symbol"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	BidDepth  float64 `json:"bid_depth"`
	AskDepth  float64 `json:"ask_depth"`
	Latency   float64 `json:"latency"`
	Timestamp *int64  `json:"timestamp"`
}

// Key returns the store key for this record.
func (r TickerRecord) Key() string {
	return TickerKey(r.Exchange, r.Symbol)
}

// MarshalJSON encodes the record in the store value format.
// An unknown exchange timestamp is written as null.
func (r TickerRecord) MarshalJSON() ([]byte, error) {
	w := tickerWire{
		Exchange: r.Exchange,
		Symbol:   r.Symbol,
		Bid:      r.BestBid,
		Ask:      r.BestAsk,
		BidDepth: r.BidDepth,
		AskDepth: r.AskDepth,
		Latency:  r.LatencyMs,
	}
	if r.ExchangeTimestampMs > 0 {
		ts := r.ExchangeTimestampMs
		w.Timestamp = &ts
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the store value format. A null or missing
// timestamp decodes to 0.
func (r *TickerRecord) UnmarshalJSON(data []byte) error {
	var w tickerWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = TickerRecord{
		Exchange:  w.Exchange,
		Symbol:    w.Symbol,
		BestBid:   w.Bid,
		BestAsk:   w.Ask,
		BidDepth:  w.BidDepth,
		AskDepth:  w.AskDepth,
		LatencyMs: w.Latency,
	}
	if w.Timestamp != nil {
		r.ExchangeTimestampMs = *w.Timestamp
	}
	return nil
}

// TickerKey builds the store key "ticker:{exchange}:{symbol}".
// The symbol is kept verbatim, including its slash.
func TickerKey(exchange, symbol string) string {
	var b strings.Builder
	b.Grow(len(KeyPrefix) + len(exchange) + 1 + len(symbol))
	b.WriteString(KeyPrefix)
	b.WriteString(exchange)
	b.WriteByte(':')
	b.WriteString(symbol)
	return b.String()
}

// SplitSymbol splits a canonical "BASE/QUOTE" symbol.
func SplitSymbol(symbol string) (base, quote string, ok bool) {
	base, quote, ok = strings.Cut(symbol, "/")
	if !ok || base == "" || quote == "" || strings.Contains(quote, "/") {
		return "", "", false
	}
	return base, quote, true
}
