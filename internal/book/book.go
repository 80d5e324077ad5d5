// Package book maintains a venue's order book from snapshot and delta levels.
//
// Levels are keyed by their exact decimal price so that deltas quoted with a
// different number of trailing zeros still replace the right level.
package book

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/rickgao/arb-ingest/internal/model"
)

// Side selects one side of the book.
type Side int

const (
	Bid Side = iota
	Ask
)

// Level is one decimal price level as received from a venue.
type Level struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// Book is a single-writer order book. It is not safe for concurrent use;
// each venue session owns exactly one.
type Book struct {
	bids map[string]Level
	asks map[string]Level
}

// New creates an empty book.
func New() *Book {
	return &Book{
		bids: make(map[string]Level),
		asks: make(map[string]Level),
	}
}

// Reset replaces the whole book with the given levels.
func (b *Book) Reset(bids, asks []Level) {
	clear(b.bids)
	clear(b.asks)
	for _, l := range bids {
		b.Apply(Bid, l)
	}
	for _, l := range asks {
		b.Apply(Ask, l)
	}
}

// Apply upserts a level. A zero size removes the level.
func (b *Book) Apply(side Side, l Level) {
	levels := b.side(side)
	key := l.Price.String()
	if l.Size.IsZero() {
		delete(levels, key)
		return
	}
	levels[key] = l
}

// Len returns the number of levels on one side.
func (b *Book) Len(side Side) int {
	return len(b.side(side))
}

// Truncate drops every level beyond the best n on each side.
func (b *Book) Truncate(n int) {
	for _, side := range []Side{Bid, Ask} {
		levels := b.side(side)
		if len(levels) <= n {
			continue
		}
		for _, l := range b.sorted(side)[n:] {
			delete(levels, l.Price.String())
		}
	}
}

// Top returns up to n best levels per side: bids descending, asks ascending.
func (b *Book) Top(n int) (bids, asks []Level) {
	bids = b.sorted(Bid)
	asks = b.sorted(Ask)
	if len(bids) > n {
		bids = bids[:n]
	}
	if len(asks) > n {
		asks = asks[:n]
	}
	return bids, asks
}

// Snapshot converts the best n levels into a canonical snapshot.
func (b *Book) Snapshot(exchange, symbol string, n int, exchangeTsMs int64) model.OrderBookSnapshot {
	bids, asks := b.Top(n)
	return model.OrderBookSnapshot{
		Exchange:            exchange,
		Symbol:              symbol,
		Bids:                toModel(bids),
		Asks:                toModel(asks),
		ExchangeTimestampMs: exchangeTsMs,
	}
}

// Crossed reports whether the best bid is at or above the best ask,
// which indicates a corrupted local book.
func (b *Book) Crossed() bool {
	bids, asks := b.Top(1)
	if len(bids) == 0 || len(asks) == 0 {
		return false
	}
	return bids[0].Price.GreaterThanOrEqual(asks[0].Price)
}

func (b *Book) side(side Side) map[string]Level {
	if side == Bid {
		return b.bids
	}
	return b.asks
}

func (b *Book) sorted(side Side) []Level {
	levels := b.side(side)
	out := make([]Level, 0, len(levels))
	for _, l := range levels {
		out = append(out, l)
	}
	if side == Bid {
		slices.SortFunc(out, func(x, y Level) int { return y.Price.Cmp(x.Price) })
	} else {
		slices.SortFunc(out, func(x, y Level) int { return x.Price.Cmp(y.Price) })
	}
	return out
}

func toModel(levels []Level) []model.PriceLevel {
	out := make([]model.PriceLevel, len(levels))
	for i, l := range levels {
		out[i] = model.PriceLevel{
			Price: l.Price.InexactFloat64(),
			Size:  l.Size.InexactFloat64(),
		}
	}
	return out
}
