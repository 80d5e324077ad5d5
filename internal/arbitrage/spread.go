package arbitrage

import (
	"time"

	"github.com/rickgao/arb-ingest/internal/model"
)

// Opportunity is the result of buying on one exchange and selling on another.
type Opportunity struct {
	Symbol       string
	BuyExchange  string  // Exchange whose ask is lifted
	SellExchange string  // Exchange whose bid is hit
	BuyPrice     float64 // buy.ask
	SellPrice    float64 // sell.bid
	Spread       float64 // SellPrice - BuyPrice
	ProfitPct    float64 // Spread / BuyPrice * 100
	NetProfit    float64 // Investment * (ProfitPct - FeePct) / 100
	Liquidity    float64 // buy.bid_depth + buy.ask_depth
	Imbalance    float64 // buy.bid_depth / Liquidity, 0.5 when empty
	LatencyMs    float64 // Mean of both sides
	Stale        bool    // A side is older than StaleAfter
}

// Profitable reports whether the trade clears fees.
func (o Opportunity) Profitable() bool {
	return o.NetProfit > 0
}

// Evaluate computes the opportunity of buying on buy and selling on sell.
func Evaluate(buy, sell model.TickerRecord, feePct, investment float64, staleAfter time.Duration, nowMs int64) Opportunity {
	o := Opportunity{
		Symbol:       buy.Symbol,
		BuyExchange:  buy.Exchange,
		SellExchange: sell.Exchange,
		BuyPrice:     buy.BestAsk,
		SellPrice:    sell.BestBid,
		Spread:       sell.BestBid - buy.BestAsk,
		Liquidity:    buy.BidDepth + buy.AskDepth,
		LatencyMs:    (buy.LatencyMs + sell.LatencyMs) / 2,
	}

	if buy.BestAsk > 0 {
		o.ProfitPct = o.Spread / buy.BestAsk * 100
	}
	o.NetProfit = investment * (o.ProfitPct - feePct) / 100

	o.Imbalance = 0.5
	if o.Liquidity > 0 {
		o.Imbalance = buy.BidDepth / o.Liquidity
	}

	o.Stale = isStale(buy, staleAfter, nowMs) || isStale(sell, staleAfter, nowMs)

	return o
}

// isStale judges only records with a known exchange timestamp.
func isStale(rec model.TickerRecord, staleAfter time.Duration, nowMs int64) bool {
	if staleAfter <= 0 || rec.ExchangeTimestampMs <= 0 {
		return false
	}
	return nowMs-rec.ExchangeTimestampMs > staleAfter.Milliseconds()
}
