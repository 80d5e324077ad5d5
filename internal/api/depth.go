package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/rickgao/arb-ingest/internal/book"
)

// DepthResponse from GET /api/v3/depth
type DepthResponse struct {
	LastUpdateID int64                `json:"lastUpdateId"`
	Bids         [][2]decimal.Decimal `json:"bids"` // [price, qty] as quoted strings
	Asks         [][2]decimal.Decimal `json:"asks"`
}

// GetDepth fetches an order book snapshot for a venue symbol (e.g. "BTCUSDT").
func (c *Client) GetDepth(ctx context.Context, symbol string, limit int) (*DepthResponse, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp DepthResponse
	if err := c.get(ctx, "/api/v3/depth", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Levels converts raw [price, qty] pairs into book levels.
func Levels(raw [][2]decimal.Decimal) []book.Level {
	out := make([]book.Level, len(raw))
	for i, pq := range raw {
		out[i] = book.Level{Price: pq[0], Size: pq[1]}
	}
	return out
}
