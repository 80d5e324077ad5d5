package kraken

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/rickgao/arb-ingest/internal/connection"
)

// Name is the exchange identifier used in store keys.
const Name = "kraken"

// Config configures the Kraken venue.
type Config struct {
	WSURL     string // e.g. wss://ws.kraken.com/v2
	BookDepth int    // Levels wanted per side; rounded up to a supported depth

	// Connection overrides the websocket client settings. URL is ignored.
	Connection connection.ClientConfig
}

// DefaultConfig returns production endpoints.
func DefaultConfig() Config {
	return Config{
		WSURL:      "wss://ws.kraken.com/v2",
		BookDepth:  10,
		Connection: connection.DefaultClientConfig(),
	}
}

// Depths accepted by the v2 book channel.
var supportedDepths = []int{10, 25, 100, 500, 1000}

// SubscriptionDepth returns the smallest supported depth that covers n.
func SubscriptionDepth(n int) int {
	for _, d := range supportedDepths {
		if n <= d {
			return d
		}
	}
	return supportedDepths[len(supportedDepths)-1]
}

// Channel and message types.
const (
	channelBook = "book"

	typeSnapshot = "snapshot"
	typeUpdate   = "update"

	methodSubscribe = "subscribe"
)

// subscribeRequest is sent once per session.
type subscribeRequest struct {
	Method string          `json:"method"`
	Params subscribeParams `json:"params"`
	ReqID  int64           `json:"req_id"`
}

type subscribeParams struct {
	Channel  string   `json:"channel"`
	Symbol   []string `json:"symbol"`
	Depth    int      `json:"depth"`
	Snapshot bool     `json:"snapshot"`
}

// envelope is decoded first to route a frame.
//
// Channel frames carry "channel"; request acknowledgements carry "method".
type envelope struct {
	Channel string          `json:"channel"`
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`

	Method  string `json:"method"`
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	ReqID   int64  `json:"req_id"`
}

// bookData is one entry of a book frame's data array.
type bookData struct {
	Symbol    string      `json:"symbol"`
	Bids      []bookLevel `json:"bids"`
	Asks      []bookLevel `json:"asks"`
	Checksum  uint32      `json:"checksum"`
	Timestamp string      `json:"timestamp"` // RFC3339, absent on some snapshots
}

// bookLevel prices arrive as JSON numbers; decimal keeps them exact.
type bookLevel struct {
	Price decimal.Decimal `json:"price"`
	Qty   decimal.Decimal `json:"qty"`
}
