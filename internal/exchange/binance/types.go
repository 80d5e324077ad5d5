package binance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/arb-ingest/internal/connection"
)

// Name is the exchange identifier used in store keys.
const Name = "binance"

// Config configures the Binance venue.
type Config struct {
	WSURL         string // Raw stream base, e.g. wss://stream.binance.com:9443/ws
	RestURL       string // REST base, e.g. https://api.binance.com
	RestTimeout   time.Duration
	SnapshotLimit int // Levels requested from /api/v3/depth and kept locally
	BookDepth     int // Levels emitted per snapshot

	// Connection overrides the websocket client settings. URL is ignored.
	Connection connection.ClientConfig
}

// DefaultConfig returns production endpoints.
func DefaultConfig() Config {
	return Config{
		WSURL:         "wss://stream.binance.com:9443/ws",
		RestURL:       "https://api.binance.com",
		RestTimeout:   10 * time.Second,
		SnapshotLimit: 100,
		BookDepth:     10,
		Connection:    connection.DefaultClientConfig(),
	}
}

// depthEvent is one frame of the <symbol>@depth@100ms stream.
//
//	{"e":"depthUpdate","E":1672515782136,"s":"BNBBTC","U":157,"u":160,
//	 "b":[["0.0024","10"]],"a":[["0.0026","100"]]}
type depthEvent struct {
	Event     string               `json:"e"`
	EventTime int64                `json:"E"`
	Symbol    string               `json:"s"`
	FirstID   int64                `json:"U"`
	FinalID   int64                `json:"u"`
	Bids      [][2]decimal.Decimal `json:"b"`
	Asks      [][2]decimal.Decimal `json:"a"`
}

const eventDepthUpdate = "depthUpdate"
