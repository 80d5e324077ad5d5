package config

import (
	"time"

	"github.com/google/uuid"
)

// Default values for optional configuration fields.
const (
	DefaultStoreHost          = "localhost"
	DefaultStorePort          = 6379
	DefaultStoreDialTimeout   = 5 * time.Second
	DefaultStoreWriteTimeout  = 2 * time.Second
	DefaultStartupGrace       = 5 * time.Second
	DefaultCooldown           = 5 * time.Second
	DefaultSubscribeTimeout   = 15 * time.Second
	DefaultBookDepth          = 10
	DefaultBinanceWSURL       = "wss://stream.binance.com:9443/ws"
	DefaultBinanceRestURL     = "https://api.binance.com"
	DefaultSnapshotLimit      = 100
	DefaultBinanceRestTimeout = 10 * time.Second
	DefaultKrakenWSURL        = "wss://ws.kraken.com/v2"
	DefaultPollInterval       = 1 * time.Second
	DefaultFeePct             = 0.2
	DefaultInvestment         = 1000
	DefaultStaleAfter         = 5 * time.Second
	DefaultMetricsPort        = 9090
	DefaultMetricsPath        = "/metrics"
)

// Default pair set, tracked when the config omits them.
var (
	DefaultExchanges = []string{ExchangeBinance, ExchangeKraken}
	DefaultSymbols   = []string{"BTC/USDT", "ETH/USDT", "SOL/USDT", "BNB/USDT", "XRP/USDT"}
)

func (c *Config) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = "arb-" + uuid.NewString()[:8]
	}

	if c.Exchanges == nil {
		c.Exchanges = append([]string(nil), DefaultExchanges...)
	}
	if c.Symbols == nil {
		c.Symbols = append([]string(nil), DefaultSymbols...)
	}

	// Store defaults
	if c.Store.Host == "" {
		c.Store.Host = DefaultStoreHost
	}
	if c.Store.Port == 0 {
		c.Store.Port = DefaultStorePort
	}
	if c.Store.DialTimeout == 0 {
		c.Store.DialTimeout = DefaultStoreDialTimeout
	}
	if c.Store.WriteTimeout == 0 {
		c.Store.WriteTimeout = DefaultStoreWriteTimeout
	}

	// Ingest defaults
	if c.Ingest.StartupGrace == 0 {
		c.Ingest.StartupGrace = DefaultStartupGrace
	}
	if c.Ingest.Cooldown == 0 {
		c.Ingest.Cooldown = DefaultCooldown
	}
	if c.Ingest.MaxCooldown == 0 {
		c.Ingest.MaxCooldown = c.Ingest.Cooldown
	}
	if c.Ingest.SubscribeTimeout == 0 {
		c.Ingest.SubscribeTimeout = DefaultSubscribeTimeout
	}
	if c.Ingest.BookDepth == 0 {
		c.Ingest.BookDepth = DefaultBookDepth
	}

	// Venue defaults
	if c.Venues.Binance.WSURL == "" {
		c.Venues.Binance.WSURL = DefaultBinanceWSURL
	}
	if c.Venues.Binance.RestURL == "" {
		c.Venues.Binance.RestURL = DefaultBinanceRestURL
	}
	if c.Venues.Binance.SnapshotLimit == 0 {
		c.Venues.Binance.SnapshotLimit = DefaultSnapshotLimit
	}
	if c.Venues.Binance.RestTimeout == 0 {
		c.Venues.Binance.RestTimeout = DefaultBinanceRestTimeout
	}
	if c.Venues.Kraken.WSURL == "" {
		c.Venues.Kraken.WSURL = DefaultKrakenWSURL
	}

	// Scanner defaults
	if c.Scanner.PollInterval == 0 {
		c.Scanner.PollInterval = DefaultPollInterval
	}
	if c.Scanner.FeePct == 0 {
		c.Scanner.FeePct = DefaultFeePct
	}
	if c.Scanner.Investment == 0 {
		c.Scanner.Investment = DefaultInvestment
	}
	if c.Scanner.StaleAfter == 0 {
		c.Scanner.StaleAfter = DefaultStaleAfter
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}
