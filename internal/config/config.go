package config

import "time"

// Config is the root configuration shared by the ingester and spreadwatch.
type Config struct {
	Instance  InstanceConfig `yaml:"instance"`
	Exchanges []string       `yaml:"exchanges"`
	Symbols   []string       `yaml:"symbols"`
	Store     StoreConfig    `yaml:"store"`
	Ingest    IngestConfig   `yaml:"ingest"`
	Venues    VenuesConfig   `yaml:"venues"`
	Scanner   ScannerConfig  `yaml:"scanner"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}

// InstanceConfig identifies this process in logs.
type InstanceConfig struct {
	ID string `yaml:"id"` // Generated when empty
}

// StoreConfig holds the Redis endpoint used as the latest-value store.
type StoreConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// IngestConfig holds supervisor and connector timing.
type IngestConfig struct {
	StartupGrace     time.Duration `yaml:"startup_grace"`     // Wait before the first dial
	Cooldown         time.Duration `yaml:"cooldown"`          // Wait after a connector failure
	MaxCooldown      time.Duration `yaml:"max_cooldown"`      // Backoff ceiling (defaults to Cooldown)
	SubscribeTimeout time.Duration `yaml:"subscribe_timeout"` // Bound on dial + subscribe
	BookDepth        int           `yaml:"book_depth"`        // Levels requested from venues
}

// VenuesConfig holds per-exchange endpoints.
type VenuesConfig struct {
	Binance BinanceConfig `yaml:"binance"`
	Kraken  KrakenConfig  `yaml:"kraken"`
}

// BinanceConfig holds Binance spot endpoints.
type BinanceConfig struct {
	WSURL         string        `yaml:"ws_url"`
	RestURL       string        `yaml:"rest_url"`
	SnapshotLimit int           `yaml:"snapshot_limit"`
	RestTimeout   time.Duration `yaml:"rest_timeout"`
}

// KrakenConfig holds Kraken spot endpoints.
type KrakenConfig struct {
	WSURL string `yaml:"ws_url"`
}

// ScannerConfig holds the spread scanner settings.
type ScannerConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	FeePct       float64       `yaml:"fee_pct"`    // Round-trip fee threshold in percent
	Investment   float64       `yaml:"investment"` // Notional in quote currency
	StaleAfter   time.Duration `yaml:"stale_after"`
}

// MetricsConfig holds Prometheus and health endpoint settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}
