package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rickgao/arb-ingest/internal/model"
)

// Supported venue identifiers.
const (
	ExchangeBinance = "binance"
	ExchangeKraken  = "kraken"
)

// SupportedExchanges is the fixed set of venues with a feed implementation.
var SupportedExchanges = []string{ExchangeBinance, ExchangeKraken}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return invalid("instance.id is required")
	}

	if len(c.Exchanges) == 0 {
		return invalid("exchanges must not be empty")
	}
	seen := make(map[string]struct{}, len(c.Exchanges))
	for _, ex := range c.Exchanges {
		if !slices.Contains(SupportedExchanges, ex) {
			return invalid("unknown exchange %q (supported: %v)", ex, SupportedExchanges)
		}
		if _, dup := seen[ex]; dup {
			return invalid("duplicate exchange %q", ex)
		}
		seen[ex] = struct{}{}
	}

	if len(c.Symbols) == 0 {
		return invalid("symbols must not be empty")
	}
	seen = make(map[string]struct{}, len(c.Symbols))
	for _, sym := range c.Symbols {
		if _, _, ok := model.SplitSymbol(sym); !ok {
			return invalid("symbol %q must be in BASE/QUOTE form", sym)
		}
		if _, dup := seen[sym]; dup {
			return invalid("duplicate symbol %q", sym)
		}
		seen[sym] = struct{}{}
	}

	if c.Store.Host == "" {
		return invalid("store.host is required")
	}
	if c.Store.Port < 1 || c.Store.Port > 65535 {
		return invalid("store.port must be between 1 and 65535, got %d", c.Store.Port)
	}
	if c.Store.WriteTimeout <= 0 {
		return invalid("store.write_timeout must be > 0")
	}

	if c.Ingest.StartupGrace < 0 {
		return invalid("ingest.startup_grace must be >= 0")
	}
	if c.Ingest.Cooldown <= 0 {
		return invalid("ingest.cooldown must be > 0")
	}
	if c.Ingest.MaxCooldown < c.Ingest.Cooldown {
		return invalid("ingest.max_cooldown (%v) cannot be less than cooldown (%v)", c.Ingest.MaxCooldown, c.Ingest.Cooldown)
	}
	if c.Ingest.SubscribeTimeout <= 0 {
		return invalid("ingest.subscribe_timeout must be > 0")
	}
	if c.Ingest.BookDepth < 5 {
		return invalid("ingest.book_depth must be >= 5, got %d", c.Ingest.BookDepth)
	}

	if c.Scanner.PollInterval <= 0 {
		return invalid("scanner.poll_interval must be > 0")
	}
	if c.Scanner.Investment <= 0 {
		return invalid("scanner.investment must be > 0")
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return invalid("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	return nil
}

// Pairs returns every configured (exchange, symbol) combination,
// ordered by symbol then exchange.
func (c *Config) Pairs() []Pair {
	pairs := make([]Pair, 0, len(c.Exchanges)*len(c.Symbols))
	for _, sym := range c.Symbols {
		for _, ex := range c.Exchanges {
			pairs = append(pairs, Pair{Exchange: ex, Symbol: sym})
		}
	}
	return pairs
}

// Pair identifies one feed.
type Pair struct {
	Exchange string
	Symbol   string
}

func (p Pair) String() string {
	return p.Exchange + ":" + p.Symbol
}
