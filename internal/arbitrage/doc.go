// Package arbitrage implements the Spread Scanner component.
//
// The Spread Scanner:
//   - Polls the store for every ticker:{exchange}:{symbol} record in one MGET
//   - Treats missing or undecodable records as absent
//   - Evaluates buy-on-one, sell-on-another for every ordered exchange pair
//   - Reports opportunities with positive net profit after fees
package arbitrage
