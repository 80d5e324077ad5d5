// Package feed runs one order book subscription per (exchange, symbol) and
// turns every accepted book update into a published ticker record.
//
// A Connector owns its whole lifetime: dial, stream, derive, publish, and on
// any stream failure a cooldown followed by a fresh subscription. Failures
// never leave the connector; only cancellation of the run context ends it.
package feed
