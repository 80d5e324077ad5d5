// Package database constructs the shared latest-value store client.
//
// The store is Redis used as a plain key/value cache: one key per
// (exchange, symbol), overwritten on every update, no pub/sub and no history.
// A single *redis.Client is built at startup and handed to every component
// that needs it; there is no package-level handle.
package database
