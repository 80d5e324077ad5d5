// Package writer publishes derived ticker records into the latest-value store.
//
// Each record is written under "ticker:{exchange}:{symbol}" with plain SET:
// no TTL, no merge, no versioning. The last writer for a key always wins and
// writers for different keys never interact. A failed write is reported to
// the caller and never retried or queued.
package writer
