// Package events caches the Polymarket event catalog and its markets.
//
// Two tables live here: events (one row per event id) and markets (one row
// per event_id, market_id pair). Both are written only by the read-through
// path after a remote fetch, and both are INSERT OR IGNORE: the first copy
// of a row wins until a housekeeping call flips its status flags.
//
// Service answers catalog questions. It reads the store first, backfills
// from Gamma when the local answer is empty, then attaches days-to-resolution
// and applies the caller's window, status and sort.
package events
