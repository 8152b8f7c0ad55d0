// Package backfill implements the cache-or-fetch decision shared by every
// domain: serve from the local store, and only when the store has nothing
// for the request (or the caller forces it) fetch from the remote source,
// persist the result idempotently, and re-read.
//
// What Run returns always comes from the local store, so "served from
// cache" and "fetched, now cached" look identical to callers.
//
// An empty local result is treated as a cache miss. A remote source that
// legitimately has nothing for a key is therefore asked again on every
// call; there is no negative caching.
package backfill
