// Package store provides the SQLite-backed primitives shared by every
// domain cache: event/market catalog, price history and tags.
//
// A Store owns one connection to one file. Domain packages own their
// schemas and insert statements; they never hand raw SQL to callers.
//
// # Write Semantics
//
//   - Insert runs a whole batch inside one transaction (all-or-nothing)
//   - Statements are INSERT OR IGNORE, so duplicate primary keys are skipped
//   - Nothing is deleted through this package except DropTable
//
// # Read Semantics
//
//   - Read always returns a Table whose Columns come from the result set
//   - Zero rows is an empty Table with the same columns, never nil
//   - ReadOrRecreate bootstraps a missing table once and retries once
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads from other processes during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=30000: Wait for locks up to 30 seconds
//   - foreign_keys=ON: Advisory; cross-table references are not declared
package store
