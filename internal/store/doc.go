// Package store provides SQLite-backed durable storage for Cadence
// timelines.
//
// The store persists:
//   - Beats: ordered timeline units (position UNIQUE, sentinel at id 0)
//   - Measures: musical groupings anchored to a beat by identity
//   - Utility: single-row configuration (default beat duration)
//   - History entries: the undo-history ledger written by internal/history
//
// # Transaction Model
//
// All mutations are tx-scoped: write methods take a *sql.Tx and the engine
// wraps each public operation in exactly one transaction via WithTx. Reads
// come in both plain (connection) and tx variants; the tx variants observe
// the pre-commit snapshot of an open transaction.
//
// # Ordering
//
// All beat queries order by position; all measure queries order by the
// position of the start beat (a join, never a stored offset). Results are
// deterministic for a given committed state.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity (measure cascade)
//   - single connection: one logical writer, and total_changes() stays
//     meaningful for the history ledger's net-change check
package store
