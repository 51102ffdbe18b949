// Package engine implements the Cadence timeline sequencing engine.
//
// The engine owns every mutation of the beat/measure timeline: beat
// creation, partial updates, deletion, the shift and flatten reindexing
// passes, measure CRUD, and tempo-group materialization.
//
// # Atomicity Contract
//
// Every public mutating operation executes as exactly one storage
// transaction wrapped by the history ledger: all row writes commit or roll
// back together, and a successful operation records exactly one undo-history
// entry regardless of batch size. Operations whose input is empty (or
// empties after sentinel filtering) short-circuit before a transaction is
// opened. Operations that commit without net changes record nothing.
//
// # Validation Order
//
// All validation happens before the first write inside the transaction
// scope. A rejected shift or a not-found measure aborts with a full
// rollback, so the timeline is never left partially shifted or partially
// created.
//
// # Sentinel Handling
//
// Update and delete batches that target the sentinel beat have those items
// silently filtered, never rejected. The check goes through
// timeline.BeatID.IsSentinel so it cannot drift from the reserved identity.
//
// # Reindexing Without Collisions
//
// Beat positions are UNIQUE in storage. Shift writes rows in descending
// position order when shifting up and ascending order when shifting down;
// flatten compacts in ascending order. In both cases a row never lands on a
// position an unmoved row still occupies, so multi-row reindexing commits
// without transient constraint violations.
package engine
