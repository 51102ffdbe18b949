// Package history implements the undo-history ledger for the Cadence
// engine.
//
// Every public engine operation runs through Ledger.RunAsOneEntry: the unit
// of work executes inside exactly one storage transaction, and on commit it
// is recorded as exactly one ledger entry - independent of how many rows
// the operation touched. A unit of work that performs zero net storage
// changes commits without recording anything, so no-op calls never pollute
// the undo history.
//
// Net change is measured as the delta of SQLite's total_changes() counter
// around the body. The store holds a single connection, which keeps the
// counter attributable to the one logical writer.
//
// Entries are ordered by a monotonic logical sequence number, never by wall
// clock. The sequence resumes from the last recorded entry when the ledger
// is reopened.
package history
