// Package timeline defines the domain model for the Cadence sequencing
// engine: beats, measures, and tempo groups.
//
// A timeline is a totally ordered sequence of beats. Ordering is carried by
// an integer position that is unique among all beats. Positions may develop
// gaps after deletions or shifts; a flatten pass restores the dense
// sequence 1..N without changing relative order.
//
// # Sentinel Beat
//
// Every timeline owns exactly one sentinel beat: reserved identity 0,
// position 0, duration 0. It marks the timeline origin and is created once
// at initialization. The sentinel is never updated or deleted - mutation
// batches that target it are filtered, not rejected. Callers check
// BeatID.IsSentinel instead of comparing raw identity values so the filter
// cannot be missed at a call site.
//
// # Measures
//
// Measures reference their starting beat by identity, never by position.
// Measure ordering is derived from the position of the start beat, so
// reindexing beats never touches measure rows.
package timeline
