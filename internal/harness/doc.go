// Package harness provides conformance testing for the timeline engine.
//
// The harness loads YAML scenarios, executes their steps against a fresh
// database, and validates the resulting timeline, both with inline
// assertions and with golden snapshot comparison.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	steps:
//	  - op: add_beats
//	    count: 4
//	    duration: 0.5
//	  - op: shift
//	    at: 2
//	    by: 2
//	  - op: shift
//	    at: 0
//	    by: 1
//	    expect_rejected: true
//	assertions:
//	  - type: positions
//	    positions: [0, 1, 4, 5]
//	  - type: history_len
//	    count: 2
//
// # Step Operations
//
// The following ops are supported:
//
//   - add_beats: create count beats of the given duration (optionally at a position)
//   - remove_beats: delete beats by identity
//   - update_all_durations: set every beat's duration
//   - shift: move beats at or after a position by a signed amount
//   - flatten: compact positions to a dense 1..N sequence
//   - add_measure: create a measure anchored on a beat
//   - remove_measures: delete measures by identity
//   - ensure_ghost: ensure the trailing ghost measure is in place
//   - tempo_group: materialize a tempo group
//
// Steps marked expect_rejected must fail validation; the harness verifies
// the rejection and that nothing was persisted for that step.
//
// # Assertion Types
//
//   - beat_count: number of beats excluding the fixed first beat
//   - measure_count: number of measures
//   - positions: the exact position sequence including the fixed first beat
//   - history_len: number of recorded history entries
package harness
