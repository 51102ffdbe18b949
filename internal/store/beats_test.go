package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/roach88/cadence/internal/timeline"
)

// withTestTx runs fn in a transaction and commits it.
func withTestTx(t *testing.T, s *Store, fn func(tx *sql.Tx)) {
	t.Helper()

	err := s.WithTx(context.Background(), func(tx *sql.Tx) error {
		fn(tx)
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
}

func TestInsertBeat_AssignsIdentityAndTimestamps(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var created timeline.Beat
	withTestTx(t, s, func(tx *sql.Tx) {
		var err error
		created, err = s.InsertBeat(ctx, tx, 1, timeline.NewBeat{Duration: 0.5, IncludeInMeasure: true})
		if err != nil {
			t.Fatalf("InsertBeat failed: %v", err)
		}
	})

	if created.ID != 1 {
		t.Errorf("first created beat id = %d, want 1", created.ID)
	}
	if created.Position != 1 {
		t.Errorf("position = %d, want 1", created.Position)
	}
	if created.Duration != 0.5 {
		t.Errorf("duration = %v, want 0.5", created.Duration)
	}
	if !created.IncludeInMeasure {
		t.Error("include_in_measure = false, want true")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("timestamps not set by storage")
	}
}

func TestInsertBeat_NotesNullable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	notes := "push tempo here"
	var withNotes, withoutNotes timeline.Beat
	withTestTx(t, s, func(tx *sql.Tx) {
		var err error
		withNotes, err = s.InsertBeat(ctx, tx, 1, timeline.NewBeat{Duration: 0.5, Notes: &notes})
		if err != nil {
			t.Fatalf("InsertBeat with notes failed: %v", err)
		}
		withoutNotes, err = s.InsertBeat(ctx, tx, 2, timeline.NewBeat{Duration: 0.5})
		if err != nil {
			t.Fatalf("InsertBeat without notes failed: %v", err)
		}
	})

	if withNotes.Notes == nil || *withNotes.Notes != notes {
		t.Errorf("notes = %v, want %q", withNotes.Notes, notes)
	}
	if withoutNotes.Notes != nil {
		t.Errorf("notes = %q, want nil", *withoutNotes.Notes)
	}
}

func TestBeats_OrderedByPosition(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Insert out of position order
	withTestTx(t, s, func(tx *sql.Tx) {
		for _, pos := range []int{3, 1, 2} {
			if _, err := s.InsertBeat(ctx, tx, pos, timeline.NewBeat{Duration: 0.5}); err != nil {
				t.Fatalf("InsertBeat at %d failed: %v", pos, err)
			}
		}
	})

	beats, err := s.Beats(ctx)
	if err != nil {
		t.Fatalf("Beats failed: %v", err)
	}

	// Sentinel plus three beats
	if len(beats) != 4 {
		t.Fatalf("len(beats) = %d, want 4", len(beats))
	}
	for i, b := range beats {
		if b.Position != i {
			t.Errorf("beats[%d].Position = %d, want %d", i, b.Position, i)
		}
	}
	if !beats[0].IsSentinel() {
		t.Error("first beat is not the sentinel")
	}
}

func TestUpdateBeatFields_PartialUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	notes := "hold"
	var created timeline.Beat
	withTestTx(t, s, func(tx *sql.Tx) {
		var err error
		created, err = s.InsertBeat(ctx, tx, 1, timeline.NewBeat{Duration: 0.5, IncludeInMeasure: true, Notes: &notes})
		if err != nil {
			t.Fatalf("InsertBeat failed: %v", err)
		}
	})

	newDuration := 0.75
	var updated timeline.Beat
	var applied bool
	withTestTx(t, s, func(tx *sql.Tx) {
		var err error
		updated, applied, err = s.UpdateBeatFields(ctx, tx, timeline.BeatUpdate{
			ID:       created.ID,
			Duration: &newDuration,
		})
		if err != nil {
			t.Fatalf("UpdateBeatFields failed: %v", err)
		}
	})

	if !applied {
		t.Fatal("update not applied")
	}
	if updated.Duration != 0.75 {
		t.Errorf("duration = %v, want 0.75", updated.Duration)
	}
	// Untouched fields survive
	if !updated.IncludeInMeasure {
		t.Error("include_in_measure was clobbered")
	}
	if updated.Notes == nil || *updated.Notes != notes {
		t.Error("notes were clobbered")
	}
}

func TestUpdateBeatFields_ClearNotes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	notes := "temp"
	var created timeline.Beat
	withTestTx(t, s, func(tx *sql.Tx) {
		var err error
		created, err = s.InsertBeat(ctx, tx, 1, timeline.NewBeat{Duration: 0.5, Notes: &notes})
		if err != nil {
			t.Fatalf("InsertBeat failed: %v", err)
		}
	})

	var updated timeline.Beat
	withTestTx(t, s, func(tx *sql.Tx) {
		var err error
		updated, _, err = s.UpdateBeatFields(ctx, tx, timeline.BeatUpdate{
			ID:         created.ID,
			ClearNotes: true,
		})
		if err != nil {
			t.Fatalf("UpdateBeatFields failed: %v", err)
		}
	})

	if updated.Notes != nil {
		t.Errorf("notes = %q, want NULL", *updated.Notes)
	}
}

func TestUpdateBeatFields_NonexistentBeat(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	d := 0.5
	withTestTx(t, s, func(tx *sql.Tx) {
		_, applied, err := s.UpdateBeatFields(ctx, tx, timeline.BeatUpdate{ID: 999, Duration: &d})
		if err != nil {
			t.Fatalf("UpdateBeatFields failed: %v", err)
		}
		if applied {
			t.Error("update of nonexistent beat reported as applied")
		}
	})
}

func TestDeleteBeats_ReturnsDeletedRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var ids []timeline.BeatID
	withTestTx(t, s, func(tx *sql.Tx) {
		for pos := 1; pos <= 3; pos++ {
			b, err := s.InsertBeat(ctx, tx, pos, timeline.NewBeat{Duration: 0.5})
			if err != nil {
				t.Fatalf("InsertBeat failed: %v", err)
			}
			ids = append(ids, b.ID)
		}
	})

	var deleted []timeline.Beat
	withTestTx(t, s, func(tx *sql.Tx) {
		var err error
		// Second id does not exist
		deleted, err = s.DeleteBeats(ctx, tx, []timeline.BeatID{ids[0], 999, ids[2]})
		if err != nil {
			t.Fatalf("DeleteBeats failed: %v", err)
		}
	})

	if len(deleted) != 2 {
		t.Fatalf("len(deleted) = %d, want 2", len(deleted))
	}
	if deleted[0].ID != ids[0] || deleted[1].ID != ids[2] {
		t.Errorf("deleted ids = [%d %d], want [%d %d]", deleted[0].ID, deleted[1].ID, ids[0], ids[2])
	}

	remaining, err := s.Beats(ctx)
	if err != nil {
		t.Fatalf("Beats failed: %v", err)
	}
	if len(remaining) != 2 { // sentinel + middle beat
		t.Errorf("len(remaining) = %d, want 2", len(remaining))
	}
}

func TestDeleteBeats_EmptySet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	withTestTx(t, s, func(tx *sql.Tx) {
		deleted, err := s.DeleteBeats(ctx, tx, nil)
		if err != nil {
			t.Fatalf("DeleteBeats failed: %v", err)
		}
		if len(deleted) != 0 {
			t.Errorf("len(deleted) = %d, want 0", len(deleted))
		}
	})
}

func TestSetAllBeatDurations_SkipsSentinel(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	withTestTx(t, s, func(tx *sql.Tx) {
		for pos := 1; pos <= 3; pos++ {
			if _, err := s.InsertBeat(ctx, tx, pos, timeline.NewBeat{Duration: 0.5}); err != nil {
				t.Fatalf("InsertBeat failed: %v", err)
			}
		}
	})

	withTestTx(t, s, func(tx *sql.Tx) {
		n, err := s.SetAllBeatDurations(ctx, tx, 1.25)
		if err != nil {
			t.Fatalf("SetAllBeatDurations failed: %v", err)
		}
		if n != 3 {
			t.Errorf("rows written = %d, want 3", n)
		}
	})

	beats, err := s.Beats(ctx)
	if err != nil {
		t.Fatalf("Beats failed: %v", err)
	}
	for _, b := range beats {
		if b.IsSentinel() {
			if b.Duration != 0 {
				t.Errorf("sentinel duration = %v, want 0", b.Duration)
			}
			continue
		}
		if b.Duration != 1.25 {
			t.Errorf("beat %d duration = %v, want 1.25", b.ID, b.Duration)
		}
	}
}

func TestMaxBeatPositionTx(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	withTestTx(t, s, func(tx *sql.Tx) {
		pos, err := s.MaxBeatPositionTx(ctx, tx)
		if err != nil {
			t.Fatalf("MaxBeatPositionTx failed: %v", err)
		}
		// Only the sentinel exists
		if pos != 0 {
			t.Errorf("max position = %d, want 0", pos)
		}

		if _, err := s.InsertBeat(ctx, tx, 7, timeline.NewBeat{Duration: 0.5}); err != nil {
			t.Fatalf("InsertBeat failed: %v", err)
		}

		pos, err = s.MaxBeatPositionTx(ctx, tx)
		if err != nil {
			t.Fatalf("MaxBeatPositionTx failed: %v", err)
		}
		if pos != 7 {
			t.Errorf("max position = %d, want 7", pos)
		}
	})
}

func TestBeatsAtOrAfterTx(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	withTestTx(t, s, func(tx *sql.Tx) {
		for pos := 1; pos <= 4; pos++ {
			if _, err := s.InsertBeat(ctx, tx, pos, timeline.NewBeat{Duration: 0.5}); err != nil {
				t.Fatalf("InsertBeat failed: %v", err)
			}
		}

		beats, err := s.BeatsAtOrAfterTx(ctx, tx, 3)
		if err != nil {
			t.Fatalf("BeatsAtOrAfterTx failed: %v", err)
		}
		if len(beats) != 2 {
			t.Fatalf("len(beats) = %d, want 2", len(beats))
		}
		if beats[0].Position != 3 || beats[1].Position != 4 {
			t.Errorf("positions = [%d %d], want [3 4]", beats[0].Position, beats[1].Position)
		}
	})
}

func TestWithTx_RollbackOnError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	errBoom := sql.ErrConnDone // any sentinel error
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.InsertBeat(ctx, tx, 1, timeline.NewBeat{Duration: 0.5}); err != nil {
			t.Fatalf("InsertBeat failed: %v", err)
		}
		return errBoom
	})
	if err != errBoom {
		t.Fatalf("WithTx error = %v, want %v", err, errBoom)
	}

	beats, err := s.Beats(ctx)
	if err != nil {
		t.Fatalf("Beats failed: %v", err)
	}
	if len(beats) != 1 {
		t.Errorf("len(beats) = %d after rollback, want 1 (sentinel only)", len(beats))
	}
}
